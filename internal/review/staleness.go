package review

// Staleness describes how an AI artifact relates to the current hunk
// set.
type Staleness int

const (
	// Fresh: the artifact's generation snapshot equals the current set.
	Fresh Staleness = iota
	// Stale: the set changed but the artifact still covers some current
	// hunks; offer regeneration.
	Stale
	// Irrelevant: the artifact covers none of the current hunks; hide it.
	Irrelevant
)

func (st Staleness) String() string {
	switch st {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Irrelevant:
		return "irrelevant"
	default:
		return "unknown"
	}
}

// setsEqual compares two id slices as sets. Hunk ids are unique, so
// equal length plus membership is sufficient.
func setsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}

func coverage(snapshot, current []string) int {
	set := make(map[string]bool, len(snapshot))
	for _, id := range snapshot {
		set[id] = true
	}
	n := 0
	for _, id := range current {
		if set[id] {
			n++
		}
	}
	return n
}

// stalenessOf classifies a snapshot against the current id set.
func stalenessOf(snapshot, current []string) Staleness {
	if setsEqual(snapshot, current) {
		return Fresh
	}
	if coverage(snapshot, current) == 0 {
		return Irrelevant
	}
	return Stale
}

// ClassificationStale reports whether the hunk set changed since
// classification. False when no classification has run yet.
func (s *Session) ClassificationStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Classification == nil {
		return false
	}
	return !setsEqual(s.state.Classification.HunkIDs, s.currentIDs())
}

// GuideStaleness classifies the grouping artifact against the current
// hunk set. Fresh when no guide exists (there is nothing to
// regenerate).
func (s *Session) GuideStaleness() Staleness {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Guide == nil {
		return Fresh
	}
	return stalenessOf(s.state.Guide.HunkIDs, s.currentIDs())
}

// NarrativeStale reports whether the hunk set changed since the
// narrative was generated.
func (s *Session) NarrativeStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Narrative == nil {
		return false
	}
	return !setsEqual(s.state.Narrative.HunkIDs, s.currentIDs())
}
