package review

import (
	"github.com/sprite-ai/vouch/internal/model"
	"github.com/sprite-ai/vouch/internal/trust"
)

// Counts is a histogram of effective statuses over the current hunks.
type Counts struct {
	Pending            int `json:"pending"`
	Approved           int `json:"approved"`
	Rejected           int `json:"rejected"`
	SavedForLater      int `json:"savedForLater"`
	Trusted            int `json:"trusted"`
	StagedAutoApproved int `json:"stagedAutoApproved"`
	Total              int `json:"total"`
}

// Reviewed returns how many hunks no longer need attention.
func (c Counts) Reviewed() int {
	return c.Approved + c.Rejected + c.Trusted + c.StagedAutoApproved
}

// Resolve derives the effective status for a hunk id. Exactly one
// status holds for any id; explicit decisions outrank derived trust,
// trust outranks the staged rule, and everything else is pending.
func (s *Session) Resolve(id string) model.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(id)
}

func (s *Session) resolve(id string) model.Status {
	st := s.state.Hunks[id]
	if st != nil {
		switch st.Decision {
		case model.DecisionRejected:
			return model.StatusRejected
		case model.DecisionApproved:
			return model.StatusApproved
		case model.DecisionSavedForLater:
			return model.StatusSavedForLater
		}
		if trust.AnyLabelMatchesAny(st.Label, s.state.TrustList) {
			return model.StatusTrusted
		}
	}
	if s.state.AutoApproveStaged {
		if h, ok := s.byID[id]; ok && s.staged[h.FilePath] {
			return model.StatusStagedAutoApproved
		}
	}
	return model.StatusPending
}

// IsReviewed reports whether the hunk's effective status counts as
// reviewed. Trusted and staged-auto-approved hunks cannot be
// un-approved directly; remove the matching trust pattern or un-stage
// the file instead.
func (s *Session) IsReviewed(id string) bool {
	return s.Resolve(id).Reviewed()
}

// ResolveAll returns the effective status of every current hunk.
func (s *Session) ResolveAll() map[string]model.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.Status, len(s.hunks))
	for i := range s.hunks {
		id := s.hunks[i].ID
		out[id] = s.resolve(id)
	}
	return out
}

// StatusByFile maps each changed file path to the effective statuses
// of its hunks, in hunk order. Input for the file tree aggregator.
func (s *Session) StatusByFile() map[string][]model.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]model.Status, len(s.byFile))
	for path, ids := range s.byFile {
		statuses := make([]model.Status, len(ids))
		for i, id := range ids {
			statuses[i] = s.resolve(id)
		}
		out[path] = statuses
	}
	return out
}

// Counts aggregates effective statuses over the current hunk set.
// States for hunks no longer present do not contribute.
func (s *Session) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c Counts
	for i := range s.hunks {
		c.Total++
		switch s.resolve(s.hunks[i].ID) {
		case model.StatusApproved:
			c.Approved++
		case model.StatusRejected:
			c.Rejected++
		case model.StatusSavedForLater:
			c.SavedForLater++
		case model.StatusTrusted:
			c.Trusted++
		case model.StatusStagedAutoApproved:
			c.StagedAutoApproved++
		default:
			c.Pending++
		}
	}
	return c
}
