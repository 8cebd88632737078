// Package review implements the review state engine: the session
// container that owns one ReviewState, resolves per-hunk statuses from
// explicit decisions plus computed trust, and tracks staleness of the
// AI artifacts against the current hunk set.
package review

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sprite-ai/vouch/internal/model"
	"github.com/sprite-ai/vouch/internal/trust"
)

// Session owns the review state for one comparison. All mutation goes
// through its typed methods; reads go through query methods that never
// expose internal pointers. Safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	state  *model.ReviewState
	loaded uint64 // state version at construction time
	hunks  []model.Hunk
	byID   map[string]*model.Hunk
	byFile map[string][]string // file path -> hunk ids, input order
	staged map[string]bool

	now func() string
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NewSession wraps an existing state (typically loaded from storage)
// and the current hunk list for the comparison.
func NewSession(state *model.ReviewState, hunks []model.Hunk) *Session {
	if state.Hunks == nil {
		state.Hunks = make(map[string]*model.HunkState)
	}
	s := &Session{
		state:  state,
		loaded: state.Version,
		now:    nowRFC3339,
	}
	s.indexHunks(hunks)
	return s
}

// New creates a session with a fresh empty state.
func New(c model.Comparison, hunks []model.Hunk) *Session {
	return NewSession(model.NewReviewState(c, nowRFC3339()), hunks)
}

func (s *Session) indexHunks(hunks []model.Hunk) {
	s.hunks = hunks
	s.byID = make(map[string]*model.Hunk, len(hunks))
	s.byFile = make(map[string][]string)
	for i := range hunks {
		h := &s.hunks[i]
		s.byID[h.ID] = h
		s.byFile[h.FilePath] = append(s.byFile[h.FilePath], h.ID)
	}
}

// touch bumps the version and update timestamp. Callers hold the lock.
func (s *Session) touch() {
	s.state.Version++
	s.state.UpdatedAt = s.now()
}

// hunkState returns the state record for a known hunk id, creating it
// on first use. Returns nil for ids outside the current hunk set.
// Callers hold the lock.
func (s *Session) hunkState(id string) *model.HunkState {
	if st, ok := s.state.Hunks[id]; ok {
		return st
	}
	if _, known := s.byID[id]; !known {
		return nil
	}
	st := &model.HunkState{}
	s.state.Hunks[id] = st
	return st
}

func (s *Session) setDecision(ids []string, d model.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if st := s.hunkState(id); st != nil {
			st.Decision = d
		}
	}
	s.touch()
}

// Approve sets the explicit decision to approved for each known id.
// Unknown ids are ignored.
func (s *Session) Approve(ids ...string) { s.setDecision(ids, model.DecisionApproved) }

// Reject sets the explicit decision to rejected for each known id.
func (s *Session) Reject(ids ...string) { s.setDecision(ids, model.DecisionRejected) }

// SaveForLater parks each known id without approving or rejecting it.
func (s *Session) SaveForLater(ids ...string) { s.setDecision(ids, model.DecisionSavedForLater) }

// Unapprove clears the explicit decision; the hunk falls back to the
// derived trust and staged rules.
func (s *Session) Unapprove(ids ...string) { s.setDecision(ids, model.DecisionNone) }

// SetTrustList replaces the trust list wholesale. Duplicates collapse;
// explicit decisions are untouched.
func (s *Session) SetTrustList(patterns []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.TrustList = trust.Normalize(patterns)
	s.touch()
}

// AddTrustPattern appends a pattern if not already present.
func (s *Session) AddTrustPattern(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.TrustList = trust.Normalize(append(s.state.TrustList, pattern))
	s.touch()
}

// RemoveTrustPattern deletes a pattern from the trust list.
func (s *Session) RemoveTrustPattern(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state.TrustList[:0]
	for _, p := range s.state.TrustList {
		if p != pattern {
			out = append(out, p)
		}
	}
	s.state.TrustList = out
	s.touch()
}

// SetNotes replaces the free-form review notes.
func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Notes = notes
	s.touch()
}

// AddLineAnnotation attaches a note to a file line.
func (s *Session) AddLineAnnotation(filePath string, line int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LineAnnotations = append(s.state.LineAnnotations, model.LineAnnotation{
		FilePath: filePath,
		Line:     line,
		Text:     text,
	})
	s.touch()
}

// SetAutoApproveStaged toggles the staged-auto-approve policy. Setting
// the value it already has is a no-op, so re-applying a config default
// on load does not dirty the session.
func (s *Session) SetAutoApproveStaged(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.AutoApproveStaged == on {
		return
	}
	s.state.AutoApproveStaged = on
	s.touch()
}

// SetStagedFiles replaces the externally-supplied set of staged file
// paths. This is engine input, not a review action, so the version
// counter is not bumped.
func (s *Session) SetStagedFiles(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = make(map[string]bool, len(paths))
	for _, p := range paths {
		s.staged[p] = true
	}
}

// SetHunks replaces the current hunk list after a re-parse. Existing
// hunk states are kept: ids are stable across re-parses of the same
// content, and states for vanished hunks are tolerated (they simply
// stop contributing to counts).
func (s *Session) SetHunks(hunks []model.Hunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexHunks(hunks)
}

// RecordClassification merges a classification result into the hunk
// states. Explicit decisions are never touched, previously assigned
// labels of re-classified hunks are replaced, and ids outside the
// current hunk set are ignored. The current hunk-id set is captured as
// the artifact's generation snapshot. Skipped ids are left as they
// were but still count as covered by the snapshot.
func (s *Session) RecordClassification(results map[string]model.LabelResult, skipped []string, via model.ClassifiedVia) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, res := range results {
		st := s.hunkState(id)
		if st == nil {
			continue
		}
		st.Label = append([]string(nil), res.Label...)
		st.Reasoning = res.Reasoning
		st.ClassifiedVia = via
	}
	s.state.Classification = &model.Classification{
		HunkIDs:     s.currentIDs(),
		GeneratedAt: s.now(),
	}
	s.touch()
}

// RecordGuide stores a new grouping artifact with the current hunk-id
// set as its snapshot. Groups without ids get one assigned.
func (s *Session) RecordGuide(groups []model.HunkGroup, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range groups {
		if groups[i].ID == "" {
			groups[i].ID = uuid.NewString()
		}
	}
	s.state.Guide = &model.Guide{
		Groups:      groups,
		Summary:     summary,
		HunkIDs:     s.currentIDs(),
		GeneratedAt: s.now(),
	}
	s.touch()
}

// RecordNarrative stores a new narrative artifact with its snapshot.
func (s *Session) RecordNarrative(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Narrative = &model.Narrative{
		Text:        text,
		HunkIDs:     s.currentIDs(),
		GeneratedAt: s.now(),
	}
	s.touch()
}

func (s *Session) currentIDs() []string {
	ids := make([]string, 0, len(s.hunks))
	for i := range s.hunks {
		ids = append(ids, s.hunks[i].ID)
	}
	sort.Strings(ids)
	return ids
}

// CurrentHunkIDs returns the sorted ids of the current hunk set.
func (s *Session) CurrentHunkIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIDs()
}

// Hunks returns a copy of the current hunk list.
func (s *Session) Hunks() []model.Hunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Hunk(nil), s.hunks...)
}

// Hunk looks up a current hunk by id.
func (s *Session) Hunk(id string) (model.Hunk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.byID[id]
	if !ok {
		return model.Hunk{}, false
	}
	return *h, true
}

// Version returns the state's mutation counter.
func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Version
}

// Dirty reports whether the state has been mutated since the session
// was constructed. A clean session holds exactly what was loaded, so
// persisting it again is redundant (and would collide with the
// on-disk version it came from).
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Version != s.loaded
}

// TrustList returns a copy of the active trust list.
func (s *Session) TrustList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.TrustList...)
}

// Notes returns the free-form review notes.
func (s *Session) Notes() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Notes
}

// Comparison returns the comparison under review.
func (s *Session) Comparison() model.Comparison {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Comparison
}

// Snapshot returns a deep copy of the review state for persistence or
// transport. The copy shares nothing with the live state.
func (s *Session) Snapshot() model.ReviewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *s.state
	cp.Hunks = make(map[string]*model.HunkState, len(s.state.Hunks))
	for id, st := range s.state.Hunks {
		c := *st
		c.Label = append([]string(nil), st.Label...)
		cp.Hunks[id] = &c
	}
	cp.TrustList = append([]string(nil), s.state.TrustList...)
	cp.LineAnnotations = append([]model.LineAnnotation(nil), s.state.LineAnnotations...)
	if s.state.Classification != nil {
		c := *s.state.Classification
		c.HunkIDs = append([]string(nil), c.HunkIDs...)
		cp.Classification = &c
	}
	if s.state.Guide != nil {
		g := *s.state.Guide
		g.HunkIDs = append([]string(nil), g.HunkIDs...)
		g.Groups = make([]model.HunkGroup, len(s.state.Guide.Groups))
		for i, grp := range s.state.Guide.Groups {
			grp.HunkIDs = append([]string(nil), grp.HunkIDs...)
			g.Groups[i] = grp
		}
		cp.Guide = &g
	}
	if s.state.Narrative != nil {
		n := *s.state.Narrative
		n.HunkIDs = append([]string(nil), n.HunkIDs...)
		cp.Narrative = &n
	}
	return cp
}
