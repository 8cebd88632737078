package review

import (
	"testing"

	"github.com/sprite-ai/vouch/internal/model"
)

func testHunks() []model.Hunk {
	return []model.Hunk{
		{ID: "a.go:h1", FilePath: "a.go", ContentHash: "h1"},
		{ID: "a.go:h2", FilePath: "a.go", ContentHash: "h2"},
		{ID: "b/c.go:h3", FilePath: "b/c.go", ContentHash: "h3"},
	}
}

func newTestSession() *Session {
	return New(model.NewComparison("main", "feature"), testHunks())
}

func TestResolvePriorityOrder(t *testing.T) {
	s := newTestSession()
	s.RecordClassification(map[string]model.LabelResult{
		"a.go:h1": {Label: []string{"formatting:whitespace"}},
	}, nil, model.ViaStatic)
	s.SetTrustList([]string{"formatting:*"})

	// Trusted via pattern match.
	if got := s.Resolve("a.go:h1"); got != model.StatusTrusted {
		t.Fatalf("Resolve = %s, want trusted", got)
	}
	if !s.IsReviewed("a.go:h1") {
		t.Error("trusted hunk should be reviewed")
	}

	// Explicit reject overrides trust.
	s.Reject("a.go:h1")
	if got := s.Resolve("a.go:h1"); got != model.StatusRejected {
		t.Fatalf("Resolve = %s, want rejected", got)
	}

	// Approve overwrites the prior explicit decision.
	s.Approve("a.go:h1")
	if got := s.Resolve("a.go:h1"); got != model.StatusApproved {
		t.Fatalf("Resolve = %s, want approved", got)
	}

	// Unapprove falls back to the derived trust state, not pending.
	s.Unapprove("a.go:h1")
	if got := s.Resolve("a.go:h1"); got != model.StatusTrusted {
		t.Fatalf("Resolve = %s, want trusted after unapprove", got)
	}

	// Removing the pattern finally makes it pending.
	s.SetTrustList(nil)
	if got := s.Resolve("a.go:h1"); got != model.StatusPending {
		t.Fatalf("Resolve = %s, want pending", got)
	}
}

func TestResolveStagedAutoApprove(t *testing.T) {
	s := newTestSession()
	s.SetStagedFiles([]string{"a.go"})

	// Policy off: staged files stay pending.
	if got := s.Resolve("a.go:h1"); got != model.StatusPending {
		t.Fatalf("Resolve = %s, want pending with policy off", got)
	}

	s.SetAutoApproveStaged(true)
	if got := s.Resolve("a.go:h1"); got != model.StatusStagedAutoApproved {
		t.Fatalf("Resolve = %s, want staged-auto-approved", got)
	}
	// Unstaged file is unaffected.
	if got := s.Resolve("b/c.go:h3"); got != model.StatusPending {
		t.Fatalf("Resolve = %s, want pending for unstaged file", got)
	}

	// Trust outranks the staged rule.
	s.RecordClassification(map[string]model.LabelResult{
		"a.go:h1": {Label: []string{"imports:added"}},
	}, nil, model.ViaStatic)
	s.SetTrustList([]string{"imports:*"})
	if got := s.Resolve("a.go:h1"); got != model.StatusTrusted {
		t.Fatalf("Resolve = %s, want trusted over staged", got)
	}

	// Explicit decision outranks both.
	s.SaveForLater("a.go:h1")
	if got := s.Resolve("a.go:h1"); got != model.StatusSavedForLater {
		t.Fatalf("Resolve = %s, want saved_for_later", got)
	}
}

func TestResolveIsTotal(t *testing.T) {
	s := newTestSession()
	s.SetTrustList([]string{"*"})
	s.SetAutoApproveStaged(true)
	s.SetStagedFiles([]string{"a.go", "b/c.go"})
	s.RecordClassification(map[string]model.LabelResult{
		"a.go:h1": {Label: []string{"imports:added"}},
	}, nil, model.ViaAI)
	s.Reject("a.go:h2")

	for id, status := range s.ResolveAll() {
		if status.String() == "unknown" {
			t.Errorf("hunk %s resolved to unknown status", id)
		}
	}
	// An id that was never seen resolves to pending, not an error.
	if got := s.Resolve("missing:id"); got != model.StatusPending {
		t.Errorf("Resolve(unknown) = %s, want pending", got)
	}
}

func TestMutationsIgnoreUnknownIDs(t *testing.T) {
	s := newTestSession()
	s.Approve("nope:missing", "a.go:h1")

	if got := s.Resolve("a.go:h1"); got != model.StatusApproved {
		t.Fatalf("known id should be approved, got %s", got)
	}
	snap := s.Snapshot()
	if _, ok := snap.Hunks["nope:missing"]; ok {
		t.Error("unknown id should not create a hunk state")
	}
}

func TestMutationsAreIdempotent(t *testing.T) {
	s := newTestSession()

	s.Approve("a.go:h1")
	first := s.Resolve("a.go:h1")
	s.Approve("a.go:h1")
	if got := s.Resolve("a.go:h1"); got != first {
		t.Errorf("repeated approve changed status: %s -> %s", first, got)
	}

	// unapprove then approve equals approve alone.
	s.Unapprove("a.go:h1")
	s.Approve("a.go:h1")
	if got := s.Resolve("a.go:h1"); got != model.StatusApproved {
		t.Errorf("unapprove+approve = %s, want approved", got)
	}
}

func TestEveryMutationBumpsVersion(t *testing.T) {
	s := newTestSession()
	v := s.Version()

	steps := []func(){
		func() { s.Approve("a.go:h1") },
		func() { s.Reject("a.go:h2") },
		func() { s.SaveForLater("b/c.go:h3") },
		func() { s.Unapprove("a.go:h1") },
		func() { s.SetTrustList([]string{"imports:*"}) },
		func() { s.AddTrustPattern("comments:*") },
		func() { s.RemoveTrustPattern("comments:*") },
		func() { s.SetNotes("n") },
		func() { s.AddLineAnnotation("a.go", 3, "check this") },
		func() { s.SetAutoApproveStaged(true) },
		func() { s.RecordGuide([]model.HunkGroup{{Title: "g"}}, "") },
		func() { s.RecordNarrative("walkthrough") },
	}
	for i, step := range steps {
		step()
		next := s.Version()
		if next != v+1 {
			t.Fatalf("step %d: version %d -> %d, want +1", i, v, next)
		}
		v = next
	}
}

func TestDirtyTracksLoadedVersion(t *testing.T) {
	s := newTestSession()
	if s.Dirty() {
		t.Fatal("fresh session should be clean")
	}
	s.Approve("a.go:h1")
	if !s.Dirty() {
		t.Fatal("session should be dirty after a decision")
	}

	// A session rebuilt from persisted state starts clean, even at a
	// non-zero version.
	snap := s.Snapshot()
	reloaded := NewSession(&snap, testHunks())
	if reloaded.Version() == 0 {
		t.Fatal("snapshot should carry a bumped version")
	}
	if reloaded.Dirty() {
		t.Error("reloaded session should be clean until mutated")
	}
	// Engine inputs are not review actions and must not dirty it.
	reloaded.SetHunks(testHunks())
	reloaded.SetStagedFiles([]string{"a.go"})
	if reloaded.Dirty() {
		t.Error("SetHunks/SetStagedFiles must not dirty the session")
	}
	// Re-applying the policy value it already has is a no-op.
	reloaded.SetAutoApproveStaged(false)
	if reloaded.Dirty() {
		t.Error("unchanged policy must not dirty the session")
	}
	reloaded.Reject("a.go:h2")
	if !reloaded.Dirty() {
		t.Error("decision on reloaded session should dirty it")
	}
}

func TestSetTrustListCollapsesDuplicates(t *testing.T) {
	s := newTestSession()
	s.SetTrustList([]string{"imports:*", "imports:*", "comments:*"})
	if got := s.TrustList(); len(got) != 2 {
		t.Errorf("trust list = %v, want 2 entries", got)
	}
}

func TestRecordClassificationPreservesDecisions(t *testing.T) {
	s := newTestSession()
	s.Reject("a.go:h1")
	s.RecordClassification(map[string]model.LabelResult{
		"a.go:h1":    {Label: []string{"formatting:whitespace"}, Reasoning: "ws only"},
		"missing:id": {Label: []string{"imports:added"}},
	}, []string{"a.go:h2"}, model.ViaAI)

	// Labels landed but the explicit decision still wins.
	if got := s.Resolve("a.go:h1"); got != model.StatusRejected {
		t.Fatalf("Resolve = %s, want rejected preserved", got)
	}
	snap := s.Snapshot()
	st := snap.Hunks["a.go:h1"]
	if st == nil || len(st.Label) != 1 || st.Label[0] != "formatting:whitespace" {
		t.Fatalf("labels not recorded: %+v", st)
	}
	if st.ClassifiedVia != model.ViaAI {
		t.Errorf("classifiedVia = %q, want ai", st.ClassifiedVia)
	}
	if _, ok := snap.Hunks["missing:id"]; ok {
		t.Error("results for unknown hunks must be dropped")
	}
	if snap.Classification == nil || len(snap.Classification.HunkIDs) != 3 {
		t.Errorf("classification snapshot = %+v, want all 3 current ids", snap.Classification)
	}
}

func TestSetHunksKeepsStates(t *testing.T) {
	s := newTestSession()
	s.Approve("a.go:h1")

	// Re-parse drops one hunk and adds a new one.
	s.SetHunks([]model.Hunk{
		{ID: "a.go:h1", FilePath: "a.go", ContentHash: "h1"},
		{ID: "d.go:h4", FilePath: "d.go", ContentHash: "h4"},
	})

	if got := s.Resolve("a.go:h1"); got != model.StatusApproved {
		t.Errorf("decision lost across SetHunks: %s", got)
	}
	c := s.Counts()
	if c.Total != 2 || c.Approved != 1 || c.Pending != 1 {
		t.Errorf("counts = %+v", c)
	}
	// The vanished hunk's state is tolerated but not counted.
	snap := s.Snapshot()
	if _, ok := snap.Hunks["a.go:h1"]; !ok {
		t.Error("state for kept hunk missing")
	}
}

func TestCounts(t *testing.T) {
	s := newTestSession()
	s.Approve("a.go:h1")
	s.RecordClassification(map[string]model.LabelResult{
		"a.go:h2": {Label: []string{"imports:added"}},
	}, nil, model.ViaStatic)
	s.SetTrustList([]string{"imports:*"})

	c := s.Counts()
	if c.Total != 3 || c.Approved != 1 || c.Trusted != 1 || c.Pending != 1 {
		t.Errorf("counts = %+v", c)
	}
	if c.Reviewed() != 2 {
		t.Errorf("Reviewed() = %d, want 2", c.Reviewed())
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestSession()
	s.RecordClassification(map[string]model.LabelResult{
		"a.go:h1": {Label: []string{"imports:added"}},
	}, nil, model.ViaStatic)

	snap := s.Snapshot()
	snap.Hunks["a.go:h1"].Label[0] = "mutated"
	snap.TrustList = append(snap.TrustList, "x")

	fresh := s.Snapshot()
	if fresh.Hunks["a.go:h1"].Label[0] != "imports:added" {
		t.Error("snapshot mutation leaked into session state")
	}
}
