package tree

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/sprite-ai/vouch/internal/model"
)

func file(name, path, status string) model.FileEntry {
	return model.FileEntry{Name: name, Path: path, Status: status}
}

func dir(name, path string, children ...model.FileEntry) model.FileEntry {
	return model.FileEntry{Name: name, Path: path, IsDir: true, Children: children}
}

// a/
//   b/
//     c.ts      (2 pending)
// d.go          (1 approved)
// e.go          (unchanged)
func fixtureEntries() []model.FileEntry {
	return []model.FileEntry{
		dir("a", "a",
			dir("b", "a/b",
				file("c.ts", "a/b/c.ts", "modified"),
			),
		),
		file("d.go", "d.go", "modified"),
		file("e.go", "e.go", ""),
	}
}

func fixtureStatuses() map[string][]model.Status {
	return map[string][]model.Status{
		"a/b/c.ts": {model.StatusPending, model.StatusPending},
		"d.go":     {model.StatusApproved},
	}
}

func TestProcessChangesFiltersUnchanged(t *testing.T) {
	out := Process(fixtureEntries(), fixtureStatuses(), ViewChanges)

	if Find(out, "e.go") != nil {
		t.Error("unchanged file should be filtered from changes view")
	}
	if Find(out, "d.go") == nil {
		t.Error("changed file missing from changes view")
	}
}

func TestProcessAllExcludesDeleted(t *testing.T) {
	entries := []model.FileEntry{
		file("gone.go", "gone.go", "deleted"),
		file("kept.go", "kept.go", ""),
	}
	out := Process(entries, nil, ViewAll)
	if Find(out, "gone.go") != nil {
		t.Error("deleted entry should be excluded from all view")
	}
	if Find(out, "kept.go") == nil {
		t.Error("unchanged entry should be included in all view")
	}
}

func TestDirectoryAggregation(t *testing.T) {
	entries := []model.FileEntry{
		dir("pkg", "pkg",
			file("x.go", "pkg/x.go", "modified"),
			file("y.go", "pkg/y.go", "modified"),
		),
	}
	statuses := map[string][]model.Status{
		"pkg/x.go": {model.StatusPending, model.StatusPending},
		"pkg/y.go": {model.StatusApproved},
	}
	out := Process(entries, statuses, ViewChanges)
	if len(out) != 1 {
		t.Fatalf("got %d roots, want 1", len(out))
	}
	got := out[0].Counts
	want := StatusCounts{Pending: 2, Approved: 1, Total: 3}
	if got != want {
		t.Errorf("aggregated counts = %+v, want %+v", got, want)
	}

	// The directory total equals the exact sum of its children.
	sum := StatusCounts{}
	for _, c := range out[0].Children {
		sum.add(c.Counts)
	}
	if sum != got {
		t.Errorf("children sum %+v != directory counts %+v", sum, got)
	}
}

func TestAggregationOrderIndependent(t *testing.T) {
	entries := []model.FileEntry{
		dir("pkg", "pkg",
			file("b.go", "pkg/b.go", "modified"),
			file("a.go", "pkg/a.go", "modified"),
			dir("sub", "pkg/sub",
				file("z.go", "pkg/sub/z.go", "modified"),
			),
		),
		file("top.go", "top.go", "modified"),
	}
	statuses := map[string][]model.Status{
		"pkg/a.go":     {model.StatusPending},
		"pkg/b.go":     {model.StatusTrusted},
		"pkg/sub/z.go": {model.StatusRejected},
		"top.go":       {model.StatusApproved},
	}

	base := Process(entries, statuses, ViewChanges)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]model.FileEntry(nil), entries...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		// Shuffle one level of children too.
		for i := range shuffled {
			kids := append([]model.FileEntry(nil), shuffled[i].Children...)
			rng.Shuffle(len(kids), func(a, b int) { kids[a], kids[b] = kids[b], kids[a] })
			shuffled[i].Children = kids
		}

		got := Process(shuffled, statuses, ViewChanges)
		if !reflect.DeepEqual(got, base) {
			t.Fatalf("trial %d: shuffled input produced a different tree", trial)
		}
	}
}

func TestZeroHunkChangeStaysVisible(t *testing.T) {
	// Pure rename: raw status but no hunks.
	entries := []model.FileEntry{file("moved.go", "moved.go", "renamed")}
	out := Process(entries, nil, ViewChanges)
	if len(out) != 1 {
		t.Fatalf("renamed file invisible in changes view")
	}
	if !out[0].HasChanges || out[0].Counts.Total != 0 {
		t.Errorf("entry = %+v", out[0])
	}
}

func TestCompaction(t *testing.T) {
	out := Process(fixtureEntries(), fixtureStatuses(), ViewChanges)

	var node *Entry
	for _, e := range out {
		if e.IsDir {
			node = e
		}
	}
	if node == nil {
		t.Fatal("no directory in output")
	}
	if node.DisplayName != "a/b" {
		t.Errorf("DisplayName = %q, want %q", node.DisplayName, "a/b")
	}
	if !reflect.DeepEqual(node.CompactedPaths, []string{"a", "a/b"}) {
		t.Errorf("CompactedPaths = %v", node.CompactedPaths)
	}
	if node.FileCount != 1 {
		t.Errorf("FileCount = %d, want 1", node.FileCount)
	}
	if node.Path != "a/b" {
		t.Errorf("Path = %q, want a/b", node.Path)
	}
	// Navigation by original path still works.
	if Find(out, "a") != node || Find(out, "a/b") != node {
		t.Error("folded paths should resolve to the compacted node")
	}
}

func TestCompactionStopsAtOwnStatus(t *testing.T) {
	// a/b is itself renamed: the chain must stop before folding it.
	entries := []model.FileEntry{
		dir("a", "a",
			model.FileEntry{Name: "b", Path: "a/b", IsDir: true, Status: "renamed", Children: []model.FileEntry{
				file("c.go", "a/b/c.go", "modified"),
			}},
		),
	}
	statuses := map[string][]model.Status{"a/b/c.go": {model.StatusPending}}
	out := Process(entries, statuses, ViewChanges)

	if len(out) != 1 || out[0].DisplayName != "a" {
		t.Fatalf("roots = %+v", out)
	}
	if len(out[0].Children) != 1 || out[0].Children[0].DisplayName != "b" {
		t.Errorf("directory with own status was folded")
	}
}

func TestCompactionStopsAtSymlink(t *testing.T) {
	entries := []model.FileEntry{
		dir("a", "a",
			model.FileEntry{Name: "link", Path: "a/link", IsDir: true, IsSymlink: true, Status: "modified"},
		),
	}
	out := Process(entries, nil, ViewChanges)
	if len(out) != 1 || len(out[0].Children) != 1 {
		t.Fatalf("unexpected shape: %+v", out)
	}
	if out[0].Children[0].DisplayName != "link" {
		t.Error("symlink directory must not be folded")
	}
}

func TestCompactionPreservesFileCount(t *testing.T) {
	entries := []model.FileEntry{
		dir("x", "x",
			dir("y", "x/y",
				file("1.go", "x/y/1.go", "modified"),
				file("2.go", "x/y/2.go", "modified"),
			),
		),
	}
	statuses := map[string][]model.Status{
		"x/y/1.go": {model.StatusPending},
		"x/y/2.go": {model.StatusPending},
	}
	out := Process(entries, statuses, ViewChanges)

	total := 0
	for _, e := range Flatten(out) {
		if !e.IsDir {
			total += e.FileCount
		}
	}
	if total != 2 {
		t.Errorf("leaf FileCount sum = %d, want 2", total)
	}
	if out[0].FileCount != 2 {
		t.Errorf("root FileCount = %d, want 2", out[0].FileCount)
	}
}

func TestSymlinkDirLeafInChangesMode(t *testing.T) {
	link := model.FileEntry{
		Name: "vendor", Path: "vendor", IsDir: true, IsSymlink: true, Status: "modified",
		Children: []model.FileEntry{file("inner.go", "vendor/inner.go", "modified")},
	}

	changes := Process([]model.FileEntry{link}, nil, ViewChanges)
	if len(changes) != 1 || len(changes[0].Children) != 0 {
		t.Errorf("symlinked dir should be a leaf in changes mode: %+v", changes[0])
	}

	all := Process([]model.FileEntry{link}, nil, ViewAll)
	if len(all) != 1 || len(all[0].Children) != 1 {
		t.Errorf("symlinked dir should stay expandable in all mode")
	}
}

func TestSplitSections(t *testing.T) {
	entries := []model.FileEntry{
		dir("pkg", "pkg",
			file("pending.go", "pkg/pending.go", "modified"),
			file("done.go", "pkg/done.go", "modified"),
			file("mixed.go", "pkg/mixed.go", "modified"),
		),
		file("renamed.go", "renamed.go", "renamed"),
	}
	statuses := map[string][]model.Status{
		"pkg/pending.go": {model.StatusPending},
		"pkg/done.go":    {model.StatusTrusted},
		"pkg/mixed.go":   {model.StatusPending, model.StatusApproved},
	}

	s := Split(entries, statuses)

	// Needs review: pending.go, mixed.go (partial), renamed.go (zero hunks).
	for _, path := range []string{"pkg/pending.go", "pkg/mixed.go", "renamed.go"} {
		if Find(s.NeedsReview, path) == nil {
			t.Errorf("%s missing from needs-review", path)
		}
	}
	if Find(s.NeedsReview, "pkg/done.go") != nil {
		t.Error("fully reviewed file should not be in needs-review")
	}

	// Reviewed: done.go and mixed.go.
	for _, path := range []string{"pkg/done.go", "pkg/mixed.go"} {
		if Find(s.Reviewed, path) == nil {
			t.Errorf("%s missing from reviewed", path)
		}
	}
	if Find(s.Reviewed, "renamed.go") != nil {
		t.Error("zero-hunk rename should not be in reviewed section")
	}

	// Ancestry preserved: pkg appears in both sections with counts
	// re-aggregated over the surviving children only.
	needsPkg := Find(s.NeedsReview, "pkg")
	if needsPkg == nil {
		t.Fatal("pkg missing from needs-review")
	}
	if needsPkg.Counts.Total != 3 || needsPkg.Counts.Pending != 2 {
		t.Errorf("needs-review pkg counts = %+v", needsPkg.Counts)
	}
	reviewedPkg := Find(s.Reviewed, "pkg")
	if reviewedPkg == nil {
		t.Fatal("pkg missing from reviewed")
	}
	if reviewedPkg.Counts.Reviewed() != 2 {
		t.Errorf("reviewed pkg counts = %+v", reviewedPkg.Counts)
	}
}

func TestSiblingSizingHints(t *testing.T) {
	entries := []model.FileEntry{
		dir("big", "big",
			file("1.go", "big/1.go", "modified"),
			file("2.go", "big/2.go", "modified"),
			file("3.go", "big/3.go", "modified"),
		),
		dir("small", "small",
			file("only.go", "small/only.go", "modified"),
		),
	}
	statuses := map[string][]model.Status{
		"big/1.go":      {model.StatusPending},
		"big/2.go":      {model.StatusPending},
		"big/3.go":      {model.StatusPending},
		"small/only.go": {model.StatusPending},
	}
	out := Process(entries, statuses, ViewChanges)
	if len(out) != 2 {
		t.Fatalf("got %d roots", len(out))
	}
	for _, e := range out {
		if e.MaxSiblingFiles != 3 {
			t.Errorf("%s MaxSiblingFiles = %d, want 3", e.Path, e.MaxSiblingFiles)
		}
	}
}

func TestFlattenOrder(t *testing.T) {
	out := Process(fixtureEntries(), fixtureStatuses(), ViewChanges)
	flat := Flatten(out)

	// Directories sort before files at each level; depth-first walk.
	if len(flat) < 3 {
		t.Fatalf("flat = %d entries", len(flat))
	}
	if !flat[0].IsDir {
		t.Errorf("first entry should be the compacted directory, got %q", flat[0].Path)
	}
	if flat[1].Path != "a/b/c.ts" {
		t.Errorf("second entry = %q, want a/b/c.ts", flat[1].Path)
	}
}
