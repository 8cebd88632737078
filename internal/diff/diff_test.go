package diff

import (
	"strings"
	"testing"

	"github.com/sprite-ai/vouch/internal/model"
)

const sampleDiff = `diff --git a/hello.go b/hello.go
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/hello.go
@@ -0,0 +1,11 @@
+package main
+
+import "fmt"
+
+func main() {
+	fmt.Println("hello")
+}
+
+func add(a, b int) int {
+	return a + b
+}
diff --git a/readme.md b/readme.md
index abc1234..def5678 100644
--- a/readme.md
+++ b/readme.md
@@ -1,3 +1,4 @@
 # Project

-Old description
+New description
+Added line
`

const moveDiff = `diff --git a/old.go b/old.go
index abc1234..def5678 100644
--- a/old.go
+++ b/old.go
@@ -1,3 +0,0 @@
-func hello() {
-	println("hello")
-}
diff --git a/new.go b/new.go
index abc1234..def5678 100644
--- a/new.go
+++ b/new.go
@@ -0,0 +1,3 @@
+func hello() {
+	println("hello")
+}
`

func TestParse(t *testing.T) {
	ds, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(ds.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(ds.Files))
	}

	f0 := ds.Files[0]
	if !f0.IsNew {
		t.Error("expected hello.go to be new")
	}
	if f0.Path != "hello.go" {
		t.Errorf("expected path 'hello.go', got %q", f0.Path)
	}
	if f0.Status() != "added" {
		t.Errorf("expected status 'added', got %q", f0.Status())
	}
	if len(f0.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(f0.Hunks))
	}

	f1 := ds.Files[1]
	if f1.Status() != "modified" {
		t.Errorf("expected status 'modified', got %q", f1.Status())
	}

	files, added, deleted := ds.Stats()
	if files != 2 || added != 13 || deleted != 1 {
		t.Errorf("stats = (%d, %d, %d), want (2, 13, 1)", files, added, deleted)
	}
}

func TestParseEmpty(t *testing.T) {
	ds, err := Parse("")
	if err != nil {
		t.Fatalf("Parse empty failed: %v", err)
	}
	if len(ds.Files) != 0 {
		t.Errorf("expected 0 files, got %d", len(ds.Files))
	}
}

func TestHunkIDStableAcrossReparses(t *testing.T) {
	ds1, err := Parse(sampleDiff)
	if err != nil {
		t.Fatal(err)
	}
	ds2, err := Parse(sampleDiff)
	if err != nil {
		t.Fatal(err)
	}

	h1 := ds1.Files[0].Hunks[0]
	h2 := ds2.Files[0].Hunks[0]
	if h1.ID != h2.ID || h1.ContentHash != h2.ContentHash {
		t.Errorf("hunk id not stable: %q vs %q", h1.ID, h2.ID)
	}
	if !strings.HasPrefix(h1.ID, "hello.go:") {
		t.Errorf("id %q should start with the file path", h1.ID)
	}
	if len(h1.ContentHash) != 16 {
		t.Errorf("content hash %q should be 16 hex chars", h1.ContentHash)
	}
}

func TestHunkLineNumbers(t *testing.T) {
	ds, err := Parse(sampleDiff)
	if err != nil {
		t.Fatal(err)
	}

	h := ds.Files[1].Hunks[0]
	if h.OldStart != 1 || h.OldCount != 3 || h.NewStart != 1 || h.NewCount != 4 {
		t.Errorf("ranges = -%d,%d +%d,%d", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
	}

	// Context line carries both numbers, added only the new one,
	// removed only the old one.
	if h.Lines[0].Type != model.LineContext || h.Lines[0].OldLine != 1 || h.Lines[0].NewLine != 1 {
		t.Errorf("line 0 = %+v", h.Lines[0])
	}
	var removed, added *model.DiffLine
	for i := range h.Lines {
		switch h.Lines[i].Type {
		case model.LineRemoved:
			removed = &h.Lines[i]
		case model.LineAdded:
			if added == nil {
				added = &h.Lines[i]
			}
		}
	}
	if removed == nil || removed.OldLine != 3 || removed.NewLine != 0 {
		t.Errorf("removed line = %+v", removed)
	}
	if added == nil || added.NewLine != 3 || added.OldLine != 0 {
		t.Errorf("added line = %+v", added)
	}
}

func TestDetectMovePairs(t *testing.T) {
	ds, err := Parse(moveDiff)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(ds.Files))
	}

	src := ds.Files[0].Hunks[0]
	dst := ds.Files[1].Hunks[0]
	if src.MovePairID != dst.ID {
		t.Errorf("source MovePairID = %q, want %q", src.MovePairID, dst.ID)
	}
	if dst.MovePairID != src.ID {
		t.Errorf("dest MovePairID = %q, want %q", dst.MovePairID, src.ID)
	}
}

func TestMovePairsStaySymmetricWithMultipleCandidates(t *testing.T) {
	// One deletion whose content reappears in two files: exactly one
	// pair forms and both sides point at each other. A hunk must never
	// hold a MovePairID whose counterpart points elsewhere.
	fanOut := `diff --git a/old.go b/old.go
index abc1234..def5678 100644
--- a/old.go
+++ b/old.go
@@ -1,3 +0,0 @@
-func hello() {
-	println("hello")
-}
diff --git a/a.go b/a.go
index abc1234..def5678 100644
--- a/a.go
+++ b/a.go
@@ -0,0 +1,3 @@
+func hello() {
+	println("hello")
+}
diff --git a/b.go b/b.go
index abc1234..def5678 100644
--- a/b.go
+++ b/b.go
@@ -0,0 +1,3 @@
+func hello() {
+	println("hello")
+}
`
	ds, err := Parse(fanOut)
	if err != nil {
		t.Fatal(err)
	}

	byID := make(map[string]model.Hunk)
	for _, h := range ds.Hunks() {
		byID[h.ID] = h
	}
	paired := 0
	for _, h := range ds.Hunks() {
		if h.MovePairID == "" {
			continue
		}
		paired++
		other, ok := byID[h.MovePairID]
		if !ok {
			t.Fatalf("hunk %s links to unknown hunk %s", h.ID, h.MovePairID)
		}
		if other.MovePairID != h.ID {
			t.Errorf("dangling link: %s -> %s -> %s", h.ID, other.ID, other.MovePairID)
		}
	}
	if paired != 2 {
		t.Errorf("expected exactly one pair (2 linked hunks), got %d", paired)
	}
}

func TestMovePairsRequireDifferentFiles(t *testing.T) {
	// Same-file deletion and addition must not pair up.
	sameFile := `diff --git a/f.go b/f.go
index abc1234..def5678 100644
--- a/f.go
+++ b/f.go
@@ -1,2 +0,0 @@
-line one
-line two
@@ -10,0 +8,2 @@
+line one
+line two
`
	ds, err := Parse(sameFile)
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range ds.Hunks() {
		if h.MovePairID != "" {
			t.Errorf("hunk %s paired within the same file", h.ID)
		}
	}
}

func TestUntrackedHunk(t *testing.T) {
	h := UntrackedHunk("src/new_file.go")
	if h.FilePath != "src/new_file.go" {
		t.Errorf("file path = %q", h.FilePath)
	}
	if !strings.HasPrefix(h.ID, "src/new_file.go:") {
		t.Errorf("id = %q", h.ID)
	}
	if len(h.Lines) != 1 || h.Lines[0].Type != model.LineAdded {
		t.Errorf("lines = %+v", h.Lines)
	}
	// Deterministic.
	if h.ID != UntrackedHunk("src/new_file.go").ID {
		t.Error("untracked hunk id not deterministic")
	}
}

func TestFileTree(t *testing.T) {
	ds, err := Parse(sampleDiff)
	if err != nil {
		t.Fatal(err)
	}
	entries := FileTree(ds)
	if len(entries) != 2 {
		t.Fatalf("expected 2 root entries, got %d", len(entries))
	}
	// Sorted by name: hello.go before readme.md.
	if entries[0].Name != "hello.go" || entries[1].Name != "readme.md" {
		t.Errorf("roots = %q, %q", entries[0].Name, entries[1].Name)
	}
	if entries[0].Status != "added" {
		t.Errorf("hello.go status = %q", entries[0].Status)
	}
}

func TestFileTreeNested(t *testing.T) {
	nested := `diff --git a/pkg/sub/x.go b/pkg/sub/x.go
index abc1234..def5678 100644
--- a/pkg/sub/x.go
+++ b/pkg/sub/x.go
@@ -1,1 +1,1 @@
-old
+new
`
	ds, err := Parse(nested)
	if err != nil {
		t.Fatal(err)
	}
	entries := FileTree(ds)
	if len(entries) != 1 || !entries[0].IsDir || entries[0].Path != "pkg" {
		t.Fatalf("root = %+v", entries)
	}
	sub := entries[0].Children[0]
	if !sub.IsDir || sub.Path != "pkg/sub" || sub.Status != "" {
		t.Fatalf("sub = %+v", sub)
	}
	leaf := sub.Children[0]
	if leaf.IsDir || leaf.Path != "pkg/sub/x.go" || leaf.Status != "modified" {
		t.Fatalf("leaf = %+v", leaf)
	}
}
