package classify

import (
	"testing"

	"github.com/sprite-ai/vouch/internal/model"
)

func makeHunk(filePath string, lines ...model.DiffLine) model.Hunk {
	return model.Hunk{
		ID:          filePath + ":testhash",
		FilePath:    filePath,
		OldStart:    1,
		NewStart:    1,
		Lines:       lines,
		ContentHash: "testhash",
	}
}

func added(content string) model.DiffLine {
	return model.DiffLine{Type: model.LineAdded, Content: content, NewLine: 1}
}

func removed(content string) model.DiffLine {
	return model.DiffLine{Type: model.LineRemoved, Content: content, OldLine: 1}
}

func ctxLine(content string) model.DiffLine {
	return model.DiffLine{Type: model.LineContext, Content: content, OldLine: 1, NewLine: 1}
}

func wantLabel(t *testing.T, h model.Hunk, label string) {
	t.Helper()
	res, ok := classifyHunk(&h)
	if !ok {
		t.Fatalf("expected label %q, got no classification", label)
	}
	if len(res.Label) != 1 || res.Label[0] != label {
		t.Fatalf("expected label %q, got %v", label, res.Label)
	}
}

func wantNone(t *testing.T, h model.Hunk) {
	t.Helper()
	if res, ok := classifyHunk(&h); ok {
		t.Fatalf("expected no classification, got %v", res.Label)
	}
}

func TestClassifyMoved(t *testing.T) {
	h := makeHunk("src/old.go", removed("func foo() {}"))
	h.OldCount = 1
	h.MovePairID = "src/new.go:somehash"
	wantLabel(t, h, "move:code")
}

func TestMovedTakesPriorityOverLockfile(t *testing.T) {
	h := makeHunk("package-lock.json", added("{}"))
	h.MovePairID = "other:hash"
	h.OldCount = 1
	wantLabel(t, h, "move:code")
}

func TestClassifyLockfile(t *testing.T) {
	cases := []string{"package-lock.json", "some/path/yarn.lock", "Cargo.lock", "go.sum"}
	for _, p := range cases {
		h := makeHunk(p, added("content"))
		h.OldCount = 1
		wantLabel(t, h, "generated:lockfile")
	}

	h := makeHunk("src/main.go", added("func main() {}"))
	h.OldCount = 1
	wantNone(t, h)
}

func TestClassifyEmptyFile(t *testing.T) {
	wantLabel(t, makeHunk("__init__.py"), "file:added-empty")
	wantLabel(t, makeHunk("__init__.py", added(""), added("   "), added("")), "file:added-empty")

	// Existing file emptied out is not a new empty file.
	h := makeHunk("some_file.py", removed("old content"))
	h.OldCount = 1
	wantNone(t, h)

	// New file with real content.
	wantNone(t, makeHunk("notes.txt", added("some actual note")))
}

func TestClassifyWhitespace(t *testing.T) {
	h := makeHunk("src/main.go", added(""), added("   "), removed("  "))
	h.OldCount = 1
	wantLabel(t, h, "formatting:whitespace")

	h2 := makeHunk("src/main.go", ctxLine("x := 1"), added("  "), added(""))
	h2.OldCount = 1
	wantLabel(t, h2, "formatting:whitespace")
}

func TestClassifyLineLength(t *testing.T) {
	h := makeHunk("src/app.ts",
		removed("const result = foo(bar, baz, qux);"),
		added("const result ="),
		added("  foo(bar, baz, qux);"),
	)
	h.OldCount = 1
	wantLabel(t, h, "formatting:line-length")

	// Content actually changed.
	h2 := makeHunk("src/app.ts",
		removed("const result = foo(bar, baz);"),
		added("const result = foo(bar, qux);"),
	)
	h2.OldCount = 1
	wantNone(t, h2)

	// Additions only never wrap.
	h3 := makeHunk("src/app.ts", added("const x = 1;"))
	h3.OldCount = 1
	wantNone(t, h3)
}

func TestClassifyStyle(t *testing.T) {
	h := makeHunk("src/app.ts", removed("const x = 1"), added("const x = 1;"))
	h.OldCount = 1
	wantLabel(t, h, "formatting:style")

	h2 := makeHunk("src/app.js", removed("const x = 'hello'"), added(`const x = "hello"`))
	h2.OldCount = 1
	wantLabel(t, h2, "formatting:style")

	h3 := makeHunk("src/app.ts", removed("const x = 1;"), added("const x = 2;"))
	h3.OldCount = 1
	wantNone(t, h3)

	// Different number of removed and added lines cannot be paired.
	h4 := makeHunk("src/app.ts",
		removed("const x = 1"),
		added("const x = 1;"),
		added("const y = 2;"),
	)
	h4.OldCount = 1
	wantNone(t, h4)
}

func TestClassifyComments(t *testing.T) {
	h := makeHunk("src/main.go", added("// This is a comment"), added("// Another comment"))
	h.OldCount = 1
	wantLabel(t, h, "comments:added")

	h2 := makeHunk("script.py", removed("# Old comment"), removed("# Another old"))
	h2.OldCount = 1
	wantLabel(t, h2, "comments:removed")

	h3 := makeHunk("app.js", removed("// Old comment"), added("// New comment"))
	h3.OldCount = 1
	wantLabel(t, h3, "comments:modified")

	// Mixed with code.
	h4 := makeHunk("app.js", added("// Comment"), added("const x = 1;"))
	h4.OldCount = 1
	wantNone(t, h4)
}

func TestClassifyBlockComments(t *testing.T) {
	h := makeHunk("app.js",
		added("/* Start of comment"),
		added("   middle of comment"),
		added("   end of comment */"),
	)
	h.OldCount = 1
	wantLabel(t, h, "comments:added")
}

func TestClassifyImports(t *testing.T) {
	h := makeHunk("src/app.ts", added("import { Foo } from './foo';"))
	h.OldCount = 1
	wantLabel(t, h, "imports:added")

	h2 := makeHunk("main.py", removed("import os"), removed("from sys import argv"))
	h2.OldCount = 1
	wantLabel(t, h2, "imports:removed")

	h3 := makeHunk("index.js",
		removed("import { b } from './b';"),
		removed("import { a } from './a';"),
		added("import { a } from './a';"),
		added("import { b } from './b';"),
	)
	h3.OldCount = 2
	wantLabel(t, h3, "imports:reordered")

	h4 := makeHunk("index.js",
		removed("import { a } from './a';"),
		added("import { b } from './b';"),
	)
	h4.OldCount = 1
	wantLabel(t, h4, "imports:modified")

	h5 := makeHunk("main.c", added("#include <stdio.h>"))
	h5.OldCount = 1
	wantLabel(t, h5, "imports:added")

	// Import followed by code.
	h6 := makeHunk("app.ts",
		added("import { Foo } from './foo';"),
		added("const x = new Foo();"),
	)
	h6.OldCount = 1
	wantNone(t, h6)
}

func TestClassifyImportsMultiline(t *testing.T) {
	h := makeHunk("main.go",
		added("import ("),
		added(`    "fmt"`),
		added(`    "os"`),
		added(")"),
	)
	h.OldCount = 1
	wantLabel(t, h, "imports:added")

	h2 := makeHunk("main.py",
		removed("from plain.models import ("),
		removed("    query_utils,"),
		removed("    sql,"),
		removed(")"),
		added("from plain.models import query_utils"),
	)
	h2.OldCount = 4
	wantLabel(t, h2, "imports:modified")

	// Multi-line import followed by code.
	h3 := makeHunk("main.py",
		added("from os import ("),
		added("    path,"),
		added(")"),
		added("x = path.join('a', 'b')"),
	)
	h3.OldCount = 1
	wantNone(t, h3)
}

func TestStatic(t *testing.T) {
	hunks := []model.Hunk{
		makeHunk("package-lock.json", added("{}")),
		makeHunk("src/main.go", added("func main() {}")),
		makeHunk("src/lib.rs", added("use std::io;")),
	}
	for i := range hunks {
		hunks[i].OldCount = 1
		hunks[i].ID = hunks[i].FilePath + ":testhash"
	}

	results := Static(hunks)
	if len(results) != 2 {
		t.Fatalf("expected 2 classifications, got %d", len(results))
	}
	if _, ok := results["package-lock.json:testhash"]; !ok {
		t.Error("lockfile hunk not classified")
	}
	if _, ok := results["src/lib.rs:testhash"]; !ok {
		t.Error("import hunk not classified")
	}
	if _, ok := results["src/main.go:testhash"]; ok {
		t.Error("code hunk should not be classified")
	}
}

func TestContextOnlyHunkNotClassified(t *testing.T) {
	h := makeHunk("src/main.go", ctxLine("x := 1"))
	h.OldCount = 1
	wantNone(t, h)
}
