package classify

import (
	"path"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"

	"github.com/sprite-ai/vouch/internal/diff"
	"github.com/sprite-ai/vouch/internal/model"
)

func classifyMoved(h *model.Hunk) (model.LabelResult, bool) {
	if h.MovePairID == "" {
		return model.LabelResult{}, false
	}
	return model.LabelResult{
		Label:     []string{"move:code"},
		Reasoning: "Hunk is part of a move pair (identical content moved between files)",
	}, true
}

var lockfileNames = map[string]bool{
	"package-lock.json":  true,
	"yarn.lock":          true,
	"pnpm-lock.yaml":     true,
	"Cargo.lock":         true,
	"Gemfile.lock":       true,
	"poetry.lock":        true,
	"go.sum":             true,
	"go.mod":             true,
	"composer.lock":      true,
	"Pipfile.lock":       true,
	"bun.lockb":          true,
	"bun.lock":           true,
	"flake.lock":         true,
	"packages.lock.json": true,
	"paket.lock":         true,
	"pdm.lock":           true,
	"uv.lock":            true,
}

func classifyLockfile(h *model.Hunk) (model.LabelResult, bool) {
	if !lockfileNames[path.Base(h.FilePath)] {
		return model.LabelResult{}, false
	}
	return model.LabelResult{
		Label:     []string{"generated:lockfile"},
		Reasoning: "File is a package manager lockfile",
	}, true
}

func classifyEmptyFile(h *model.Hunk) (model.LabelResult, bool) {
	if h.OldCount != 0 {
		return model.LabelResult{}, false
	}
	for _, l := range h.Lines {
		if l.Type != model.LineAdded || strings.TrimSpace(l.Content) != "" {
			return model.LabelResult{}, false
		}
	}
	return model.LabelResult{
		Label:     []string{"file:added-empty"},
		Reasoning: "New empty file (no content or whitespace only)",
	}, true
}

func classifyWhitespace(h *model.Hunk) (model.LabelResult, bool) {
	changed := h.ChangedLines()
	if len(changed) == 0 {
		return model.LabelResult{}, false
	}
	for _, l := range changed {
		if strings.TrimSpace(l.Content) != "" {
			return model.LabelResult{}, false
		}
	}
	return model.LabelResult{
		Label:     []string{"formatting:whitespace"},
		Reasoning: "All changed lines are empty or whitespace-only",
	}, true
}

func classifyLineLength(h *model.Hunk) (model.LabelResult, bool) {
	removed, added := splitChanged(h.ChangedLines())
	if len(removed) == 0 || len(added) == 0 {
		return model.LabelResult{}, false
	}

	// Wrapping preserves content: joining each side and collapsing
	// whitespace must yield the same string.
	rn := collapseWhitespace(strings.Join(removed, " "))
	an := collapseWhitespace(strings.Join(added, " "))
	if rn == "" || rn != an {
		return model.LabelResult{}, false
	}
	return model.LabelResult{
		Label:     []string{"formatting:line-length"},
		Reasoning: "Code wrapped or unwrapped across lines (identical content after joining)",
	}, true
}

func classifyStyle(h *model.Hunk) (model.LabelResult, bool) {
	removed, added := splitChanged(h.ChangedLines())
	if len(removed) == 0 || len(added) == 0 || len(removed) != len(added) {
		return model.LabelResult{}, false
	}
	for i := range removed {
		rn := normalizeStyle(removed[i])
		if rn == "" || rn != normalizeStyle(added[i]) {
			return model.LabelResult{}, false
		}
	}
	return model.LabelResult{
		Label:     []string{"formatting:style"},
		Reasoning: "Only punctuation changed (semicolons, quote style, or trailing commas)",
	}, true
}

func classifyComments(h *model.Hunk) (model.LabelResult, bool) {
	removed, added := splitChanged(h.ChangedLines())
	if len(removed) == 0 && len(added) == 0 {
		return model.LabelResult{}, false
	}
	if len(removed) > 0 && !commentOnly(h.FilePath, removed) {
		return model.LabelResult{}, false
	}
	if len(added) > 0 && !commentOnly(h.FilePath, added) {
		return model.LabelResult{}, false
	}

	var label string
	switch {
	case len(added) > 0 && len(removed) > 0:
		label = "comments:modified"
	case len(added) > 0:
		label = "comments:added"
	default:
		label = "comments:removed"
	}
	return model.LabelResult{
		Label:     []string{label},
		Reasoning: "All changed lines are comments",
	}, true
}

// commentOnly tokenizes the lines with a lexer picked from the file name
// and reports whether every token is a comment or whitespace. Unknown
// languages and lexer errors report false.
func commentOnly(filename string, lines []string) bool {
	lexer := diff.LexerForFile(filename)
	if lexer == nil {
		return false
	}
	it, err := lexer.Tokenise(nil, strings.Join(lines, "\n"))
	if err != nil {
		return false
	}

	sawComment := false
	for _, tok := range it.Tokens() {
		switch {
		case tok.Type.InCategory(chroma.Comment):
			sawComment = true
		case strings.TrimSpace(tok.Value) == "":
		default:
			return false
		}
	}
	return sawComment
}

type importConfig struct {
	prefixes []string
	bracket  byte // 0 when the language has no multi-line import form
}

var importConfigs = map[string]importConfig{
	"js":  {[]string{"import ", "import{", "export { ", "export {"}, '{'},
	"jsx": {[]string{"import ", "import{", "export { ", "export {"}, '{'},
	"ts":  {[]string{"import ", "import{", "export { ", "export {"}, '{'},
	"tsx": {[]string{"import ", "import{", "export { ", "export {"}, '{'},
	"mjs": {[]string{"import ", "import{", "export { ", "export {"}, '{'},
	"cjs": {[]string{"import ", "import{", "export { ", "export {"}, '{'},
	"py":  {[]string{"import ", "from "}, '('},
	"go":  {[]string{"import "}, '('},
	"rs":  {[]string{"use "}, '{'},

	"java":   {[]string{"import "}, 0},
	"kt":     {[]string{"import "}, 0},
	"scala":  {[]string{"import "}, 0},
	"groovy": {[]string{"import "}, 0},
	"c":      {[]string{"#include"}, 0},
	"cc":     {[]string{"#include"}, 0},
	"cpp":    {[]string{"#include"}, 0},
	"h":      {[]string{"#include"}, 0},
	"hpp":    {[]string{"#include"}, 0},
	"rb":     {[]string{"require ", "require_relative "}, 0},
	"cs":     {[]string{"using "}, 0},
	"swift":  {[]string{"import "}, 0},
	"dart":   {[]string{"import "}, 0},
}

func classifyImports(h *model.Hunk) (model.LabelResult, bool) {
	ext := strings.TrimPrefix(path.Ext(h.FilePath), ".")
	cfg, ok := importConfigs[ext]
	if !ok {
		return model.LabelResult{}, false
	}

	changed := h.ChangedLines()
	if len(changed) == 0 {
		return model.LabelResult{}, false
	}

	var removed, added []model.DiffLine
	for _, l := range changed {
		if l.Type == model.LineRemoved {
			removed = append(removed, l)
		} else {
			added = append(added, l)
		}
	}
	// Each side is checked separately so a removed multi-line import
	// and an added one do not share bracket state.
	if !allImportLines(removed, cfg) || !allImportLines(added, cfg) {
		return model.LabelResult{}, false
	}

	var label, reasoning string
	switch {
	case len(added) > 0 && len(removed) > 0:
		if importReorder(removed, added, cfg.prefixes) {
			label = "imports:reordered"
			reasoning = "Import statements were reordered (same set of imports)"
		} else {
			label = "imports:modified"
			reasoning = "All changed lines are import statements (modified)"
		}
	case len(added) > 0:
		label = "imports:added"
		reasoning = "All changed lines are import statements (additions only)"
	case len(removed) > 0:
		label = "imports:removed"
		reasoning = "All changed lines are import statements (removals only)"
	default:
		return model.LabelResult{}, false
	}
	return model.LabelResult{Label: []string{label}, Reasoning: reasoning}, true
}

func allImportLines(lines []model.DiffLine, cfg importConfig) bool {
	depth := 0
	for _, l := range lines {
		trimmed := strings.TrimSpace(l.Content)
		if trimmed == "" {
			continue
		}

		starts := false
		for _, p := range cfg.prefixes {
			if strings.HasPrefix(trimmed, p) {
				starts = true
				break
			}
		}

		switch {
		case starts:
			if cfg.bracket != 0 {
				depth += bracketDelta(trimmed, cfg.bracket)
			}
		case cfg.bracket != 0 && depth > 0:
			if !importContinuation(trimmed, cfg.bracket) {
				return false
			}
			depth += bracketDelta(trimmed, cfg.bracket)
		default:
			return false
		}
	}
	return true
}

func closingBracket(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '{':
		return '}'
	}
	return 0
}

func bracketDelta(s string, open byte) int {
	return strings.Count(s, string(open)) - strings.Count(s, string(closingBracket(open)))
}

// importContinuation accepts closing brackets, "} from" endings, and
// lines starting with an identifier or quote.
func importContinuation(trimmed string, open byte) bool {
	close := string(closingBracket(open))
	if trimmed == close || trimmed == close+";" || trimmed == close+"," {
		return true
	}
	for _, p := range []string{"} from ", "}from ", ") from ", ")from "} {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	c := trimmed[0]
	return c == '_' || c == '"' || c == '\'' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func importReorder(removed, added []model.DiffLine, prefixes []string) bool {
	norm := func(lines []model.DiffLine) []string {
		var out []string
		for _, l := range lines {
			trimmed := strings.TrimSpace(l.Content)
			if trimmed == "" {
				continue
			}
			for _, p := range prefixes {
				if strings.HasPrefix(trimmed, p) {
					out = append(out, collapseWhitespace(l.Content))
					break
				}
			}
		}
		sort.Strings(out)
		return out
	}

	r, a := norm(removed), norm(added)
	if len(r) == 0 || len(a) == 0 || len(r) != len(a) {
		return false
	}
	for i := range r {
		if r[i] != a[i] {
			return false
		}
	}
	return true
}

func splitChanged(changed []model.DiffLine) (removed, added []string) {
	for _, l := range changed {
		if l.Type == model.LineRemoved {
			removed = append(removed, l.Content)
		} else {
			added = append(added, l.Content)
		}
	}
	return removed, added
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeStyle(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimRight(s, ";")
	s = strings.TrimRight(s, ",")
	s = strings.ReplaceAll(s, "'", "\"")
	return collapseWhitespace(s)
}
