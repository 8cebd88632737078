package trust

// Pattern describes one trustable change category. Only mechanical,
// patterned changes belong here; everything else needs a human.
type Pattern struct {
	ID          string
	Description string
}

// Category groups related patterns for display.
type Category struct {
	ID       string
	Name     string
	Patterns []Pattern
}

// Taxonomy returns the built-in trust pattern taxonomy.
func Taxonomy() []Category {
	return []Category{
		{
			ID:   "imports",
			Name: "Imports",
			Patterns: []Pattern{
				{"imports:added", "Import statements added"},
				{"imports:removed", "Import statements removed"},
				{"imports:reordered", "Imports reordered/reorganized"},
			},
		},
		{
			ID:   "formatting",
			Name: "Formatting",
			Patterns: []Pattern{
				{"formatting:whitespace", "Whitespace changes (spaces, tabs, blank lines)"},
				{"formatting:line-length", "Line wrapping/length changes"},
				{"formatting:style", "Code style (quotes, semicolons, trailing commas)"},
			},
		},
		{
			ID:   "comments",
			Name: "Comments",
			Patterns: []Pattern{
				{"comments:added", "Comments added"},
				{"comments:removed", "Comments removed"},
				{"comments:modified", "Comments changed"},
			},
		},
		{
			ID:   "types",
			Name: "Types & Annotations",
			Patterns: []Pattern{
				{"types:added", "Type annotations added (no logic change)"},
				{"types:removed", "Type annotations removed"},
				{"types:modified", "Type annotations changed"},
			},
		},
		{
			ID:   "file",
			Name: "Files",
			Patterns: []Pattern{
				{"file:deleted", "File deleted entirely"},
				{"file:renamed", "File renamed (content unchanged)"},
				{"file:moved", "File moved to a different directory"},
				{"file:added-empty", "New empty file"},
			},
		},
		{
			ID:   "move",
			Name: "Code Movement",
			Patterns: []Pattern{
				{"move:code", "Code moved between files with no behavior change"},
				{"rename:variable", "Variable/constant renamed"},
				{"rename:function", "Function renamed"},
			},
		},
		{
			ID:   "generated",
			Name: "Generated",
			Patterns: []Pattern{
				{"generated:lockfile", "Package manager lockfile"},
				{"generated:snapshot", "Test snapshot output"},
			},
		},
	}
}

// KnownPattern reports whether id is part of the built-in taxonomy.
func KnownPattern(id string) bool {
	for _, cat := range Taxonomy() {
		for _, p := range cat.Patterns {
			if p.ID == id {
				return true
			}
		}
	}
	return false
}
