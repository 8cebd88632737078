package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/vouch/internal/diff"
	"github.com/sprite-ai/vouch/internal/model"
	"github.com/sprite-ai/vouch/internal/tree"
)

// statusGlyph returns the one-cell marker for a file's aggregate
// review progress.
func statusGlyph(c tree.StatusCounts) string {
	switch {
	case c.Rejected > 0:
		return statusRejectedStyle.Render("✗")
	case c.Pending > 0:
		return statusPendingStyle.Render("·")
	case c.Trusted > 0 && c.Approved == 0:
		return statusTrustedStyle.Render("~")
	case c.Reviewed() > 0:
		return statusApprovedStyle.Render("✓")
	default:
		return " "
	}
}

func (m Model) renderFileList(width, height int) string {
	var b strings.Builder

	for i, r := range m.rows {
		if i > 0 {
			b.WriteByte('\n')
		}

		if r.kind == rowSection {
			b.WriteString(sectionHeaderStyle.Render(r.title))
			continue
		}

		indent := strings.Repeat("  ", r.depth)
		name := r.entry.DisplayName
		maxName := width - len(indent) - 10
		if maxName > 0 && len(name) > maxName {
			name = "…" + name[len(name)-maxName+1:]
		}

		line := fmt.Sprintf("%s%s %s", indent, statusGlyph(r.entry.Counts), name)
		if r.kind == rowFile && r.entry.Counts.Total > 0 {
			line += fmt.Sprintf(" %d/%d", r.entry.Counts.Reviewed(), r.entry.Counts.Total)
		}

		var style lipgloss.Style
		switch {
		case i == m.rowIndex:
			style = fileItemSelectedStyle
		case r.kind == rowDir:
			style = dirItemStyle
		default:
			style = fileItemStyle
		}
		b.WriteString(style.Width(width - 4).Render(line))
	}

	return fileListStyle.Width(width).Height(height - 2).Render(b.String())
}

func (m Model) renderHunkPane(width, height int) string {
	innerWidth := width - 4
	innerHeight := height - 2

	h := m.selectedHunk()
	if h == nil {
		return hunkPaneStyle.Width(width).Height(innerHeight).Render("No changes")
	}

	var b strings.Builder
	b.WriteString(fileHeaderStyle.Render(h.FilePath))
	b.WriteByte('\n')
	b.WriteString(hunkHeaderStyle.Render(hunkHeader(h)))
	if labels := m.hunkLabels(h.ID); labels != "" {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(labels))
	}
	b.WriteByte('\n')

	visible := innerHeight - 3
	if visible < 1 {
		visible = 1
	}

	start := m.scroll
	if start > len(h.Lines) {
		start = len(h.Lines)
	}
	end := start + visible
	if end > len(h.Lines) {
		end = len(h.Lines)
	}

	highlighted := diff.HighlightHunk(h)
	for i := start; i < end; i++ {
		b.WriteString(styleLine(h.Lines[i], highlighted[i], innerWidth))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}

	return hunkPaneStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) hunkLabels(id string) string {
	state := m.sess.Snapshot()
	hs, ok := state.Hunks[id]
	if !ok || len(hs.Label) == 0 {
		return ""
	}
	return strings.Join(hs.Label, ", ")
}

func hunkHeader(h *model.Hunk) string {
	old := fmt.Sprintf("-%d", h.OldStart)
	if h.OldCount != 1 {
		old += fmt.Sprintf(",%d", h.OldCount)
	}
	new := fmt.Sprintf("+%d", h.NewStart)
	if h.NewCount != 1 {
		new += fmt.Sprintf(",%d", h.NewCount)
	}
	return fmt.Sprintf("@@ %s %s @@", old, new)
}

// styleLine renders one diff line with line numbers, diff coloring,
// and syntax highlighting on context lines.
func styleLine(l model.DiffLine, hl diff.HighlightedLine, width int) string {
	var oldNum, newNum string
	if l.OldLine > 0 {
		oldNum = fmt.Sprintf("%4d", l.OldLine)
	} else {
		oldNum = "    "
	}
	if l.NewLine > 0 {
		newNum = fmt.Sprintf("%4d", l.NewLine)
	} else {
		newNum = "    "
	}
	lineNums := lineNumberStyle.Render(oldNum) + " " + lineNumberStyle.Render(newNum)

	maxContent := width - 12
	var content string
	switch l.Type {
	case model.LineAdded:
		content = addedLineStyle.Render("+" + truncate(l.Content, maxContent))
	case model.LineRemoved:
		content = deletedLineStyle.Render("-" + truncate(l.Content, maxContent))
	default:
		content = renderHighlighted(hl, truncate(l.Content, maxContent))
	}

	return lineNums + " " + content
}

// renderHighlighted renders a context line with its syntax tokens. The
// truncated plain text wins when tokens would overflow it.
func renderHighlighted(hl diff.HighlightedLine, plain string) string {
	if len(hl.Tokens) == 0 || hl.Plain() != plain {
		return contextLineStyle.Render(" " + plain)
	}

	var b strings.Builder
	b.WriteString(" ")
	for _, tok := range hl.Tokens {
		if tok.Color != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
		} else {
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) > max {
		return s[:max-1] + "…"
	}
	return s
}
