// Package tui implements the interactive review screen.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/vouch/internal/model"
	"github.com/sprite-ai/vouch/internal/review"
	"github.com/sprite-ai/vouch/internal/tree"
)

// rowKind discriminates the file list rows.
type rowKind int

const (
	rowSection rowKind = iota
	rowDir
	rowFile
)

type row struct {
	kind  rowKind
	title string // section header text
	entry *tree.Entry
	depth int
}

// Model is the top-level Bubble Tea model.
type Model struct {
	sess    *review.Session
	entries []model.FileEntry

	width  int
	height int

	rows      []row
	rowIndex  int // selected row (always a file row)
	hunks     []model.Hunk
	hunkIndex int // selected hunk within the file
	scroll    int // scroll offset within the hunk pane

	showReviewed bool
	showHelp     bool
}

// New creates the review model.
func New(sess *review.Session, entries []model.FileEntry) Model {
	m := Model{
		sess:    sess,
		entries: entries,
	}
	m.rebuild("")
	return m
}

// rebuild recomputes the sectioned file rows from the current review
// state, keeping the selection on keepPath when it still exists.
func (m *Model) rebuild(keepPath string) {
	sections := tree.Split(m.entries, m.sess.StatusByFile())

	var rows []row
	appendTree := func(entries []*tree.Entry) {
		var walk func(es []*tree.Entry, depth int)
		walk = func(es []*tree.Entry, depth int) {
			for _, e := range es {
				kind := rowFile
				if e.IsDir {
					kind = rowDir
				}
				rows = append(rows, row{kind: kind, entry: e, depth: depth})
				walk(e.Children, depth+1)
			}
		}
		walk(entries, 0)
	}

	rows = append(rows, row{kind: rowSection, title: "Needs review"})
	appendTree(sections.NeedsReview)
	if m.showReviewed {
		rows = append(rows, row{kind: rowSection, title: "Reviewed"})
		appendTree(sections.Reviewed)
	}
	m.rows = rows

	m.rowIndex = -1
	for i, r := range rows {
		if r.kind != rowFile {
			continue
		}
		if m.rowIndex < 0 {
			m.rowIndex = i
		}
		if keepPath != "" && r.entry.Path == keepPath {
			m.rowIndex = i
			break
		}
	}
	m.refreshHunks()
}

// refreshHunks loads the hunks of the selected file, clamping the hunk
// selection.
func (m *Model) refreshHunks() {
	m.hunks = nil
	if m.rowIndex < 0 {
		m.hunkIndex = 0
		m.scroll = 0
		return
	}
	path := m.rows[m.rowIndex].entry.Path
	for _, h := range m.sess.Hunks() {
		if h.FilePath == path {
			m.hunks = append(m.hunks, h)
		}
	}
	if m.hunkIndex >= len(m.hunks) {
		m.hunkIndex = 0
	}
	m.scroll = 0
}

func (m *Model) selectedPath() string {
	if m.rowIndex < 0 {
		return ""
	}
	return m.rows[m.rowIndex].entry.Path
}

func (m *Model) selectedHunk() *model.Hunk {
	if m.hunkIndex < 0 || m.hunkIndex >= len(m.hunks) {
		return nil
	}
	return &m.hunks[m.hunkIndex]
}

// moveFile advances the selection to the next/previous file row.
func (m *Model) moveFile(delta int) {
	i := m.rowIndex + delta
	for i >= 0 && i < len(m.rows) {
		if m.rows[i].kind == rowFile {
			m.rowIndex = i
			m.hunkIndex = 0
			m.refreshHunks()
			return
		}
		i += delta
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			m.scroll++

		case key.Matches(msg, keys.Up):
			if m.scroll > 0 {
				m.scroll--
			}

		case key.Matches(msg, keys.NextFile):
			m.moveFile(1)

		case key.Matches(msg, keys.PrevFile):
			m.moveFile(-1)

		case key.Matches(msg, keys.NextHunk):
			if m.hunkIndex < len(m.hunks)-1 {
				m.hunkIndex++
				m.scroll = 0
			}

		case key.Matches(msg, keys.PrevHunk):
			if m.hunkIndex > 0 {
				m.hunkIndex--
				m.scroll = 0
			}

		case key.Matches(msg, keys.Approve):
			m.applyDecision(m.sess.Approve)

		case key.Matches(msg, keys.Reject):
			m.applyDecision(m.sess.Reject)

		case key.Matches(msg, keys.Later):
			m.applyDecision(m.sess.SaveForLater)

		case key.Matches(msg, keys.Unapprove):
			m.applyDecision(m.sess.Unapprove)

		case key.Matches(msg, keys.Trust):
			m.trustSelected()

		case key.Matches(msg, keys.Toggle):
			m.showReviewed = !m.showReviewed
			m.rebuild(m.selectedPath())

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

// applyDecision records a decision on the selected hunk and advances
// to the next one so a review flows top to bottom.
func (m *Model) applyDecision(apply func(ids ...string)) {
	h := m.selectedHunk()
	if h == nil {
		return
	}
	apply(h.ID)
	next := m.hunkIndex + 1
	path := m.selectedPath()
	m.rebuild(path)
	if next < len(m.hunks) {
		m.hunkIndex = next
	}
}

// trustSelected adds the selected hunk's first label to the trust
// list. Unlabeled hunks cannot be trusted.
func (m *Model) trustSelected() {
	h := m.selectedHunk()
	if h == nil {
		return
	}
	state := m.sess.Snapshot()
	hs, ok := state.Hunks[h.ID]
	if !ok || len(hs.Label) == 0 {
		return
	}
	m.sess.AddTrustPattern(hs.Label[0])
	m.rebuild(m.selectedPath())
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	fileListWidth := m.fileListWidth()
	paneWidth := m.width - fileListWidth - 1

	fileList := m.renderFileList(fileListWidth, m.height-2)
	pane := m.renderHunkPane(paneWidth, m.height-2)

	main := lipgloss.JoinHorizontal(lipgloss.Top, fileList, " ", pane)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) fileListWidth() int {
	maxLen := 20
	for _, r := range m.rows {
		if r.kind == rowSection {
			continue
		}
		if n := len(r.entry.DisplayName) + r.depth*2; n > maxLen {
			maxLen = n
		}
	}
	w := maxLen + 8
	if w > m.width/3 {
		w = m.width / 3
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderStatusBar() string {
	c := m.sess.Counts()
	left := fmt.Sprintf(" %s", m.sess.Comparison().Key)
	if h := m.selectedHunk(); h != nil {
		left += fmt.Sprintf("  hunk %d/%d  %s", m.hunkIndex+1, len(m.hunks), m.sess.Resolve(h.ID))
	}
	right := fmt.Sprintf("%d/%d reviewed  ? help ", c.Total-c.Pending-c.SavedForLater, c.Total)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(fileHeaderStyle.Render("vouch — Keyboard Shortcuts"))
	b.WriteString("\n\n")

	helpItems := []struct{ key, desc string }{
		{"↑/k", "Scroll up"},
		{"↓/j", "Scroll down"},
		{"n/Tab", "Next file"},
		{"N/S-Tab", "Previous file"},
		{"]", "Next hunk"},
		{"[", "Previous hunk"},
		{"a", "Approve hunk"},
		{"x", "Reject hunk"},
		{"s", "Save hunk for later"},
		{"u", "Clear decision"},
		{"t", "Trust the hunk's label"},
		{"v", "Show/hide reviewed files"},
		{"?", "Toggle this help"},
		{"q", "Quit (decisions are saved)"},
	}

	for _, item := range helpItems {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(12).Render(item.key),
			item.desc,
		))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

// Run starts the interactive review. The session is mutated in place;
// the caller persists it after Run returns.
func Run(sess *review.Session, entries []model.FileEntry) error {
	m := New(sess, entries)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
