// Package model defines the core data types shared across vouch.
package model

// LineType categorizes a single diff line.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

func (l LineType) String() string {
	switch l {
	case LineContext:
		return "context"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// DiffLine is one line within a hunk, with its position in the old and
// new file. A line number of 0 means the line does not exist on that side.
type DiffLine struct {
	Type    LineType `json:"type"`
	Content string   `json:"content"`
	OldLine int      `json:"oldLineNumber,omitempty"`
	NewLine int      `json:"newLineNumber,omitempty"`
}

// Hunk is a single contiguous block of changed lines within one file.
// Its ID is filePath + ":" + contentHash, which stays stable when the
// same change is re-parsed. Immutable once produced for a comparison.
type Hunk struct {
	ID          string     `json:"id"`
	FilePath    string     `json:"filePath"`
	OldStart    int        `json:"oldStart"`
	OldCount    int        `json:"oldCount"`
	NewStart    int        `json:"newStart"`
	NewCount    int        `json:"newCount"`
	Lines       []DiffLine `json:"lines"`
	ContentHash string     `json:"contentHash"`
	MovePairID  string     `json:"movePairId,omitempty"`
}

// ChangedLines returns the added and removed lines of the hunk,
// skipping context.
func (h *Hunk) ChangedLines() []DiffLine {
	var out []DiffLine
	for _, l := range h.Lines {
		if l.Type != LineContext {
			out = append(out, l)
		}
	}
	return out
}

// Decision is the reviewer's explicit per-hunk decision.
type Decision string

const (
	DecisionNone          Decision = ""
	DecisionApproved      Decision = "approved"
	DecisionRejected      Decision = "rejected"
	DecisionSavedForLater Decision = "saved_for_later"
)

// Status is a hunk's effective review status, derived by the resolver
// from the explicit decision, the trust list, and the staged-file rule.
type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
	StatusSavedForLater
	StatusTrusted
	StatusStagedAutoApproved
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusSavedForLater:
		return "saved_for_later"
	case StatusTrusted:
		return "trusted"
	case StatusStagedAutoApproved:
		return "staged-auto-approved"
	default:
		return "unknown"
	}
}

// Reviewed reports whether the status counts as reviewed: the hunk no
// longer needs attention.
func (s Status) Reviewed() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusTrusted, StatusStagedAutoApproved:
		return true
	default:
		return false
	}
}

// ClassifiedVia records how a hunk's labels were produced.
type ClassifiedVia string

const (
	ViaStatic ClassifiedVia = "static"
	ViaAI     ClassifiedVia = "ai"
)

// HunkState is the mutable per-hunk record owned by the review session.
// Decision is absent ("") until the reviewer decides.
type HunkState struct {
	Label         []string      `json:"label"`
	Reasoning     string        `json:"reasoning,omitempty"`
	Decision      Decision      `json:"status,omitempty"`
	ClassifiedVia ClassifiedVia `json:"classifiedVia,omitempty"`
}

// Comparison identifies the pair of refs being reviewed. The key is the
// full string form used for file naming and lookup
// (e.g. "main..feature", or "main..feature+" when the working tree is
// included).
type Comparison struct {
	Old         string `json:"old"`
	New         string `json:"new,omitempty"`
	WorkingTree bool   `json:"workingTree,omitempty"`
	Key         string `json:"key"`
}

// NewComparison builds a Comparison from base and compare refs. An
// empty compare means the working tree, marked with a "+" key suffix.
func NewComparison(base, compare string) Comparison {
	if compare == "" {
		return Comparison{Old: base, New: "HEAD", WorkingTree: true, Key: base + "..HEAD+"}
	}
	return Comparison{Old: base, New: compare, Key: base + ".." + compare}
}

// HunkGroup is one AI-suggested group of related hunks.
type HunkGroup struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	HunkIDs     []string `json:"hunkIds"`
}

// Guide is the AI grouping artifact plus the hunk-id snapshot captured
// when it was generated.
type Guide struct {
	Groups      []HunkGroup `json:"groups"`
	Summary     string      `json:"summary,omitempty"`
	HunkIDs     []string    `json:"hunkIds"`
	GeneratedAt string      `json:"generatedAt"`
}

// Narrative is the AI walkthrough text artifact with its snapshot.
type Narrative struct {
	Text        string   `json:"text"`
	HunkIDs     []string `json:"hunkIds"`
	GeneratedAt string   `json:"generatedAt"`
}

// Classification records which hunks were present when labels were
// last generated.
type Classification struct {
	HunkIDs     []string `json:"hunkIds"`
	GeneratedAt string   `json:"generatedAt"`
}

// LabelResult is one classification outcome for a hunk, as delivered
// by the static classifier or the external AI classifier.
type LabelResult struct {
	Label     []string `json:"label"`
	Reasoning string   `json:"reasoning,omitempty"`
}

// LineAnnotation is a free-form note attached to a line of a file.
type LineAnnotation struct {
	FilePath string `json:"filePath"`
	Line     int    `json:"line"`
	Text     string `json:"text"`
}

// ReviewState is the persisted aggregate root for one comparison.
// Version increases on every mutation so a persistence layer can
// detect writes based on a stale read.
type ReviewState struct {
	Comparison        Comparison            `json:"comparison"`
	Hunks             map[string]*HunkState `json:"hunks"`
	TrustList         []string              `json:"trustList"`
	Notes             string                `json:"notes"`
	LineAnnotations   []LineAnnotation      `json:"lineAnnotations,omitempty"`
	AutoApproveStaged bool                  `json:"autoApproveStaged"`
	Classification    *Classification       `json:"classification,omitempty"`
	Guide             *Guide                `json:"guide,omitempty"`
	Narrative         *Narrative            `json:"narrative,omitempty"`
	Version           uint64                `json:"version"`
	CreatedAt         string                `json:"createdAt"`
	UpdatedAt         string                `json:"updatedAt"`
}

// NewReviewState creates an empty state for a comparison.
func NewReviewState(c Comparison, now string) *ReviewState {
	return &ReviewState{
		Comparison: c,
		Hunks:      make(map[string]*HunkState),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// FileEntry is a raw file tree node supplied by the VCS/filesystem
// collaborator. Status carries the raw change status ("modified",
// "added", "deleted", "renamed") when the entry itself changed.
type FileEntry struct {
	Name      string      `json:"name"`
	Path      string      `json:"path"`
	IsDir     bool        `json:"isDirectory"`
	IsSymlink bool        `json:"isSymlink,omitempty"`
	Status    string      `json:"status,omitempty"`
	Children  []FileEntry `json:"children,omitempty"`
}
