// Package tree builds the hierarchical, filtered, compacted file view
// over per-hunk review statuses. All functions are pure: they derive a
// fresh read-only overlay from the raw entries on every call and never
// mutate their inputs.
package tree

import (
	"sort"

	"github.com/sprite-ai/vouch/internal/model"
)

// ViewMode selects which entries the processed tree includes.
type ViewMode string

const (
	// ViewAll includes everything except deleted entries.
	ViewAll ViewMode = "all"
	// ViewChanges includes only entries with changes (or changed
	// descendants).
	ViewChanges ViewMode = "changes"
)

// StatusCounts is the per-entry histogram of hunk review statuses.
// Saved-for-later hunks count as pending (they still need attention);
// staged-auto-approved hunks count as approved.
type StatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Trusted  int `json:"trusted"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

func (c *StatusCounts) add(o StatusCounts) {
	c.Pending += o.Pending
	c.Approved += o.Approved
	c.Trusted += o.Trusted
	c.Rejected += o.Rejected
	c.Total += o.Total
}

// Reviewed returns how many of the entry's hunks are reviewed.
func (c StatusCounts) Reviewed() int {
	return c.Approved + c.Trusted + c.Rejected
}

// Entry is a processed file tree node: the raw FileEntry plus derived
// aggregates. Directories own their children outright; there are no
// parent back-references.
type Entry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	IsDir     bool   `json:"isDirectory"`
	IsSymlink bool   `json:"isSymlink,omitempty"`
	Status    string `json:"status,omitempty"`

	Counts     StatusCounts `json:"counts"`
	HasChanges bool         `json:"hasChanges"`

	// DisplayName is the (possibly joined) name shown for the node.
	// CompactedPaths lists every original directory folded into this
	// node, starting with its own path, so expand/collapse state and
	// navigation still resolve to real directories.
	DisplayName    string   `json:"displayName"`
	CompactedPaths []string `json:"compactedPaths"`

	// FileCount counts the leaf files under this node.
	// MaxSiblingFiles is the largest FileCount among this node's
	// sibling directories at the same level, for proportional UI bars.
	FileCount       int `json:"fileCount"`
	MaxSiblingFiles int `json:"maxSiblingFiles,omitempty"`

	Children []*Entry `json:"children,omitempty"`
}

func countsFor(statuses []model.Status) StatusCounts {
	var c StatusCounts
	for _, s := range statuses {
		c.Total++
		switch s {
		case model.StatusApproved, model.StatusStagedAutoApproved:
			c.Approved++
		case model.StatusTrusted:
			c.Trusted++
		case model.StatusRejected:
			c.Rejected++
		default:
			c.Pending++
		}
	}
	return c
}

// build converts raw entries into processed entries for the given
// mode, recursively aggregating counts. Returns nil for filtered-out
// entries.
func build(e model.FileEntry, statusByPath map[string][]model.Status, mode ViewMode) *Entry {
	if mode == ViewAll && e.Status == "deleted" {
		return nil
	}

	out := &Entry{
		Name:           e.Name,
		Path:           e.Path,
		IsDir:          e.IsDir,
		IsSymlink:      e.IsSymlink,
		Status:         e.Status,
		DisplayName:    e.Name,
		CompactedPaths: []string{e.Path},
	}

	// A symlinked directory is one committable unit: in changes mode it
	// is a leaf, in browse mode it stays expandable.
	leafLike := !e.IsDir || (e.IsSymlink && mode == ViewChanges)

	if leafLike {
		out.Counts = countsFor(statusByPath[e.Path])
		out.HasChanges = out.Counts.Total > 0 || e.Status != ""
		out.FileCount = 1
		if mode == ViewChanges && !out.HasChanges {
			return nil
		}
		return out
	}

	for _, child := range e.Children {
		if c := build(child, statusByPath, mode); c != nil {
			out.Children = append(out.Children, c)
			out.Counts.add(c.Counts)
			out.FileCount += c.FileCount
			if c.HasChanges {
				out.HasChanges = true
			}
		}
	}
	if e.Status != "" {
		out.HasChanges = true
	}
	if mode == ViewChanges && !out.HasChanges {
		return nil
	}

	sortChildren(out.Children)
	return out
}

// sortChildren orders directories before files, then by name, so the
// processed tree is identical regardless of input order.
func sortChildren(children []*Entry) {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
}

// Process builds the compacted, annotated tree for a view mode.
func Process(entries []model.FileEntry, statusByPath map[string][]model.Status, mode ViewMode) []*Entry {
	var out []*Entry
	for _, e := range entries {
		if p := build(e, statusByPath, mode); p != nil {
			out = append(out, p)
		}
	}
	sortChildren(out)
	out = compactAll(out)
	annotateSiblingSizes(out)
	return out
}

// Sections splits the changes view into the needs-review and reviewed
// trees. Each side preserves directory ancestry and is compacted and
// annotated independently. A partially reviewed file appears in both.
type Sections struct {
	NeedsReview []*Entry `json:"needsReview"`
	Reviewed    []*Entry `json:"reviewed"`
}

// Split builds both section trees from the raw entries.
func Split(entries []model.FileEntry, statusByPath map[string][]model.Status) Sections {
	var full []*Entry
	for _, e := range entries {
		if p := build(e, statusByPath, ViewChanges); p != nil {
			full = append(full, p)
		}
	}
	sortChildren(full)

	needs := filterSection(full, func(e *Entry) bool {
		return e.Counts.Pending > 0 || (e.HasChanges && e.Counts.Total == 0)
	})
	reviewed := filterSection(full, func(e *Entry) bool {
		return e.Counts.Reviewed() > 0
	})

	needs = compactAll(needs)
	reviewed = compactAll(reviewed)
	annotateSiblingSizes(needs)
	annotateSiblingSizes(reviewed)
	return Sections{NeedsReview: needs, Reviewed: reviewed}
}

// filterSection keeps leaves matching keep, and directories with at
// least one surviving descendant, re-aggregating counts and file
// counts over the survivors.
func filterSection(entries []*Entry, keep func(*Entry) bool) []*Entry {
	var out []*Entry
	for _, e := range entries {
		if len(e.Children) == 0 {
			if keep(e) {
				cp := *e
				cp.CompactedPaths = append([]string(nil), e.CompactedPaths...)
				out = append(out, &cp)
			}
			continue
		}
		children := filterSection(e.Children, keep)
		if len(children) == 0 {
			continue
		}
		cp := *e
		cp.Children = children
		cp.CompactedPaths = append([]string(nil), e.CompactedPaths...)
		cp.Counts = StatusCounts{}
		cp.FileCount = 0
		for _, c := range children {
			cp.Counts.add(c.Counts)
			cp.FileCount += c.FileCount
		}
		out = append(out, &cp)
	}
	return out
}

// compactAll collapses single-child directory chains in every subtree.
func compactAll(entries []*Entry) []*Entry {
	for _, e := range entries {
		compact(e)
	}
	return entries
}

// compact folds a chain of single-child directories into one node. The
// chain stops at the first child that is not a directory, is a
// symlink, or carries a raw change status of its own; a node with its
// own status never participates at all.
func compact(e *Entry) {
	if e.IsDir && !e.IsSymlink && e.Status == "" {
		for len(e.Children) == 1 {
			child := e.Children[0]
			if !child.IsDir || child.IsSymlink || child.Status != "" {
				break
			}
			e.Path = child.Path
			e.DisplayName = e.DisplayName + "/" + child.DisplayName
			e.CompactedPaths = append(e.CompactedPaths, child.CompactedPaths...)
			e.Children = child.Children
		}
	}
	for _, c := range e.Children {
		compact(c)
	}
}

// annotateSiblingSizes stamps every directory with the maximum
// FileCount among its sibling directories at the same level. Each
// level is computed independently.
func annotateSiblingSizes(entries []*Entry) {
	maxFiles := 0
	for _, e := range entries {
		if e.IsDir && e.FileCount > maxFiles {
			maxFiles = e.FileCount
		}
	}
	for _, e := range entries {
		if e.IsDir {
			e.MaxSiblingFiles = maxFiles
		}
		annotateSiblingSizes(e.Children)
	}
}

// Find returns the entry whose path or compacted paths contain path.
func Find(entries []*Entry, path string) *Entry {
	for _, e := range entries {
		for _, p := range e.CompactedPaths {
			if p == path {
				return e
			}
		}
		if found := Find(e.Children, path); found != nil {
			return found
		}
	}
	return nil
}

// Flatten returns the entries in depth-first display order.
func Flatten(entries []*Entry) []*Entry {
	var out []*Entry
	for _, e := range entries {
		out = append(out, e)
		out = append(out, Flatten(e.Children)...)
	}
	return out
}
