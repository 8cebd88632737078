// Package diff parses git diffs into the engine's hunk representation.
package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/sprite-ai/vouch/internal/model"
)

// File represents a single file in a diff with its parsed hunks.
type File struct {
	Path      string
	OldPath   string
	IsNew     bool
	IsDeleted bool
	IsRenamed bool
	IsBinary  bool
	IsSymlink bool
	Hunks     []model.Hunk
}

// Status returns the raw change status string for the file tree.
func (f *File) Status() string {
	switch {
	case f.IsNew:
		return "added"
	case f.IsDeleted:
		return "deleted"
	case f.IsRenamed:
		return "renamed"
	default:
		return "modified"
	}
}

// DiffSet holds the parsed diff for all files.
type DiffSet struct {
	Files []*File
	Raw   string // the raw unified diff text
}

// Hunks returns every hunk across all files, in file order.
func (ds *DiffSet) Hunks() []model.Hunk {
	var out []model.Hunk
	for _, f := range ds.Files {
		out = append(out, f.Hunks...)
	}
	return out
}

// Stats returns aggregate statistics.
func (ds *DiffSet) Stats() (files, added, deleted int) {
	files = len(ds.Files)
	for _, f := range ds.Files {
		for _, h := range f.Hunks {
			for _, l := range h.Lines {
				switch l.Type {
				case model.LineAdded:
					added++
				case model.LineRemoved:
					deleted++
				}
			}
		}
	}
	return
}

const symlinkMode = 0o120000

// Parse reads a unified diff string and returns a DiffSet. Hunk ids
// are filePath + ":" + contentHash, stable across re-parses of the
// same content.
func Parse(raw string) (*DiffSet, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	ds := &DiffSet{Raw: raw}
	for _, f := range parsed {
		df := &File{
			IsNew:     f.IsNew,
			IsDeleted: f.IsDelete,
			IsRenamed: f.IsRename,
			IsBinary:  f.IsBinary,
			IsSymlink: f.NewMode&symlinkMode == symlinkMode || f.OldMode&symlinkMode == symlinkMode,
		}

		df.Path = f.NewName
		if df.Path == "" {
			df.Path = f.OldName
		}
		if f.IsRename {
			df.OldPath = f.OldName
		}

		for _, frag := range f.TextFragments {
			df.Hunks = append(df.Hunks, buildHunk(df.Path, frag))
		}

		ds.Files = append(ds.Files, df)
	}

	DetectMovePairs(ds)
	return ds, nil
}

func buildHunk(filePath string, frag *gitdiff.TextFragment) model.Hunk {
	h := model.Hunk{
		FilePath: filePath,
		OldStart: int(frag.OldPosition),
		OldCount: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewCount: int(frag.NewLines),
	}

	oldLine := int(frag.OldPosition)
	newLine := int(frag.NewPosition)
	hasher := sha256.New()

	for _, l := range frag.Lines {
		content := strings.TrimSuffix(l.Line, "\n")
		dl := model.DiffLine{Content: content}
		switch l.Op {
		case gitdiff.OpAdd:
			dl.Type = model.LineAdded
			dl.NewLine = newLine
			newLine++
		case gitdiff.OpDelete:
			dl.Type = model.LineRemoved
			dl.OldLine = oldLine
			oldLine++
		default:
			dl.Type = model.LineContext
			dl.OldLine = oldLine
			dl.NewLine = newLine
			oldLine++
			newLine++
		}
		hasher.Write([]byte(content))
		hasher.Write([]byte{'\n'})
		h.Lines = append(h.Lines, dl)
	}

	h.ContentHash = hex.EncodeToString(hasher.Sum(nil)[:8])
	h.ID = filePath + ":" + h.ContentHash
	return h
}

// UntrackedHunk creates a synthetic hunk for an untracked (new) file
// so it participates in review like any other change.
func UntrackedHunk(filePath string) model.Hunk {
	content := "(untracked file)"
	sum := sha256.Sum256([]byte(content + "\n"))
	hash := hex.EncodeToString(sum[:8])
	return model.Hunk{
		ID:       filePath + ":" + hash,
		FilePath: filePath,
		NewStart: 1,
		NewCount: 1,
		Lines: []model.DiffLine{
			{Type: model.LineAdded, Content: content, NewLine: 1},
		},
		ContentHash: hash,
	}
}

// changedContentHash hashes only the added/removed lines of a hunk,
// ignoring context, for move matching.
func changedContentHash(h *model.Hunk) string {
	hasher := sha256.New()
	for _, l := range h.ChangedLines() {
		hasher.Write([]byte(l.Content))
		hasher.Write([]byte{'\n'})
	}
	return hex.EncodeToString(hasher.Sum(nil)[:8])
}

func isDeletionsOnly(h *model.Hunk) bool {
	sawRemoved := false
	for _, l := range h.Lines {
		switch l.Type {
		case model.LineAdded:
			return false
		case model.LineRemoved:
			sawRemoved = true
		}
	}
	return sawRemoved
}

func isAdditionsOnly(h *model.Hunk) bool {
	sawAdded := false
	for _, l := range h.Lines {
		switch l.Type {
		case model.LineRemoved:
			return false
		case model.LineAdded:
			sawAdded = true
		}
	}
	return sawAdded
}

// DetectMovePairs links deletions-only hunks to additions-only hunks
// with identical changed content in a different file, setting
// MovePairID on both sides.
func DetectMovePairs(ds *DiffSet) {
	type ref struct {
		hunk *model.Hunk
		file string
	}
	deletions := make(map[string][]ref)
	additions := make(map[string][]ref)

	for _, f := range ds.Files {
		for i := range f.Hunks {
			h := &f.Hunks[i]
			hash := changedContentHash(h)
			switch {
			case isDeletionsOnly(h):
				deletions[hash] = append(deletions[hash], ref{h, f.Path})
			case isAdditionsOnly(h):
				additions[hash] = append(additions[hash], ref{h, f.Path})
			}
		}
	}

	for hash, dels := range deletions {
		adds, ok := additions[hash]
		if !ok {
			continue
		}
		// Each hunk pairs with the first unpaired counterpart, so links
		// stay symmetric when one side has several candidates.
		for _, d := range dels {
			if d.hunk.MovePairID != "" {
				continue
			}
			for _, a := range adds {
				if d.file == a.file || a.hunk.MovePairID != "" {
					continue
				}
				d.hunk.MovePairID = a.hunk.ID
				a.hunk.MovePairID = d.hunk.ID
				break
			}
		}
	}
}
