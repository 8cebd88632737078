package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sprite-ai/vouch/internal/diff"
	"github.com/sprite-ai/vouch/internal/filter"
	"github.com/sprite-ai/vouch/internal/model"
	"github.com/sprite-ai/vouch/internal/review"
	"github.com/sprite-ai/vouch/internal/storage"
)

// parseComparison interprets the optional range argument. No argument
// means the working tree against HEAD; "base..compare" pins both
// sides; a bare ref means the working tree against that ref.
func parseComparison(args []string) model.Comparison {
	if len(args) == 0 {
		return model.NewComparison("HEAD", "")
	}
	arg := args[0]
	if base, compare, ok := strings.Cut(arg, ".."); ok {
		compare = strings.TrimPrefix(compare, ".") // tolerate "a...b"
		return model.NewComparison(base, compare)
	}
	return model.NewComparison(arg, "")
}

// loadDiffSet computes and parses the diff for a comparison, with the
// configured skip globs already applied.
func loadDiffSet(repoDir string, c model.Comparison, contextLines int) (*diff.DiffSet, error) {
	var raw string
	var err error
	if c.WorkingTree {
		raw, err = diff.GitDiffWorkingTree(repoDir, c.Old, contextLines)
	} else {
		raw, err = diff.GitDiffRange(repoDir, c.Old+".."+c.New, contextLines)
	}
	if err != nil {
		return nil, fmt.Errorf("running git diff: %w", err)
	}

	ds, err := diff.Parse(raw)
	if err != nil {
		return nil, err
	}

	skips := filter.Default(cfg.SkipGlobs...)
	kept := ds.Files[:0]
	for _, f := range ds.Files {
		if !skips.ShouldSkip(f.Path) {
			kept = append(kept, f)
		}
	}
	ds.Files = kept
	return ds, nil
}

// buildSession loads (or creates) the persisted review for the
// comparison and binds it to the freshly parsed hunks. Untracked files
// appear as synthetic hunks when reviewing the working tree.
func buildSession(st *storage.Store, repoDir string, c model.Comparison, contextLines int) (*review.Session, *diff.DiffSet, error) {
	ds, err := loadDiffSet(repoDir, c, contextLines)
	if err != nil {
		return nil, nil, err
	}

	hunks := ds.Hunks()
	if c.WorkingTree {
		skips := filter.Default(cfg.SkipGlobs...)
		untracked, uerr := diff.UntrackedFiles(repoDir)
		if uerr == nil {
			for _, path := range untracked {
				if !skips.ShouldSkip(path) {
					hunks = append(hunks, diff.UntrackedHunk(path))
				}
			}
		}
	}

	state, err := st.Load(repoDir, c)
	if err != nil {
		return nil, nil, err
	}

	sess := review.NewSession(state, hunks)
	if len(sess.TrustList()) == 0 && len(cfg.TrustList) > 0 {
		sess.SetTrustList(cfg.TrustList)
	}
	if cfg.AutoApproveStaged {
		sess.SetAutoApproveStaged(true)
	}
	if staged, serr := diff.StagedFiles(repoDir); serr == nil {
		sess.SetStagedFiles(staged)
	}
	return sess, ds, nil
}

// saveSession persists the session, skipping the write when nothing
// changed since load: re-saving a freshly loaded state would carry the
// same version the file already has and trip the conflict check.
func saveSession(st *storage.Store, repoDir string, sess *review.Session) error {
	if !sess.Dirty() {
		return nil
	}
	state := sess.Snapshot()
	if err := st.Save(repoDir, &state); err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	return nil
}

// resolveIDs expands each argument to a hunk id: an exact id, a unique
// id prefix, or a file path (selecting every hunk in that file).
func resolveIDs(sess *review.Session, args []string) ([]string, error) {
	all := sess.CurrentHunkIDs()
	var out []string
	for _, arg := range args {
		matched, err := resolveOne(all, arg)
		if err != nil {
			return nil, err
		}
		out = append(out, matched...)
	}
	return out, nil
}

func resolveOne(all []string, arg string) ([]string, error) {
	var byPrefix, byFile []string
	for _, id := range all {
		if id == arg {
			return []string{id}, nil
		}
		if strings.HasPrefix(id, arg) {
			byPrefix = append(byPrefix, id)
		}
		if file, _, ok := strings.Cut(id, ":"); ok && file == arg {
			byFile = append(byFile, id)
		}
	}
	if len(byFile) > 0 {
		return byFile, nil
	}
	switch len(byPrefix) {
	case 0:
		return nil, fmt.Errorf("no hunk matches %q", arg)
	case 1:
		return byPrefix, nil
	default:
		return nil, fmt.Errorf("ambiguous prefix %q matches %s", arg, strings.Join(byPrefix, ", "))
	}
}

func printCounts(c review.Counts) {
	fmt.Printf("%d hunk(s): %d pending, %d approved, %d rejected, %d saved for later, %d trusted",
		c.Total, c.Pending, c.Approved, c.Rejected, c.SavedForLater, c.Trusted)
	if c.StagedAutoApproved > 0 {
		fmt.Printf(", %d staged", c.StagedAutoApproved)
	}
	fmt.Println()
}

func printStatuses(sess *review.Session) {
	byFile := sess.StatusByFile()
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	statuses := sess.ResolveAll()
	for _, file := range files {
		fmt.Printf("  %s\n", file)
		for _, h := range sess.Hunks() {
			if h.FilePath != file {
				continue
			}
			fmt.Printf("    %-18s %s\n", statuses[h.ID], h.ID)
		}
	}
}
