package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/vouch/internal/diff"
	"github.com/sprite-ai/vouch/internal/storage"
)

var openCmd = &cobra.Command{
	Use:   "open [range]",
	Short: "Start or resume a review for a comparison",
	Long: `Parse the diff for a comparison and create (or resume) its review.

Examples:
  vouch open                 # working tree vs HEAD
  vouch open main..HEAD      # branch against main
  vouch open main            # working tree vs main`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpen,
}

var statusCmd = &cobra.Command{
	Use:   "status [range]",
	Short: "Show review progress for a comparison",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	openCmd.Flags().IntP("context", "C", 3, "lines of context around changes")
	statusCmd.Flags().IntP("context", "C", 3, "lines of context around changes")
	statusCmd.Flags().BoolP("verbose", "v", false, "list every hunk with its status")
}

func runOpen(cmd *cobra.Command, args []string) error {
	contextLines, _ := cmd.Flags().GetInt("context")
	c := parseComparison(args)

	repoDir, err := diff.RepoRoot()
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}
	st, err := storage.Open()
	if err != nil {
		return err
	}

	// Create the review file up front so a fresh open is listable even
	// when no mutation follows.
	if err := st.Ensure(repoDir, c); err != nil {
		return err
	}

	sess, ds, err := buildSession(st, repoDir, c, contextLines)
	if err != nil {
		return err
	}
	if err := saveSession(st, repoDir, sess); err != nil {
		return err
	}

	files, added, deleted := ds.Stats()
	fmt.Printf("Review %s: %d file(s), +%d -%d\n", c.Key, files, added, deleted)
	printCounts(sess.Counts())
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	contextLines, _ := cmd.Flags().GetInt("context")
	c := parseComparison(args)

	repoDir, err := diff.RepoRoot()
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}
	st, err := storage.Open()
	if err != nil {
		return err
	}

	sess, _, err := buildSession(st, repoDir, c, contextLines)
	if err != nil {
		return err
	}

	fmt.Printf("Review %s (v%d)\n", c.Key, sess.Version())
	printCounts(sess.Counts())

	if tl := sess.TrustList(); len(tl) > 0 {
		fmt.Printf("Trusted patterns: %v\n", tl)
	}
	if sess.ClassificationStale() {
		fmt.Println("Classification is stale; re-run `vouch classify`.")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Println()
		printStatuses(sess)
	}
	return nil
}
