package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/vouch/internal/diff"
	"github.com/sprite-ai/vouch/internal/storage"
	"github.com/sprite-ai/vouch/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review [range]",
	Short: "Review changes interactively",
	Long: `Open an interactive review of a comparison. Decisions persist when
you quit, so a half-finished review resumes where you left off.

Examples:
  vouch review                 # working tree vs HEAD
  vouch review main..HEAD      # branch against main`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().IntP("context", "C", 3, "lines of context around changes")
}

func runReview(cmd *cobra.Command, args []string) error {
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

	sess, ds, err := buildSession(st, repoDir, c, contextLines)
	if err != nil {
		return err
	}
	if len(sess.Hunks()) == 0 {
		fmt.Println("No changes to review.")
		return nil
	}

	if err := tui.Run(sess, diff.FileTree(ds)); err != nil {
		return err
	}

	if err := saveSession(st, repoDir, sess); err != nil {
		return err
	}
	printCounts(sess.Counts())
	return nil
}
