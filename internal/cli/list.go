package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/vouch/internal/diff"
	"github.com/sprite-ai/vouch/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reviews",
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [range]",
	Short: "Delete the saved review for a comparison",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().Bool("all", false, "list reviews across every known repository")
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := storage.Open()
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	if all {
		summaries, err := st.ListAll()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No saved reviews.")
			return nil
		}
		for _, s := range summaries {
			fmt.Printf("%-24s %-28s %3d hunk(s) reviewed, v%-3d %s\n",
				s.RepoName, s.Comparison.Key, s.Hunks, s.Version, s.UpdatedAt)
		}
		return nil
	}

	repoDir, err := diff.RepoRoot()
	if err != nil {
		return fmt.Errorf("not in a git repository (use --all to list every repo): %w", err)
	}
	summaries, err := st.List(repoDir)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No saved reviews for this repository.")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("%-28s %3d hunk(s) reviewed, v%-3d %s\n",
			s.Comparison.Key, s.Hunks, s.Version, s.UpdatedAt)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	c := parseComparison(args)

	repoDir, err := diff.RepoRoot()
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}
	st, err := storage.Open()
	if err != nil {
		return err
	}

	if err := st.Delete(repoDir, c); err != nil {
		return err
	}
	fmt.Printf("Deleted review %s\n", c.Key)
	return nil
}
