package cli

import (
	"github.com/spf13/cobra"

	"github.com/sprite-ai/vouch/internal/review"
)

var approveCmd = &cobra.Command{
	Use:   "approve <hunk-id>...",
	Short: "Approve hunks",
	Long: `Approve one or more hunks. Arguments may be full hunk ids, unique id
prefixes, or file paths (selecting every hunk in the file).`,
	Args: cobra.MinimumNArgs(1),
	RunE: decide(func(s *review.Session, ids []string) { s.Approve(ids...) }),
}

var rejectCmd = &cobra.Command{
	Use:   "reject <hunk-id>...",
	Short: "Reject hunks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  decide(func(s *review.Session, ids []string) { s.Reject(ids...) }),
}

var laterCmd = &cobra.Command{
	Use:   "later <hunk-id>...",
	Short: "Save hunks for later",
	Args:  cobra.MinimumNArgs(1),
	RunE:  decide(func(s *review.Session, ids []string) { s.SaveForLater(ids...) }),
}

var unapproveCmd = &cobra.Command{
	Use:   "unapprove <hunk-id>...",
	Short: "Clear the decision on hunks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  decide(func(s *review.Session, ids []string) { s.Unapprove(ids...) }),
}

func init() {
	for _, cmd := range []*cobra.Command{approveCmd, rejectCmd, laterCmd, unapproveCmd} {
		cmd.Flags().StringP("range", "r", "", "comparison range (default: working tree vs HEAD)")
	}
}

// decide builds a RunE that resolves hunk arguments, applies a
// mutation, and persists the result.
func decide(apply func(*review.Session, []string)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(h sessionHandle) error {
			ids, err := resolveIDs(h.s, args)
			if err != nil {
				return err
			}
			apply(h.s, ids)
			printCounts(h.s.Counts())
			return nil
		})
	}
}
