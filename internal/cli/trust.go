package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/vouch/internal/diff"
	"github.com/sprite-ai/vouch/internal/review"
	"github.com/sprite-ai/vouch/internal/storage"
	"github.com/sprite-ai/vouch/internal/trust"
)

var trustCmd = &cobra.Command{
	Use:   "trust [pattern]...",
	Short: "Trust classification label patterns",
	Long: `Add label patterns to the trust list. Hunks whose labels match a
trusted pattern resolve as trusted without an explicit decision.

Patterns support '*' wildcards: "formatting:*" trusts every formatting
label, "imports:added" only that one.

Examples:
  vouch trust "formatting:*"
  vouch trust imports:added imports:removed
  vouch trust --taxonomy       # list the built-in labels`,
	RunE: runTrust,
}

var untrustCmd = &cobra.Command{
	Use:   "untrust <pattern>...",
	Short: "Remove patterns from the trust list",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUntrust,
}

func init() {
	trustCmd.Flags().Bool("taxonomy", false, "print the built-in label taxonomy and exit")
	trustCmd.Flags().StringP("range", "r", "", "comparison range (default: working tree vs HEAD)")
	untrustCmd.Flags().StringP("range", "r", "", "comparison range (default: working tree vs HEAD)")
}

func runTrust(cmd *cobra.Command, args []string) error {
	taxonomy, _ := cmd.Flags().GetBool("taxonomy")
	if taxonomy {
		printTaxonomy()
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("no patterns given (try --taxonomy to list labels)")
	}

	return withSession(cmd, func(sess sessionHandle) error {
		for _, p := range args {
			if !trust.KnownPattern(p) && !patternCoversKnown(p) {
				log.Warn().Str("pattern", p).Msg("pattern matches no built-in label")
			}
			sess.s.AddTrustPattern(p)
		}
		fmt.Printf("Trusted patterns: %v\n", sess.s.TrustList())
		printCounts(sess.s.Counts())
		return nil
	})
}

func runUntrust(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(sess sessionHandle) error {
		for _, p := range args {
			sess.s.RemoveTrustPattern(p)
		}
		fmt.Printf("Trusted patterns: %v\n", sess.s.TrustList())
		printCounts(sess.s.Counts())
		return nil
	})
}

// patternCoversKnown reports whether a wildcard pattern matches at
// least one taxonomy label.
func patternCoversKnown(pattern string) bool {
	for _, cat := range trust.Taxonomy() {
		for _, p := range cat.Patterns {
			if trust.Matches(p.ID, pattern) {
				return true
			}
		}
	}
	return false
}

func printTaxonomy() {
	for _, cat := range trust.Taxonomy() {
		fmt.Printf("%s\n", cat.Name)
		for _, p := range cat.Patterns {
			fmt.Printf("  %-22s %s\n", p.ID, p.Description)
		}
		fmt.Println()
	}
}

// sessionHandle bundles what a session-mutating command needs.
type sessionHandle struct {
	s       *review.Session
	repoDir string
	store   *storage.Store
}

// withSession loads the session for the --range flag, runs fn, and
// persists the (possibly mutated) state.
func withSession(cmd *cobra.Command, fn func(sessionHandle) error) error {
	rng, _ := cmd.Flags().GetString("range")
	var rangeArgs []string
	if rng != "" {
		rangeArgs = []string{rng}
	}
	c := parseComparison(rangeArgs)

	repoDir, err := diff.RepoRoot()
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}
	st, err := storage.Open()
	if err != nil {
		return err
	}

	sess, _, err := buildSession(st, repoDir, c, 3)
	if err != nil {
		return err
	}

	if err := fn(sessionHandle{s: sess, repoDir: repoDir, store: st}); err != nil {
		return err
	}
	return saveSession(st, repoDir, sess)
}
