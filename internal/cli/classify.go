package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/vouch/internal/classify"
	"github.com/sprite-ai/vouch/internal/model"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Run the static classifier over the current hunks",
	Long: `Label mechanical changes (moves, lockfiles, whitespace, style,
comments, imports) without calling out to a model. Labels combine with
the trust list: a hunk whose label matches a trusted pattern no longer
needs an explicit decision.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringP("range", "r", "", "comparison range (default: working tree vs HEAD)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(h sessionHandle) error {
		results := classify.Static(h.s.Hunks())
		classify.Apply(h.s, results, nil, model.ViaStatic)

		byLabel := make(map[string]int)
		for _, res := range results {
			for _, label := range res.Label {
				byLabel[label]++
			}
		}
		labels := make([]string, 0, len(byLabel))
		for l := range byLabel {
			labels = append(labels, l)
		}
		sort.Strings(labels)

		fmt.Printf("Classified %d of %d hunk(s)\n", len(results), len(h.s.Hunks()))
		for _, l := range labels {
			fmt.Printf("  %-24s %d\n", l, byLabel[l])
		}
		printCounts(h.s.Counts())
		return nil
	})
}
