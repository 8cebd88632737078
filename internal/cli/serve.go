package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/vouch/internal/api"
	"github.com/sprite-ai/vouch/internal/diff"
	"github.com/sprite-ai/vouch/internal/model"
	"github.com/sprite-ai/vouch/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve [range]",
	Short: "Serve the review over HTTP",
	Long: `Start a local HTTP server exposing the review session.

Endpoints:
  GET  /health                 health check
  GET  /api/review             full review state
  GET  /api/review/tree        aggregated file tree (?view=all|changes|sections)
  GET  /api/review/staleness   artifact staleness
  POST /api/review/approve     (also reject, save-for-later, unapprove)
  PUT  /api/review/trust-list  replace the trust list
  PUT  /api/review/notes       replace the notes
  POST /api/review/classify    run classification
  GET  /api/ws                 websocket version push`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

// saveDelay batches rapid mutations into one disk write.
const saveDelay = 2 * time.Second

func init() {
	serveCmd.Flags().StringP("listen", "l", "", "listen address (default from config)")
	serveCmd.Flags().IntP("context", "C", 3, "lines of context around changes")
}

func runServe(cmd *cobra.Command, args []string) error {
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

	listen, _ := cmd.Flags().GetString("listen")
	if listen == "" {
		listen = cfg.Listen
	}

	saver := storage.NewSaver(st, repoDir, saveDelay, func() *model.ReviewState {
		state := sess.Snapshot()
		return &state
	}, log)
	defer saver.Close()

	srv := api.New(listen, api.Options{
		Session: sess,
		Entries: diff.FileTree(ds),
		Saver:   saver,
		Log:     log,
	})
	log.Info().Str("addr", listen).Str("review", c.Key).Msg("serving review")
	return srv.ListenAndServe()
}
