package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sprite-ai/vouch/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "vouch",
	Short: "Review AI-generated changes hunk by hunk",
	Long: `vouch tracks your review of a diff at hunk granularity: approve,
reject, or defer each change, trust whole categories of mechanical
edits, and pick up exactly where you left off. State persists per
repository and comparison under ~/.vouch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// cfg is loaded once before any subcommand runs.
var cfg config.Config

// log writes human-readable output to stderr so stdout stays pipeable.
var log zerolog.Logger

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(
		openCmd,
		statusCmd,
		approveCmd,
		rejectCmd,
		laterCmd,
		unapproveCmd,
		trustCmd,
		untrustCmd,
		classifyCmd,
		listCmd,
		deleteCmd,
		reviewCmd,
		serveCmd,
		versionCmd,
	)
}

func initConfig() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		cfg = config.Default()
	}

	level, lerr := zerolog.ParseLevel(cfg.LogLevel)
	if lerr != nil {
		level = zerolog.InfoLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	if err != nil {
		log.Warn().Err(err).Msg("config file unreadable, using defaults")
	}
}

// Execute runs the root command. Errors are printed here so main stays
// a one-liner.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return err
	}
	return nil
}
