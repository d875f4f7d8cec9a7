package cli

import (
	"log/slog"
	"os"

	"quiz-engine/internal/console"

	"github.com/spf13/cobra"
)

// NewPlayCmd runs the interactive terminal quiz.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		bank    string
		noColor bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			floor := slog.LevelWarn
			if verbose {
				floor = slog.LevelDebug
			}
			logger := newLogger(cfg, os.Stderr, floor)

			ctx := cmd.Context()
			rt, err := buildRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			if bank == "" {
				bank = cfg.Quiz.Bank
			}
			game := console.New(rt.service, bank, cmd.InOrStdin(), cmd.OutOrStdout(),
				console.WithColor(!noColor && isTerminal(os.Stdout)),
				console.WithTop(cfg.Leaderboard.Top),
				console.WithLogger(logger),
			)
			return game.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&bank, "bank", "", "question bank to play (overrides quiz.bank)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log engine events to stderr")
	return cmd
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
