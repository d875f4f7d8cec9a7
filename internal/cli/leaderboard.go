package cli

import (
	"fmt"
	"log/slog"
	"os"

	"quiz-engine/internal/console"

	"github.com/spf13/cobra"
)

// NewLeaderboardCmd prints the current top scores.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rt, err := buildRuntime(ctx, cfg, newLogger(cfg, os.Stderr, slog.LevelWarn))
			if err != nil {
				return err
			}
			defer rt.Close()

			if top == 0 {
				top = cfg.Leaderboard.Top
			}
			entries, err := rt.service.TopScores(ctx, top)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No scores yet.")
				return nil
			}
			fmt.Fprint(out, console.FormatLeaderboard(entries))
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "number of entries to show (defaults to leaderboard.top)")
	return cmd
}
