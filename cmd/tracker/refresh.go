package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/report"
)

func init() {
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(scanAllCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <squad>",
	Short: "Refresh one squad's player stats unless they are still fresh, then show the top players.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]
		return withTracker(ctx, func(t interfaces.Tracker) error {
			res, err := t.RefreshSquad(ctx, name)
			printWarnings(cmd, res.Warnings)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.FromCache {
				fmt.Fprintf(out, "%s is fresh, showing cached stats\n", name)
			} else {
				fmt.Fprintf(out, "%s refreshed: %d of %d players have recent sales\n", name, len(res.Players), res.Attempted)
			}

			top, err := t.GetTop(ctx, name, cfg.Ranking.TopN)
			if err != nil {
				return err
			}
			report.TopPlayers(out, name, top)
			return nil
		})
	},
}

var scanAllCmd = &cobra.Command{
	Use:   "scan-all",
	Short: "Refresh every known squad in turn, skipping fresh ones.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withTracker(ctx, func(t interfaces.Tracker) error {
			summary, err := t.RefreshAll(ctx)
			printWarnings(cmd, summary.Warnings)
			if err != nil {
				return err
			}
			report.Summary(cmd.OutOrStdout(), summary)
			return nil
		})
	},
}
