package main

import (
	"github.com/spf13/cobra"

	"totw-tracker/internal/analyzer"
	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/report"
)

var (
	topN      int
	lowValue  bool
	threshold int64
)

func init() {
	topCmd.Flags().IntVarP(&topN, "count", "n", 0, "How many players to show (default from ranking.top_n).")
	topCmd.Flags().BoolVar(&lowValue, "low-value", false, "Only rank players whose trend value is below the threshold.")
	topCmd.Flags().Int64Var(&threshold, "threshold", 0, "Trend value cut-off for --low-value (default from ranking.low_value_threshold).")
	rootCmd.AddCommand(topCmd)
}

var topCmd = &cobra.Command{
	Use:   "top <squad> [-n 5] [--low-value] [--threshold 100000]",
	Short: "Rank a squad's cached players by profit margin without fetching.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		var filters []interfaces.PlayerFilter
		if lowValue {
			limit := threshold
			if limit <= 0 {
				limit = cfg.Ranking.LowValueThreshold
			}
			filters = append(filters, analyzer.LowTrend(limit))
		}

		return withTracker(ctx, func(t interfaces.Tracker) error {
			top, err := t.GetTop(ctx, name, topN, filters...)
			if err != nil {
				return err
			}
			report.TopPlayers(cmd.OutOrStdout(), name, top)
			return nil
		})
	},
}
