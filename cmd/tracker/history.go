package main

import (
	"github.com/spf13/cobra"

	"totw-tracker/internal/report"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of snapshots to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history <player> [--limit 20]",
	Short: "Show a player's stats across previous refreshes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		player := args[0]

		h, err := openHistory(ctx, cfg)
		if err != nil {
			return err
		}
		defer h.Close()

		snaps, err := h.PlayerHistory(ctx, player, historyLimit)
		if err != nil {
			return err
		}
		report.History(cmd.OutOrStdout(), player, snaps)
		return nil
	},
}
