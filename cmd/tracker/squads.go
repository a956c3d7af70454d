package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/report"
)

var rediscover bool

func init() {
	squadsCmd.Flags().BoolVar(&rediscover, "rediscover", false, "Re-read the squad listing and add squads not yet cached.")
	rootCmd.AddCommand(squadsCmd)
}

var squadsCmd = &cobra.Command{
	Use:   "squads [--rediscover]",
	Short: "List known squads, discovering them on first use.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withTracker(ctx, func(t interfaces.Tracker) error {
			if rediscover {
				added, err := t.Rediscover(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d new squad(s) found\n", added)
			}

			names, err := t.GetSquadList(ctx)
			if err != nil {
				return err
			}
			report.Squads(cmd.OutOrStdout(), names)
			return nil
		})
	},
}
