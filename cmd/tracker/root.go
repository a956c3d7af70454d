package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/store"
)

var (
	configPath string
	cfg        *store.Config
)

var rootCmd = &cobra.Command{
	Use:           "tracker",
	Short:         "tracker follows team-of-the-week squads and ranks players by resale margin.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		cfg = c
		initializeTracing(cmd.Context(), cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML config; defaults apply when missing.")
}

// withTracker runs fn against a fully wired tracker and releases it afterwards
func withTracker(ctx context.Context, fn func(t interfaces.Tracker) error) error {
	t, cleanup, err := initializeTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(t)
}

// printWarnings reports cache files that were unreadable and treated as empty
func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}
