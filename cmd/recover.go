package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/timecat/internal"
	"github.com/penwyp/timecat/logging"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Merge bucket files left behind by a crashed run",
	Long: `Re-attempts the rollup merges for hourly and daily bucket files that a
previous run did not consume. Safe to run repeatedly: a bucket is deleted
only after its data is durably merged, and a missing bucket is a no-op.

Run this only while the tracker is stopped; the tracker performs the same
recovery itself on startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.InitGlobalLogger(cfg.App.LogLevel, cfg.App.LogFile)

		if err := internal.RunRecovery(cfg); err != nil {
			return fmt.Errorf("recovery failed: %w", err)
		}
		fmt.Println("recovery complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}
