package cmd

import (
	"fmt"
	"os"

	"affiliate-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDir is the directory holding .env and config.yaml.
var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "affiliate-sync",
	Short: "Affiliate feed reconciliation service",
	Long: `affiliate-sync keeps the affiliate links of a product catalog in sync with
an affiliate feed. It matches feed records to catalog products by fuzzy
name and brand similarity, patches links onto matches, creates stubs for
unmatched records and queues ambiguous ones for review.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding at debug level gives readable ISO8601 output for CLI errors.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing .env and config.yaml")
}
