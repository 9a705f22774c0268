package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eic-hr/eic/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "eic",
	Short: "External insight collector",
	Long:  "Collects HR and labor policy news from RSS feeds, enriches it with Claude, stores it as monthly JSONL, and publishes a daily GitHub Discussion and Slack summary.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
