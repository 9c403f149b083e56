package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Deanthehandyman/Newleadsdaily/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "newleadsdaily",
	Short: "Daily lead batching for local service businesses",
	Long:  "Maintains a shared lead pool and deals each user a daily batch of nearby, category-matched leads they have never seen before.",
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
