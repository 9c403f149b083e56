package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Deanthehandyman/Newleadsdaily/internal/config"
)

var configInitPath string

var configInitCmd = &cobra.Command{
	Use:   "config-init",
	Short: "Write a config file with all defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configInitPath); err == nil {
			return eris.Errorf("%s already exists, refusing to overwrite", configInitPath)
		}

		out, err := yaml.Marshal(config.Default())
		if err != nil {
			return eris.Wrap(err, "marshal default config")
		}
		if err := os.WriteFile(configInitPath, out, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", configInitPath)
		}

		zap.L().Info("config written", zap.String("path", configInitPath))
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "out", "config.yaml", "output path")
	rootCmd.AddCommand(configInitCmd)
}
