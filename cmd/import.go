package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Deanthehandyman/Newleadsdaily/internal/importer"
)

var importCSVPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a CSV file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := importer.ImportCSV(ctx, st, importCSVPath, cfg.Import.MaxConcurrent)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("created", res.Created),
			zap.Int("skipped", res.Skipped),
			zap.String("csv", importCSVPath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
