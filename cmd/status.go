package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Deanthehandyman/Newleadsdaily/internal/matcher"
	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
)

var (
	statusUserID string
	statusLeadID string
	statusValue  string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Update the follow-up status of an allocated lead",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		engine := matcher.New(st)
		if err := engine.SetStatus(ctx, statusUserID, statusLeadID, model.Status(statusValue)); err != nil {
			return err
		}

		zap.L().Info("status updated",
			zap.String("user_id", statusUserID),
			zap.String("lead_id", statusLeadID),
			zap.String("status", statusValue),
		)
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusUserID, "user", "", "user ID (required)")
	statusCmd.Flags().StringVar(&statusLeadID, "lead", "", "lead ID (required)")
	statusCmd.Flags().StringVar(&statusValue, "status", "", "new status: new, contacted, not_interested, won, lost (required)")
	_ = statusCmd.MarkFlagRequired("user")
	_ = statusCmd.MarkFlagRequired("lead")
	_ = statusCmd.MarkFlagRequired("status")
	rootCmd.AddCommand(statusCmd)
}
