package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
)

var (
	leadName      string
	leadPhone     string
	leadEmail     string
	leadAddress   string
	leadLat       float64
	leadLng       float64
	leadHandyman  bool
	leadStarlink  bool
	leadSmartHome bool
)

var leadAddCmd = &cobra.Command{
	Use:   "lead-add",
	Short: "Add a single lead to the pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		lead, err := st.CreateLead(ctx, &model.Lead{
			Name:    leadName,
			Phone:   leadPhone,
			Email:   leadEmail,
			Address: leadAddress,
			Lat:     leadLat,
			Lng:     leadLng,
			Categories: model.Categories{
				Handyman:  leadHandyman,
				Starlink:  leadStarlink,
				SmartHome: leadSmartHome,
			},
		})
		if err != nil {
			return err
		}

		zap.L().Info("lead created",
			zap.String("lead_id", lead.ID),
			zap.String("name", lead.Name),
		)
		return nil
	},
}

func init() {
	leadAddCmd.Flags().StringVar(&leadName, "name", "", "lead name (required)")
	leadAddCmd.Flags().StringVar(&leadPhone, "phone", "", "phone number")
	leadAddCmd.Flags().StringVar(&leadEmail, "email", "", "email address")
	leadAddCmd.Flags().StringVar(&leadAddress, "address", "", "street address")
	leadAddCmd.Flags().Float64Var(&leadLat, "lat", 0, "latitude (required)")
	leadAddCmd.Flags().Float64Var(&leadLng, "lng", 0, "longitude (required)")
	leadAddCmd.Flags().BoolVar(&leadHandyman, "handyman", false, "needs handyman work")
	leadAddCmd.Flags().BoolVar(&leadStarlink, "starlink", false, "needs satellite internet install")
	leadAddCmd.Flags().BoolVar(&leadSmartHome, "smarthome", false, "needs smart home install")
	_ = leadAddCmd.MarkFlagRequired("name")
	_ = leadAddCmd.MarkFlagRequired("lat")
	_ = leadAddCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(leadAddCmd)
}
