package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
)

var (
	seedName   string
	seedEmail  string
	seedLat    float64
	seedLng    float64
	seedRadius int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the first user with all categories enabled",
	Long:  "Bootstraps a fresh database with one user. Idempotent: if a user with the given email already exists, nothing is created.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		existing, err := st.GetUserByEmail(ctx, seedEmail)
		if err != nil && !eris.Is(err, model.ErrNotFound) {
			return eris.Wrap(err, "seed: lookup user")
		}
		if existing != nil {
			zap.L().Info("user already exists, nothing to do",
				zap.String("email", seedEmail),
				zap.String("user_id", existing.ID),
			)
			return nil
		}

		user, err := st.CreateUser(ctx, &model.User{
			Name:    seedName,
			Email:   seedEmail,
			HomeLat: seedLat,
			HomeLng: seedLng,
			Categories: model.Categories{
				Handyman:  true,
				Starlink:  true,
				SmartHome: true,
			},
			MaxRadiusKm: seedRadius,
		})
		if err != nil {
			return eris.Wrap(err, "seed: create user")
		}

		zap.L().Info("user created",
			zap.String("user_id", user.ID),
			zap.String("email", user.Email),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedName, "name", "Dean", "user display name")
	seedCmd.Flags().StringVar(&seedEmail, "email", "dean@deanshandymanservice.me", "user email")
	seedCmd.Flags().Float64Var(&seedLat, "lat", model.DefaultHomeLat, "home latitude")
	seedCmd.Flags().Float64Var(&seedLng, "lng", model.DefaultHomeLng, "home longitude")
	seedCmd.Flags().IntVar(&seedRadius, "radius-km", 100, "max match radius in km")
	rootCmd.AddCommand(seedCmd)
}
