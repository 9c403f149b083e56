package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Deanthehandyman/Newleadsdaily/internal/matcher"
	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
	"github.com/Deanthehandyman/Newleadsdaily/internal/store"
)

var (
	nextUserID string
	nextEmail  string
	nextCount  int
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Allocate and print the next lead batch for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		userID, err := resolveUser(cmd, st)
		if err != nil {
			return err
		}

		count := nextCount
		if count == 0 {
			count = cfg.Match.BatchSize
		}

		engine := matcher.New(st)
		batch, err := engine.NextLeads(ctx, userID, count)
		if err != nil {
			return err
		}

		if len(batch) == 0 {
			fmt.Println("no more leads")
			return nil
		}
		for _, m := range batch {
			fmt.Printf("%-36s  %6.1f km  %s\n", m.Lead.ID, m.DistanceKm, m.Lead.Name)
		}
		return nil
	},
}

// resolveUser turns the --user / --email flags into a user ID.
func resolveUser(cmd *cobra.Command, st store.Store) (string, error) {
	if nextUserID != "" {
		return nextUserID, nil
	}
	if nextEmail != "" {
		u, err := st.GetUserByEmail(cmd.Context(), nextEmail)
		if err != nil {
			return "", err
		}
		return u.ID, nil
	}
	return "", eris.Wrap(model.ErrInvalidArgument, "either --user or --email is required")
}

func init() {
	nextCmd.Flags().StringVar(&nextUserID, "user", "", "user ID")
	nextCmd.Flags().StringVar(&nextEmail, "email", "", "user email (alternative to --user)")
	nextCmd.Flags().IntVar(&nextCount, "count", 0, "batch size (default from config)")
	rootCmd.AddCommand(nextCmd)
}
