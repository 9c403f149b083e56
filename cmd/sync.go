package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Deanthehandyman/Newleadsdaily/internal/feed"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull new leads from the external feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Feed.URL == "" {
			return eris.New("feed URL is required (NEWLEADS_FEED_URL)")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		client := feed.NewClient(feed.Options{
			URL:            cfg.Feed.URL,
			APIKey:         cfg.Feed.APIKey,
			RequestsPerSec: cfg.Feed.RequestsPerSec,
			Burst:          cfg.Feed.Burst,
			Timeout:        time.Duration(cfg.Feed.TimeoutSecs) * time.Second,
			MaxRetries:     cfg.Feed.MaxRetries,
		})

		res, err := feed.Sync(ctx, st, client)
		if err != nil {
			return eris.Wrap(err, "feed sync")
		}

		zap.L().Info("sync complete",
			zap.Int("created", res.Created),
			zap.Int("duplicates", res.Duplicates),
			zap.Int("invalid", res.Invalid),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
