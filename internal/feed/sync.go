package feed

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
	"github.com/Deanthehandyman/Newleadsdaily/internal/store"
)

// Result summarizes one feed sync.
type Result struct {
	Created    int
	Duplicates int
	Invalid    int
}

// Sync pulls every page from the feed and inserts leads not yet present
// in the pool. Dedup key is (source="feed", external_id); entries
// already imported are counted and skipped. Invalid entries are logged
// and skipped, never failing the sync.
func Sync(ctx context.Context, st store.Store, c *Client) (Result, error) {
	var res Result
	cursor := ""

	for {
		page, err := c.fetchPage(ctx, cursor)
		if err != nil {
			return res, err
		}

		for _, entry := range page.Leads {
			if entry.ID == "" {
				res.Invalid++
				zap.L().Warn("feed entry missing id", zap.String("name", entry.Name))
				continue
			}

			existing, err := st.FindLeadBySource(ctx, model.SourceFeed, entry.ID)
			if err != nil {
				return res, eris.Wrapf(err, "feed: dedup lookup for %s", entry.ID)
			}
			if existing != nil {
				res.Duplicates++
				continue
			}

			lead := &model.Lead{
				Source:     model.SourceFeed,
				ExternalID: entry.ID,
				Name:       entry.Name,
				Phone:      entry.Phone,
				Email:      entry.Email,
				Address:    entry.Address,
				Lat:        entry.Lat,
				Lng:        entry.Lng,
				Categories: model.Categories{
					Handyman:  entry.Handyman,
					Starlink:  entry.Starlink,
					SmartHome: entry.SmartHome,
				},
			}
			if _, err := st.CreateLead(ctx, lead); err != nil {
				if eris.Is(err, model.ErrInvalidArgument) {
					res.Invalid++
					zap.L().Warn("skipping invalid feed entry",
						zap.String("external_id", entry.ID),
						zap.Error(err),
					)
					continue
				}
				return res, eris.Wrapf(err, "feed: insert lead %s", entry.ID)
			}
			res.Created++
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	zap.L().Info("feed sync complete",
		zap.Int("created", res.Created),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("invalid", res.Invalid),
	)
	return res, nil
}
