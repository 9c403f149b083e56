// Package matcher implements the lead matching and allocation engine:
// given a user profile it selects the next batch of unseen,
// category-matching, in-radius leads and durably records the allocation
// before returning it.
package matcher

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Deanthehandyman/Newleadsdaily/internal/geo"
	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
	"github.com/Deanthehandyman/Newleadsdaily/internal/store"
)

// DefaultBatchSize is the batch size used when a caller does not
// specify one.
const DefaultBatchSize = 10

// Match pairs a lead with its distance from the user's home coordinate.
type Match struct {
	Lead       model.Lead `json:"lead"`
	DistanceKm float64    `json:"distance_km"`
}

// Engine selects and allocates lead batches against a Store.
type Engine struct {
	store store.Store
	now   func() time.Time
}

// New creates an Engine backed by the given store.
func New(st store.Store) *Engine {
	return &Engine{store: st, now: time.Now}
}

// NextLeads returns up to count never-before-seen leads for the user,
// ordered by distance ascending with newer leads breaking ties, and
// records one allocation per returned lead in a single transaction.
//
// Repeated calls are not idempotent: each call consumes a fresh batch.
// A batch shorter than count (including empty) is a normal outcome, not
// an error. If a concurrent call for the same user wins the uniqueness
// race on some lead, that lead is dropped from this call's batch.
func (e *Engine) NextLeads(ctx context.Context, userID string, count int) ([]Match, error) {
	if count <= 0 {
		return nil, eris.Wrapf(model.ErrInvalidArgument, "matcher: count must be positive, got %d", count)
	}

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := e.store.ListUnseenLeads(ctx, userID)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(candidates))
	for _, lead := range candidates {
		if !user.Categories.Matches(lead.Categories) {
			continue
		}
		dist := geo.DistanceKm(user.HomeLat, user.HomeLng, lead.Lat, lead.Lng)
		if dist > float64(user.MaxRadiusKm) {
			continue
		}
		matches = append(matches, Match{Lead: lead, DistanceKm: dist})
	}

	// Nearest first; among equally distant leads the newest wins.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].Lead.CreatedAt.After(matches[j].Lead.CreatedAt)
	})

	if len(matches) > count {
		matches = matches[:count]
	}
	if len(matches) == 0 {
		return nil, nil
	}

	leadIDs := make([]string, len(matches))
	for i, m := range matches {
		leadIDs[i] = m.Lead.ID
	}

	inserted, err := e.store.AllocateLeads(ctx, userID, leadIDs, e.now())
	if err != nil {
		return nil, err
	}

	// Keep only the leads this call actually allocated, in sort order.
	insertedSet := make(map[string]bool, len(inserted))
	for _, id := range inserted {
		insertedSet[id] = true
	}
	batch := matches[:0]
	for _, m := range matches {
		if insertedSet[m.Lead.ID] {
			batch = append(batch, m)
		}
	}

	zap.L().Debug("allocated lead batch",
		zap.String("user_id", userID),
		zap.Int("requested", count),
		zap.Int("returned", len(batch)),
		zap.Int("conflict_dropped", len(leadIDs)-len(batch)),
	)
	return batch, nil
}

// SetStatus overwrites the follow-up status of an existing allocation.
// Unknown status values are rejected; a missing (user, lead) allocation
// reports ErrNotFound and is never created here.
func (e *Engine) SetStatus(ctx context.Context, userID, leadID string, status model.Status) error {
	if !status.Valid() {
		return eris.Wrapf(model.ErrInvalidArgument, "matcher: unknown status %q", status)
	}
	return e.store.SetAllocationStatus(ctx, userID, leadID, status)
}
