package store

import (
	"context"
	"time"

	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
)

// Store defines the persistence interface for users, the lead pool, and
// the allocation ledger. All three backends (sqlite, postgres, memory)
// enforce a uniqueness constraint on (user_id, lead_id) so concurrent
// allocation attempts for the same pair cannot both succeed.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserPreferences(ctx context.Context, userID string, prefs model.Preferences) error

	// Lead pool
	CreateLead(ctx context.Context, l *model.Lead) (*model.Lead, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	// FindLeadBySource returns the lead previously imported from an
	// external source, or (nil, nil) when none exists.
	FindLeadBySource(ctx context.Context, source model.LeadSource, externalID string) (*model.Lead, error)
	// ListUnseenLeads returns every lead with no allocation record for
	// the given user. The exclusion set is applied in the query; there
	// is no pagination on this path.
	ListUnseenLeads(ctx context.Context, userID string) ([]model.Lead, error)

	// Allocation ledger
	// AllocateLeads inserts one allocation per lead ID in a single
	// transaction, skipping pairs that already exist. It returns the
	// lead IDs actually inserted, preserving input order; a concurrent
	// writer losing the uniqueness race simply gets a shorter list.
	AllocateLeads(ctx context.Context, userID string, leadIDs []string, now time.Time) ([]string, error)
	ListAllocations(ctx context.Context, userID string) ([]model.Allocation, error)
	// SetAllocationStatus overwrites the status of the (user, lead)
	// allocation, leaving assigned_at untouched. Returns ErrNotFound
	// when the pair has never been allocated; it never creates one.
	SetAllocationStatus(ctx context.Context, userID, leadID string, status model.Status) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
