package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
)

// MemStore is an in-memory Store used by tests and the "memory" driver.
// A single mutex guards all maps; the (user, lead) uniqueness constraint
// is enforced the same way the SQL backends do, so matcher behavior
// under concurrent allocation is identical.
type MemStore struct {
	mu     sync.Mutex
	users  map[string]model.User
	leads  map[string]model.Lead
	allocs map[string]model.Allocation // keyed by userID + "/" + leadID
}

// NewMem creates an empty in-memory store.
func NewMem() *MemStore {
	return &MemStore{
		users:  make(map[string]model.User),
		leads:  make(map[string]model.Lead),
		allocs: make(map[string]model.Allocation),
	}
}

func (s *MemStore) Migrate(ctx context.Context) error { return nil }
func (s *MemStore) Close() error                      { return nil }

func allocKey(userID, leadID string) string { return userID + "/" + leadID }

func (s *MemStore) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, eris.Wrapf(model.ErrDuplicate, "mem: user email %s already registered", u.Email)
		}
	}
	out := *u
	out.ID = uuid.New().String()
	out.CreatedAt = time.Now().UTC()
	s.users[out.ID] = out
	return &out, nil
}

func (s *MemStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, eris.Wrapf(model.ErrNotFound, "mem: user %s", id)
	}
	return &u, nil
}

func (s *MemStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, eris.Wrapf(model.ErrNotFound, "mem: user email %s", email)
}

func (s *MemStore) UpdateUserPreferences(ctx context.Context, userID string, prefs model.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return eris.Wrapf(model.ErrNotFound, "mem: user %s", userID)
	}
	u.MaxRadiusKm = prefs.MaxRadiusKm
	u.Categories = prefs.Categories
	s.users[userID] = u
	return nil
}

func (s *MemStore) CreateLead(ctx context.Context, l *model.Lead) (*model.Lead, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *l
	out.ID = uuid.New().String()
	if out.Source == "" {
		out.Source = model.SourceManual
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	s.leads[out.ID] = out
	return &out, nil
}

func (s *MemStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, eris.Wrapf(model.ErrNotFound, "mem: lead %s", id)
	}
	return &l, nil
}

func (s *MemStore) FindLeadBySource(ctx context.Context, source model.LeadSource, externalID string) (*model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.leads {
		if l.Source == source && l.ExternalID == externalID {
			out := l
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemStore) ListUnseenLeads(ctx context.Context, userID string) ([]model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var leads []model.Lead
	for _, l := range s.leads {
		if _, seen := s.allocs[allocKey(userID, l.ID)]; !seen {
			leads = append(leads, l)
		}
	}
	return leads, nil
}

func (s *MemStore) AllocateLeads(ctx context.Context, userID string, leadIDs []string, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted []string
	for _, leadID := range leadIDs {
		key := allocKey(userID, leadID)
		if _, exists := s.allocs[key]; exists {
			continue
		}
		s.allocs[key] = model.Allocation{
			ID:         uuid.New().String(),
			UserID:     userID,
			LeadID:     leadID,
			Status:     model.StatusNew,
			AssignedAt: now.UTC(),
		}
		inserted = append(inserted, leadID)
	}
	return inserted, nil
}

func (s *MemStore) ListAllocations(ctx context.Context, userID string) ([]model.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var allocs []model.Allocation
	for _, a := range s.allocs {
		if a.UserID == userID {
			allocs = append(allocs, a)
		}
	}
	return allocs, nil
}

func (s *MemStore) SetAllocationStatus(ctx context.Context, userID, leadID string, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := allocKey(userID, leadID)
	a, ok := s.allocs[key]
	if !ok {
		return eris.Wrapf(model.ErrNotFound, "mem: allocation %s", key)
	}
	a.Status = status
	s.allocs[key] = a
	return nil
}
