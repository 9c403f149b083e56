package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newTestMem(t *testing.T) Store {
	t.Helper()
	return NewMem()
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

func TestMemStore(t *testing.T) {
	storeTestSuite(t, newTestMem)
}

func mustCreateUser(t *testing.T, s Store) *model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &model.User{
		Name:        "Dean",
		Email:       "dean@example.com",
		HomeLat:     32.9954,
		HomeLng:     -94.9652,
		Categories:  model.Categories{Handyman: true},
		MaxRadiusKm: 50,
	})
	require.NoError(t, err)
	return u
}

func mustCreateLead(t *testing.T, s Store, name string) *model.Lead {
	t.Helper()
	l, err := s.CreateLead(context.Background(), &model.Lead{
		Name:       name,
		Lat:        33.0,
		Lng:        -95.0,
		Categories: model.Categories{Handyman: true},
	})
	require.NoError(t, err)
	return l
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateAndGetUser", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := mustCreateUser(t, s)
		assert.NotEmpty(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())

		got, err := s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "dean@example.com", got.Email)
		assert.Equal(t, 50, got.MaxRadiusKm)
		assert.True(t, got.Categories.Handyman)
		assert.False(t, got.Categories.Starlink)
	})

	t.Run("GetUserNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetUser(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, eris.Is(err, model.ErrNotFound))
	})

	t.Run("GetUserByEmail", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := mustCreateUser(t, s)

		got, err := s.GetUserByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = s.GetUserByEmail(ctx, "nobody@example.com")
		require.Error(t, err)
		assert.True(t, eris.Is(err, model.ErrNotFound))
	})

	t.Run("DuplicateEmailRejected", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		mustCreateUser(t, s)
		_, err := s.CreateUser(ctx, &model.User{
			Name:        "Other",
			Email:       "dean@example.com",
			HomeLat:     0,
			HomeLng:     0,
			MaxRadiusKm: 10,
		})
		require.Error(t, err)
		assert.True(t, eris.Is(err, model.ErrDuplicate))
	})

	t.Run("CreateUserValidation", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		cases := []model.User{
			{Email: "a@b.c", HomeLat: 0, HomeLng: 0, MaxRadiusKm: 10},               // no name
			{Name: "A", HomeLat: 0, HomeLng: 0, MaxRadiusKm: 10},                    // no email
			{Name: "A", Email: "a@b.c", HomeLat: 91, HomeLng: 0, MaxRadiusKm: 10},   // bad lat
			{Name: "A", Email: "a@b.c", HomeLat: 0, HomeLng: -181, MaxRadiusKm: 10}, // bad lng
			{Name: "A", Email: "a@b.c", HomeLat: 0, HomeLng: 0, MaxRadiusKm: 0},     // no radius
		}
		for _, c := range cases {
			_, err := s.CreateUser(ctx, &c)
			require.Error(t, err)
			assert.True(t, eris.Is(err, model.ErrInvalidArgument))
		}
	})

	t.Run("UpdateUserPreferences", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := mustCreateUser(t, s)

		err := s.UpdateUserPreferences(ctx, u.ID, model.Preferences{
			MaxRadiusKm: 120,
			Categories:  model.Categories{Starlink: true, SmartHome: true},
		})
		require.NoError(t, err)

		got, err := s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 120, got.MaxRadiusKm)
		assert.False(t, got.Categories.Handyman)
		assert.True(t, got.Categories.Starlink)
		assert.True(t, got.Categories.SmartHome)

		err = s.UpdateUserPreferences(ctx, "missing", model.Preferences{MaxRadiusKm: 10})
		require.Error(t, err)
		assert.True(t, eris.Is(err, model.ErrNotFound))
	})

	t.Run("CreateLeadDefaults", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		l := mustCreateLead(t, s, "Acme Plumbing")
		assert.NotEmpty(t, l.ID)
		assert.Equal(t, model.SourceManual, l.Source)
		assert.False(t, l.CreatedAt.IsZero())

		got, err := s.GetLead(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Plumbing", got.Name)
		assert.Equal(t, model.SourceManual, got.Source)

		_, err = s.GetLead(ctx, "missing")
		require.Error(t, err)
		assert.True(t, eris.Is(err, model.ErrNotFound))
	})

	t.Run("CreateLeadValidation", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.CreateLead(ctx, &model.Lead{Lat: 0, Lng: 0})
		require.Error(t, err)
		assert.True(t, eris.Is(err, model.ErrInvalidArgument))

		_, err = s.CreateLead(ctx, &model.Lead{Name: "A", Lat: 95, Lng: 0})
		require.Error(t, err)
		assert.True(t, eris.Is(err, model.ErrInvalidArgument))
	})

	t.Run("FindLeadBySource", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.CreateLead(ctx, &model.Lead{
			Name:       "Feed Lead",
			Lat:        33.0,
			Lng:        -95.0,
			Source:     model.SourceFeed,
			ExternalID: "ext-42",
		})
		require.NoError(t, err)

		got, err := s.FindLeadBySource(ctx, model.SourceFeed, "ext-42")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Feed Lead", got.Name)

		got, err = s.FindLeadBySource(ctx, model.SourceFeed, "ext-43")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ListUnseenLeadsExcludesAllocated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := mustCreateUser(t, s)
		l1 := mustCreateLead(t, s, "one")
		l2 := mustCreateLead(t, s, "two")

		unseen, err := s.ListUnseenLeads(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, unseen, 2)

		_, err = s.AllocateLeads(ctx, u.ID, []string{l1.ID}, time.Now())
		require.NoError(t, err)

		unseen, err = s.ListUnseenLeads(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, unseen, 1)
		assert.Equal(t, l2.ID, unseen[0].ID)
	})

	t.Run("AllocateLeadsSkipsExistingPairs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := mustCreateUser(t, s)
		l1 := mustCreateLead(t, s, "one")
		l2 := mustCreateLead(t, s, "two")
		now := time.Now()

		inserted, err := s.AllocateLeads(ctx, u.ID, []string{l1.ID}, now)
		require.NoError(t, err)
		assert.Equal(t, []string{l1.ID}, inserted)

		// Second attempt includes an already-allocated lead: only the
		// new pair lands, no error.
		inserted, err = s.AllocateLeads(ctx, u.ID, []string{l1.ID, l2.ID}, now)
		require.NoError(t, err)
		assert.Equal(t, []string{l2.ID}, inserted)

		allocs, err := s.ListAllocations(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, allocs, 2)
		for _, a := range allocs {
			assert.Equal(t, model.StatusNew, a.Status)
		}
	})

	t.Run("AllocateLeadsEmpty", func(t *testing.T) {
		s := newStore(t)

		inserted, err := s.AllocateLeads(context.Background(), "any", nil, time.Now())
		require.NoError(t, err)
		assert.Empty(t, inserted)
	})

	t.Run("AllocationsIndependentAcrossUsers", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u1 := mustCreateUser(t, s)
		u2, err := s.CreateUser(ctx, &model.User{
			Name:        "Other",
			Email:       "other@example.com",
			HomeLat:     32.9954,
			HomeLng:     -94.9652,
			MaxRadiusKm: 50,
		})
		require.NoError(t, err)
		l := mustCreateLead(t, s, "shared")

		// The same lead may be allocated to many distinct users.
		ins1, err := s.AllocateLeads(ctx, u1.ID, []string{l.ID}, time.Now())
		require.NoError(t, err)
		ins2, err := s.AllocateLeads(ctx, u2.ID, []string{l.ID}, time.Now())
		require.NoError(t, err)
		assert.Len(t, ins1, 1)
		assert.Len(t, ins2, 1)
	})

	t.Run("SetAllocationStatus", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := mustCreateUser(t, s)
		l := mustCreateLead(t, s, "one")

		err := s.SetAllocationStatus(ctx, u.ID, l.ID, model.StatusContacted)
		require.Error(t, err)
		assert.True(t, eris.Is(err, model.ErrNotFound))

		_, err = s.AllocateLeads(ctx, u.ID, []string{l.ID}, time.Now())
		require.NoError(t, err)

		before, err := s.ListAllocations(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, before, 1)

		err = s.SetAllocationStatus(ctx, u.ID, l.ID, model.StatusContacted)
		require.NoError(t, err)

		after, err := s.ListAllocations(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, model.StatusContacted, after[0].Status)
		assert.WithinDuration(t, before[0].AssignedAt, after[0].AssignedAt, time.Second)
	})
}
