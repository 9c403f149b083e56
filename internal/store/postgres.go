package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Deanthehandyman/Newleadsdaily/internal/db"
	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	home_lat      DOUBLE PRECISION NOT NULL,
	home_lng      DOUBLE PRECISION NOT NULL,
	is_handyman   BOOLEAN NOT NULL DEFAULT false,
	is_starlink   BOOLEAN NOT NULL DEFAULT false,
	is_smarthome  BOOLEAN NOT NULL DEFAULT false,
	max_radius_km INTEGER NOT NULL DEFAULT 50,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source       TEXT NOT NULL DEFAULT 'manual',
	external_id  TEXT,
	name         TEXT NOT NULL,
	phone        TEXT,
	email        TEXT,
	address      TEXT,
	lat          DOUBLE PRECISION NOT NULL,
	lng          DOUBLE PRECISION NOT NULL,
	is_handyman  BOOLEAN NOT NULL DEFAULT false,
	is_starlink  BOOLEAN NOT NULL DEFAULT false,
	is_smarthome BOOLEAN NOT NULL DEFAULT false,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS allocations (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id     TEXT NOT NULL REFERENCES users(id),
	lead_id     TEXT NOT NULL REFERENCES leads(id),
	status      TEXT NOT NULL DEFAULT 'new',
	assigned_at TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, lead_id)
);

CREATE INDEX IF NOT EXISTS idx_allocations_user_id ON allocations(user_id);
CREATE INDEX IF NOT EXISTS idx_leads_source_external ON leads(source, external_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const pgLeadCols = `id, source, external_id, name, phone, email, address, lat, lng, is_handyman, is_starlink, is_smarthome, created_at`

func (s *PostgresStore) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	out := *u
	out.ID = uuid.New().String()
	out.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, home_lat, home_lng, is_handyman, is_starlink, is_smarthome, max_radius_km, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		out.ID, out.Name, out.Email, out.HomeLat, out.HomeLng,
		out.Categories.Handyman, out.Categories.Starlink, out.Categories.SmartHome,
		out.MaxRadiusKm, out.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, eris.Wrapf(model.ErrDuplicate, "postgres: user email %s already registered", out.Email)
		}
		return nil, eris.Wrap(err, "postgres: insert user")
	}
	return &out, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, email, home_lat, home_lng, is_handyman, is_starlink, is_smarthome, max_radius_km, created_at
		 FROM users WHERE id = $1`, id)
	return scanPGUser(row)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, email, home_lat, home_lng, is_handyman, is_starlink, is_smarthome, max_radius_km, created_at
		 FROM users WHERE email = $1`, email)
	return scanPGUser(row)
}

func (s *PostgresStore) UpdateUserPreferences(ctx context.Context, userID string, prefs model.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET max_radius_km = $1, is_handyman = $2, is_starlink = $3, is_smarthome = $4 WHERE id = $5`,
		prefs.MaxRadiusKm, prefs.Categories.Handyman, prefs.Categories.Starlink, prefs.Categories.SmartHome, userID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update preferences for user %s", userID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(model.ErrNotFound, "user %s", userID)
	}
	return nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, l *model.Lead) (*model.Lead, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	out := *l
	out.ID = uuid.New().String()
	if out.Source == "" {
		out.Source = model.SourceManual
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (`+pgLeadCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		out.ID, string(out.Source), out.ExternalID, out.Name, out.Phone, out.Email, out.Address,
		out.Lat, out.Lng,
		out.Categories.Handyman, out.Categories.Starlink, out.Categories.SmartHome,
		out.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert lead")
	}
	return &out, nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgLeadCols+` FROM leads WHERE id = $1`, id)
	l, err := scanPGLead(row)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, eris.Wrapf(model.ErrNotFound, "postgres: lead %s", id)
	}
	return l, nil
}

func (s *PostgresStore) FindLeadBySource(ctx context.Context, source model.LeadSource, externalID string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgLeadCols+` FROM leads WHERE source = $1 AND external_id = $2 LIMIT 1`,
		string(source), externalID)
	return scanPGLead(row)
}

func (s *PostgresStore) ListUnseenLeads(ctx context.Context, userID string) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgLeadCols+` FROM leads
		 WHERE id NOT IN (SELECT lead_id FROM allocations WHERE user_id = $1)`,
		userID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list unseen leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanPGLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate unseen leads")
}

func (s *PostgresStore) AllocateLeads(ctx context.Context, userID string, leadIDs []string, now time.Time) ([]string, error) {
	if len(leadIDs) == 0 {
		return nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin allocate tx")
	}
	defer tx.Rollback(ctx)

	var inserted []string
	for _, leadID := range leadIDs {
		tag, err := tx.Exec(ctx,
			`INSERT INTO allocations (id, user_id, lead_id, status, assigned_at) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (user_id, lead_id) DO NOTHING`,
			uuid.New().String(), userID, leadID, string(model.StatusNew), now.UTC(),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: allocate lead %s", leadID)
		}
		if tag.RowsAffected() > 0 {
			inserted = append(inserted, leadID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit allocate tx")
	}
	return inserted, nil
}

func (s *PostgresStore) ListAllocations(ctx context.Context, userID string) ([]model.Allocation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, lead_id, status, assigned_at FROM allocations WHERE user_id = $1 ORDER BY assigned_at`,
		userID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list allocations")
	}
	defer rows.Close()

	var allocs []model.Allocation
	for rows.Next() {
		var a model.Allocation
		var status string
		if err := rows.Scan(&a.ID, &a.UserID, &a.LeadID, &status, &a.AssignedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan allocation")
		}
		a.Status = model.Status(status)
		allocs = append(allocs, a)
	}
	return allocs, eris.Wrap(rows.Err(), "postgres: iterate allocations")
}

func (s *PostgresStore) SetAllocationStatus(ctx context.Context, userID, leadID string, status model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE allocations SET status = $1 WHERE user_id = $2 AND lead_id = $3`,
		string(status), userID, leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set status for (%s, %s)", userID, leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(model.ErrNotFound, "allocation %s/%s", userID, leadID)
	}
	return nil
}

// helpers

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanPGUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HomeLat, &u.HomeLng,
		&u.Categories.Handyman, &u.Categories.Starlink, &u.Categories.SmartHome,
		&u.MaxRadiusKm, &u.CreatedAt)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrap(model.ErrNotFound, "postgres: user")
		}
		return nil, eris.Wrap(err, "postgres: scan user")
	}
	return &u, nil
}

// scanPGLead returns (nil, nil) on no rows; callers that require a hit
// translate that to ErrNotFound.
func scanPGLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	var source string
	var externalID, phone, email, address *string
	err := row.Scan(&l.ID, &source, &externalID, &l.Name, &phone, &email, &address,
		&l.Lat, &l.Lng,
		&l.Categories.Handyman, &l.Categories.Starlink, &l.Categories.SmartHome,
		&l.CreatedAt)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: scan lead")
	}
	l.Source = model.LeadSource(source)
	if externalID != nil {
		l.ExternalID = *externalID
	}
	if phone != nil {
		l.Phone = *phone
	}
	if email != nil {
		l.Email = *email
	}
	if address != nil {
		l.Address = *address
	}
	return &l, nil
}
