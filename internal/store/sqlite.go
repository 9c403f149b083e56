package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	home_lat      REAL NOT NULL,
	home_lng      REAL NOT NULL,
	is_handyman   INTEGER NOT NULL DEFAULT 0,
	is_starlink   INTEGER NOT NULL DEFAULT 0,
	is_smarthome  INTEGER NOT NULL DEFAULT 0,
	max_radius_km INTEGER NOT NULL DEFAULT 50,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL DEFAULT 'manual',
	external_id  TEXT,
	name         TEXT NOT NULL,
	phone        TEXT,
	email        TEXT,
	address      TEXT,
	lat          REAL NOT NULL,
	lng          REAL NOT NULL,
	is_handyman  INTEGER NOT NULL DEFAULT 0,
	is_starlink  INTEGER NOT NULL DEFAULT 0,
	is_smarthome INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS allocations (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(id),
	lead_id     TEXT NOT NULL REFERENCES leads(id),
	status      TEXT NOT NULL DEFAULT 'new',
	assigned_at DATETIME NOT NULL,
	UNIQUE (user_id, lead_id)
);

CREATE INDEX IF NOT EXISTS idx_allocations_user_id ON allocations(user_id);
CREATE INDEX IF NOT EXISTS idx_leads_source_external ON leads(source, external_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteLeadCols = `id, source, external_id, name, phone, email, address, lat, lng, is_handyman, is_starlink, is_smarthome, created_at`

func (s *SQLiteStore) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	out := *u
	out.ID = uuid.New().String()
	out.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, home_lat, home_lng, is_handyman, is_starlink, is_smarthome, max_radius_km, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.Name, out.Email, out.HomeLat, out.HomeLng,
		out.Categories.Handyman, out.Categories.Starlink, out.Categories.SmartHome,
		out.MaxRadiusKm, out.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, eris.Wrapf(model.ErrDuplicate, "sqlite: user email %s already registered", out.Email)
		}
		return nil, eris.Wrap(err, "sqlite: insert user")
	}
	return &out, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, home_lat, home_lng, is_handyman, is_starlink, is_smarthome, max_radius_km, created_at
		 FROM users WHERE id = ?`, id)
	return scanSQLiteUser(row)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, home_lat, home_lng, is_handyman, is_starlink, is_smarthome, max_radius_km, created_at
		 FROM users WHERE email = ?`, email)
	return scanSQLiteUser(row)
}

func (s *SQLiteStore) UpdateUserPreferences(ctx context.Context, userID string, prefs model.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET max_radius_km = ?, is_handyman = ?, is_starlink = ?, is_smarthome = ? WHERE id = ?`,
		prefs.MaxRadiusKm, prefs.Categories.Handyman, prefs.Categories.Starlink, prefs.Categories.SmartHome, userID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update preferences for user %s", userID)
	}
	return checkRowsAffected(res, "user", userID)
}

func (s *SQLiteStore) CreateLead(ctx context.Context, l *model.Lead) (*model.Lead, error) {
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (`+sqliteLeadCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, string(out.Source), out.ExternalID, out.Name, out.Phone, out.Email, out.Address,
		out.Lat, out.Lng,
		out.Categories.Handyman, out.Categories.Starlink, out.Categories.SmartHome,
		out.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert lead")
	}
	return &out, nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteLeadCols+` FROM leads WHERE id = ?`, id)
	l, err := scanSQLiteLead(row)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, eris.Wrapf(model.ErrNotFound, "sqlite: lead %s", id)
	}
	return l, nil
}

func (s *SQLiteStore) FindLeadBySource(ctx context.Context, source model.LeadSource, externalID string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteLeadCols+` FROM leads WHERE source = ? AND external_id = ? LIMIT 1`,
		string(source), externalID)
	return scanSQLiteLead(row)
}

func (s *SQLiteStore) ListUnseenLeads(ctx context.Context, userID string) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteLeadCols+` FROM leads
		 WHERE id NOT IN (SELECT lead_id FROM allocations WHERE user_id = ?)`,
		userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list unseen leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanSQLiteLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate unseen leads")
}

func (s *SQLiteStore) AllocateLeads(ctx context.Context, userID string, leadIDs []string, now time.Time) ([]string, error) {
	if len(leadIDs) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin allocate tx")
	}
	defer tx.Rollback()

	var inserted []string
	for _, leadID := range leadIDs {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO allocations (id, user_id, lead_id, status, assigned_at) VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), userID, leadID, string(model.StatusNew), now.UTC(),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: allocate lead %s", leadID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: allocate rows affected")
		}
		if n > 0 {
			inserted = append(inserted, leadID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit allocate tx")
	}
	return inserted, nil
}

func (s *SQLiteStore) ListAllocations(ctx context.Context, userID string) ([]model.Allocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, lead_id, status, assigned_at FROM allocations WHERE user_id = ? ORDER BY assigned_at`,
		userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list allocations")
	}
	defer rows.Close()

	var allocs []model.Allocation
	for rows.Next() {
		var a model.Allocation
		var status string
		if err := rows.Scan(&a.ID, &a.UserID, &a.LeadID, &status, &a.AssignedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan allocation")
		}
		a.Status = model.Status(status)
		allocs = append(allocs, a)
	}
	return allocs, eris.Wrap(rows.Err(), "sqlite: iterate allocations")
}

func (s *SQLiteStore) SetAllocationStatus(ctx context.Context, userID, leadID string, status model.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE allocations SET status = ? WHERE user_id = ? AND lead_id = ?`,
		string(status), userID, leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set status for (%s, %s)", userID, leadID)
	}
	return checkRowsAffected(res, "allocation", userID+"/"+leadID)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(model.ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLiteUser(row scannable) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HomeLat, &u.HomeLng,
		&u.Categories.Handyman, &u.Categories.Starlink, &u.Categories.SmartHome,
		&u.MaxRadiusKm, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(model.ErrNotFound, "sqlite: user")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan user")
	}
	return &u, nil
}

// scanSQLiteLead returns (nil, nil) on no rows; callers that require a
// hit translate that to ErrNotFound.
func scanSQLiteLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var source string
	var externalID, phone, email, address sql.NullString
	err := row.Scan(&l.ID, &source, &externalID, &l.Name, &phone, &email, &address,
		&l.Lat, &l.Lng,
		&l.Categories.Handyman, &l.Categories.Starlink, &l.Categories.SmartHome,
		&l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan lead")
	}
	l.Source = model.LeadSource(source)
	l.ExternalID = externalID.String
	l.Phone = phone.String
	l.Email = email.String
	l.Address = address.String
	return &l, nil
}
