// Package sqlite backs every domain repository with a single-file SQLite
// database, for single-machine deployments that should not need a Postgres
// server. Opened with WAL and foreign keys on; the FK cascade chain
// patients -> visits -> test_results matches the Postgres schema.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store owns the database handle. Repository views are obtained from the
// accessor methods (Tests, Patients, ...) and share the handle and lock.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tests (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit TEXT,
		normal_range TEXT,
		price TEXT,
		test_type TEXT NOT NULL DEFAULT 'standard',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tests_name ON tests(name);

	CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER,
		gender TEXT,
		phone TEXT,
		source TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS visits (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		patient_name TEXT NOT NULL,
		visit_date TEXT NOT NULL,
		total_cost TEXT,
		test_ids TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_visits_patient ON visits(patient_id);
	CREATE INDEX IF NOT EXISTS idx_visits_date ON visits(visit_date);

	CREATE TABLE IF NOT EXISTS test_results (
		id TEXT PRIMARY KEY,
		visit_id TEXT NOT NULL REFERENCES visits(id) ON DELETE CASCADE,
		test_id TEXT NOT NULL,
		test_name TEXT NOT NULL,
		result TEXT,
		unit TEXT,
		normal_range TEXT,
		price TEXT,
		test_type TEXT NOT NULL DEFAULT 'standard',
		urine_data TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_visit ON test_results(visit_id);
	CREATE INDEX IF NOT EXISTS idx_results_test ON test_results(test_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_results_visit_test ON test_results(visit_id, test_id);

	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dashboard_layouts (
		section_name TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		position_x INTEGER NOT NULL DEFAULT 0,
		position_y INTEGER NOT NULL DEFAULT 0,
		width INTEGER NOT NULL DEFAULT 4,
		height INTEGER NOT NULL DEFAULT 3,
		color TEXT NOT NULL DEFAULT '',
		route TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		permissions TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(LOWER(username));
	`
	_, err := s.db.Exec(schema)
	return err
}

// -- column codec helpers --

func fmtTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func nullDec(p *decimal.Decimal) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: p.String(), Valid: true}
}

func decPtr(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, fmt.Errorf("parse decimal %q: %w", ns.String, err)
	}
	return &d, nil
}
