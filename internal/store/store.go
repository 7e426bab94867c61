// Package store persists versioned configuration snapshots for a creation
// session in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS config_versions (
	version_id   TEXT PRIMARY KEY,
	parent_id    TEXT,
	config_json  TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES config_versions(version_id)
);

CREATE TABLE IF NOT EXISTS merge_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id   TEXT NOT NULL,
	trigger_type TEXT NOT NULL,
	group_name   TEXT,
	decision     TEXT NOT NULL,
	reason       TEXT,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES config_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_version (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	version_id   TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES config_versions(version_id)
);
`

// #endregion schema

// #region types

// VersionRecord is one committed configuration snapshot.
type VersionRecord struct {
	VersionID string
	ParentID  string
	Config    plan.Config
	CreatedAt time.Time
}

// #endregion types

// #region store-struct

// Store manages versioned configuration state in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the connection for the merge log and inspect tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region seed

// SeedVersion commits the first snapshot of a session and marks it active.
func (s *Store) SeedVersion(cfg plan.Config) (VersionRecord, error) {
	rec := VersionRecord{
		VersionID: uuid.New().String(),
		Config:    cfg,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.insert(rec); err != nil {
		return VersionRecord{}, err
	}
	return rec, nil
}

// #endregion seed

// #region commit

// Commit stores a new snapshot with parent linkage and moves the active
// pointer to it.
func (s *Store) Commit(parentID string, cfg plan.Config) (VersionRecord, error) {
	rec := VersionRecord{
		VersionID: uuid.New().String(),
		ParentID:  parentID,
		Config:    cfg,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.insert(rec); err != nil {
		return VersionRecord{}, err
	}
	return rec, nil
}

func (s *Store) insert(rec VersionRecord) error {
	payload, err := json.Marshal(rec.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var parent any
	if rec.ParentID != "" {
		parent = rec.ParentID
	}
	_, err = tx.Exec(
		`INSERT INTO config_versions (version_id, parent_id, config_json, created_at) VALUES (?, ?, ?, ?)`,
		rec.VersionID, parent, string(payload), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO active_version (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return tx.Commit()
}

// #endregion commit

// #region read

// Current returns the active snapshot. sql.ErrNoRows surfaces when the
// session has never been seeded.
func (s *Store) Current() (VersionRecord, error) {
	row := s.db.QueryRow(
		`SELECT v.version_id, COALESCE(v.parent_id, ''), v.config_json, v.created_at
		 FROM active_version a JOIN config_versions v ON v.version_id = a.version_id
		 WHERE a.id = 1`,
	)
	return scanVersion(row)
}

// Get returns one snapshot by version ID.
func (s *Store) Get(versionID string) (VersionRecord, error) {
	row := s.db.QueryRow(
		`SELECT version_id, COALESCE(parent_id, ''), config_json, created_at
		 FROM config_versions WHERE version_id = ?`, versionID,
	)
	return scanVersion(row)
}

// History returns the most recent snapshots, newest first.
func (s *Store) History(limit int) ([]VersionRecord, error) {
	rows, err := s.db.Query(
		`SELECT version_id, COALESCE(parent_id, ''), config_json, created_at
		 FROM config_versions ORDER BY rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []VersionRecord
	for rows.Next() {
		rec, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (VersionRecord, error) {
	var rec VersionRecord
	var payload, createdAt string
	if err := row.Scan(&rec.VersionID, &rec.ParentID, &payload, &createdAt); err != nil {
		return VersionRecord{}, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.Config); err != nil {
		return VersionRecord{}, fmt.Errorf("decode config: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return VersionRecord{}, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = t
	return rec, nil
}

// #endregion read
