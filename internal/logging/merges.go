// Package logging records merge decisions in the session database so a
// session can be audited and replayed.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region merge-entry

// MergeEntry is a single row in the merge_log table: what one merge did with
// one field group, tied to the snapshot it produced.
type MergeEntry struct {
	VersionID   string
	TriggerType string // "seed" | "recompute" | "edit" | "quickfix"
	Group       string
	Decision    string // "applied" | "suppressed" | "noop"
	Reason      string
	CreatedAt   time.Time
}

// #endregion merge-entry

// #region log-merge

// LogMerge writes one merge decision to the merge_log table.
func LogMerge(db *sql.DB, entry MergeEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO merge_log (version_id, trigger_type, group_name, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.VersionID,
		entry.TriggerType,
		nullIfEmpty(entry.Group),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log merge: %w", err)
	}
	return nil
}

// #endregion log-merge

// #region list

// ListMerges returns the most recent merge decisions, newest first.
func ListMerges(db *sql.DB, limit int) ([]MergeEntry, error) {
	rows, err := db.Query(
		`SELECT version_id, trigger_type, COALESCE(group_name, ''), decision, COALESCE(reason, ''), created_at
		 FROM merge_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query merge log: %w", err)
	}
	defer rows.Close()

	var out []MergeEntry
	for rows.Next() {
		var e MergeEntry
		var createdAt string
		if err := rows.Scan(&e.VersionID, &e.TriggerType, &e.Group, &e.Decision, &e.Reason, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		e.CreatedAt = t
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
