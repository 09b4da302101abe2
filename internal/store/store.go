// Package store persists recon items, modules, provenance links, feedback
// and the sync ledger in SQLite. All timestamps are fixed-width ISO-8601 UTC
// strings so lexicographic order matches chronological order, which is what
// the sync watermark comparisons rely on.
package store

import (
	"database/sql"
	"time"
)

// TimeLayout is the canonical timestamp format for every persisted row.
// Millisecond precision, always UTC, always the same width.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// EpochStart is the sentinel watermark meaning "everything".
const EpochStart = "1970-01-01T00:00:00.000Z"

// Stamp formats t as a canonical timestamp string.
func Stamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NowStamp returns the current time as a canonical timestamp string.
func NowStamp() string {
	return Stamp(time.Now())
}

// Store wraps a SQLite database handle.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store around an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
