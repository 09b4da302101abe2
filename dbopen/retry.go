package dbopen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Busy-retry policy. WAL mode makes lock contention rare but not
// impossible when the sync reconciler and an ingestion overlap.
const (
	busyRetries = 3
	busyBackoff = 100 * time.Millisecond
)

// IsBusy reports whether err is an SQLite lock contention error.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// Exec runs a single statement, retrying on lock contention with
// linear backoff. Non-busy errors return immediately.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	var lastErr error
	for attempt := 0; attempt < busyRetries; attempt++ {
		res, err := db.ExecContext(ctx, query, args...)
		if err == nil {
			return res, nil
		}
		if !IsBusy(err) {
			return nil, err
		}
		lastErr = err
		if err := sleepCtx(ctx, busyBackoff*time.Duration(attempt+1)); err != nil {
			return nil, fmt.Errorf("dbopen: retry interrupted: %w", err)
		}
	}
	return nil, fmt.Errorf("dbopen: still busy after %d attempts: %w", busyRetries, lastErr)
}

// RunTx runs fn inside a transaction, rolling back on error and
// retrying the whole transaction on lock contention.
func RunTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < busyRetries; attempt++ {
		err := inTx(ctx, db, fn)
		if err == nil {
			return nil
		}
		if !IsBusy(err) {
			return err
		}
		lastErr = err
		if err := sleepCtx(ctx, busyBackoff*time.Duration(attempt+1)); err != nil {
			return fmt.Errorf("dbopen: retry interrupted: %w", err)
		}
	}
	return fmt.Errorf("dbopen: still busy after %d attempts: %w", busyRetries, lastErr)
}

func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dbopen: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dbopen: commit: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
