package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReplaceLedger overwrites a client's ledger row with its latest push.
func (s *Store) ReplaceLedger(ctx context.Context, e *SyncLedgerEntry) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR REPLACE INTO sync_ledger (client_id, last_push_at, last_push_count)
		VALUES (?, ?, ?)`,
		e.ClientID, e.LastPushAt, e.LastPushCount,
	)
	return err
}

// GetLedger retrieves a client's ledger row, nil if the client has never pushed.
func (s *Store) GetLedger(ctx context.Context, clientID string) (*SyncLedgerEntry, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT client_id, last_push_at, last_push_count FROM sync_ledger WHERE client_id = ?`,
		clientID)

	var e SyncLedgerEntry
	err := row.Scan(&e.ClientID, &e.LastPushAt, &e.LastPushCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	return &e, nil
}
