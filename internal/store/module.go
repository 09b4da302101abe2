package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fieldops/handler/dbopen"
)

const moduleColumns = `id, created_at, updated_at, title, summary, tags, vibe,
	weather_fit, duration_fit, range_fit, location_hint, confidence, payload`

// InsertModuleWithSource stores a newly admitted module and its
// provenance link in one transaction, so a failure partway leaves no
// orphan module behind.
func (s *Store) InsertModuleWithSource(ctx context.Context, m *Module, ms *ModuleSource) error {
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO modules (`+moduleColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.CreatedAt, m.UpdatedAt, m.Title, m.Summary, m.TagsJSON, m.Vibe,
			m.WeatherJSON, m.DurationJSON, m.RangeJSON, m.LocationHint, m.Confidence, m.PayloadJSON,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO module_sources (module_id, recon_id, note, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			ms.ModuleID, ms.ReconID, ms.Note, ms.CreatedAt, ms.UpdatedAt,
		)
		return err
	})
}

// ReplaceModule applies a row unconditionally by primary key (last write wins).
func (s *Store) ReplaceModule(ctx context.Context, m *Module) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR REPLACE INTO modules (`+moduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CreatedAt, m.UpdatedAt, m.Title, m.Summary, m.TagsJSON, m.Vibe,
		m.WeatherJSON, m.DurationJSON, m.RangeJSON, m.LocationHint, m.Confidence, m.PayloadJSON,
	)
	return err
}

// GetModule retrieves a module by ID, nil if absent.
func (s *Store) GetModule(ctx context.Context, id string) (*Module, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE id = ?`, id)
	m, err := scanModule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// CountModules returns the total number of stored modules.
func (s *Store) CountModules(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM modules`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count modules: %w", err)
	}
	return n, nil
}

// ListModules returns modules ranked by confidence then recency.
func (s *Store) ListModules(ctx context.Context, limit int) ([]*Module, error) {
	if limit <= 0 {
		limit = 80
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+moduleColumns+` FROM modules
		ORDER BY confidence DESC, created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanModuleRows(rows)
}

// ListModulesSince returns modules created strictly after the watermark,
// ascending, capped at limit. Used by sync pull.
func (s *Store) ListModulesSince(ctx context.Context, since string, limit int) ([]*Module, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE created_at > ?
		ORDER BY created_at ASC LIMIT ?`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanModuleRows(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModule(row rowScanner) (*Module, error) {
	var m Module
	err := row.Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt, &m.Title, &m.Summary, &m.TagsJSON,
		&m.Vibe, &m.WeatherJSON, &m.DurationJSON, &m.RangeJSON, &m.LocationHint,
		&m.Confidence, &m.PayloadJSON)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanModuleRows(rows *sql.Rows) ([]*Module, error) {
	var result []*Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// UpsertModuleSource records provenance. Re-insertion with the same
// (module_id, recon_id) key is idempotent.
func (s *Store) UpsertModuleSource(ctx context.Context, ms *ModuleSource) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR REPLACE INTO module_sources (module_id, recon_id, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		ms.ModuleID, ms.ReconID, ms.Note, ms.CreatedAt, ms.UpdatedAt,
	)
	return err
}

// ListModuleSources returns provenance links for a module.
func (s *Store) ListModuleSources(ctx context.Context, moduleID string) ([]*ModuleSource, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT module_id, recon_id, note, created_at, updated_at
		FROM module_sources WHERE module_id = ? ORDER BY created_at ASC`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*ModuleSource
	for rows.Next() {
		var ms ModuleSource
		if err := rows.Scan(&ms.ModuleID, &ms.ReconID, &ms.Note, &ms.CreatedAt, &ms.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan module source: %w", err)
		}
		result = append(result, &ms)
	}
	return result, rows.Err()
}
