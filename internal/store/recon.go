package store

import (
	"context"
	"database/sql"
	"fmt"
)

// InsertRecon stores a new recon item.
func (s *Store) InsertRecon(ctx context.Context, r *ReconItem) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO recon_items (id, created_at, updated_at, type, title, source_url,
		raw_text, parse_status, quality_score, quality_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.UpdatedAt, r.Type, r.Title, r.SourceURL,
		r.RawText, r.ParseStatus, r.QualityScore, r.QualityNotes,
	)
	return err
}

// ReplaceRecon applies a row unconditionally by primary key (last write wins).
func (s *Store) ReplaceRecon(ctx context.Context, r *ReconItem) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR REPLACE INTO recon_items (id, created_at, updated_at, type, title,
		source_url, raw_text, parse_status, quality_score, quality_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.UpdatedAt, r.Type, r.Title, r.SourceURL,
		r.RawText, r.ParseStatus, r.QualityScore, r.QualityNotes,
	)
	return err
}

// GetRecon retrieves a recon item by ID, nil if absent.
func (s *Store) GetRecon(ctx context.Context, id string) (*ReconItem, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, type, title, source_url, raw_text,
		parse_status, quality_score, quality_notes
		FROM recon_items WHERE id = ?`, id)

	var r ReconItem
	err := row.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.Type, &r.Title, &r.SourceURL,
		&r.RawText, &r.ParseStatus, &r.QualityScore, &r.QualityNotes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan recon: %w", err)
	}
	return &r, nil
}

// ListRecon returns recon summaries, newest first. Raw text is excluded
// to keep list responses small.
func (s *Store) ListRecon(ctx context.Context, limit int) ([]*ReconSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, created_at, type, title, source_url, quality_score, quality_notes
		FROM recon_items
		ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*ReconSummary
	for rows.Next() {
		var r ReconSummary
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Type, &r.Title, &r.SourceURL,
			&r.QualityScore, &r.QualityNotes); err != nil {
			return nil, fmt.Errorf("scan recon summary: %w", err)
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}

// ListReconSince returns full recon rows created strictly after the
// watermark, ascending, capped at limit. Used by sync pull.
func (s *Store) ListReconSince(ctx context.Context, since string, limit int) ([]*ReconItem, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, created_at, updated_at, type, title, source_url, raw_text,
		parse_status, quality_score, quality_notes
		FROM recon_items WHERE created_at > ?
		ORDER BY created_at ASC LIMIT ?`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*ReconItem
	for rows.Next() {
		var r ReconItem
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.Type, &r.Title, &r.SourceURL,
			&r.RawText, &r.ParseStatus, &r.QualityScore, &r.QualityNotes); err != nil {
			return nil, fmt.Errorf("scan recon: %w", err)
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}
