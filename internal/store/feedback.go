package store

import (
	"context"
	"fmt"
)

// InsertFeedback stores a new feedback record.
func (s *Store) InsertFeedback(ctx context.Context, f *FeedbackRecord) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO feedback (id, created_at, updated_at, kind, target_id, rating, note, action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.CreatedAt, f.UpdatedAt, f.Kind, f.TargetID, f.Rating, f.Note, f.Action,
	)
	return err
}

// ReplaceFeedback applies a row unconditionally by primary key (last write wins).
func (s *Store) ReplaceFeedback(ctx context.Context, f *FeedbackRecord) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR REPLACE INTO feedback (id, created_at, updated_at, kind, target_id, rating, note, action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.CreatedAt, f.UpdatedAt, f.Kind, f.TargetID, f.Rating, f.Note, f.Action,
	)
	return err
}

// ListFeedbackSince returns feedback created strictly after the watermark,
// ascending, capped at limit. Used by sync pull.
func (s *Store) ListFeedbackSince(ctx context.Context, since string, limit int) ([]*FeedbackRecord, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, created_at, updated_at, kind, target_id, rating, note, action
		FROM feedback WHERE created_at > ?
		ORDER BY created_at ASC LIMIT ?`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*FeedbackRecord
	for rows.Next() {
		var f FeedbackRecord
		if err := rows.Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt, &f.Kind, &f.TargetID,
			&f.Rating, &f.Note, &f.Action); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		result = append(result, &f)
	}
	return result, rows.Err()
}
