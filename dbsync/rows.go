package dbsync

import "github.com/fieldops/handler/internal/store"

// Builders from loosely-typed client rows to store entities. A nil
// return means the row lacks its key and is skipped. Rows missing
// created_at are stamped with the server's receipt time; updated_at is
// always server-stamped on push.

func (r *Reconciler) reconFromRow(row map[string]any, now string) *store.ReconItem {
	id := rowString(row, "id")
	if id == "" {
		return nil
	}
	return &store.ReconItem{
		ID:           id,
		CreatedAt:    rowStringDefault(row, "created_at", now),
		UpdatedAt:    now,
		Type:         rowStringDefault(row, "type", "text"),
		Title:        rowString(row, "title"),
		SourceURL:    rowString(row, "source_url"),
		RawText:      rowString(row, "raw_text"),
		ParseStatus:  rowStringDefault(row, "parse_status", "parsed"),
		QualityScore: rowScore(row, "quality_score", 0.5),
		QualityNotes: rowString(row, "quality_notes"),
	}
}

func (r *Reconciler) moduleFromRow(row map[string]any, now string) *store.Module {
	id := rowString(row, "id")
	if id == "" {
		return nil
	}
	return &store.Module{
		ID:           id,
		CreatedAt:    rowStringDefault(row, "created_at", now),
		UpdatedAt:    now,
		Title:        rowString(row, "title"),
		Summary:      rowString(row, "summary"),
		TagsJSON:     rowJSON(row, "tags", "[]"),
		Vibe:         rowVibe(row),
		WeatherJSON:  rowJSON(row, "weather_fit", "[]"),
		DurationJSON: rowJSON(row, "duration_fit", "[]"),
		RangeJSON:    rowJSON(row, "range_fit", "[]"),
		LocationHint: rowString(row, "location_hint"),
		Confidence:   rowScore(row, "confidence", 0.6),
		PayloadJSON:  rowJSON(row, "payload", "{}"),
	}
}

func (r *Reconciler) moduleSourceFromRow(row map[string]any, now string) *store.ModuleSource {
	moduleID := rowString(row, "module_id")
	reconID := rowString(row, "recon_id")
	if moduleID == "" || reconID == "" {
		return nil
	}
	return &store.ModuleSource{
		ModuleID:  moduleID,
		ReconID:   reconID,
		Note:      rowString(row, "note"),
		CreatedAt: rowStringDefault(row, "created_at", now),
		UpdatedAt: now,
	}
}

func (r *Reconciler) feedbackFromRow(row map[string]any, now string) *store.FeedbackRecord {
	id := rowString(row, "id")
	if id == "" {
		return nil
	}
	return &store.FeedbackRecord{
		ID:        id,
		CreatedAt: rowStringDefault(row, "created_at", now),
		UpdatedAt: now,
		Kind:      rowStringDefault(row, "kind", "general"),
		TargetID:  rowString(row, "target_id"),
		Rating:    rowInt(row, "rating", 1, 5, 3),
		Note:      rowString(row, "note"),
		Action:    rowStringDefault(row, "action", "none"),
	}
}
