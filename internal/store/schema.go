package store

import "database/sql"

// Schema is the complete quest handler schema.
const Schema = `
-- Raw field notes, one row per ingestion
CREATE TABLE IF NOT EXISTS recon_items (
    id            TEXT PRIMARY KEY,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL,
    type          TEXT NOT NULL DEFAULT 'text',
    title         TEXT NOT NULL DEFAULT '',
    source_url    TEXT NOT NULL DEFAULT '',
    raw_text      TEXT NOT NULL DEFAULT '',
    parse_status  TEXT NOT NULL DEFAULT 'pending',
    quality_score REAL NOT NULL DEFAULT 0.5,
    quality_notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_recon_items_created ON recon_items(created_at);

-- Validated content units derived from recon
CREATE TABLE IF NOT EXISTS modules (
    id            TEXT PRIMARY KEY,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    summary       TEXT NOT NULL DEFAULT '',
    tags          TEXT NOT NULL DEFAULT '[]',
    vibe          TEXT,
    weather_fit   TEXT NOT NULL DEFAULT '[]',
    duration_fit  TEXT NOT NULL DEFAULT '[]',
    range_fit     TEXT NOT NULL DEFAULT '[]',
    location_hint TEXT NOT NULL DEFAULT '',
    confidence    REAL NOT NULL DEFAULT 0.6,
    payload       TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_modules_rank ON modules(confidence DESC, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_modules_created ON modules(created_at);

-- Provenance: which recon a module was derived from (many-to-many)
CREATE TABLE IF NOT EXISTS module_sources (
    module_id  TEXT NOT NULL,
    recon_id   TEXT NOT NULL,
    note       TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (module_id, recon_id)
);

-- Field feedback; target_id is a soft reference (module or quest)
CREATE TABLE IF NOT EXISTS feedback (
    id         TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    kind       TEXT NOT NULL DEFAULT 'general',
    target_id  TEXT NOT NULL DEFAULT '',
    rating     INTEGER NOT NULL DEFAULT 3,
    note       TEXT NOT NULL DEFAULT '',
    action     TEXT NOT NULL DEFAULT 'none'
);
CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at);

-- One row per client, overwritten on every push
CREATE TABLE IF NOT EXISTS sync_ledger (
    client_id       TEXT PRIMARY KEY,
    last_push_at    TEXT NOT NULL,
    last_push_count INTEGER NOT NULL DEFAULT 0
);
`

// ApplySchema creates all tables and indexes on the given database.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
