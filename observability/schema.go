package observability

import "database/sql"

// Schema contains the DDL for the observability tables. Call Init(db) to
// apply it, or embed the constant in your own schema management.
const Schema = `
-- Business Event Logs
CREATE TABLE IF NOT EXISTS business_event_logs (
    event_id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    service_name TEXT NOT NULL,
    entity_type TEXT,
    entity_id TEXT,
    action TEXT NOT NULL,
    details TEXT,
    success INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_event_logs_type ON business_event_logs(event_type, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_event_logs_service ON business_event_logs(service_name, created_at DESC);
`

// Init applies the observability schema to the given database.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
