package store

// ReconItem is one raw field-note ingestion. Immutable after creation
// except via explicit sync overwrite.
type ReconItem struct {
	ID           string  `json:"id"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	Type         string  `json:"type"` // "text" | "url"
	Title        string  `json:"title"`
	SourceURL    string  `json:"source_url"`
	RawText      string  `json:"raw_text"`
	ParseStatus  string  `json:"parse_status"`
	QualityScore float64 `json:"quality_score"`
	QualityNotes string  `json:"quality_notes"`
}

// ReconSummary is a list-view row: everything but the raw text.
type ReconSummary struct {
	ID           string  `json:"id"`
	CreatedAt    string  `json:"created_at"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	SourceURL    string  `json:"source_url"`
	QualityScore float64 `json:"quality_score"`
	QualityNotes string  `json:"quality_notes"`
}

// Module is a validated content unit in storage form. Set-valued fields
// and the payload are kept as serialized JSON; callers decode as needed.
type Module struct {
	ID           string  `json:"id"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	Title        string  `json:"title"`
	Summary      string  `json:"summary"`
	TagsJSON     string  `json:"tags"`
	Vibe         *string `json:"vibe"`
	WeatherJSON  string  `json:"weather_fit"`
	DurationJSON string  `json:"duration_fit"`
	RangeJSON    string  `json:"range_fit"`
	LocationHint string  `json:"location_hint"`
	Confidence   float64 `json:"confidence"`
	PayloadJSON  string  `json:"payload"`
}

// ModuleSource links a module to the recon it was derived from.
type ModuleSource struct {
	ModuleID  string `json:"module_id"`
	ReconID   string `json:"recon_id"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// FeedbackRecord is a field report about a module or quest. TargetID is
// a soft reference with no integrity enforcement.
type FeedbackRecord struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Kind      string `json:"kind"`
	TargetID  string `json:"target_id"`
	Rating    int    `json:"rating"`
	Note      string `json:"note"`
	Action    string `json:"action"`
}

// SyncLedgerEntry is a client's most recent successful push, not a
// cumulative history.
type SyncLedgerEntry struct {
	ClientID      string `json:"client_id"`
	LastPushAt    string `json:"last_push_at"`
	LastPushCount int    `json:"last_push_count"`
}
