package quest

import "encoding/json"

// Anchor names the real-world anchor a module is built around.
type Anchor struct {
	Name *string `json:"name"`
	Note *string `json:"note"`
}

// Payload is the narrative body of a module.
type Payload struct {
	Anchor       Anchor `json:"anchor"`
	WhyMemorable string `json:"why_memorable"`
	Beats        Beats  `json:"beats"`
}

// Candidate is an oracle-proposed module before admission. Pointer
// fields distinguish "absent" from zero so normalization can apply
// defaults.
type Candidate struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
	Vibe         *string  `json:"vibe"`
	WeatherFit   []string `json:"weather_fit"`
	DurationFit  []string `json:"duration_fit"`
	RangeFit     []string `json:"range_fit"`
	LocationHint string   `json:"location_hint"`
	Confidence   *float64 `json:"confidence"`
	Payload      Payload  `json:"payload"`
}

// DecodeCandidate converts a loosely-typed oracle value into a
// Candidate. Any shape mismatch, including an unknown beat kind,
// fails the decode.
func DecodeCandidate(raw any) (*Candidate, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var c Candidate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// IngestInput is one ingestion request.
type IngestInput struct {
	Type  string `json:"type"` // "text" (default) | "url"
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

// Season is a readiness snapshot against the module target.
type Season struct {
	ModulesTotal int `json:"modules_total"`
	Target       int `json:"target"`
	ReadinessPct int `json:"readiness_pct"`
}

// ReconStatus summarizes how an ingestion went.
type ReconStatus struct {
	Assessment       string   `json:"assessment"`
	QualityScore     float64  `json:"quality_score"`
	QualityNotes     string   `json:"quality_notes"`
	Season           Season   `json:"season"`
	RecommendedRecon []string `json:"recommended_recon"`
}

// IngestResult is the outcome of one ingestion.
type IngestResult struct {
	ReconID        string      `json:"recon_id"`
	ModulesCreated int         `json:"modules_created"`
	ReconStatus    ReconStatus `json:"recon_status"`
}

// ModuleView is a module with its serialized fields decoded, as served
// by list endpoints and fed to quest generation.
type ModuleView struct {
	ID           string          `json:"id"`
	CreatedAt    string          `json:"created_at"`
	Title        string          `json:"title"`
	Summary      string          `json:"summary"`
	Tags         []string        `json:"tags"`
	Vibe         *string         `json:"vibe"`
	WeatherFit   []string        `json:"weather_fit"`
	DurationFit  []string        `json:"duration_fit"`
	RangeFit     []string        `json:"range_fit"`
	LocationHint string          `json:"location_hint"`
	Confidence   float64         `json:"confidence"`
	Payload      json.RawMessage `json:"payload"`
}

// FeedbackInput is one feedback submission. Rating is a pointer so an
// absent rating defaults while an explicit out-of-range one clamps.
type FeedbackInput struct {
	Kind     string `json:"kind"`
	TargetID string `json:"target_id"`
	Rating   *int   `json:"rating"`
	Note     string `json:"note"`
}

// QuestInput is one quest generation request.
type QuestInput struct {
	Inputs      map[string]any `json:"inputs"`
	AvoidTitles []string       `json:"avoid_titles"`
}
