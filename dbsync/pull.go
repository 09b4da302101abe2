package dbsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldops/handler/internal/store"
)

// moduleDelta is a pulled module row with its serialized fields decoded,
// so set-valued fields and the payload arrive as JSON values, the same
// shape the module list endpoint serves. Push accepts either form.
type moduleDelta struct {
	ID           string          `json:"id"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
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

func moduleDeltaFrom(m *store.Module) *moduleDelta {
	payload := json.RawMessage(m.PayloadJSON)
	if !json.Valid(payload) {
		payload = json.RawMessage("{}")
	}
	return &moduleDelta{
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Title:        m.Title,
		Summary:      m.Summary,
		Tags:         decodeStringSet(m.TagsJSON),
		Vibe:         m.Vibe,
		WeatherFit:   decodeStringSet(m.WeatherJSON),
		DurationFit:  decodeStringSet(m.DurationJSON),
		RangeFit:     decodeStringSet(m.RangeJSON),
		LocationHint: m.LocationHint,
		Confidence:   m.Confidence,
		Payload:      payload,
	}
}

func decodeStringSet(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// Pull returns all rows created strictly after since, ascending by
// created_at, capped at limit per table independently. An empty since
// means everything. module_sources is deliberately absent: provenance
// links travel client to server only.
func (r *Reconciler) Pull(ctx context.Context, since string, limit int) (*PullResult, error) {
	if since == "" {
		since = store.EpochStart
	}
	if limit <= 0 {
		limit = DefaultPullLimit
	}
	if limit > MaxPullLimit {
		limit = MaxPullLimit
	}

	recon, err := r.store.ListReconSince(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("pull recon: %w", err)
	}
	rows, err := r.store.ListModulesSince(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("pull modules: %w", err)
	}
	feedback, err := r.store.ListFeedbackSince(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("pull feedback: %w", err)
	}

	if recon == nil {
		recon = []*store.ReconItem{}
	}
	if feedback == nil {
		feedback = []*store.FeedbackRecord{}
	}
	modules := make([]*moduleDelta, 0, len(rows))
	for _, m := range rows {
		modules = append(modules, moduleDeltaFrom(m))
	}

	return &PullResult{
		Since:    since,
		ServerTS: r.now(),
		Changes: map[string]any{
			TableRecon:    recon,
			TableModules:  modules,
			TableFeedback: feedback,
		},
	}, nil
}
