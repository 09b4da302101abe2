package quest

import (
	"encoding/json"

	"github.com/fieldops/handler/internal/store"
)

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// clampLimit forces a list limit into [min, max]; negative means
// "absent" and yields dflt. An explicit zero clamps up to min.
func clampLimit(v, min, max, dflt int) int {
	if v < 0 {
		return dflt
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clampRating forces an explicit rating into [1, 5].
func clampRating(r int) int {
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}

// encodeStrings serializes a string set, substituting dflt when absent.
func encodeStrings(vals, dflt []string) string {
	if vals == nil {
		vals = dflt
	}
	if vals == nil {
		vals = []string{}
	}
	data, err := json.Marshal(vals)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// encodePayload serializes a payload for storage.
func encodePayload(p Payload) string {
	data, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// decodeStrings parses a serialized string set, empty on bad data.
func decodeStrings(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// decodeModule converts a storage row into an API view. Corrupt
// serialized fields degrade to empty values instead of failing the
// whole listing.
func decodeModule(m *store.Module) *ModuleView {
	payload := json.RawMessage(m.PayloadJSON)
	if !json.Valid(payload) {
		payload = json.RawMessage("{}")
	}
	return &ModuleView{
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		Title:        m.Title,
		Summary:      m.Summary,
		Tags:         decodeStrings(m.TagsJSON),
		Vibe:         m.Vibe,
		WeatherFit:   decodeStrings(m.WeatherJSON),
		DurationFit:  decodeStrings(m.DurationJSON),
		RangeFit:     decodeStrings(m.RangeJSON),
		LocationHint: m.LocationHint,
		Confidence:   m.Confidence,
		Payload:      payload,
	}
}
