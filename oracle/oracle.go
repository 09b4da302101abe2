// Package oracle is the boundary to unstructured-text understanding.
//
// The rest of the system depends only on the Oracle contract: a prompt
// goes in, a single JSON object comes out. Model identity, vendor and
// prompt wording are swappable without touching callers. Responses may
// wrap the JSON in prose; DecodeJSON recovers the object by locating
// the first '{' and the last '}'.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOutput means the oracle returned nothing, or nothing that
// could be parsed as a JSON object.
var ErrInvalidOutput = errors.New("oracle returned no usable JSON")

// Oracle converts a prompt into a structured JSON object.
type Oracle interface {
	CompleteJSON(ctx context.Context, prompt string) (map[string]any, error)
}

// DecodeJSON parses content as a JSON object. If the direct parse fails
// it retries on the span between the first '{' and the last '}', which
// tolerates prose or markdown fences around the object.
func DecodeJSON(content string) (map[string]any, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidOutput)
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(content), &out); err == nil {
		return out, nil
	}

	a := strings.Index(content, "{")
	b := strings.LastIndex(content, "}")
	if a >= 0 && b > a {
		if err := json.Unmarshal([]byte(content[a:b+1]), &out); err == nil {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: no JSON object in response", ErrInvalidOutput)
}
