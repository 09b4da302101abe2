package quest

import (
	"fmt"
	"strings"
)

// DefaultBannedPhrases is the anti-genericness filter applied to module
// titles and summaries. Blunt on purpose. Tune the list, never the
// mechanism.
var DefaultBannedPhrases = []string{
	"go for a walk",
	"take a walk",
	"go outside",
	"find 5",
	"find five",
	"scavenger",
	"do something fun",
	"visit a park",
	"go to the park",
}

const (
	minBeats       = 4
	minSteps       = 2
	minBossMoments = 1
	minArtifacts   = 1
	minWhyLen      = 20
)

// Validator gates candidate modules before admission. Zero side effects;
// a malformed candidate simply fails.
type Validator struct {
	Banned []string
}

// NewValidator creates a Validator with the default banned-phrase list.
func NewValidator() *Validator {
	return &Validator{Banned: DefaultBannedPhrases}
}

// Check runs every admission gate and reports the first one that fails,
// wrapped in ErrRejected. Callers that only need the verdict use
// Validate; the error text is a diagnostic, not a user-facing message.
func (v *Validator) Check(c *Candidate) error {
	if c == nil {
		return fmt.Errorf("%w: no candidate", ErrRejected)
	}

	title := strings.ToLower(c.Title)
	summary := strings.ToLower(c.Summary)
	for _, phrase := range v.Banned {
		if strings.Contains(title, phrase) || strings.Contains(summary, phrase) {
			return fmt.Errorf("%w: banned phrase %q", ErrRejected, phrase)
		}
	}

	beats := c.Payload.Beats
	if len(beats) < minBeats {
		return fmt.Errorf("%w: %d beats, need %d", ErrRejected, len(beats), minBeats)
	}
	steps, boss, artifacts := beats.Counts()
	if steps < minSteps {
		return fmt.Errorf("%w: %d steps, need %d", ErrRejected, steps, minSteps)
	}
	if boss < minBossMoments {
		return fmt.Errorf("%w: no boss moment", ErrRejected)
	}
	if artifacts < minArtifacts {
		return fmt.Errorf("%w: no artifact", ErrRejected)
	}

	if len(strings.TrimSpace(c.Payload.WhyMemorable)) < minWhyLen {
		return fmt.Errorf("%w: why_memorable under %d chars", ErrRejected, minWhyLen)
	}
	return nil
}

// Validate reports whether the candidate passes every gate.
func (v *Validator) Validate(c *Candidate) bool {
	return v.Check(c) == nil
}
