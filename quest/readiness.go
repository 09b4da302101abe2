package quest

import "math"

// DefaultReadinessTarget is the module count considered a full season.
// A placeholder heuristic, not a product commitment.
const DefaultReadinessTarget = 14

// Quality labels for extraction scores.
const (
	LabelExcellent = "EXCELLENT"
	LabelGood      = "GOOD"
	LabelWeak      = "WEAK"
	LabelNoise     = "NOISE"
)

// Scorer derives season readiness from the total module count.
type Scorer struct {
	Target int
}

// NewScorer creates a Scorer with the default target.
func NewScorer() *Scorer {
	return &Scorer{Target: DefaultReadinessTarget}
}

// Readiness is min(1, count/target).
func (s *Scorer) Readiness(moduleCount int) float64 {
	if moduleCount <= 0 {
		return 0
	}
	return math.Min(1, float64(moduleCount)/float64(s.Target))
}

// ReadinessPct is Readiness as a rounded percentage.
func (s *Scorer) ReadinessPct(moduleCount int) int {
	return int(math.Round(s.Readiness(moduleCount) * 100))
}

// Label maps a clamped quality score to a coarse assessment.
func Label(score float64) string {
	score = clamp01(score, 0)
	switch {
	case score >= 0.85:
		return LabelExcellent
	case score >= 0.65:
		return LabelGood
	case score >= 0.45:
		return LabelWeak
	default:
		return LabelNoise
	}
}

// clamp01 forces v into [0,1]; NaN falls back to dflt.
func clamp01(v, dflt float64) float64 {
	if math.IsNaN(v) {
		return dflt
	}
	return math.Max(0, math.Min(1, v))
}
