package quest

import "testing"

func TestReadinessBounds(t *testing.T) {
	// WHAT: Readiness is 0 at zero modules, 1 at or beyond the target,
	// strictly increasing in between, never above 1.
	s := NewScorer()
	if got := s.Readiness(0); got != 0 {
		t.Errorf("Readiness(0) = %v", got)
	}
	if got := s.Readiness(DefaultReadinessTarget); got != 1 {
		t.Errorf("Readiness(target) = %v", got)
	}
	if got := s.Readiness(100); got != 1 {
		t.Errorf("Readiness(100) = %v, want capped at 1", got)
	}
	prev := 0.0
	for n := 1; n < DefaultReadinessTarget; n++ {
		r := s.Readiness(n)
		if r <= prev {
			t.Errorf("Readiness(%d) = %v not increasing past %v", n, r, prev)
		}
		if r > 1 {
			t.Errorf("Readiness(%d) = %v exceeds 1", n, r)
		}
		prev = r
	}
}

func TestReadinessPct(t *testing.T) {
	s := NewScorer()
	if got := s.ReadinessPct(7); got != 50 {
		t.Errorf("ReadinessPct(7) = %d, want 50", got)
	}
	if got := s.ReadinessPct(14); got != 100 {
		t.Errorf("ReadinessPct(14) = %d, want 100", got)
	}
}

func TestLabelThresholds(t *testing.T) {
	// WHAT: Label boundaries are inclusive at 0.85, 0.65 and 0.45.
	cases := []struct {
		score float64
		want  string
	}{
		{0.95, LabelExcellent},
		{0.85, LabelExcellent},
		{0.84, LabelGood},
		{0.65, LabelGood},
		{0.64, LabelWeak},
		{0.45, LabelWeak},
		{0.44, LabelNoise},
		{0, LabelNoise},
		{1.5, LabelExcellent}, // clamped
		{-2, LabelNoise},     // clamped
	}
	for _, c := range cases {
		if got := Label(c.score); got != c.want {
			t.Errorf("Label(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}
