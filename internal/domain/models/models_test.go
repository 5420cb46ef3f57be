package models

import "testing"

func TestClampConfidence(t *testing.T) {
	if got := ClampConfidence(1.2); got != MaxPatternConfidence {
		t.Errorf("expected cap %v, got %v", MaxPatternConfidence, got)
	}
	if got := ClampConfidence(0.1); got != MinPatternConfidence {
		t.Errorf("expected floor %v, got %v", MinPatternConfidence, got)
	}
	if got := ClampConfidence(0.8); got != 0.8 {
		t.Errorf("in-range value must pass through, got %v", got)
	}
}

func TestClampPercent(t *testing.T) {
	if got := ClampPercent(150); got != MaxConfidencePercent {
		t.Errorf("expected cap %v, got %v", MaxConfidencePercent, got)
	}
	if got := ClampPercent(10); got != MinConfidencePercent {
		t.Errorf("expected floor %v, got %v", MinConfidencePercent, got)
	}
}

func TestEventCategoryIsValid(t *testing.T) {
	for _, c := range Categories {
		if !c.IsValid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if EventCategory("weather").IsValid() {
		t.Errorf("unknown category accepted")
	}
}

func TestImpactWeight(t *testing.T) {
	cases := map[ImpactLevel]float64{ImpactHigh: 3, ImpactMedium: 2, ImpactLow: 1, ImpactLevel("bogus"): 1}
	for level, want := range cases {
		if got := level.Weight(); got != want {
			t.Errorf("%s: expected %v, got %v", level, want, got)
		}
	}
}
