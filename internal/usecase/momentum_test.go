package usecase

import (
	"math"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

func TestPriceAtRespectsTolerance(t *testing.T) {
	history := []models.PriceTick{
		{Timestamp: t0, Price: 100},
		{Timestamp: t0.Add(-10 * time.Hour), Price: 90},
	}

	if p, ok := priceAt(history, t0.Add(-9 * time.Hour)); !ok || p != 90 {
		t.Errorf("expected tick within tolerance, got %v %v", p, ok)
	}
	if _, ok := priceAt(history, t0.Add(-5 * time.Hour)); ok {
		t.Errorf("no tick lies within tolerance of the target")
	}
}

func TestPercentChange(t *testing.T) {
	history := []models.PriceTick{
		{Timestamp: t0, Price: 110},
		{Timestamp: t0.Add(-24 * time.Hour), Price: 100},
	}
	got, ok := percentChange(history, t0, 24*time.Hour)
	if !ok || math.Abs(got-10) > 1e-9 {
		t.Errorf("expected +10%%, got %v %v", got, ok)
	}
	if _, ok := percentChange(nil, t0, 24*time.Hour); ok {
		t.Errorf("empty history must produce no change")
	}
}

func TestWeightedSentiment(t *testing.T) {
	news := []models.NewsEvent{
		{SentimentScore: 1, ImpactLevel: models.ImpactHigh},
		{SentimentScore: -1, ImpactLevel: models.ImpactLow},
		{SentimentScore: 0.5, ImpactLevel: models.ImpactMedium},
	}
	// (1*3 - 1*1 + 0.5*2) / 6 = 0.5
	if got := weightedSentiment(news); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected 0.5, got %v", got)
	}
	if got := weightedSentiment(nil); got != 0 {
		t.Errorf("expected 0 for no news, got %v", got)
	}
}

func TestMeanSentiment(t *testing.T) {
	news := []models.NewsEvent{{SentimentScore: 0.4}, {SentimentScore: -0.2}}
	if got := meanSentiment(news); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("expected 0.1, got %v", got)
	}
	if got := meanSentiment(nil); got != 0 {
		t.Errorf("expected 0 for no news, got %v", got)
	}
}
