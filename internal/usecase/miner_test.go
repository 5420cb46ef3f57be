package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func event(id string, sentiment float64, impact models.ImpactLevel) models.NewsEvent {
	return models.NewsEvent{
		ID:             id,
		Title:          "test event " + id,
		Category:       models.CategoryRegulation,
		SentimentScore: sentiment,
		ImpactLevel:    impact,
		PublishedAt:    t0,
	}
}

func TestMineCreatesPatternAndCapsConfidence(t *testing.T) {
	prices := newFakePriceStore()
	prices.add("BTC", t0, 100)
	prices.add("BTC", t0.Add(time.Hour), 130) // +30% at lag 1

	patterns := newFakePatternStore()
	miner := NewMiner(prices, patterns, nil, []string{"BTC"}, 2)

	// +30% with matching sentiment and high impact overshoots the cap.
	sum := miner.Mine(context.Background(), []models.NewsEvent{event("e1", 0.8, models.ImpactHigh)})

	if sum.PatternsCreated != 1 {
		t.Fatalf("expected 1 pattern created, got %+v", sum)
	}
	p, ok, _ := patterns.Get(context.Background(), models.PatternKey{EventID: "e1", AssetSymbol: "BTC", TimeLagHours: 1})
	if !ok {
		t.Fatalf("pattern not stored")
	}
	if p.ConfidenceScore != models.MaxPatternConfidence {
		t.Errorf("expected confidence capped at %v, got %v", models.MaxPatternConfidence, p.ConfidenceScore)
	}
	if p.OccurrenceCount != 1 {
		t.Errorf("expected occurrence 1, got %d", p.OccurrenceCount)
	}
	if math.Abs(p.PriceChangePercent-30) > 1e-9 {
		t.Errorf("expected change 30%%, got %v", p.PriceChangePercent)
	}
}

func TestMineIgnoresImmaterialMoves(t *testing.T) {
	prices := newFakePriceStore()
	prices.add("BTC", t0, 100)
	prices.add("BTC", t0.Add(time.Hour), 100.9) // +0.9%, below materiality

	patterns := newFakePatternStore()
	miner := NewMiner(prices, patterns, nil, []string{"BTC"}, 1)

	sum := miner.Mine(context.Background(), []models.NewsEvent{event("e1", 0.8, models.ImpactHigh)})
	if sum.PatternsCreated != 0 || sum.PatternsUpdated != 0 {
		t.Fatalf("immaterial move produced patterns: %+v", sum)
	}
}

func TestMineSkipsAssetWithoutBaseline(t *testing.T) {
	prices := newFakePriceStore() // no ticks at all
	patterns := newFakePatternStore()
	miner := NewMiner(prices, patterns, nil, []string{"BTC", "ETH"}, 1)

	sum := miner.Mine(context.Background(), []models.NewsEvent{event("e1", 0.5, models.ImpactLow)})
	if sum.PairsSkipped != 2 {
		t.Fatalf("expected 2 pairs skipped, got %+v", sum)
	}
	if sum.PatternsCreated != 0 {
		t.Fatalf("expected no patterns, got %+v", sum)
	}
}

func TestMineAccumulatesOnRediscovery(t *testing.T) {
	prices := newFakePriceStore()
	prices.add("BTC", t0, 100)
	prices.add("BTC", t0.Add(time.Hour), 102) // +2%, sign mismatch below

	patterns := newFakePatternStore()
	miner := NewMiner(prices, patterns, nil, []string{"BTC"}, 1)

	// Sentiment opposes the move and impact is low, so the per-observation
	// confidence stays at the 0.5 base and accumulation is visible.
	ev := event("e1", -0.5, models.ImpactLow)
	key := models.PatternKey{EventID: "e1", AssetSymbol: "BTC", TimeLagHours: 1}

	sum := miner.Mine(context.Background(), []models.NewsEvent{ev})
	if sum.PatternsCreated != 1 {
		t.Fatalf("first pass: %+v", sum)
	}
	p, _, _ := patterns.Get(context.Background(), key)
	if math.Abs(p.ConfidenceScore-0.5) > 1e-9 {
		t.Fatalf("expected base confidence 0.5, got %v", p.ConfidenceScore)
	}

	sum = miner.Mine(context.Background(), []models.NewsEvent{ev})
	if sum.PatternsUpdated != 1 {
		t.Fatalf("second pass: %+v", sum)
	}
	p, _, _ = patterns.Get(context.Background(), key)
	if p.OccurrenceCount != 2 {
		t.Errorf("expected occurrence 2, got %d", p.OccurrenceCount)
	}
	if math.Abs(p.ConfidenceScore-0.6) > 1e-9 {
		t.Errorf("expected confidence 0.6 (2*0.05+0.5), got %v", p.ConfidenceScore)
	}
	if math.Abs(p.PriceChangePercent-2) > 1e-9 {
		t.Errorf("re-discovery must not rewrite the recorded change, got %v", p.PriceChangePercent)
	}
}

func TestMineContinuesPastWriteFailures(t *testing.T) {
	prices := newFakePriceStore()
	prices.add("BTC", t0, 100)
	prices.add("BTC", t0.Add(time.Hour), 110)
	prices.add("ETH", t0, 50)
	prices.add("ETH", t0.Add(time.Hour), 55)

	patterns := newFakePatternStore()
	patterns.failPut = true
	miner := NewMiner(prices, patterns, nil, []string{"BTC", "ETH"}, 1)

	sum := miner.Mine(context.Background(), []models.NewsEvent{event("e1", 0.5, models.ImpactMedium)})
	if sum.WriteFailures != 2 {
		t.Fatalf("expected 2 write failures, got %+v", sum)
	}
	if sum.Events != 1 {
		t.Fatalf("expected the event still counted, got %+v", sum)
	}
}
