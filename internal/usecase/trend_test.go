package usecase

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

func trendFixture(changes map[string]float64, now time.Time) *fakePriceStore {
	prices := newFakePriceStore()
	for symbol, pct := range changes {
		prices.add(symbol, now.Add(-24*time.Hour), 100)
		prices.add(symbol, now, 100+pct)
	}
	return prices
}

func TestPredictBullishMarket(t *testing.T) {
	now := t0
	prices := trendFixture(map[string]float64{"BTC": 6, "ETH": 6, "SOL": 6}, now)
	events := &fakeEventStore{events: []models.NewsEvent{{
		ID: "n1", Category: models.CategoryMarket, SentimentScore: 0.5,
		ImpactLevel: models.ImpactMedium, PublishedAt: now.Add(-time.Hour),
	}}}

	tp := NewTrendPredictor(prices, events, &fakeTrendStore{}, &fakeTrendSource{pct: 1.2}, nil, nil, []string{"BTC", "ETH", "SOL"})
	tp.SetClock(func() time.Time { return now })

	pred, err := tp.Predict(context.Background())
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if pred.PredictionType != models.TrendPositive {
		t.Fatalf("expected positive trend, got %s (%s)", pred.PredictionType, pred.Reasoning)
	}
	if pred.BullishCount != 3 || pred.BearishCount != 0 {
		t.Errorf("unexpected counts %+v", pred)
	}
	// consensus 1.0*50 + volatility min(6/5,1)*20 + news min(1/10,1)*15
	if math.Abs(pred.ConfidencePercent-71.5) > 1e-9 {
		t.Errorf("expected confidence 71.5, got %v", pred.ConfidencePercent)
	}
	if !strings.Contains(pred.MacroEventsSummary, "+1.20%") {
		t.Errorf("unexpected macro summary %q", pred.MacroEventsSummary)
	}
}

func TestPredictBearishMarket(t *testing.T) {
	now := t0
	prices := trendFixture(map[string]float64{"BTC": -6, "ETH": -6, "SOL": -6}, now)
	events := &fakeEventStore{events: []models.NewsEvent{{
		ID: "n1", Category: models.CategorySecurity, SentimentScore: -0.5,
		ImpactLevel: models.ImpactHigh, PublishedAt: now.Add(-time.Hour),
	}}}

	tp := NewTrendPredictor(prices, events, &fakeTrendStore{}, &fakeTrendSource{}, nil, nil, []string{"BTC", "ETH", "SOL"})
	tp.SetClock(func() time.Time { return now })

	pred, err := tp.Predict(context.Background())
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if pred.PredictionType != models.TrendNegative {
		t.Fatalf("expected negative trend, got %s (%s)", pred.PredictionType, pred.Reasoning)
	}
}

func TestPredictNeutralWithoutConsensus(t *testing.T) {
	now := t0
	prices := trendFixture(map[string]float64{"BTC": 6, "ETH": -6, "SOL": 0}, now)

	tp := NewTrendPredictor(prices, &fakeEventStore{}, &fakeTrendStore{}, &fakeTrendSource{}, nil, nil, []string{"BTC", "ETH", "SOL"})
	tp.SetClock(func() time.Time { return now })

	pred, err := tp.Predict(context.Background())
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if pred.PredictionType != models.TrendNeutral {
		t.Fatalf("expected neutral trend, got %s", pred.PredictionType)
	}
	if pred.BullishCount != 1 || pred.BearishCount != 1 || pred.NeutralCount != 1 {
		t.Errorf("unexpected counts %+v", pred)
	}
}

func TestPredictNoPriceData(t *testing.T) {
	tp := NewTrendPredictor(newFakePriceStore(), &fakeEventStore{}, &fakeTrendStore{}, &fakeTrendSource{}, nil, nil, []string{"BTC"})
	tp.SetClock(func() time.Time { return t0 })

	pred, err := tp.Predict(context.Background())
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if pred.PredictionType != models.TrendNeutral {
		t.Errorf("expected neutral, got %s", pred.PredictionType)
	}
	if pred.ConfidencePercent != models.MinConfidencePercent {
		t.Errorf("expected floor confidence, got %v", pred.ConfidencePercent)
	}
	if pred.Reasoning != "No price data available for any tracked asset" {
		t.Errorf("unexpected reasoning %q", pred.Reasoning)
	}
}

func TestRunPersistsAndPublishes(t *testing.T) {
	now := t0
	prices := trendFixture(map[string]float64{"BTC": 6}, now)
	store := &fakeTrendStore{}
	pub := &fakePublisher{}

	tp := NewTrendPredictor(prices, &fakeEventStore{}, store, &fakeTrendSource{}, pub, nil, []string{"BTC"})
	tp.SetClock(func() time.Time { return now })

	pred, err := tp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	latest, _ := tp.Latest(context.Background(), 5)
	if len(latest) != 1 || latest[0].ID != pred.ID {
		t.Fatalf("prediction not persisted")
	}
	if len(pub.trends) != 1 {
		t.Fatalf("prediction not published")
	}
}
