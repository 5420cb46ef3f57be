package usecase

import (
	"context"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

func TestDecideBullishConsensus(t *testing.T) {
	now := t0.Add(30 * 24 * time.Hour)
	// All four bullish legs at once: sentiment, 24h (+15.7%), 7d (+25%),
	// broader market (+3%).
	in := DecisionInputs{
		Symbol: "BTC",
		News: []models.NewsEvent{{
			ID: "n1", Title: "ETF approved", Category: models.CategoryAdoption,
			SentimentScore: 0.8, ImpactLevel: models.ImpactHigh, PublishedAt: now.Add(-2 * time.Hour),
		}},
		History: []models.PriceTick{
			{Symbol: "BTC", Timestamp: now, Price: 125},
			{Symbol: "BTC", Timestamp: now.Add(-24 * time.Hour), Price: 108},
			{Symbol: "BTC", Timestamp: now.Add(-168 * time.Hour), Price: 100},
		},
		MarketTrendPct: 3.0,
		Now:            now,
	}

	rec, ok := Decide(in)
	if !ok {
		t.Fatalf("expected a recommendation")
	}
	if rec.Action != models.ActionBuy {
		t.Fatalf("expected BUY, got %s (reasons %v)", rec.Action, rec.Reasoning)
	}
	if rec.ConfidencePercent < 90 {
		t.Errorf("expected high confidence, got %v", rec.ConfidencePercent)
	}
	if rec.TargetPrice == nil || math.Abs(*rec.TargetPrice-125*1.15) > 1e-9 {
		t.Errorf("unexpected target price %v", rec.TargetPrice)
	}
	if rec.StopLoss == nil || math.Abs(*rec.StopLoss-125*0.92) > 1e-9 {
		t.Errorf("unexpected stop loss %v", rec.StopLoss)
	}
	if len(rec.Reasoning) != 4 {
		t.Fatalf("expected 4 reasons, got %v", rec.Reasoning)
	}
	found := false
	for _, reason := range rec.Reasoning {
		if strings.Contains(reason, "Sustained 7d uptrend") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the 7d momentum leg, got %v", rec.Reasoning)
	}
}

func TestDecideBearishConsensus(t *testing.T) {
	now := t0.Add(30 * 24 * time.Hour)
	in := DecisionInputs{
		Symbol: "ETH",
		News: []models.NewsEvent{{
			ID: "n1", Title: "Exchange hacked", Category: models.CategorySecurity,
			SentimentScore: -0.8, ImpactLevel: models.ImpactHigh, PublishedAt: now.Add(-3 * time.Hour),
		}},
		History: []models.PriceTick{
			{Symbol: "ETH", Timestamp: now, Price: 80},
			{Symbol: "ETH", Timestamp: now.Add(-24 * time.Hour), Price: 100},
			{Symbol: "ETH", Timestamp: now.Add(-168 * time.Hour), Price: 105},
		},
		Now: now,
	}

	rec, ok := Decide(in)
	if !ok {
		t.Fatalf("expected a recommendation")
	}
	if rec.Action != models.ActionSell {
		t.Fatalf("expected SELL, got %s (reasons %v)", rec.Action, rec.Reasoning)
	}
	downtrend := false
	for _, reason := range rec.Reasoning {
		if strings.Contains(reason, "Sustained 7d downtrend") {
			downtrend = true
		}
	}
	if !downtrend {
		t.Errorf("expected the 7d decline leg, got %v", rec.Reasoning)
	}
	if rec.ConfidencePercent != models.MaxConfidencePercent {
		t.Errorf("expected confidence %v, got %v", models.MaxConfidencePercent, rec.ConfidencePercent)
	}
	if rec.TargetPrice != nil {
		t.Errorf("SELL must not carry a target price")
	}
	if rec.StopLoss == nil || math.Abs(*rec.StopLoss-80*1.08) > 1e-9 {
		t.Errorf("unexpected stop loss %v", rec.StopLoss)
	}
}

func TestDecideNoSignalsHolds(t *testing.T) {
	now := t0
	in := DecisionInputs{
		Symbol: "SOL",
		History: []models.PriceTick{
			{Symbol: "SOL", Timestamp: now, Price: 50},
			{Symbol: "SOL", Timestamp: now.Add(-24 * time.Hour), Price: 50},
		},
		Now: now,
	}

	rec, ok := Decide(in)
	if !ok {
		t.Fatalf("expected a recommendation")
	}
	if rec.Action != models.ActionHold {
		t.Fatalf("expected HOLD, got %s", rec.Action)
	}
	if rec.ConfidencePercent != 75 {
		t.Errorf("expected confidence 75, got %v", rec.ConfidencePercent)
	}
	if rec.TargetPrice != nil || rec.StopLoss != nil {
		t.Errorf("HOLD must carry neither target nor stop")
	}
}

func TestDecideNoHistoryNoRecommendation(t *testing.T) {
	if _, ok := Decide(DecisionInputs{Symbol: "BTC", Now: t0}); ok {
		t.Fatalf("expected no recommendation without history")
	}
}

func TestDecideDeterministic(t *testing.T) {
	now := t0
	in := DecisionInputs{
		Symbol: "BTC",
		News: []models.NewsEvent{{
			ID: "n1", Title: "Rate cut", Category: models.CategoryFedPolicy,
			SentimentScore: 0.6, ImpactLevel: models.ImpactHigh, PublishedAt: now.Add(-time.Hour),
		}},
		History: []models.PriceTick{
			{Symbol: "BTC", Timestamp: now, Price: 120},
			{Symbol: "BTC", Timestamp: now.Add(-24 * time.Hour), Price: 100},
		},
		MarketTrendPct: 2.5,
		Now:            now,
	}
	a, _ := Decide(in)
	b, _ := Decide(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same inputs produced different recommendations:\n%+v\n%+v", a, b)
	}
}

func TestRefreshReplacesActiveBatch(t *testing.T) {
	now := t0.Add(40 * 24 * time.Hour)

	prices := newFakePriceStore()
	prices.add("BTC", now.Add(-24*time.Hour), 100)
	prices.add("BTC", now, 112)

	events := &fakeEventStore{events: []models.NewsEvent{{
		ID: "n1", Title: "Adoption wave", Category: models.CategoryAdoption,
		SentimentScore: 0.7, ImpactLevel: models.ImpactMedium, PublishedAt: now.Add(-6 * time.Hour),
	}}}
	recStore := &fakeRecStore{}
	pub := &fakePublisher{}
	miner := NewMiner(prices, newFakePatternStore(), nil, []string{"BTC"}, 1)

	history := &fakeRecLog{}
	r := NewRecommender(prices, events, recStore, &fakeTrendSource{pct: 2.8}, miner, pub, nil, []string{"BTC", "DOGE"})
	r.SetClock(func() time.Time { return now })
	r.SetHistory(history)

	batch, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	// DOGE has no history and is skipped entirely.
	if len(batch) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(batch))
	}
	rec := batch[0]
	if rec.AssetSymbol != "BTC" || rec.Action != models.ActionBuy {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
	if rec.ID == "" || rec.BatchID == "" {
		t.Errorf("expected generated IDs, got %+v", rec)
	}
	if !rec.ExpiresAt.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("expected 24h expiry, got %v", rec.ExpiresAt)
	}

	active, _ := recStore.Active(context.Background())
	if !reflect.DeepEqual(active, batch) {
		t.Errorf("active set does not match the saved batch")
	}
	if len(pub.batches) != 1 {
		t.Errorf("expected 1 published batch, got %d", len(pub.batches))
	}
	if len(history.batches) != 1 {
		t.Errorf("expected the batch in the audit log, got %d", len(history.batches))
	}
}

func TestGenerateAllHonorsLookback(t *testing.T) {
	now := t0.Add(50 * 24 * time.Hour)
	prices := newFakePriceStore()
	prices.add("BTC", now, 100)

	// One strongly positive event, three days old.
	events := &fakeEventStore{events: []models.NewsEvent{{
		ID: "n1", Title: "Spot ETF approved", Category: models.CategoryRegulation,
		SentimentScore: 0.8, ImpactLevel: models.ImpactHigh, PublishedAt: now.Add(-72 * time.Hour),
	}}}

	r := NewRecommender(prices, events, &fakeRecStore{}, nil, nil, nil, nil, []string{"BTC"})
	r.SetClock(func() time.Time { return now })

	batch, err := r.GenerateAll(context.Background())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(batch) != 1 || batch[0].Action != models.ActionBuy {
		t.Fatalf("expected BUY under the default window, got %+v", batch)
	}

	// Shrinking the window below the event's age drops the only signal.
	r.SetLookback(48 * time.Hour)
	batch, err = r.GenerateAll(context.Background())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(batch) != 1 || batch[0].Action != models.ActionHold {
		t.Fatalf("expected HOLD under a 48h window, got %+v", batch)
	}
}

func TestRefreshSurvivesPublishFailure(t *testing.T) {
	now := t0
	prices := newFakePriceStore()
	prices.add("BTC", now.Add(-24*time.Hour), 100)
	prices.add("BTC", now, 101)

	recStore := &fakeRecStore{}
	pub := &fakePublisher{err: context.DeadlineExceeded}

	r := NewRecommender(prices, &fakeEventStore{}, recStore, &fakeTrendSource{}, nil, pub, nil, []string{"BTC"})
	r.SetClock(func() time.Time { return now })

	batch, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("publish failure must not fail the refresh: %v", err)
	}
	active, _ := recStore.Active(context.Background())
	if len(active) != len(batch) {
		t.Fatalf("batch not stored despite publish failure")
	}
}
