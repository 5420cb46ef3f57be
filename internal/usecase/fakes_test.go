package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
)

// fakePriceStore serves ticks from an in-memory per-symbol slice. Ticks are
// stored most recent first, matching the repository contract.
type fakePriceStore struct {
	mu    sync.Mutex
	ticks map[string][]models.PriceTick
	err   error
}

func newFakePriceStore() *fakePriceStore {
	return &fakePriceStore{ticks: make(map[string][]models.PriceTick)}
}

func (s *fakePriceStore) add(symbol string, at time.Time, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks[symbol] = append([]models.PriceTick{{Symbol: symbol, Timestamp: at, Price: price}}, s.ticks[symbol]...)
}

func (s *fakePriceStore) GetPriceNear(_ context.Context, symbol string, at time.Time, tolerance time.Duration) (models.PriceTick, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.PriceTick{}, false, s.err
	}
	var best models.PriceTick
	bestDist := tolerance + 1
	for _, t := range s.ticks[symbol] {
		d := t.Timestamp.Sub(at)
		if d < 0 {
			d = -d
		}
		if d <= tolerance && d < bestDist {
			best = t
			bestDist = d
		}
	}
	if bestDist > tolerance {
		return models.PriceTick{}, false, nil
	}
	return best, true, nil
}

func (s *fakePriceStore) GetPriceHistory(_ context.Context, symbol string, from, to time.Time) ([]models.PriceTick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.PriceTick
	for _, t := range s.ticks[symbol] {
		if !t.Timestamp.Before(from) && !t.Timestamp.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeEventStore struct {
	events []models.NewsEvent
	err    error
}

func (s *fakeEventStore) GetEvents(_ context.Context, from, to time.Time) ([]models.NewsEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.NewsEvent
	for _, e := range s.events {
		if !e.PublishedAt.Before(from) && !e.PublishedAt.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakePatternStore keeps patterns in a map and can be told to fail writes.
type fakePatternStore struct {
	mu       sync.Mutex
	patterns map[models.PatternKey]models.CorrelationPattern
	failPut  bool
}

func newFakePatternStore() *fakePatternStore {
	return &fakePatternStore{patterns: make(map[models.PatternKey]models.CorrelationPattern)}
}

func (s *fakePatternStore) Get(_ context.Context, key models.PatternKey) (models.CorrelationPattern, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patterns[key]
	return p, ok, nil
}

func (s *fakePatternStore) Upsert(_ context.Context, p models.CorrelationPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errors.New("upsert failed")
	}
	s.patterns[p.Key()] = p
	return nil
}

func (s *fakePatternStore) Query(_ context.Context, f drepo.PatternFilter) ([]models.CorrelationPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CorrelationPattern
	for _, p := range s.patterns {
		if p.EventType == f.Category && p.ConfidenceScore >= f.MinConfidence {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeRecStore struct {
	mu     sync.Mutex
	active []models.Recommendation
	err    error
}

func (s *fakeRecStore) ReplaceActive(_ context.Context, batch []models.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.active = batch
	return nil
}

func (s *fakeRecStore) Active(_ context.Context) ([]models.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.err
}

type fakeRecLog struct {
	mu      sync.Mutex
	batches [][]models.Recommendation
	err     error
}

func (s *fakeRecLog) AppendBatch(_ context.Context, batch []models.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, batch)
	return nil
}

type fakeTrendStore struct {
	mu      sync.Mutex
	history []models.TrendPrediction
	err     error
}

func (s *fakeTrendStore) Append(_ context.Context, p models.TrendPrediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.history = append([]models.TrendPrediction{p}, s.history...)
	return nil
}

func (s *fakeTrendStore) Latest(_ context.Context, n int) ([]models.TrendPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.history) {
		n = len(s.history)
	}
	return s.history[:n], nil
}

type fakePublisher struct {
	mu      sync.Mutex
	batches [][]models.Recommendation
	trends  []models.TrendPrediction
	err     error
}

func (p *fakePublisher) PublishRecommendations(_ context.Context, batch []models.Recommendation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, batch)
	return nil
}

func (p *fakePublisher) PublishTrend(_ context.Context, pred models.TrendPrediction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.trends = append(p.trends, pred)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeTrendSource struct {
	pct float64
	err error
}

func (s *fakeTrendSource) MarketTrend(context.Context) (float64, error) { return s.pct, s.err }
