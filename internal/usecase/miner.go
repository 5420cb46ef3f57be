package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	applogger "MarketPulse/pkg/logger"
)

const (
	// baselineTolerance is the window around an event (and around each lag
	// sample point) in which a price tick still counts as "at" that moment.
	baselineTolerance = time.Hour

	// materialChangePct: moves at or below this magnitude are noise, not patterns.
	materialChangePct = 1.0

	baseConfidence = 0.5

	// occurrenceBonus is the per-occurrence confidence increment applied when a
	// pattern is re-discovered.
	occurrenceBonus = 0.05
)

// MiningSummary aggregates the outcome of one mining pass. Per-item failures
// never abort the pass; they only show up here and in the logs.
type MiningSummary struct {
	Events          int `json:"events"`
	PairsSkipped    int `json:"pairs_skipped"`
	LagsSkipped     int `json:"lags_skipped"`
	PatternsCreated int `json:"patterns_created"`
	PatternsUpdated int `json:"patterns_updated"`
	ReadFailures    int `json:"read_failures"`
	WriteFailures   int `json:"write_failures"`
}

func (s *MiningSummary) merge(o MiningSummary) {
	s.Events += o.Events
	s.PairsSkipped += o.PairsSkipped
	s.LagsSkipped += o.LagsSkipped
	s.PatternsCreated += o.PatternsCreated
	s.PatternsUpdated += o.PatternsUpdated
	s.ReadFailures += o.ReadFailures
	s.WriteFailures += o.WriteFailures
}

// Miner discovers and accumulates statistical links between event categories
// and subsequent asset price moves.
type Miner struct {
	prices   drepo.PriceStore
	patterns drepo.PatternStore
	metrics  drepo.Metrics
	symbols  []string
	workers  int
	l        *applogger.Logger
}

func NewMiner(prices drepo.PriceStore, patterns drepo.PatternStore, metrics drepo.Metrics, symbols []string, workers int) *Miner {
	if workers <= 0 {
		workers = 4
	}
	return &Miner{prices: prices, patterns: patterns, metrics: metrics, symbols: symbols, workers: workers}
}

// SetLogger injects a structured logger.
func (m *Miner) SetLogger(l *applogger.Logger) { m.l = l }

// Mine measures post-event price deltas for every (event, tracked asset, lag)
// triple and upserts a correlation pattern for each material move. Events are
// independent, and each (event, asset, lag) write target is uniquely keyed, so
// events are fanned out over a bounded worker pool.
func (m *Miner) Mine(ctx context.Context, events []models.NewsEvent) MiningSummary {
	start := time.Now()

	jobs := make(chan models.NewsEvent)
	results := make(chan MiningSummary, m.workers)

	var wg sync.WaitGroup
	for i := 0; i < m.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local MiningSummary
			for ev := range jobs {
				es := m.mineEvent(ctx, ev)
				es.Events = 1
				local.merge(es)
			}
			results <- local
		}()
	}

	for _, ev := range events {
		select {
		case <-ctx.Done():
		case jobs <- ev:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()
	close(results)

	var sum MiningSummary
	for s := range results {
		sum.merge(s)
	}

	if m.metrics != nil {
		m.metrics.RecordLatency("mine", time.Since(start).Seconds())
	}
	if m.l != nil {
		m.l.Info("mining pass complete",
			applogger.Int("events", sum.Events),
			applogger.Int("created", sum.PatternsCreated),
			applogger.Int("updated", sum.PatternsUpdated),
			applogger.Int("pairs_skipped", sum.PairsSkipped),
			applogger.Int("write_failures", sum.WriteFailures),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return sum
}

func (m *Miner) mineEvent(ctx context.Context, ev models.NewsEvent) MiningSummary {
	var sum MiningSummary

	for _, symbol := range m.symbols {
		baseline, ok, err := m.prices.GetPriceNear(ctx, symbol, ev.PublishedAt, baselineTolerance)
		if err != nil {
			sum.ReadFailures++
			m.countError("price_read")
			m.warn("baseline read failed", ev.ID, symbol, 0, err)
			continue
		}
		if !ok || baseline.Price == 0 {
			// Missing baseline is expected for thinly recorded assets.
			sum.PairsSkipped++
			m.countSkip("no_baseline")
			continue
		}

		for _, lag := range drepo.LagWindows {
			at := ev.PublishedAt.Add(time.Duration(lag) * time.Hour)
			after, ok, err := m.prices.GetPriceNear(ctx, symbol, at, baselineTolerance)
			if err != nil {
				sum.ReadFailures++
				m.countError("price_read")
				m.warn("lag read failed", ev.ID, symbol, lag, err)
				continue
			}
			if !ok {
				sum.LagsSkipped++
				continue
			}

			changePct := (after.Price - baseline.Price) / baseline.Price * 100
			if math.Abs(changePct) <= materialChangePct {
				continue
			}

			conf := eventConfidence(changePct, ev)
			created, err := m.upsertPattern(ctx, ev, symbol, lag, changePct, conf)
			if err != nil {
				sum.WriteFailures++
				m.countError("pattern_write")
				m.warn("pattern upsert failed", ev.ID, symbol, lag, err)
				continue
			}
			if created {
				sum.PatternsCreated++
				if m.metrics != nil {
					m.metrics.RecordPattern("discovered", ev.Category)
				}
			} else {
				sum.PatternsUpdated++
				if m.metrics != nil {
					m.metrics.RecordPattern("updated", ev.Category)
				}
			}
		}
	}
	return sum
}

// upsertPattern inserts a fresh pattern or accumulates onto an existing one.
// Re-discovery of the same key legitimately happens when mining runs overlap.
func (m *Miner) upsertPattern(ctx context.Context, ev models.NewsEvent, symbol string, lag int, changePct, conf float64) (created bool, err error) {
	key := models.PatternKey{EventID: ev.ID, AssetSymbol: symbol, TimeLagHours: lag}

	existing, found, err := m.patterns.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if found {
		existing.OccurrenceCount++
		// Recency-biased accumulation: the latest computed confidence
		// dominates, plus a bonus per occurrence.
		existing.ConfidenceScore = models.ClampConfidence(
			float64(existing.OccurrenceCount)*occurrenceBonus + conf)
		return false, m.patterns.Upsert(ctx, existing)
	}

	p := models.CorrelationPattern{
		EventType:          ev.Category,
		EventID:            ev.ID,
		AssetSymbol:        symbol,
		PriceChangePercent: changePct,
		TimeLagHours:       lag,
		ConfidenceScore:    models.ClampConfidence(conf),
		OccurrenceCount:    1,
		EventTimestamp:     ev.PublishedAt,
	}
	return true, m.patterns.Upsert(ctx, p)
}

// eventConfidence scores how much a single observation supports a pattern:
// base 0.5, +0.2 when the move direction matches the event sentiment, up to
// +0.3 by move magnitude (>5/>10/>20%), plus an impact-level bonus. Capped at 0.95.
func eventConfidence(changePct float64, ev models.NewsEvent) float64 {
	score := baseConfidence

	if (changePct > 0 && ev.SentimentScore > 0) || (changePct < 0 && ev.SentimentScore < 0) {
		score += 0.2
	}

	abs := math.Abs(changePct)
	if abs > 5 {
		score += 0.1
	}
	if abs > 10 {
		score += 0.1
	}
	if abs > 20 {
		score += 0.1
	}

	switch ev.ImpactLevel {
	case models.ImpactHigh:
		score += 0.2
	case models.ImpactMedium:
		score += 0.1
	}

	return math.Min(score, models.MaxPatternConfidence)
}

func (m *Miner) countSkip(reason string) {
	if m.metrics != nil {
		m.metrics.RecordSkip(reason)
	}
}

func (m *Miner) countError(kind string) {
	if m.metrics != nil {
		m.metrics.RecordError(kind)
	}
}

func (m *Miner) warn(msg, eventID, symbol string, lag int, err error) {
	if m.l == nil {
		return
	}
	m.l.Warn(msg,
		applogger.String("event_id", eventID),
		applogger.String("symbol", symbol),
		applogger.Int("lag_hours", lag),
		applogger.Error(err),
	)
}
