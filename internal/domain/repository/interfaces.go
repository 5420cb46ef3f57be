package repository

import (
	"context"
	"time"

	"MarketPulse/internal/domain/models"
)

// PriceStore provides read access to recorded asset prices. A missing price
// inside the queried window is a normal (zero, false, nil) result, not an error.
type PriceStore interface {
	// GetPriceNear returns the tick closest to at within +/-tolerance.
	GetPriceNear(ctx context.Context, symbol string, at time.Time, tolerance time.Duration) (models.PriceTick, bool, error)
	// GetPriceHistory returns ticks in [from, to], most recent first.
	GetPriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceTick, error)
}

// EventStore provides read access to categorized news/macro events.
type EventStore interface {
	GetEvents(ctx context.Context, from, to time.Time) ([]models.NewsEvent, error)
}

// PatternFilter narrows pattern queries.
type PatternFilter struct {
	Category      models.EventCategory
	MinConfidence float64
	Limit         int // 0 = no limit
}

// PatternStore persists correlation patterns keyed by (event, asset, lag).
type PatternStore interface {
	Get(ctx context.Context, key models.PatternKey) (models.CorrelationPattern, bool, error)
	Upsert(ctx context.Context, p models.CorrelationPattern) error
	Query(ctx context.Context, f PatternFilter) ([]models.CorrelationPattern, error)
}

// RecommendationStore holds the currently active recommendation batch.
// ReplaceActive must swap the whole active set atomically: callers may overlap
// (a manual refresh racing a scheduled one) and must never observe a partially
// replaced set.
type RecommendationStore interface {
	ReplaceActive(ctx context.Context, batch []models.Recommendation) error
	Active(ctx context.Context) ([]models.Recommendation, error)
}

// RecommendationLog is the append-only audit trail of every generated batch,
// independent of the active set's lifecycle.
type RecommendationLog interface {
	AppendBatch(ctx context.Context, batch []models.Recommendation) error
}

// TrendStore is the append-only history of market-wide trend predictions.
type TrendStore interface {
	Append(ctx context.Context, p models.TrendPrediction) error
	Latest(ctx context.Context, n int) ([]models.TrendPrediction, error)
}

// Publisher pushes engine outputs to downstream consumers.
type Publisher interface {
	PublishRecommendations(ctx context.Context, batch []models.Recommendation) error
	PublishTrend(ctx context.Context, p models.TrendPrediction) error
	Close() error
}

// Metrics records engine-level counters and timings.
type Metrics interface {
	RecordPattern(action string, category models.EventCategory)
	RecordSkip(reason string)
	RecordError(kind string)
	RecordRecommendation(symbol string, action models.Action)
	RecordLatency(op string, seconds float64)
}
