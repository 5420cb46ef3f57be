package models

import (
	"math"
	"time"
)

// Confidence bounds for correlation patterns. Computed scores are clamped to
// this range before any write.
const (
	MinPatternConfidence = 0.5
	MaxPatternConfidence = 0.95
)

// PatternKey uniquely identifies a correlation pattern: one learned link
// between a specific event and an asset at a fixed lag.
type PatternKey struct {
	EventID      string
	AssetSymbol  string
	TimeLagHours int
}

// CorrelationPattern is an accumulated (event, asset, lag) -> price-move
// association. It is created on first discovery and mutated in place
// (occurrence increment, confidence recompute) on re-discovery of the same key.
type CorrelationPattern struct {
	EventType          EventCategory `json:"event_type"`
	EventID            string        `json:"event_id"`
	AssetSymbol        string        `json:"asset_symbol"`
	PriceChangePercent float64       `json:"price_change_percent"`
	TimeLagHours       int           `json:"time_lag_hours"`
	ConfidenceScore    float64       `json:"confidence_score"`
	OccurrenceCount    int           `json:"occurrence_count"`
	EventTimestamp     time.Time     `json:"event_timestamp"`
}

// Key returns the unique key of the pattern.
func (p CorrelationPattern) Key() PatternKey {
	return PatternKey{EventID: p.EventID, AssetSymbol: p.AssetSymbol, TimeLagHours: p.TimeLagHours}
}

// ClampConfidence bounds a pattern confidence score to [0.5, 0.95].
func ClampConfidence(v float64) float64 {
	return math.Min(math.Max(v, MinPatternConfidence), MaxPatternConfidence)
}

// PriceImpact is the query layer's per-asset prediction for a hypothetical
// event: an accumulated predicted change and the mean confidence of the
// patterns that contributed to it.
type PriceImpact struct {
	PredictedChange float64 `json:"predicted_change"`
	Confidence      float64 `json:"confidence"`
}
