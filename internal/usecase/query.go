package usecase

import (
	"context"
	"fmt"
	"sort"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
)

const (
	// DefaultMinConfidence filters ranked correlation queries.
	DefaultMinConfidence = 0.7
	// DefaultCorrelationLimit truncates ranked correlation queries.
	DefaultCorrelationLimit = 20

	// predictMinConfidence is the looser floor used when predicting impact of a
	// hypothetical event.
	predictMinConfidence = 0.6
)

// CorrelationQuery exposes learned patterns for ranking and hypothetical
// prediction.
type CorrelationQuery struct {
	patterns drepo.PatternStore
}

func NewCorrelationQuery(patterns drepo.PatternStore) *CorrelationQuery {
	return &CorrelationQuery{patterns: patterns}
}

// StrongestCorrelations returns patterns of the category at or above
// minConfidence, strongest first, truncated to limit. An empty result is valid.
func (q *CorrelationQuery) StrongestCorrelations(ctx context.Context, category models.EventCategory, minConfidence float64, limit int) ([]models.CorrelationPattern, error) {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	if limit <= 0 {
		limit = DefaultCorrelationLimit
	}

	ps, err := q.patterns.Query(ctx, drepo.PatternFilter{
		Category:      category,
		MinConfidence: minConfidence,
	})
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}

	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].ConfidenceScore > ps[j].ConfidenceScore
	})
	if len(ps) > limit {
		ps = ps[:limit]
	}
	return ps, nil
}

// PredictPriceImpact turns a hypothetical event of the given category into a
// per-asset predicted price impact. Each qualifying pattern contributes its
// sentiment-adjusted change weighted by its own confidence; per-asset
// confidence is the mean over contributing patterns. Assets with no
// contributing pattern are absent from the result. impact is part of the
// prediction contract but does not enter the current scaling.
func (q *CorrelationQuery) PredictPriceImpact(ctx context.Context, category models.EventCategory, sentiment float64, impact models.ImpactLevel) (map[string]models.PriceImpact, error) {
	_ = impact

	ps, err := q.StrongestCorrelations(ctx, category, predictMinConfidence, DefaultCorrelationLimit)
	if err != nil {
		return nil, err
	}

	type acc struct {
		prediction float64
		confidence float64
		n          int
	}
	byAsset := make(map[string]*acc)

	for _, p := range ps {
		// Sign of the historical move acts as a +/-1 directional scaler, so a
		// negative hypothetical sentiment flips the predicted direction.
		direction := 1.0
		if p.PriceChangePercent < 0 {
			direction = -1.0
		}
		adjusted := p.PriceChangePercent * (sentiment / direction)

		a := byAsset[p.AssetSymbol]
		if a == nil {
			a = &acc{}
			byAsset[p.AssetSymbol] = a
		}
		a.prediction += adjusted * p.ConfidenceScore
		a.confidence += p.ConfidenceScore
		a.n++
	}

	out := make(map[string]models.PriceImpact, len(byAsset))
	for symbol, a := range byAsset {
		out[symbol] = models.PriceImpact{
			PredictedChange: a.prediction,
			Confidence:      a.confidence / float64(a.n),
		}
	}
	return out, nil
}
