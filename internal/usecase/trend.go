package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	domsvc "MarketPulse/internal/domain/service"
	applogger "MarketPulse/pkg/logger"
)

const (
	trendNewsWindow   = 24 * time.Hour
	trendClassifyPct  = 2.0 // per-asset bullish/bearish threshold
	consensusFraction = 0.6
)

// TrendPredictor aggregates per-asset momentum and aggregate news sentiment
// into a single market-wide bullish/neutral/bearish call, run on a coarser
// cadence than per-asset recommendations.
type TrendPredictor struct {
	prices  drepo.PriceStore
	events  drepo.EventStore
	store   drepo.TrendStore
	market  domsvc.TrendSource
	pub     drepo.Publisher
	metrics drepo.Metrics
	symbols []string
	l       *applogger.Logger
	now     func() time.Time
}

func NewTrendPredictor(
	prices drepo.PriceStore,
	events drepo.EventStore,
	store drepo.TrendStore,
	market domsvc.TrendSource,
	pub drepo.Publisher,
	metrics drepo.Metrics,
	symbols []string,
) *TrendPredictor {
	return &TrendPredictor{
		prices:  prices,
		events:  events,
		store:   store,
		market:  market,
		pub:     pub,
		metrics: metrics,
		symbols: symbols,
		now:     time.Now,
	}
}

// SetLogger injects a structured logger.
func (t *TrendPredictor) SetLogger(l *applogger.Logger) { t.l = l }

// SetClock overrides the time source.
func (t *TrendPredictor) SetClock(now func() time.Time) { t.now = now }

// Predict computes the market-wide call without persisting it.
func (t *TrendPredictor) Predict(ctx context.Context) (models.TrendPrediction, error) {
	now := t.now()

	var bullish, bearish, neutral int
	var sumChange float64
	for _, symbol := range t.symbols {
		history, err := t.prices.GetPriceHistory(ctx, symbol, now.Add(-30*time.Hour), now)
		if err != nil {
			t.countError("price_read")
			if t.l != nil {
				t.l.Warn("trend price history failed", applogger.String("symbol", symbol), applogger.Error(err))
			}
			continue
		}
		change, ok := percentChange(history, now, 24*time.Hour)
		if !ok {
			if t.metrics != nil {
				t.metrics.RecordSkip("no_history")
			}
			continue
		}
		sumChange += change
		switch {
		case change > trendClassifyPct:
			bullish++
		case change < -trendClassifyPct:
			bearish++
		default:
			neutral++
		}
	}

	total := bullish + bearish + neutral
	pred := models.TrendPrediction{
		ID:             uuid.NewString(),
		PredictionType: models.TrendNeutral,
		BullishCount:   bullish,
		BearishCount:   bearish,
		NeutralCount:   neutral,
		PredictedAt:    now,
	}
	if total == 0 {
		pred.ConfidencePercent = models.MinConfidencePercent
		pred.Reasoning = "No price data available for any tracked asset"
		return pred, nil
	}

	avgChange := sumChange / float64(total)
	pred.AveragePriceChange = avgChange

	news, err := t.events.GetEvents(ctx, now.Add(-trendNewsWindow), now)
	if err != nil {
		t.countError("event_read")
		if t.l != nil {
			t.l.Warn("trend news fetch failed", applogger.Error(err))
		}
		news = nil
	}
	newsSentiment := meanSentiment(news)
	pred.NewsSentimentScore = newsSentiment

	weighted := avgChange*0.6 + newsSentiment*0.4

	bullFrac := float64(bullish) / float64(total)
	bearFrac := float64(bearish) / float64(total)
	neutFrac := float64(neutral) / float64(total)
	switch {
	case bullFrac >= consensusFraction && weighted > 1:
		pred.PredictionType = models.TrendPositive
	case bearFrac >= consensusFraction && weighted < -1:
		pred.PredictionType = models.TrendNegative
	}

	consensus := math.Max(bullFrac, math.Max(bearFrac, neutFrac))
	volatilityFactor := math.Min(math.Abs(avgChange)/5, 1)
	newsFactor := math.Min(float64(len(news))/10, 1)
	pred.ConfidencePercent = models.ClampPercent(consensus*50 + volatilityFactor*20 + newsFactor*15)

	if t.market != nil {
		if v, err := t.market.MarketTrend(ctx); err != nil {
			t.countError("market_trend")
		} else {
			pred.MacroEventsSummary = fmt.Sprintf("Reference index 24h change: %+.2f%%", v)
		}
	}

	pred.Reasoning = fmt.Sprintf(
		"%d of %d assets bullish, %d bearish; avg 24h change %.2f%%; news sentiment %.2f over %d events",
		bullish, total, bearish, avgChange, newsSentiment, len(news),
	)
	return pred, nil
}

// Run computes, persists, and publishes one prediction. Persistence or publish
// failures are logged and the prediction is still returned.
func (t *TrendPredictor) Run(ctx context.Context) (models.TrendPrediction, error) {
	start := time.Now()
	pred, err := t.Predict(ctx)
	if err != nil {
		return models.TrendPrediction{}, err
	}

	if err := t.store.Append(ctx, pred); err != nil {
		t.countError("trend_write")
		if t.l != nil {
			t.l.Warn("trend append failed", applogger.Error(err))
		}
	}
	if t.pub != nil {
		if err := t.pub.PublishTrend(ctx, pred); err != nil {
			t.countError("trend_publish")
			if t.l != nil {
				t.l.Warn("trend publish failed", applogger.Error(err))
			}
		}
	}
	if t.metrics != nil {
		t.metrics.RecordLatency("trend", time.Since(start).Seconds())
	}
	if t.l != nil {
		t.l.Info("trend prediction recorded",
			applogger.String("type", string(pred.PredictionType)),
			applogger.Float64("confidence", pred.ConfidencePercent),
		)
	}
	return pred, nil
}

// Latest returns the n most recent predictions.
func (t *TrendPredictor) Latest(ctx context.Context, n int) ([]models.TrendPrediction, error) {
	return t.store.Latest(ctx, n)
}

func (t *TrendPredictor) countError(kind string) {
	if t.metrics != nil {
		t.metrics.RecordError(kind)
	}
}
