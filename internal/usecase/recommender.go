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
	newsLookback    = 7 * 24 * time.Hour
	historyLookback = 168 * time.Hour
	batchTTL        = 24 * time.Hour

	buyThreshold  = 0.25
	sellThreshold = -0.25

	buyTargetFactor = 1.15
	buyStopFactor   = 0.92
	sellStopFactor  = 1.08
)

// DecisionInputs is everything the decision function is allowed to look at.
// Decide is pure over these inputs.
type DecisionInputs struct {
	Symbol         string
	News           []models.NewsEvent // 7-day window
	History        []models.PriceTick // 168h, most recent first
	MarketTrendPct float64            // reference index 24h change
	Now            time.Time
}

// signal is one independently evaluated contributor to the decision score.
type signal struct {
	weight    float64
	direction float64 // +1 or -1
	reason    string
}

// Recommender combines sentiment, momentum, market trend and high-impact
// event overrides into one discrete decision per tracked asset.
type Recommender struct {
	prices   drepo.PriceStore
	events   drepo.EventStore
	store    drepo.RecommendationStore
	trend    domsvc.TrendSource
	miner    *Miner
	pub      drepo.Publisher
	history  drepo.RecommendationLog
	metrics  drepo.Metrics
	symbols  []string
	lookback time.Duration
	l        *applogger.Logger
	now      func() time.Time
}

func NewRecommender(
	prices drepo.PriceStore,
	events drepo.EventStore,
	store drepo.RecommendationStore,
	trend domsvc.TrendSource,
	miner *Miner,
	pub drepo.Publisher,
	metrics drepo.Metrics,
	symbols []string,
) *Recommender {
	return &Recommender{
		prices:   prices,
		events:   events,
		store:    store,
		trend:    trend,
		miner:    miner,
		pub:      pub,
		metrics:  metrics,
		symbols:  symbols,
		lookback: newsLookback,
		now:      time.Now,
	}
}

// SetLogger injects a structured logger.
func (r *Recommender) SetLogger(l *applogger.Logger) { r.l = l }

// SetClock overrides the time source.
func (r *Recommender) SetClock(now func() time.Time) { r.now = now }

// SetHistory attaches an append-only batch audit log.
func (r *Recommender) SetHistory(h drepo.RecommendationLog) { r.history = h }

// SetLookback overrides the news window consulted per batch.
func (r *Recommender) SetLookback(d time.Duration) {
	if d > 0 {
		r.lookback = d
	}
}

// Decide evaluates the signal table against the inputs and returns the
// decision for one asset. ok is false when the asset has no price history, in
// which case no recommendation is emitted.
func Decide(in DecisionInputs) (rec models.Recommendation, ok bool) {
	if len(in.History) == 0 {
		return models.Recommendation{}, false
	}
	current := in.History[0].Price

	var signals []signal

	// Sentiment, impact-weighted over the 7-day window.
	sentiment := weightedSentiment(in.News)
	if sentiment > 0.3 {
		signals = append(signals, signal{0.3, 1, fmt.Sprintf("Positive news sentiment (%.2f)", sentiment)})
	} else if sentiment < -0.3 {
		signals = append(signals, signal{0.3, -1, fmt.Sprintf("Negative news sentiment (%.2f)", sentiment)})
	}

	// 24h momentum. Falls are weighted heavier than rallies.
	if change24, ok := percentChange(in.History, in.Now, 24*time.Hour); ok {
		if change24 > 10 {
			signals = append(signals, signal{0.2, 1, fmt.Sprintf("Strong 24h momentum (+%.1f%%)", change24)})
		} else if change24 < -10 {
			signals = append(signals, signal{0.25, -1, fmt.Sprintf("Sharp 24h decline (%.1f%%)", change24)})
		}
	}

	// 7d momentum.
	if change7d, ok := percentChange(in.History, in.Now, historyLookback); ok {
		if change7d > 20 {
			signals = append(signals, signal{0.15, 1, fmt.Sprintf("Sustained 7d uptrend (+%.1f%%)", change7d)})
		} else if change7d < -20 {
			signals = append(signals, signal{0.2, -1, fmt.Sprintf("Sustained 7d downtrend (%.1f%%)", change7d)})
		}
	}

	// Broader market trend.
	if in.MarketTrendPct > 2 {
		signals = append(signals, signal{0.15, 1, fmt.Sprintf("Broader market uptrend (+%.1f%%)", in.MarketTrendPct)})
	} else if in.MarketTrendPct < -2 {
		signals = append(signals, signal{0.15, -1, fmt.Sprintf("Broader market downtrend (%.1f%%)", in.MarketTrendPct)})
	}

	// High-impact negative news overrides.
	for _, n := range in.News {
		if n.ImpactLevel == models.ImpactHigh && n.SentimentScore < -0.5 {
			signals = append(signals, signal{0.35, -1, fmt.Sprintf("High-impact negative news: %s", n.Title)})
			break
		}
	}

	var weighted, totalWeight float64
	reasons := make([]string, 0, len(signals))
	for _, s := range signals {
		weighted += s.weight * s.direction
		totalWeight += s.weight
		reasons = append(reasons, s.reason)
	}
	score := 0.0
	if totalWeight > 0 {
		score = weighted / totalWeight
	}

	rec = models.Recommendation{
		AssetSymbol: in.Symbol,
		Reasoning:   reasons,
		GeneratedAt: in.Now,
		ExpiresAt:   in.Now.Add(batchTTL),
		IsActive:    true,
	}

	switch {
	case score > buyThreshold:
		rec.Action = models.ActionBuy
		rec.ConfidencePercent = models.ClampPercent(50 + score*100)
		target := current * buyTargetFactor
		stop := current * buyStopFactor
		rec.TargetPrice = &target
		rec.StopLoss = &stop
	case score < sellThreshold:
		rec.Action = models.ActionSell
		rec.ConfidencePercent = models.ClampPercent(50 + math.Abs(score)*100)
		stop := current * sellStopFactor
		rec.StopLoss = &stop
	default:
		rec.Action = models.ActionHold
		rec.ConfidencePercent = models.ClampPercent(75 - math.Abs(score)*100)
	}
	return rec, true
}

// GenerateAll runs a mining pass over the recent news window, then produces
// one recommendation per tracked asset. Assets without price history are
// skipped; per-asset failures degrade the batch but never abort it.
func (r *Recommender) GenerateAll(ctx context.Context) ([]models.Recommendation, error) {
	now := r.now()

	news, err := r.events.GetEvents(ctx, now.Add(-r.lookback), now)
	if err != nil {
		// Degrade to a news-less batch rather than failing the whole run.
		r.countError("event_read")
		if r.l != nil {
			r.l.Warn("event fetch failed, generating without news", applogger.Error(err))
		}
		news = nil
	}

	if r.miner != nil {
		r.miner.Mine(ctx, news)
	}

	var trendPct float64
	if r.trend != nil {
		v, err := r.trend.MarketTrend(ctx)
		if err != nil {
			r.countError("market_trend")
			if r.l != nil {
				r.l.Warn("market trend unavailable", applogger.Error(err))
			}
		} else {
			trendPct = v
		}
	}

	batchID := uuid.NewString()
	out := make([]models.Recommendation, 0, len(r.symbols))
	for _, symbol := range r.symbols {
		history, err := r.prices.GetPriceHistory(ctx, symbol, now.Add(-historyLookback), now)
		if err != nil {
			r.countError("price_read")
			if r.l != nil {
				r.l.Warn("price history failed", applogger.String("symbol", symbol), applogger.Error(err))
			}
			continue
		}

		rec, ok := Decide(DecisionInputs{
			Symbol:         symbol,
			News:           news,
			History:        history,
			MarketTrendPct: trendPct,
			Now:            now,
		})
		if !ok {
			if r.metrics != nil {
				r.metrics.RecordSkip("no_history")
			}
			continue
		}

		rec.ID = uuid.NewString()
		rec.BatchID = batchID
		if r.metrics != nil {
			r.metrics.RecordRecommendation(symbol, rec.Action)
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveBatch atomically replaces the active set with the new batch, appends it
// to the audit log, then publishes it downstream. Log and publish failures are
// logged, not fatal; only the active-set swap can fail the save.
func (r *Recommender) SaveBatch(ctx context.Context, batch []models.Recommendation) error {
	if err := r.store.ReplaceActive(ctx, batch); err != nil {
		r.countError("recommendation_write")
		return fmt.Errorf("replace active recommendations: %w", err)
	}
	if r.history != nil {
		if err := r.history.AppendBatch(ctx, batch); err != nil {
			r.countError("recommendation_log")
			if r.l != nil {
				r.l.Warn("recommendation history append failed", applogger.Error(err))
			}
		}
	}
	if r.pub != nil {
		if err := r.pub.PublishRecommendations(ctx, batch); err != nil {
			r.countError("recommendation_publish")
			if r.l != nil {
				r.l.Warn("recommendation publish failed", applogger.Error(err))
			}
		}
	}
	return nil
}

// Refresh generates and saves a full batch, returning it.
func (r *Recommender) Refresh(ctx context.Context) ([]models.Recommendation, error) {
	start := time.Now()
	batch, err := r.GenerateAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.SaveBatch(ctx, batch); err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.RecordLatency("refresh", time.Since(start).Seconds())
	}
	if r.l != nil {
		r.l.Info("recommendation batch saved",
			applogger.Int("count", len(batch)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return batch, nil
}

// Active returns the current active batch.
func (r *Recommender) Active(ctx context.Context) ([]models.Recommendation, error) {
	return r.store.Active(ctx)
}

func (r *Recommender) countError(kind string) {
	if r.metrics != nil {
		r.metrics.RecordError(kind)
	}
}
