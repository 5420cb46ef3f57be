package repository

import (
	"context"
	"database/sql"
	"fmt"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	pkgch "MarketPulse/pkg/clickhouse"
	applogger "MarketPulse/pkg/logger"
)

const trendTable = "marketpulse.trend_predictions"

// CHTrendStore is the append-only trend prediction history.
type CHTrendStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHTrendStore(ch *pkgch.Client) *CHTrendStore {
	return &CHTrendStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHTrendStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHTrendStore) Append(ctx context.Context, p models.TrendPrediction) error {
	const q = `
        INSERT INTO ` + trendTable + `
            (id, prediction_type, confidence, reasoning, avg_change,
             bullish, bearish, neutral, news_sentiment, macro_summary, predicted_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, q,
		p.ID,
		string(p.PredictionType),
		p.ConfidencePercent,
		p.Reasoning,
		p.AveragePriceChange,
		p.BullishCount,
		p.BearishCount,
		p.NeutralCount,
		p.NewsSentimentScore,
		p.MacroEventsSummary,
		p.PredictedAt,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse trend append error", applogger.Error(err))
		}
		return fmt.Errorf("append trend prediction: %w", err)
	}
	return nil
}

func (s *CHTrendStore) Latest(ctx context.Context, n int) ([]models.TrendPrediction, error) {
	const q = `
        SELECT id, prediction_type, confidence, reasoning, avg_change,
               bullish, bearish, neutral, news_sentiment, macro_summary, predicted_at
        FROM ` + trendTable + `
        ORDER BY predicted_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("latest trend predictions: %w", err)
	}
	defer rows.Close()

	out := make([]models.TrendPrediction, 0, n)
	for rows.Next() {
		var p models.TrendPrediction
		var ptype string
		if err := rows.Scan(&p.ID, &ptype, &p.ConfidencePercent, &p.Reasoning, &p.AveragePriceChange,
			&p.BullishCount, &p.BearishCount, &p.NeutralCount, &p.NewsSentimentScore,
			&p.MacroEventsSummary, &p.PredictedAt); err != nil {
			return nil, fmt.Errorf("scan trend prediction: %w", err)
		}
		p.PredictionType = models.TrendDirection(ptype)
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ domrepo.TrendStore = (*CHTrendStore)(nil)
