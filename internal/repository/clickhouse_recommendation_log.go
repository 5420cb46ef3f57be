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

const recommendationTable = "marketpulse.recommendation_history"

// CHRecommendationLog is the append-only audit trail of generated batches.
// The live active set lives in Redis; this table only accumulates.
type CHRecommendationLog struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHRecommendationLog(ch *pkgch.Client) *CHRecommendationLog {
	return &CHRecommendationLog{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHRecommendationLog) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHRecommendationLog) AppendBatch(ctx context.Context, batch []models.Recommendation) error {
	const q = `
        INSERT INTO ` + recommendationTable + `
            (id, batch_id, symbol, action, confidence, reasoning, target_price, stop_loss, generated_at, expires_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for _, rec := range batch {
		var target, stop float64
		if rec.TargetPrice != nil {
			target = *rec.TargetPrice
		}
		if rec.StopLoss != nil {
			stop = *rec.StopLoss
		}
		_, err := s.db.ExecContext(ctx, q,
			rec.ID,
			rec.BatchID,
			rec.AssetSymbol,
			string(rec.Action),
			rec.ConfidencePercent,
			rec.Reasoning,
			target,
			stop,
			rec.GeneratedAt,
			rec.ExpiresAt,
		)
		if err != nil {
			if s.l != nil {
				s.l.Error("clickhouse recommendation append error",
					applogger.String("batch_id", rec.BatchID),
					applogger.String("symbol", rec.AssetSymbol),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("append recommendation: %w", err)
		}
	}
	return nil
}

var _ domrepo.RecommendationLog = (*CHRecommendationLog)(nil)
