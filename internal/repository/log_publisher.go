package repository

import (
	"context"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	applogger "MarketPulse/pkg/logger"
)

// LogPublisher is used when Kafka is disabled: engine outputs are logged
// instead of published so the rest of the pipeline keeps working.
type LogPublisher struct {
	l *applogger.Logger
}

func NewLogPublisher() *LogPublisher { return &LogPublisher{} }

// SetLogger injects a structured logger.
func (p *LogPublisher) SetLogger(l *applogger.Logger) { p.l = l }

func (p *LogPublisher) PublishRecommendations(_ context.Context, batch []models.Recommendation) error {
	if p.l != nil {
		p.l.Debug("publisher disabled, dropping recommendations", applogger.Int("count", len(batch)))
	}
	return nil
}

func (p *LogPublisher) PublishTrend(_ context.Context, pred models.TrendPrediction) error {
	if p.l != nil {
		p.l.Debug("publisher disabled, dropping trend", applogger.String("id", pred.ID))
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

var _ domrepo.Publisher = (*LogPublisher)(nil)
