package repository

import (
	"context"
	"fmt"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	pkgkafka "MarketPulse/pkg/kafka"
)

// KafkaPublisher pushes engine outputs to downstream topics. Recommendation
// batches are keyed by batch ID, trend predictions by their own ID, so each
// record family stays ordered per key.
type KafkaPublisher struct {
	producer   *pkgkafka.Producer
	recTopic   string
	trendTopic string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, recTopic, trendTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, recTopic: recTopic, trendTopic: trendTopic}
}

func (p *KafkaPublisher) PublishRecommendations(ctx context.Context, batch []models.Recommendation) error {
	if len(batch) == 0 {
		return nil
	}
	key := []byte(batch[0].BatchID)
	if err := p.producer.Publish(ctx, p.recTopic, key, batch); err != nil {
		return fmt.Errorf("publish recommendations: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) PublishTrend(ctx context.Context, pred models.TrendPrediction) error {
	if err := p.producer.Publish(ctx, p.trendTopic, []byte(pred.ID), pred); err != nil {
		return fmt.Errorf("publish trend: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)
