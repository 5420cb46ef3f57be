package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
)

// RedisRecommendationStore keeps the active recommendation batch under a
// single key. The whole batch is swapped in one transactional pipeline, so an
// overlapping refresh can never deactivate rows another run just inserted or
// leave two partial sets visible. The key TTL matches the batch expiry.
type RedisRecommendationStore struct {
	cli *redis.Client
	key string
	ttl time.Duration
}

func NewRedisRecommendationStore(cli *redis.Client, key string) *RedisRecommendationStore {
	return &RedisRecommendationStore{cli: cli, key: key, ttl: 24 * time.Hour}
}

func (s *RedisRecommendationStore) ReplaceActive(ctx context.Context, batch []models.Recommendation) error {
	b, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	pipe := s.cli.TxPipeline()
	pipe.Del(ctx, s.key)
	pipe.Set(ctx, s.key, b, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace active batch: %w", err)
	}
	return nil
}

func (s *RedisRecommendationStore) Active(ctx context.Context) ([]models.Recommendation, error) {
	b, err := s.cli.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active batch: %w", err)
	}

	var batch []models.Recommendation
	if err := json.Unmarshal(b, &batch); err != nil {
		return nil, fmt.Errorf("unmarshal batch: %w", err)
	}
	return batch, nil
}

var _ domrepo.RecommendationStore = (*RedisRecommendationStore)(nil)
