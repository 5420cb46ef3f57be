package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"MarketPulse/internal/domain/repository"
	domsvc "MarketPulse/internal/domain/service"
	"MarketPulse/internal/handler/api"
	internalrepo "MarketPulse/internal/repository"
	icache "MarketPulse/internal/service/cache"
	"MarketPulse/internal/services/market"
	"MarketPulse/internal/usecase"
	pkgch "MarketPulse/pkg/clickhouse"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	pkgkafka "MarketPulse/pkg/kafka"
	"MarketPulse/pkg/metrics"
	"MarketPulse/pkg/server"
)

// Engine tables. The pattern table uses ReplacingMergeTree keyed by version so
// re-discovered patterns collapse to the latest row on merge; reads use FINAL.
var schema = []string{
	"CREATE DATABASE IF NOT EXISTS marketpulse",
	`CREATE TABLE IF NOT EXISTS marketpulse.price_ticks (
		symbol String,
		ts DateTime,
		price Float64,
		volume Float64,
		market_cap Float64
	) ENGINE = MergeTree ORDER BY (symbol, ts)`,
	`CREATE TABLE IF NOT EXISTS marketpulse.news_events (
		id String,
		title String,
		category LowCardinality(String),
		sentiment_score Float64,
		impact_level LowCardinality(String),
		published_at DateTime
	) ENGINE = MergeTree ORDER BY (category, published_at)`,
	`CREATE TABLE IF NOT EXISTS marketpulse.correlation_patterns (
		event_type LowCardinality(String),
		event_id String,
		symbol String,
		change_pct Float64,
		lag_hours Int32,
		confidence Float64,
		occurrences UInt32,
		event_ts DateTime,
		version UInt64
	) ENGINE = ReplacingMergeTree(version) ORDER BY (event_id, symbol, lag_hours)`,
	`CREATE TABLE IF NOT EXISTS marketpulse.recommendation_history (
		id String,
		batch_id String,
		symbol String,
		action LowCardinality(String),
		confidence Float64,
		reasoning Array(String),
		target_price Float64,
		stop_loss Float64,
		generated_at DateTime,
		expires_at DateTime
	) ENGINE = MergeTree ORDER BY (generated_at, symbol)`,
	`CREATE TABLE IF NOT EXISTS marketpulse.trend_predictions (
		id String,
		prediction_type LowCardinality(String),
		confidence Float64,
		reasoning String,
		avg_change Float64,
		bullish UInt32,
		bearish UInt32,
		neutral UInt32,
		news_sentiment Float64,
		macro_summary String,
		predicted_at DateTime
	) ENGINE = MergeTree ORDER BY predicted_at`,
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideRedisClient creates a shared Redis client.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return cli, nil
}

// ProvidePublisher creates the Kafka publisher, or a log-only fallback when
// Kafka is disabled in config.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NewLogPublisher(), nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.RecommendationsTopic, cfg.Kafka.TrendTopic), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePriceStore creates the ClickHouse price tick repository.
func ProvidePriceStore(chClient *pkgch.Client) repository.PriceStore {
	return internalrepo.NewCHPriceStore(chClient)
}

// ProvideEventStore creates the ClickHouse news event repository.
func ProvideEventStore(chClient *pkgch.Client) repository.EventStore {
	return internalrepo.NewCHEventStore(chClient)
}

// ProvidePatternStore creates the ClickHouse correlation pattern repository.
func ProvidePatternStore(chClient *pkgch.Client) repository.PatternStore {
	return internalrepo.NewCHPatternStore(chClient)
}

// ProvideTrendStore creates the ClickHouse trend prediction repository.
func ProvideTrendStore(chClient *pkgch.Client) repository.TrendStore {
	return internalrepo.NewCHTrendStore(chClient)
}

// ProvideRecommendationStore creates the Redis-backed active recommendation store.
func ProvideRecommendationStore(cli *redis.Client, cfg *config.Config) repository.RecommendationStore {
	return internalrepo.NewRedisRecommendationStore(cli, cfg.Redis.ActiveKey)
}

// ProvideRecommendationLog creates the append-only batch audit trail.
func ProvideRecommendationLog(chClient *pkgch.Client) repository.RecommendationLog {
	return internalrepo.NewCHRecommendationLog(chClient)
}

// ProvideTrendSource creates the HTTP reference-index trend source.
func ProvideTrendSource(cfg *config.Config) domsvc.TrendSource {
	return market.NewHTTPTrendSource(cfg)
}

// ProvideMiner creates the correlation mining use case.
func ProvideMiner(
	prices repository.PriceStore,
	patterns repository.PatternStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.Miner {
	return usecase.NewMiner(prices, patterns, metrics, cfg.Engine.Symbols, cfg.Engine.MineWorkers)
}

// ProvideCorrelationQuery creates the correlation query use case.
func ProvideCorrelationQuery(patterns repository.PatternStore) *usecase.CorrelationQuery {
	return usecase.NewCorrelationQuery(patterns)
}

// ProvideRecommender creates the recommendation use case.
func ProvideRecommender(
	prices repository.PriceStore,
	events repository.EventStore,
	store repository.RecommendationStore,
	trend domsvc.TrendSource,
	miner *usecase.Miner,
	pub repository.Publisher,
	history repository.RecommendationLog,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.Recommender {
	r := usecase.NewRecommender(prices, events, store, trend, miner, pub, metrics, cfg.Engine.Symbols)
	r.SetHistory(history)
	r.SetLookback(time.Duration(cfg.Engine.LookbackDays) * 24 * time.Hour)
	return r
}

// ProvideTrendPredictor creates the market trend use case.
func ProvideTrendPredictor(
	prices repository.PriceStore,
	events repository.EventStore,
	store repository.TrendStore,
	trend domsvc.TrendSource,
	pub repository.Publisher,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.TrendPredictor {
	return usecase.NewTrendPredictor(prices, events, store, trend, pub, metrics, cfg.Engine.Symbols)
}

// ProvideHTTPHandler creates the API handler with a Redis-backed response cache.
func ProvideHTTPHandler(
	query *usecase.CorrelationQuery,
	recs *usecase.Recommender,
	trend *usecase.TrendPredictor,
	redisClient *redis.Client,
	cfg *config.Config,
) xhttp.Handler {
	h := api.NewEngineHandler(query, recs, trend)
	if cfg.Cache.Redis {
		h.SetCache(icache.NewRedisCache(redisClient))
	} else {
		h.SetCache(icache.NewTTLCache())
	}
	h.SetCacheTTL(cfg.Cache.TTL)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	recs *usecase.Recommender,
	trend *usecase.TrendPredictor,
	pub repository.Publisher,
	chClient *pkgch.Client,
	redisClient *redis.Client,
	handler xhttp.Handler,
) *server.App {
	app := server.New(cfg, recs, trend, pub, chClient, redisClient)
	app.SetHTTPHandler(handler)
	return app
}
