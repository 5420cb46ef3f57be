//go:build wireinject
// +build wireinject

package di

import (
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvidePublisher,

		// Repositories
		ProvidePriceStore,
		ProvideEventStore,
		ProvidePatternStore,
		ProvideTrendStore,
		ProvideRecommendationStore,
		ProvideRecommendationLog,
		ProvideTrendSource,

		// Use cases
		ProvideMiner,
		ProvideCorrelationQuery,
		ProvideRecommender,
		ProvideTrendPredictor,

		// HTTP surface and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
