//go:build wireinject
// +build wireinject

package di

import (
	"Resona/pkg/config"
	"Resona/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCacheService,

		// Repositories
		ProvideMatchStorage,
		ProvideMatchPublisher,
		ProvideMatchSource,
		ProvideBiometricStream,

		// Use cases
		ProvideFocusSource,
		ProvideRealmCalculator,
		ProvideMatchRecorder,
		ProvideRealmCollector,
		ProvideInsightsUseCase,
		ProvideMatchesUseCase,
		ProvideKafkaMatchesHandler,
		ProvideDigestJob,
		ProvideDigestQueue,

		// HTTP
		ProvideResponseCache,
		ProvideInsightsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
