//go:build wireinject
// +build wireinject

package di

import (
	"VacancyPulse/pkg/config"
	"VacancyPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Currency conversion
		ProvideCache,
		ProvideRateCache,
		ProvideRateSource,
		ProvideMonthlyBuilder,

		// Engine
		ProvideRecordSource,
		ProvidePartitionStores,
		ProvideStatsEngine,

		// Sinks
		ProvideClickHouseClient,
		ProvideReportStorage,
		ProvideKafkaProducer,
		ProvideReportPublisher,
		ProvideReportWriter,
		ProvideReportProcessor,

		// HTTP
		ProvideStatsHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
