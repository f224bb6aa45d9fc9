//go:build wireinject
// +build wireinject

package di

import (
	"PairScope/pkg/config"
	"PairScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Core engines
		ProvideStore,
		ProvideAnalyticsEngine,
		ProvideAlertEngine,

		// Use cases
		ProvidePairAnalyzer,
		ProvideMarketQuery,
		ProvideCollector,

		// Infrastructure
		ProvideMarketStream,
		ProvideSink,
		ProvideCache,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
