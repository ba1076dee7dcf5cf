//go:build wireinject
// +build wireinject

package di

import (
	"CryptoIntel/pkg/config"
	"CryptoIntel/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,
		ProvideRateLimiter,

		// Source adapters
		ProvideMarketService,
		ProvideSentimentService,
		ProvideWhaleTracker,
		ProvideChainService,
		ProvideNewsService,

		// Messaging
		ProvideSignalPublisher,

		// Use cases
		ProvideTerminal,
		ProvideHub,
		ProvideBroadcaster,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
