// Package di provides dependency injection configuration for the Lectio server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/lectio/lectio-server/internal/config"
	"github.com/lectio/lectio-server/internal/di/providers"
	"github.com/lectio/lectio-server/internal/logger"
	"github.com/lectio/lectio-server/internal/speech"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Event fan-out
	do.Provide(injector, providers.ProvideSSEManager)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideVocabStore)

	// Playback layer
	do.Provide(injector, providers.ProvideSynthesizer)
	do.Provide(injector, providers.ProvideEngine)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization of
// every provider in dependency order.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.VocabHandle](injector)
	_ = do.MustInvoke[speech.Synthesizer](injector)
	_ = do.MustInvoke[*providers.EngineHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
