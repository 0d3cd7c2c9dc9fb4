// Package main provides the entry point for the Lectio server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/lectio/lectio-server/internal/di"
	"github.com/lectio/lectio-server/internal/di/providers"
	"github.com/lectio/lectio-server/internal/logger"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order; the DI container handles
	// ordering automatically.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// Databases use wrapper handles and need explicit shutdown.
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close player state database", "error", err)
		}
	}
	if vocabHandle, err := do.Invoke[*providers.VocabHandle](injector); err == nil {
		if err := vocabHandle.Shutdown(); err != nil {
			log.Error("Failed to close vocabulary database", "error", err)
		}
	}

	log.Info("Goodbye")
}
