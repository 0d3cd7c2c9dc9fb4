package providers

import (
	"context"
	"os"

	"github.com/samber/do/v2"

	"github.com/lectio/lectio-server/internal/config"
	"github.com/lectio/lectio-server/internal/logger"
	"github.com/lectio/lectio-server/internal/sse"
	"github.com/lectio/lectio-server/internal/store"
	"github.com/lectio/lectio-server/internal/vocab"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the player state store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the player state database.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, err
	}

	dbPath := cfg.StatePath()
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Player state database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// VocabHandle wraps the vocabulary store with shutdown capability.
type VocabHandle struct {
	*vocab.Store
}

// Shutdown implements do.Shutdownable.
func (h *VocabHandle) Shutdown() error {
	return h.Close()
}

// ProvideVocabStore provides the vocabulary database.
func ProvideVocabStore(i do.Injector) (*VocabHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, err
	}

	db, err := vocab.Open(cfg.VocabPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Vocabulary database initialized", "path", cfg.VocabPath())

	return &VocabHandle{Store: db}, nil
}
