package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/lectio/lectio-server/internal/api"
	"github.com/lectio/lectio-server/internal/config"
	"github.com/lectio/lectio-server/internal/logger"
	"github.com/lectio/lectio-server/internal/speech"
	"github.com/lectio/lectio-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	vocabHandle := do.MustInvoke[*VocabHandle](i)
	engineHandle := do.MustInvoke[*EngineHandle](i)
	synth := do.MustInvoke[speech.Synthesizer](i)

	sseHandler := sse.NewHandler(sseHandle.Manager, engineHandle.Engine, cfg.App.UserID, log.Logger)

	handler := api.NewServer(api.Options{
		Engine:         engineHandle.Engine,
		Vocab:          vocabHandle.Store,
		Synth:          synth,
		SSEManager:     sseHandle.Manager,
		SSEHandler:     sseHandler,
		Logger:         log.Logger,
		UserID:         cfg.App.UserID,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
