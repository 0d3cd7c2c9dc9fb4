package providers

import (
	"github.com/gen2brain/beeep"
	"github.com/samber/do/v2"

	"github.com/lectio/lectio-server/internal/config"
	"github.com/lectio/lectio-server/internal/engine"
	"github.com/lectio/lectio-server/internal/logger"
	"github.com/lectio/lectio-server/internal/speech"
	"github.com/lectio/lectio-server/internal/sse"
)

// ProvideSynthesizer provides the speech backend. With fallback enabled, a
// missing espeak-ng binary degrades to the silent mock instead of failing
// startup.
func ProvideSynthesizer(i do.Injector) (speech.Synthesizer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Speech.Backend == "mock" {
		log.Info("Using mock speech backend")
		return speech.NewMock(), nil
	}

	synth, err := speech.NewESpeak()
	if err != nil {
		if !cfg.Speech.FallbackToMock {
			return nil, err
		}
		log.Warn("espeak-ng unavailable, falling back to mock speech backend", "error", err)
		return speech.NewMock(), nil
	}

	log.Info("Speech backend ready", "backend", "espeak")
	return synth, nil
}

// EngineHandle wraps the engine with its SSE detach function.
type EngineHandle struct {
	*engine.Engine
	detach func()
}

// Shutdown implements do.Shutdownable.
func (h *EngineHandle) Shutdown() error {
	h.detach()
	h.Engine.Stop()
	return nil
}

// ProvideEngine provides the playback engine with persistence, vocabulary
// lookup, and notification fan-out wired in.
func ProvideEngine(i do.Injector) (*EngineHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	vocabHandle := do.MustInvoke[*VocabHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	synth := do.MustInvoke[speech.Synthesizer](i)

	userID := cfg.App.UserID
	sseNotify := sse.NotifierFor(sseHandle.Manager, userID)
	desktopEnabled := cfg.Notifications.DesktopEnabled

	notify := func(title, message string) {
		sseNotify(title, message)
		if desktopEnabled {
			if err := beeep.Notify(title, message, ""); err != nil {
				log.Debug("desktop notification failed", "error", err)
			}
		}
	}

	eng := engine.New(engine.Options{
		Synth:   synth,
		Storage: storeHandle.ForUser(userID),
		Vocab:   vocabHandle.Store,
		Logger:  log.Logger,
		Notify:  notify,
		UserID:  userID,
	})

	detach := sse.AttachEngine(sseHandle.Manager, eng, userID)

	log.Info("Playback engine ready", "user_id", userID)

	return &EngineHandle{Engine: eng, detach: detach}, nil
}
