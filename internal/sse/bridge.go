package sse

import "github.com/lectio/lectio-server/internal/engine"

// AttachEngine subscribes the manager to engine state changes, turning every
// snapshot into a player.state event for the user. It returns the engine's
// unsubscribe function.
func AttachEngine(m *Manager, eng *engine.Engine, userID string) (detach func()) {
	return eng.Subscribe(func(snap engine.Snapshot) {
		m.Emit(NewPlayerStateEvent(userID, snap))
	})
}

// NotifierFor returns an engine.NotifyFunc that forwards engine notifications
// to the user's SSE stream.
func NotifierFor(m *Manager, userID string) engine.NotifyFunc {
	return func(title, message string) {
		m.Emit(NewNotificationEvent(userID, title, message))
	}
}
