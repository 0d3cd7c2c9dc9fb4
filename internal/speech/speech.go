// Package speech defines the text-to-speech adapter consumed by the playback
// engine, plus the bundled backends (espeak-ng and a scripted mock).
//
// The adapter is an imperative primitive: one utterance at a time, completion
// and errors reported through callbacks. Engines may never fire boundary
// events at all; callers must not depend on them.
package speech

import "github.com/lectio/lectio-server/internal/domain"

// Utterance is a single speak request with its completion callbacks.
// OnEnd and OnError are mutually exclusive for a given utterance; either may
// be called from an arbitrary goroutine after Speak returns. OnBoundary is
// optional and may fire zero or more times before completion.
type Utterance struct {
	Text     string
	Lang     string
	VoiceURI string
	Rate     float64
	Pitch    float64

	OnEnd      func()
	OnBoundary func(domain.WordBoundary)
	OnError    func(error)
}

// Voice describes one synthesis voice offered by a backend.
type Voice struct {
	Name     string `json:"name"`
	Lang     string `json:"lang"`
	VoiceURI string `json:"voice_uri"`
}

// Synthesizer is the speech backend contract.
//
// Speak starts the utterance and returns immediately; Cancel discards the
// in-flight utterance without firing its callbacks where the backend can
// guarantee that. Callers must still guard against late callbacks from a
// cancelled utterance.
type Synthesizer interface {
	Speak(u Utterance) error
	Pause() error
	Resume() error
	Cancel() error
	Voices() ([]Voice, error)
}
