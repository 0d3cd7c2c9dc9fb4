package speech

import (
	"sync"

	"github.com/lectio/lectio-server/internal/domain"
)

// Mock is a scripted Synthesizer for tests and headless operation. It never
// produces audio; the test drives completion via FinishCurrent, FailCurrent,
// and EmitBoundary.
type Mock struct {
	mu      sync.Mutex
	current *Utterance
	spoken  []Utterance
	paused  bool

	speakCalls  int
	cancelCalls int

	voices []Voice
}

// NewMock creates a mock with a small default voice set.
func NewMock() *Mock {
	return &Mock{
		voices: []Voice{
			{Name: "Mock German", Lang: "de", VoiceURI: "mock:de"},
			{Name: "Mock English", Lang: "en", VoiceURI: "mock:en"},
		},
	}
}

// Speak implements Synthesizer.
func (m *Mock) Speak(u Utterance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &u
	m.spoken = append(m.spoken, u)
	m.speakCalls++
	m.paused = false
	return nil
}

// Pause implements Synthesizer.
func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
	return nil
}

// Resume implements Synthesizer.
func (m *Mock) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	return nil
}

// Cancel implements Synthesizer. The in-flight utterance is discarded and
// its callbacks will not fire through the mock.
func (m *Mock) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.cancelCalls++
	m.paused = false
	return nil
}

// Voices implements Synthesizer.
func (m *Mock) Voices() ([]Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Voice, len(m.voices))
	copy(out, m.voices)
	return out, nil
}

// FinishCurrent fires OnEnd of the in-flight utterance, simulating natural
// completion. It is a no-op when nothing is speaking.
func (m *Mock) FinishCurrent() {
	m.mu.Lock()
	u := m.current
	m.current = nil
	m.mu.Unlock()

	if u != nil && u.OnEnd != nil {
		u.OnEnd()
	}
}

// FailCurrent fires OnError of the in-flight utterance.
func (m *Mock) FailCurrent(err error) {
	m.mu.Lock()
	u := m.current
	m.current = nil
	m.mu.Unlock()

	if u != nil && u.OnError != nil {
		u.OnError(err)
	}
}

// EmitBoundary fires OnBoundary of the in-flight utterance.
func (m *Mock) EmitBoundary(b domain.WordBoundary) {
	m.mu.Lock()
	u := m.current
	m.mu.Unlock()

	if u != nil && u.OnBoundary != nil {
		u.OnBoundary(b)
	}
}

// Current returns the in-flight utterance, if any.
func (m *Mock) Current() (Utterance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Utterance{}, false
	}
	return *m.current, true
}

// CurrentCallbacks returns the in-flight utterance without consuming it, so
// a test can hold its callbacks across a cancel to simulate a stale backend
// callback arriving late.
func (m *Mock) CurrentCallbacks() (onEnd func(), ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, false
	}
	return m.current.OnEnd, true
}

// Spoken returns every utterance passed to Speak, in order.
func (m *Mock) Spoken() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Utterance, len(m.spoken))
	copy(out, m.spoken)
	return out
}

// SpokenTexts returns the texts of every Speak call, in order.
func (m *Mock) SpokenTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := make([]string, len(m.spoken))
	for i, u := range m.spoken {
		texts[i] = u.Text
	}
	return texts
}

// SpeakCalls returns the number of Speak invocations.
func (m *Mock) SpeakCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speakCalls
}

// CancelCalls returns the number of Cancel invocations.
func (m *Mock) CancelCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelCalls
}

// Paused reports whether the mock is currently paused.
func (m *Mock) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}
