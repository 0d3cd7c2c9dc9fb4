// Package engine implements the playback engine: a single stateful
// coordinator that drives sequential and bilingual narration across a
// playlist of books and vocabulary folders, synchronized to a speech
// backend.
//
// All state transitions happen inside engine commands. The engine runs on
// one logical thread: a mutex serializes commands and the speech backend's
// callbacks, and a generation counter invalidates callbacks that belong to a
// cancelled utterance. Listener notifications are batched so that one
// command produces at most one notification, and observers never see a
// half-updated snapshot.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lectio/lectio-server/internal/clock"
	"github.com/lectio/lectio-server/internal/domain"
	"github.com/lectio/lectio-server/internal/segment"
	"github.com/lectio/lectio-server/internal/speech"
)

// Storage is the durable key-value persistence consumed by the engine.
// Implementations must tolerate concurrent calls.
type Storage interface {
	SaveState(ctx context.Context, state *PersistedState) error
	// LoadState returns (nil, nil) when no state has been saved yet.
	LoadState(ctx context.Context) (*PersistedState, error)
}

// VocabProvider supplies the ordered items of a vocabulary folder.
type VocabProvider interface {
	ItemsByFolder(ctx context.Context, userID, folderID string) ([]domain.VocabItem, error)
}

// NotifyFunc delivers a user-facing notification, such as the sleep-timer
// expiry message. Failures are the callee's problem; the engine ignores them.
type NotifyFunc func(title, message string)

// Listener observes engine state changes.
type Listener func(Snapshot)

// Snapshot is the externally observable engine state. It is a value copy;
// holding one across further commands is always safe.
type Snapshot struct {
	Status   domain.PlaybackStatus   `json:"status"`
	Position domain.PlaybackPosition `json:"position"`
	Settings domain.AudioSettings    `json:"settings"`
	Playlist []domain.Track          `json:"playlist"`
	// Progress is the overall track progress in percent.
	Progress float64 `json:"progress"`
}

// Options configures a new Engine.
type Options struct {
	Synth   speech.Synthesizer
	Storage Storage
	Vocab   VocabProvider
	Clock   clock.Clock
	Logger  *slog.Logger
	Notify  NotifyFunc
	// UserID scopes vocabulary fetches.
	UserID string
}

// Engine is the playback controller. Create exactly one per process with New
// and share it; all methods are safe for concurrent use.
type Engine struct {
	synth   speech.Synthesizer
	storage Storage
	vocab   VocabProvider
	clock   clock.Clock
	log     *slog.Logger
	notify  NotifyFunc
	userID  string

	mu sync.Mutex

	status   domain.PlaybackStatus
	position domain.PlaybackPosition
	settings domain.AudioSettings
	playlist []domain.Track

	// Derived caches, rebuilt on every track/chapter load. Never persisted
	// or broadcast.
	cache []segment.SpeechSegment
	stats segment.BookStats

	// generation invalidates speech callbacks and in-flight loads that
	// belong to a cancelled playback session.
	generation uint64

	sleepTimer clock.Timer
	sleepGen   uint64

	// lastPlayed remembers where playback was before the engine went idle,
	// so resume() can wake a dormant player.
	lastPlayed domain.PlaybackPosition

	// Notification batching: depth counts nested command frames, dirty
	// marks a pending broadcast, and pendingNotices holds user
	// notifications to deliver outside the lock.
	depth          int
	dirty          bool
	listeners      map[int]Listener
	nextListenerID int
	pendingNotices [][2]string
}

// New creates the engine and restores persisted playlist and settings.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cl := opts.Clock
	if cl == nil {
		cl = clock.NewSystem()
	}

	e := &Engine{
		synth:      opts.Synth,
		storage:    opts.Storage,
		vocab:      opts.Vocab,
		clock:      cl,
		log:        log,
		notify:     opts.Notify,
		userID:     opts.UserID,
		status:     domain.Idle(),
		position:   domain.NoPosition(),
		settings:   domain.NewAudioSettings(),
		lastPlayed: domain.NoPosition(),
		listeners:  map[int]Listener{},
	}

	e.restore()
	return e
}

// Subscribe registers a state listener and returns its unsubscribe function.
// The listener is called after every batch of state mutations with a
// consistent snapshot.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextListenerID
	e.nextListenerID++
	e.listeners[id] = l

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// GetState returns a consistent snapshot of the observable state.
func (e *Engine) GetState() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	playlist := make([]domain.Track, len(e.playlist))
	copy(playlist, e.playlist)

	var boundary *domain.WordBoundary
	if e.position.WordBoundary != nil {
		b := *e.position.WordBoundary
		boundary = &b
	}
	pos := e.position
	pos.WordBoundary = boundary
	if e.position.ChapterIndex != nil {
		ch := *e.position.ChapterIndex
		pos.ChapterIndex = &ch
	}

	return Snapshot{
		Status:   e.status,
		Position: pos,
		Settings: e.settingsCopyLocked(),
		Playlist: playlist,
		Progress: e.progressLocked(),
	}
}

func (e *Engine) settingsCopyLocked() domain.AudioSettings {
	s := e.settings
	if s.TTS.Voices != nil {
		voices := make(map[string]string, len(s.TTS.Voices))
		for k, v := range s.TTS.Voices {
			voices[k] = v
		}
		s.TTS.Voices = voices
	}
	if s.SleepTimer.DurationMin != nil {
		d := *s.SleepTimer.DurationMin
		s.SleepTimer.DurationMin = &d
	}
	if s.SleepTimer.StartedAt != nil {
		t := *s.SleepTimer.StartedAt
		s.SleepTimer.StartedAt = &t
	}
	return s
}

// begin opens a command frame. Every exported command and every callback
// re-entering the engine goes through begin/end so that nested mutations
// collapse into a single notification.
func (e *Engine) begin() {
	e.mu.Lock()
	e.depth++
}

// end closes a command frame. On the outermost frame it snapshots, persists,
// and notifies outside the lock.
func (e *Engine) end() {
	e.depth--
	if e.depth > 0 || !e.dirty {
		e.mu.Unlock()
		return
	}

	e.dirty = false
	snap := e.snapshotLocked()
	state := e.persistedStateLocked()

	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}

	notices := e.pendingNotices
	e.pendingNotices = nil

	e.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}

	e.save(state)

	if e.notify != nil {
		for _, n := range notices {
			e.notify(n[0], n[1])
		}
	}
}

// markDirty schedules a notification for the end of the current frame.
func (e *Engine) markDirty() {
	e.dirty = true
}

// queueNotice defers a user notification until the lock is released.
func (e *Engine) queueNotice(title, message string) {
	e.pendingNotices = append(e.pendingNotices, [2]string{title, message})
}

// bumpGeneration invalidates all outstanding speech callbacks and loads.
func (e *Engine) bumpGeneration() uint64 {
	e.generation++
	return e.generation
}

// currentTrackLocked returns the playing track, or false when the playlist
// position is unset.
func (e *Engine) currentTrackLocked() (domain.Track, bool) {
	idx := e.position.PlaylistIndex
	if idx < 0 || idx >= len(e.playlist) {
		return domain.Track{}, false
	}
	return e.playlist[idx], true
}
