package engine

import (
	"context"
	"time"

	"github.com/lectio/lectio-server/internal/domain"
)

// persistTimeout bounds each storage round trip.
const persistTimeout = 5 * time.Second

// PersistedState is the durable slice of engine state: the playlist without
// book content payloads, the audio settings, and the position to resume
// from. Derived caches and word boundaries are never written.
type PersistedState struct {
	Playlist     []domain.Track          `json:"playlist"`
	Settings     domain.AudioSettings    `json:"settings"`
	LastPosition domain.PlaybackPosition `json:"last_position"`
}

func (e *Engine) persistedStateLocked() *PersistedState {
	playlist := make([]domain.Track, len(e.playlist))
	for i, t := range e.playlist {
		playlist[i] = t.Stripped()
	}

	last := e.lastPlayed
	last.WordBoundary = nil
	if last.ChapterIndex != nil {
		ch := *last.ChapterIndex
		last.ChapterIndex = &ch
	}

	return &PersistedState{
		Playlist:     playlist,
		Settings:     e.settingsCopyLocked(),
		LastPosition: last,
	}
}

// save writes state through the storage backend. Persistence failures are
// logged and swallowed; playback never stops because a disk write failed.
func (e *Engine) save(state *PersistedState) {
	if e.storage == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := e.storage.SaveState(ctx, state); err != nil {
		e.log.Warn("failed to persist player state", "error", err)
	}
}

// restore loads the persisted playlist, settings, and last position at
// construction time. Missing or unreadable state leaves the defaults.
func (e *Engine) restore() {
	if e.storage == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	state, err := e.storage.LoadState(ctx)
	if err != nil {
		e.log.Warn("failed to restore player state", "error", err)
		return
	}
	if state == nil {
		return
	}

	e.playlist = state.Playlist
	e.lastPlayed = state.LastPosition
	e.lastPlayed.WordBoundary = nil

	s := state.Settings
	if s.TTS.Rate <= 0 {
		s.TTS.Rate = 1.0
	}
	if s.TTS.Pitch <= 0 {
		s.TTS.Pitch = 1.0
	}
	if s.RepeatTrack == "" {
		s.RepeatTrack = domain.RepeatTrackOff
	}
	if s.RepeatPlaylist == "" {
		s.RepeatPlaylist = domain.RepeatPlaylistOff
	}
	e.settings = s
}
