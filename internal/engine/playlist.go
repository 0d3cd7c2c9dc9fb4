package engine

import "github.com/lectio/lectio-server/internal/domain"

// AddToPlaylist appends the track, or replaces an existing entry with the
// same id in place. Adding never interrupts playback.
func (e *Engine) AddToPlaylist(track domain.Track) {
	e.begin()
	defer e.end()
	e.upsertTrackLocked(track)
}

// upsertTrackLocked inserts or replaces by id and returns the entry's index.
func (e *Engine) upsertTrackLocked(track domain.Track) int {
	for i, t := range e.playlist {
		if t.ID == track.ID {
			e.playlist[i] = track
			e.markDirty()
			return i
		}
	}
	e.playlist = append(e.playlist, track)
	e.markDirty()
	return len(e.playlist) - 1
}

// RemoveFromPlaylist drops the entry with the given id. Removing the track
// currently loaded stops playback first. Unknown ids are ignored.
func (e *Engine) RemoveFromPlaylist(trackID string) {
	e.begin()
	defer e.end()

	idx := -1
	for i, t := range e.playlist {
		if t.ID == trackID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	if e.position.PlaylistIndex == idx && e.status.Kind != domain.StatusIdle {
		e.stopLocked()
	}

	e.playlist = append(e.playlist[:idx], e.playlist[idx+1:]...)

	if e.position.PlaylistIndex > idx {
		e.position.PlaylistIndex--
	}
	switch {
	case e.lastPlayed.PlaylistIndex == idx:
		e.lastPlayed = domain.NoPosition()
	case e.lastPlayed.PlaylistIndex > idx:
		e.lastPlayed.PlaylistIndex--
	}

	e.markDirty()
}

// ClearPlaylist stops playback and empties the playlist.
func (e *Engine) ClearPlaylist() {
	e.begin()
	defer e.end()

	e.stopLocked()
	e.playlist = nil
	e.lastPlayed = domain.NoPosition()
	e.markDirty()
}
