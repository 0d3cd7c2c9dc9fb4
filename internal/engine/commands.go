package engine

import (
	"context"
	"time"

	"github.com/lectio/lectio-server/internal/domain"
	"github.com/lectio/lectio-server/internal/segment"
	"github.com/lectio/lectio-server/internal/speech"
)

// vocabLoadTimeout bounds the vocabulary fetch during a track load.
const vocabLoadTimeout = 30 * time.Second

// PlayOptions overrides the starting position of a play command.
type PlayOptions struct {
	// ChapterIndex applies to book tracks only; default is chapter 0.
	ChapterIndex *int
	// SegmentIndex is the starting segment within the chapter or folder.
	SegmentIndex int
}

// Play stops any current playback, ensures the track is in the playlist
// (inserting it, or replacing an entry with the same id in place), and starts
// loading it. Load failures surface through the error status, not the return
// path.
func (e *Engine) Play(track domain.Track, opts *PlayOptions) {
	e.begin()
	defer e.end()

	e.stopLocked()

	idx := e.upsertTrackLocked(track)

	var chapter *int
	segIdx := 0
	if track.IsBook() {
		c := 0
		if opts != nil && opts.ChapterIndex != nil {
			c = *opts.ChapterIndex
		}
		chapter = &c
	}
	if opts != nil {
		segIdx = opts.SegmentIndex
	}

	e.beginLoadLocked(idx, chapter, segIdx)
}

// Pause suspends playback. No-op unless currently playing.
func (e *Engine) Pause() {
	e.begin()
	defer e.end()

	if !e.status.IsPlaying() {
		return
	}
	if err := e.synth.Pause(); err != nil {
		e.log.Warn("speech pause failed", "error", err)
	}
	e.status = domain.Active(domain.PlayStatePaused)
	e.disarmSleepLocked()
	e.markDirty()
}

// Resume continues paused playback. From idle or error with a non-empty
// playlist it wakes the player, reloading the last-known track or the first
// one.
func (e *Engine) Resume() {
	e.begin()
	defer e.end()

	if e.status.IsPaused() {
		if err := e.synth.Resume(); err != nil {
			e.log.Warn("speech resume failed", "error", err)
		}
		e.status = domain.Active(domain.PlayStatePlaying)
		e.armSleepLocked()
		e.markDirty()
		return
	}

	dormant := e.status.Kind == domain.StatusIdle || e.status.Kind == domain.StatusError
	if !dormant || len(e.playlist) == 0 {
		return
	}

	idx := e.lastPlayed.PlaylistIndex
	if idx < 0 || idx >= len(e.playlist) {
		idx = 0
	}

	track := e.playlist[idx]
	var chapter *int
	segIdx := 0
	if track.IsBook() {
		c := 0
		if e.lastPlayed.PlaylistIndex == idx && e.lastPlayed.ChapterIndex != nil {
			c = *e.lastPlayed.ChapterIndex
			segIdx = e.lastPlayed.SegmentIndex
		}
		chapter = &c
	} else if e.lastPlayed.PlaylistIndex == idx {
		segIdx = e.lastPlayed.SegmentIndex
	}

	e.beginLoadLocked(idx, chapter, segIdx)
}

// Stop cancels playback, clears derived caches and the sleep countdown, and
// resets the position.
func (e *Engine) Stop() {
	e.begin()
	defer e.end()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.synth != nil {
		_ = e.synth.Cancel() //nolint:errcheck // cancel of an idle backend is benign
	}
	e.bumpGeneration()
	e.disarmSleepLocked()
	e.cache = nil
	e.stats = segment.BookStats{}
	e.status = domain.Idle()
	e.position = domain.NoPosition()
	e.markDirty()
}

// SkipForward moves one segment forward; past the end of the cache it
// advances to the next chapter (or track).
func (e *Engine) SkipForward() {
	e.begin()
	defer e.end()

	if e.status.Kind != domain.StatusActive {
		return
	}

	if e.position.SegmentIndex+1 < len(e.cache) {
		e.cancelSpeechLocked()
		e.position.SegmentIndex++
		e.status = domain.Active(domain.PlayStatePlaying)
		e.speakCurrentLocked()
		return
	}

	e.cancelSpeechLocked()
	e.nextChapterLocked()
}

// SkipBackward moves one segment backward, clamped at the start of the
// current chapter. It never crosses a chapter boundary.
func (e *Engine) SkipBackward() {
	e.begin()
	defer e.end()

	if e.status.Kind != domain.StatusActive || e.position.SegmentIndex == 0 {
		return
	}

	e.cancelSpeechLocked()
	e.position.SegmentIndex--
	e.status = domain.Active(domain.PlayStatePlaying)
	e.speakCurrentLocked()
}

// SeekToSegment jumps to a segment of the current cache. Out-of-range
// indexes are ignored.
func (e *Engine) SeekToSegment(index int) {
	e.begin()
	defer e.end()

	if e.status.Kind != domain.StatusActive {
		return
	}
	if index < 0 || index >= len(e.cache) {
		return
	}

	e.cancelSpeechLocked()
	e.position.SegmentIndex = index
	e.status = domain.Active(domain.PlayStatePlaying)
	e.speakCurrentLocked()
}

// NextTrack advances one playlist position. At the end of the playlist it
// wraps when playlist-repeat is all, otherwise the engine goes idle.
func (e *Engine) NextTrack() {
	e.begin()
	defer e.end()
	e.nextTrackLocked()
}

func (e *Engine) nextTrackLocked() {
	if len(e.playlist) == 0 {
		e.stopLocked()
		return
	}

	idx := e.position.PlaylistIndex + 1
	if idx >= len(e.playlist) {
		if e.settings.RepeatPlaylist != domain.RepeatPlaylistAll {
			e.stopLocked()
			return
		}
		idx = 0
	}

	e.loadTrackAtLocked(idx)
}

// PreviousTrack moves one playlist position back. No-op at index 0.
func (e *Engine) PreviousTrack() {
	e.begin()
	defer e.end()

	idx := e.position.PlaylistIndex
	if idx <= 0 {
		return
	}
	e.loadTrackAtLocked(idx - 1)
}

// JumpToTrack loads the playlist entry at index from scratch. Out-of-range
// indexes are ignored.
func (e *Engine) JumpToTrack(index int) {
	e.begin()
	defer e.end()

	if index < 0 || index >= len(e.playlist) {
		return
	}
	e.loadTrackAtLocked(index)
}

// loadTrackAtLocked starts a playlist entry from its beginning.
func (e *Engine) loadTrackAtLocked(idx int) {
	track := e.playlist[idx]
	var chapter *int
	if track.IsBook() {
		c := 0
		chapter = &c
	}
	e.beginLoadLocked(idx, chapter, 0)
}

// beginLoadLocked performs the implicit stop of a track change and kicks off
// the asynchronous cache build. No two playback sessions can overlap: the
// generation bump orphans every outstanding callback and load.
func (e *Engine) beginLoadLocked(idx int, chapter *int, segIdx int) {
	if e.synth != nil {
		_ = e.synth.Cancel() //nolint:errcheck // cancel of an idle backend is benign
	}
	gen := e.bumpGeneration()
	e.disarmSleepLocked()
	e.cache = nil
	e.stats = segment.BookStats{}

	track := e.playlist[idx]
	e.position = domain.PlaybackPosition{
		PlaylistIndex: idx,
		ChapterIndex:  chapter,
		SegmentIndex:  segIdx,
	}
	e.status = domain.Loading(track.ID)
	e.markDirty()

	go e.loadTrack(gen, track, chapter, segIdx)
}

// loadTrack builds the segment cache off the engine lock, then re-enters to
// either start playback or fail the session. A load superseded by a newer
// generation is discarded silently.
func (e *Engine) loadTrack(gen uint64, track domain.Track, chapter *int, segIdx int) {
	var (
		segs  []segment.SpeechSegment
		stats segment.BookStats
		err   error
	)

	if track.IsBook() {
		ch := 0
		if chapter != nil {
			ch = *chapter
		}
		segs, err = segment.BookChapter(track, ch)
		stats = segment.StatsFor(track)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), vocabLoadTimeout)
		defer cancel()

		var items []domain.VocabItem
		items, err = e.vocab.ItemsByFolder(ctx, e.userID, track.ID)
		if err == nil {
			segs = segment.VocabItems(items)
		}
	}

	e.begin()
	defer e.end()

	if gen != e.generation {
		return
	}
	if err != nil {
		e.log.Error("track load failed", "track", track.ID, "error", err)
		e.failLocked("failed to load track: " + err.Error())
		return
	}
	if len(segs) == 0 {
		e.failLocked("track has no speakable segments")
		return
	}
	if segIdx < 0 || segIdx >= len(segs) {
		segIdx = 0
	}

	e.cache = segs
	e.stats = stats
	e.position.SegmentIndex = segIdx
	e.status = domain.Active(domain.PlayStatePlaying)
	e.markDirty()

	e.speakCurrentLocked()
	e.armSleepLocked()
}

// nextChapterLocked advances within the current book, or delegates to the
// next track after the last chapter. Book chapters are in memory, so the
// chapter cache rebuild is synchronous.
func (e *Engine) nextChapterLocked() {
	track, ok := e.currentTrackLocked()
	if !ok {
		e.stopLocked()
		return
	}

	if track.IsBook() && track.Book != nil && e.position.ChapterIndex != nil {
		next := *e.position.ChapterIndex + 1
		if next < len(track.Book.Chapters) {
			segs, err := segment.BookChapter(track, next)
			if err != nil {
				e.failLocked("failed to load chapter: " + err.Error())
				return
			}
			if len(segs) == 0 {
				e.failLocked("chapter has no speakable segments")
				return
			}

			e.bumpGeneration()
			e.cache = segs
			e.position.ChapterIndex = &next
			e.position.SegmentIndex = 0
			e.status = domain.Active(domain.PlayStatePlaying)
			e.markDirty()
			e.speakCurrentLocked()
			return
		}
	}

	e.nextTrackLocked()
}

// speakCurrentLocked issues the current cache segment to the speech backend.
// Callbacks capture the generation at speak time; the handlers drop anything
// from an older generation.
func (e *Engine) speakCurrentLocked() {
	seg := e.cache[e.position.SegmentIndex]
	e.position.WordBoundary = nil

	last := e.position
	last.WordBoundary = nil
	e.lastPlayed = last

	gen := e.generation
	u := speech.Utterance{
		Text:     seg.Text,
		Lang:     seg.Lang,
		VoiceURI: e.settings.VoiceFor(seg.Lang),
		Rate:     e.settings.TTS.Rate,
		Pitch:    e.settings.TTS.Pitch,
		OnEnd: func() {
			e.handleSegmentEnd(gen)
		},
		OnBoundary: func(b domain.WordBoundary) {
			e.handleBoundary(gen, b)
		},
		OnError: func(err error) {
			e.handleSpeechError(gen, err)
		},
	}

	if err := e.synth.Speak(u); err != nil {
		e.failLocked("speech backend rejected utterance: " + err.Error())
		return
	}
	e.markDirty()
}

// cancelSpeechLocked cancels the in-flight utterance and invalidates its
// callbacks. Every segment change brackets its new speak with this call.
func (e *Engine) cancelSpeechLocked() {
	_ = e.synth.Cancel() //nolint:errcheck // cancel of an idle backend is benign
	e.bumpGeneration()
}

// handleSegmentEnd is the auto-advance path, entered from the speech
// backend's completion callback.
func (e *Engine) handleSegmentEnd(gen uint64) {
	e.begin()
	defer e.end()

	if gen != e.generation || !e.status.IsPlaying() {
		return
	}

	e.position.WordBoundary = nil
	e.markDirty()

	if e.settings.RepeatTrack == domain.RepeatTrackOne {
		e.speakCurrentLocked()
		return
	}

	if e.position.SegmentIndex+1 < len(e.cache) {
		e.position.SegmentIndex++
		e.speakCurrentLocked()
		return
	}

	e.nextChapterLocked()
}

// handleBoundary records the character span currently being spoken.
func (e *Engine) handleBoundary(gen uint64, b domain.WordBoundary) {
	e.begin()
	defer e.end()

	if gen != e.generation || !e.status.IsPlaying() {
		return
	}
	e.position.WordBoundary = &b
	e.markDirty()
}

// handleSpeechError terminates the session when the backend fails
// mid-utterance.
func (e *Engine) handleSpeechError(gen uint64, err error) {
	e.begin()
	defer e.end()

	if gen != e.generation {
		return
	}
	e.log.Error("speech backend failed", "error", err)
	e.failLocked("speech failed: " + err.Error())
}

// failLocked transitions to the error status. Errors are terminal for the
// session; recovery requires a new play, resume, or jump command.
func (e *Engine) failLocked(message string) {
	if e.synth != nil {
		_ = e.synth.Cancel() //nolint:errcheck // cancel of an idle backend is benign
	}
	e.bumpGeneration()
	e.disarmSleepLocked()
	e.cache = nil
	e.stats = segment.BookStats{}
	e.status = domain.Errored(message)
	e.markDirty()
}
