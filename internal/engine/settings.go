package engine

import (
	"time"

	"github.com/lectio/lectio-server/internal/domain"
	"github.com/lectio/lectio-server/internal/segment"
)

const (
	minSpeechRate = 0.25
	maxSpeechRate = 4.0
	minPitch      = 0.0
	maxPitch      = 2.0
)

// SetTTSRate updates the speech rate. Takes effect from the next utterance
// onward. Out-of-range values are clamped.
func (e *Engine) SetTTSRate(rate float64) {
	e.begin()
	defer e.end()

	e.settings.TTS.Rate = clampFloat(rate, minSpeechRate, maxSpeechRate)
	e.markDirty()
}

// SetTTSPitch updates the speech pitch, clamped to the supported range.
func (e *Engine) SetTTSPitch(pitch float64) {
	e.begin()
	defer e.end()

	e.settings.TTS.Pitch = clampFloat(pitch, minPitch, maxPitch)
	e.markDirty()
}

// SetVoiceForLanguage pins a backend voice to a language. An empty voice
// clears the pin and falls back to the backend default.
func (e *Engine) SetVoiceForLanguage(lang, voiceURI string) {
	e.begin()
	defer e.end()

	key := segment.NormalizeLang(lang)
	if key == "" {
		return
	}
	if voiceURI == "" {
		delete(e.settings.TTS.Voices, key)
	} else {
		if e.settings.TTS.Voices == nil {
			e.settings.TTS.Voices = map[string]string{}
		}
		e.settings.TTS.Voices[key] = voiceURI
	}
	e.markDirty()
}

// SetRepeatMode updates the track repeat mode. Unknown values are ignored.
func (e *Engine) SetRepeatMode(mode domain.RepeatTrackMode) {
	e.begin()
	defer e.end()

	if mode != domain.RepeatTrackOff && mode != domain.RepeatTrackOne {
		return
	}
	e.settings.RepeatTrack = mode
	e.markDirty()
}

// SetPlaylistRepeatMode updates the playlist repeat mode. Unknown values are
// ignored.
func (e *Engine) SetPlaylistRepeatMode(mode domain.RepeatPlaylistMode) {
	e.begin()
	defer e.end()

	if mode != domain.RepeatPlaylistOff && mode != domain.RepeatPlaylistAll {
		return
	}
	e.settings.RepeatPlaylist = mode
	e.markDirty()
}

// SetSleepTimer arms the sleep timer for the given number of minutes, or
// clears it when minutes is nil or non-positive. The countdown only runs
// while playing; pausing suspends it and resuming re-arms it for the time
// remaining since the timer was set.
func (e *Engine) SetSleepTimer(minutes *int) {
	e.begin()
	defer e.end()

	e.disarmSleepLocked()

	if minutes == nil || *minutes <= 0 {
		e.settings.SleepTimer = domain.SleepTimerSettings{}
		e.markDirty()
		return
	}

	m := *minutes
	now := e.clock.Now()
	e.settings.SleepTimer = domain.SleepTimerSettings{
		DurationMin: &m,
		StartedAt:   &now,
	}
	e.markDirty()

	if e.status.IsPlaying() {
		e.armSleepLocked()
	}
}

// armSleepLocked schedules the expiry callback for the remaining time. A
// timer whose remaining time is already gone expires immediately.
func (e *Engine) armSleepLocked() {
	e.disarmSleepLocked()

	st := e.settings.SleepTimer
	if st.DurationMin == nil || st.StartedAt == nil {
		return
	}
	if !e.status.IsPlaying() {
		return
	}

	elapsed := e.clock.Now().Sub(*st.StartedAt)
	remaining := time.Duration(*st.DurationMin)*time.Minute - elapsed
	if remaining <= 0 {
		e.sleepExpiredLocked()
		return
	}

	gen := e.sleepGen
	e.sleepTimer = e.clock.AfterFunc(remaining, func() {
		e.handleSleepExpired(gen)
	})
}

// disarmSleepLocked stops the countdown without touching the stored setting.
func (e *Engine) disarmSleepLocked() {
	if e.sleepTimer != nil {
		e.sleepTimer.Stop()
		e.sleepTimer = nil
	}
	e.sleepGen++
}

func (e *Engine) handleSleepExpired(gen uint64) {
	e.begin()
	defer e.end()

	if gen != e.sleepGen {
		return
	}
	e.sleepTimer = nil
	e.sleepExpiredLocked()
}

// sleepExpiredLocked pauses playback and clears the timer setting. The user
// notification is queued, never delivered under the lock, so a slow or
// failing notifier cannot block the pause.
func (e *Engine) sleepExpiredLocked() {
	if e.status.IsPlaying() {
		if err := e.synth.Pause(); err != nil {
			e.log.Warn("speech pause failed", "error", err)
		}
		e.status = domain.Active(domain.PlayStatePaused)
	}
	e.settings.SleepTimer = domain.SleepTimerSettings{}
	e.queueNotice("Sleep timer", "Playback paused")
	e.markDirty()
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
