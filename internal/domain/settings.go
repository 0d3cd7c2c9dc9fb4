package domain

import "time"

// RepeatTrackMode controls repetition of the current segment.
type RepeatTrackMode string

const (
	// RepeatTrackOff advances normally after each segment.
	RepeatTrackOff RepeatTrackMode = "off"
	// RepeatTrackOne re-speaks the same segment after it ends.
	RepeatTrackOne RepeatTrackMode = "one"
)

// RepeatPlaylistMode controls wrap-around at the end of the playlist.
type RepeatPlaylistMode string

const (
	// RepeatPlaylistOff goes idle after the last track.
	RepeatPlaylistOff RepeatPlaylistMode = "off"
	// RepeatPlaylistAll wraps to the first track after the last.
	RepeatPlaylistAll RepeatPlaylistMode = "all"
)

// TTSSettings holds the synthesis parameters applied to every utterance.
// Voices maps a language code to a voice identifier; keys are sparse and a
// missing entry means the adapter's default voice for that language.
type TTSSettings struct {
	Rate   float64           `json:"rate"`
	Pitch  float64           `json:"pitch"`
	Voices map[string]string `json:"voices,omitempty"`
}

// SleepTimerSettings describes a pending auto-pause. Both fields are nil when
// no timer is set. StartedAt is the wall-clock arming time so a timer
// survives a restart and still fires at the originally intended moment.
type SleepTimerSettings struct {
	DurationMin *int       `json:"duration_min,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
}

// AudioSettings is the full persisted settings bundle.
type AudioSettings struct {
	TTS            TTSSettings        `json:"tts"`
	RepeatTrack    RepeatTrackMode    `json:"repeat_track"`
	RepeatPlaylist RepeatPlaylistMode `json:"repeat_playlist"`
	SleepTimer     SleepTimerSettings `json:"sleep_timer"`
}

// NewAudioSettings returns settings with defaults.
func NewAudioSettings() AudioSettings {
	return AudioSettings{
		TTS:            TTSSettings{Rate: 1.0, Pitch: 1.0},
		RepeatTrack:    RepeatTrackOff,
		RepeatPlaylist: RepeatPlaylistOff,
	}
}

// VoiceFor returns the configured voice for a language, or "".
func (s AudioSettings) VoiceFor(lang string) string {
	return s.TTS.Voices[lang]
}
