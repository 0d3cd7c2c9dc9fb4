package domain

// StatusKind enumerates the mutually exclusive playback states.
type StatusKind string

const (
	// StatusIdle means nothing is loaded or playing.
	StatusIdle StatusKind = "idle"
	// StatusLoading means a track's segment cache is being built.
	StatusLoading StatusKind = "loading"
	// StatusActive means a track is loaded and playing or paused.
	StatusActive StatusKind = "active"
	// StatusError means the last playback session ended in a failure.
	StatusError StatusKind = "error"
)

// PlayState refines StatusActive.
type PlayState string

const (
	// PlayStatePlaying means speech output is in progress.
	PlayStatePlaying PlayState = "playing"
	// PlayStatePaused means speech output is suspended.
	PlayStatePaused PlayState = "paused"
)

// PlaybackStatus is the authoritative "is anything happening" signal.
// Exactly one kind holds at a time; the auxiliary fields are populated only
// for the kind they belong to.
type PlaybackStatus struct {
	Kind StatusKind `json:"kind"`

	// TrackID is set while Kind == StatusLoading.
	TrackID string `json:"track_id,omitempty"`
	// Play is set while Kind == StatusActive.
	Play PlayState `json:"play,omitempty"`
	// Message is set while Kind == StatusError.
	Message string `json:"message,omitempty"`
}

// Idle returns the idle status.
func Idle() PlaybackStatus { return PlaybackStatus{Kind: StatusIdle} }

// Loading returns a loading status for the given track.
func Loading(trackID string) PlaybackStatus {
	return PlaybackStatus{Kind: StatusLoading, TrackID: trackID}
}

// Active returns an active status with the given play state.
func Active(play PlayState) PlaybackStatus {
	return PlaybackStatus{Kind: StatusActive, Play: play}
}

// Errored returns an error status with a user-facing message.
func Errored(message string) PlaybackStatus {
	return PlaybackStatus{Kind: StatusError, Message: message}
}

// IsPlaying reports whether speech output is currently in progress.
func (s PlaybackStatus) IsPlaying() bool {
	return s.Kind == StatusActive && s.Play == PlayStatePlaying
}

// IsPaused reports whether playback is active but suspended.
func (s PlaybackStatus) IsPaused() bool {
	return s.Kind == StatusActive && s.Play == PlayStatePaused
}

// WordBoundary marks the character span currently being spoken inside the
// active segment. It is in-flight state only and is cleared between segments.
type WordBoundary struct {
	CharIndex  int `json:"char_index"`
	CharLength int `json:"char_length"`
}

// PlaybackPosition locates the engine inside the playlist.
//
// PlaylistIndex is -1 when nothing is selected. ChapterIndex is nil for
// vocab tracks and non-negative for book tracks. SegmentIndex indexes into
// the current segment cache, never into the whole book.
type PlaybackPosition struct {
	PlaylistIndex int           `json:"playlist_index"`
	ChapterIndex  *int          `json:"chapter_index,omitempty"`
	SegmentIndex  int           `json:"segment_index"`
	WordBoundary  *WordBoundary `json:"word_boundary,omitempty"`
}

// NoPosition is the reset position used by stop().
func NoPosition() PlaybackPosition {
	return PlaybackPosition{PlaylistIndex: -1}
}
