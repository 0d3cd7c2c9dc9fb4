package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectio/lectio-server/internal/clock"
	"github.com/lectio/lectio-server/internal/domain"
	"github.com/lectio/lectio-server/internal/engine"
	"github.com/lectio/lectio-server/internal/speech"
)

func TestPersist_StripsBookContent(t *testing.T) {
	rig := newRig(t)
	rig.engine.Play(bilingualBook(), nil)
	waitPlaying(t, rig.engine)

	state := rig.store.last()
	require.NotNil(t, state)
	require.Len(t, state.Playlist, 1)
	assert.Equal(t, "book_bi", state.Playlist[0].ID)
	// Content payloads never reach storage; only metadata survives.
	assert.Nil(t, state.Playlist[0].Book)
	assert.Equal(t, "en", state.Playlist[0].PrimaryLanguage)
	assert.Nil(t, state.LastPosition.WordBoundary)
}

func TestPersist_SettingsAndLastPositionSurviveRestart(t *testing.T) {
	rig := newRig(t)
	rig.engine.SetTTSRate(1.25)
	rig.engine.SetVoiceForLanguage("de", "voice:anna")
	rig.engine.SetRepeatMode(domain.RepeatTrackOne)
	rig.engine.Play(bilingualBook(), nil)
	waitPlaying(t, rig.engine)
	rig.engine.SeekToSegment(2)
	rig.engine.Stop()

	restarted := engine.New(engine.Options{
		Synth:   speech.NewMock(),
		Storage: rig.store,
		Vocab:   rig.vocab,
		Clock:   clock.NewMock(time.Now()),
	})

	state := restarted.GetState()
	assert.Equal(t, domain.StatusIdle, state.Status.Kind)
	require.Len(t, state.Playlist, 1)
	assert.Equal(t, "book_bi", state.Playlist[0].ID)
	assert.InDelta(t, 1.25, state.Settings.TTS.Rate, 1e-9)
	assert.Equal(t, "voice:anna", state.Settings.TTS.Voices["de"])
	assert.Equal(t, domain.RepeatTrackOne, state.Settings.RepeatTrack)

	// The saved position points at where playback left off.
	saved := rig.store.last()
	require.NotNil(t, saved)
	assert.Equal(t, 0, saved.LastPosition.PlaylistIndex)
	assert.Equal(t, 2, saved.LastPosition.SegmentIndex)
}

func TestPersist_RestoreNormalizesCorruptSettings(t *testing.T) {
	store := &memStore{state: &engine.PersistedState{
		Playlist:     []domain.Track{{ID: "book_x", Type: domain.TrackTypeBook, Title: "X"}},
		LastPosition: domain.NoPosition(),
	}}

	e := engine.New(engine.Options{
		Synth:   speech.NewMock(),
		Storage: store,
	})

	state := e.GetState()
	assert.InDelta(t, 1.0, state.Settings.TTS.Rate, 1e-9)
	assert.InDelta(t, 1.0, state.Settings.TTS.Pitch, 1e-9)
	assert.Equal(t, domain.RepeatTrackOff, state.Settings.RepeatTrack)
	assert.Equal(t, domain.RepeatPlaylistOff, state.Settings.RepeatPlaylist)
}

func TestPersist_RestoredStrippedBookFailsLoadCleanly(t *testing.T) {
	store := &memStore{state: &engine.PersistedState{
		Playlist:     []domain.Track{{ID: "book_x", Type: domain.TrackTypeBook, Title: "X", PrimaryLanguage: "en"}},
		LastPosition: domain.PlaybackPosition{PlaylistIndex: 0},
	}}

	e := engine.New(engine.Options{
		Synth:   speech.NewMock(),
		Storage: store,
	})

	// The playlist entry carries no content; starting it must surface an
	// error status rather than panic or hang.
	e.JumpToTrack(0)
	waitStatus(t, e, domain.StatusError)
}

func TestPersist_StorageFailureDoesNotBreakPlayback(t *testing.T) {
	synth := speech.NewMock()
	e := engine.New(engine.Options{
		Synth:   synth,
		Storage: failingStore{},
	})

	e.Play(monoBook("book_a"), nil)
	waitPlaying(t, e)
	synth.FinishCurrent()
	assert.Equal(t, 1, e.GetState().Position.SegmentIndex)
}

type failingStore struct{}

func (failingStore) SaveState(ctx context.Context, _ *engine.PersistedState) error {
	return errors.New("disk full")
}

func (failingStore) LoadState(ctx context.Context) (*engine.PersistedState, error) {
	return nil, errors.New("disk full")
}
