package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectio/lectio-server/internal/domain"
	"github.com/lectio/lectio-server/internal/engine"
	"github.com/lectio/lectio-server/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func samplePlayerState() *engine.PersistedState {
	return &engine.PersistedState{
		Playlist: []domain.Track{
			{ID: "book_1", Type: domain.TrackTypeBook, Title: "Faust", PrimaryLanguage: "de"},
			{ID: "folder_1", Type: domain.TrackTypeVocab, Title: "Lesson 1"},
		},
		Settings: domain.AudioSettings{
			TTS:            domain.TTSSettings{Rate: 1.25, Pitch: 1.0, Voices: map[string]string{"de": "voice:anna"}},
			RepeatTrack:    domain.RepeatTrackOff,
			RepeatPlaylist: domain.RepeatPlaylistAll,
		},
		LastPosition: domain.PlaybackPosition{PlaylistIndex: 0, SegmentIndex: 7},
	}
}

func TestPlayerStateRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePlayerState(ctx, "user-1", samplePlayerState()))

	got, err := s.GetPlayerState(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Playlist, 2)
	assert.Equal(t, "Faust", got.Playlist[0].Title)
	assert.Equal(t, "voice:anna", got.Settings.TTS.Voices["de"])
	assert.Equal(t, domain.RepeatPlaylistAll, got.Settings.RepeatPlaylist)
	assert.Equal(t, 7, got.LastPosition.SegmentIndex)
}

func TestPlayerStateMissingReturnsNil(t *testing.T) {
	s := setupTestStore(t)

	got, err := s.GetPlayerState(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPlayerStateIsolatedPerUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePlayerState(ctx, "user-1", samplePlayerState()))

	got, err := s.GetPlayerState(ctx, "user-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPlayerStateDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePlayerState(ctx, "user-1", samplePlayerState()))
	require.NoError(t, s.DeletePlayerState(ctx, "user-1"))

	got, err := s.GetPlayerState(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestForUserAdapter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	adapter := s.ForUser("user-1")
	require.NoError(t, adapter.SaveState(ctx, samplePlayerState()))

	got, err := adapter.LoadState(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "book_1", got.Playlist[0].ID)

	// A different user's adapter sees nothing.
	other, err := s.ForUser("user-2").LoadState(ctx)
	require.NoError(t, err)
	assert.Nil(t, other)
}
