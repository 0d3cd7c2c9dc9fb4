package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerPlaylistRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPlaylist",
		Method:      http.MethodGet,
		Path:        "/api/v1/player/playlist",
		Summary:     "Get the playlist",
		Tags:        []string{"Playlist"},
	}, s.handleGetPlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "addToPlaylist",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/playlist",
		Summary:     "Add a track to the playlist",
		Description: "Appends the track, or replaces the existing entry with the same ID in place",
		Tags:        []string{"Playlist"},
	}, s.handleAddToPlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFromPlaylist",
		Method:      http.MethodDelete,
		Path:        "/api/v1/player/playlist/{trackId}",
		Summary:     "Remove a track from the playlist",
		Description: "Removing the currently playing track stops playback first",
		Tags:        []string{"Playlist"},
	}, s.handleRemoveFromPlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearPlaylist",
		Method:      http.MethodDelete,
		Path:        "/api/v1/player/playlist",
		Summary:     "Clear the playlist",
		Tags:        []string{"Playlist"},
	}, s.handleClearPlaylist)
}

// AddTrackInput wraps a track payload for huma.
type AddTrackInput struct {
	Body TrackRequest
}

// RemoveTrackInput identifies a playlist entry by track ID.
type RemoveTrackInput struct {
	TrackID string `path:"trackId" doc:"Track ID to remove"`
}

func (s *Server) handleGetPlaylist(_ context.Context, _ *struct{}) (*StateOutput, error) {
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handleAddToPlaylist(_ context.Context, input *AddTrackInput) (*StateOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	track, err := trackToDomain(input.Body)
	if err != nil {
		return nil, err
	}

	s.engine.AddToPlaylist(track)
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handleRemoveFromPlaylist(_ context.Context, input *RemoveTrackInput) (*StateOutput, error) {
	s.engine.RemoveFromPlaylist(input.TrackID)
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handleClearPlaylist(_ context.Context, _ *struct{}) (*StateOutput, error) {
	s.engine.ClearPlaylist()
	return &StateOutput{Body: s.engine.GetState()}, nil
}
