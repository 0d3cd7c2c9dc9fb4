package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lectio/lectio-server/internal/domain"
	"github.com/lectio/lectio-server/internal/engine"
	apperrors "github.com/lectio/lectio-server/internal/errors"
)

func (s *Server) registerPlayerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPlayerState",
		Method:      http.MethodGet,
		Path:        "/api/v1/player/state",
		Summary:     "Get player state",
		Description: "Returns the current playback status, position, settings, and playlist",
		Tags:        []string{"Player"},
	}, s.handleGetPlayerState)

	huma.Register(s.api, huma.Operation{
		OperationID: "play",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/play",
		Summary:     "Play a track",
		Description: "Stops current playback and starts the given track, adding it to the playlist if needed",
		Tags:        []string{"Player"},
	}, s.handlePlay)

	huma.Register(s.api, huma.Operation{
		OperationID: "pause",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/pause",
		Summary:     "Pause playback",
		Tags:        []string{"Player"},
	}, s.handlePause)

	huma.Register(s.api, huma.Operation{
		OperationID: "resume",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/resume",
		Summary:     "Resume playback",
		Description: "Continues paused playback, or wakes an idle player at its last position",
		Tags:        []string{"Player"},
	}, s.handleResume)

	huma.Register(s.api, huma.Operation{
		OperationID: "stop",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/stop",
		Summary:     "Stop playback",
		Tags:        []string{"Player"},
	}, s.handleStop)

	huma.Register(s.api, huma.Operation{
		OperationID: "skipForward",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/next-segment",
		Summary:     "Skip to next segment",
		Tags:        []string{"Player"},
	}, s.handleSkipForward)

	huma.Register(s.api, huma.Operation{
		OperationID: "skipBackward",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/previous-segment",
		Summary:     "Skip to previous segment",
		Tags:        []string{"Player"},
	}, s.handleSkipBackward)

	huma.Register(s.api, huma.Operation{
		OperationID: "seekToSegment",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/seek",
		Summary:     "Seek to a segment",
		Description: "Jumps to a segment of the current track; out-of-range indexes are ignored",
		Tags:        []string{"Player"},
	}, s.handleSeek)

	huma.Register(s.api, huma.Operation{
		OperationID: "nextTrack",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/next-track",
		Summary:     "Skip to next playlist track",
		Tags:        []string{"Player"},
	}, s.handleNextTrack)

	huma.Register(s.api, huma.Operation{
		OperationID: "previousTrack",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/previous-track",
		Summary:     "Skip to previous playlist track",
		Tags:        []string{"Player"},
	}, s.handlePreviousTrack)

	huma.Register(s.api, huma.Operation{
		OperationID: "jumpToTrack",
		Method:      http.MethodPost,
		Path:        "/api/v1/player/jump",
		Summary:     "Jump to a playlist track",
		Tags:        []string{"Player"},
	}, s.handleJumpToTrack)
}

// === DTOs ===

// SegmentRequest is one sentence-level content unit with per-language text.
type SegmentRequest struct {
	ID   string            `json:"id" validate:"required" doc:"Stable segment ID"`
	Text map[string]string `json:"text" validate:"required" doc:"Text keyed by language code"`
}

// ChapterRequest is one chapter of a book payload.
type ChapterRequest struct {
	ID       string           `json:"id" validate:"required" doc:"Stable chapter ID"`
	Title    string           `json:"title,omitempty" doc:"Chapter title"`
	Segments []SegmentRequest `json:"segments" validate:"dive" doc:"Ordered content segments"`
}

// BookContentRequest is the full narration payload of a book track.
type BookContentRequest struct {
	Chapters []ChapterRequest `json:"chapters" validate:"required,min=1,dive" doc:"Ordered chapters"`
}

// TrackRequest identifies a playable item. Book tracks carry their content;
// vocabulary tracks reference a folder by ID.
type TrackRequest struct {
	ID                 string              `json:"id" validate:"required" doc:"Track ID (folder ID for vocab tracks)"`
	Type               string              `json:"type" validate:"required,oneof=book vocab" doc:"Track type"`
	Title              string              `json:"title" validate:"required,max=512" doc:"Display title"`
	PrimaryLanguage    string              `json:"primary_language,omitempty" validate:"omitempty,bcp47" doc:"Narration language"`
	SecondaryLanguage  string              `json:"secondary_language,omitempty" validate:"omitempty,bcp47" doc:"Second language for bilingual alternation"`
	AvailableLanguages []string            `json:"available_languages,omitempty" doc:"Languages present in the content"`
	Book               *BookContentRequest `json:"book,omitempty" doc:"Book content; required for book tracks"`
}

// PlayRequest starts playback of a track.
type PlayRequest struct {
	Track        TrackRequest `json:"track" doc:"Track to play"`
	ChapterIndex *int         `json:"chapter_index,omitempty" validate:"omitempty,gte=0" doc:"Starting chapter (books only)"`
	SegmentIndex int          `json:"segment_index,omitempty" validate:"gte=0" doc:"Starting segment within the chapter"`
}

// PlayInput wraps the play request for huma.
type PlayInput struct {
	Body PlayRequest
}

// SeekRequest selects a segment of the current track.
type SeekRequest struct {
	SegmentIndex int `json:"segment_index" validate:"gte=0" doc:"Target segment index"`
}

// SeekInput wraps the seek request for huma.
type SeekInput struct {
	Body SeekRequest
}

// JumpRequest selects a playlist entry by index.
type JumpRequest struct {
	Index int `json:"index" validate:"gte=0" doc:"Playlist index"`
}

// JumpInput wraps the jump request for huma.
type JumpInput struct {
	Body JumpRequest
}

// StateOutput wraps an engine snapshot for huma.
type StateOutput struct {
	Body engine.Snapshot
}

// trackToDomain converts and checks a track payload.
func trackToDomain(in TrackRequest) (domain.Track, error) {
	track := domain.Track{
		ID:                 in.ID,
		Type:               domain.TrackType(in.Type),
		Title:              in.Title,
		PrimaryLanguage:    in.PrimaryLanguage,
		SecondaryLanguage:  in.SecondaryLanguage,
		AvailableLanguages: in.AvailableLanguages,
	}

	if track.IsBook() {
		if in.Book == nil {
			return domain.Track{}, apperrors.Validation("book tracks require a book content payload")
		}
		if in.PrimaryLanguage == "" {
			return domain.Track{}, apperrors.Validation("book tracks require a primary language")
		}

		content := &domain.BookContent{Chapters: make([]domain.Chapter, len(in.Book.Chapters))}
		for i, ch := range in.Book.Chapters {
			chapter := domain.Chapter{
				ID:       ch.ID,
				Title:    ch.Title,
				Segments: make([]domain.ContentSegment, len(ch.Segments)),
			}
			for j, seg := range ch.Segments {
				chapter.Segments[j] = domain.ContentSegment{ID: seg.ID, Text: seg.Text}
			}
			content.Chapters[i] = chapter
		}
		track.Book = content
	}

	return track, nil
}

// === Handlers ===

func (s *Server) handleGetPlayerState(_ context.Context, _ *struct{}) (*StateOutput, error) {
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handlePlay(_ context.Context, input *PlayInput) (*StateOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	track, err := trackToDomain(input.Body.Track)
	if err != nil {
		return nil, err
	}

	s.engine.Play(track, &engine.PlayOptions{
		ChapterIndex: input.Body.ChapterIndex,
		SegmentIndex: input.Body.SegmentIndex,
	})
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handlePause(_ context.Context, _ *struct{}) (*StateOutput, error) {
	s.engine.Pause()
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handleResume(_ context.Context, _ *struct{}) (*StateOutput, error) {
	s.engine.Resume()
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handleStop(_ context.Context, _ *struct{}) (*StateOutput, error) {
	s.engine.Stop()
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handleSkipForward(_ context.Context, _ *struct{}) (*StateOutput, error) {
	s.engine.SkipForward()
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handleSkipBackward(_ context.Context, _ *struct{}) (*StateOutput, error) {
	s.engine.SkipBackward()
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handleSeek(_ context.Context, input *SeekInput) (*StateOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	s.engine.SeekToSegment(input.Body.SegmentIndex)
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handleNextTrack(_ context.Context, _ *struct{}) (*StateOutput, error) {
	s.engine.NextTrack()
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handlePreviousTrack(_ context.Context, _ *struct{}) (*StateOutput, error) {
	s.engine.PreviousTrack()
	return &StateOutput{Body: s.engine.GetState()}, nil
}

func (s *Server) handleJumpToTrack(_ context.Context, input *JumpInput) (*StateOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	s.engine.JumpToTrack(input.Body.Index)
	return &StateOutput{Body: s.engine.GetState()}, nil
}
