package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lectio/lectio-server/internal/domain"
)

func (s *Server) registerSettingsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/player/settings",
		Summary:     "Get audio settings",
		Tags:        []string{"Settings"},
	}, s.handleGetSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSettings",
		Method:      http.MethodPatch,
		Path:        "/api/v1/player/settings",
		Summary:     "Update audio settings",
		Description: "Applies only the fields present; rate and pitch are clamped to their supported ranges",
		Tags:        []string{"Settings"},
	}, s.handleUpdateSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "setVoice",
		Method:      http.MethodPut,
		Path:        "/api/v1/player/settings/voices/{lang}",
		Summary:     "Set the voice for a language",
		Description: "An empty voice URI removes the language's voice override",
		Tags:        []string{"Settings"},
	}, s.handleSetVoice)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSleepTimer",
		Method:      http.MethodPut,
		Path:        "/api/v1/player/sleep-timer",
		Summary:     "Set or clear the sleep timer",
		Description: "A null or missing duration clears the timer",
		Tags:        []string{"Settings"},
	}, s.handleSetSleepTimer)
}

// UpdateSettingsRequest carries a partial settings update. Nil fields are
// left unchanged.
type UpdateSettingsRequest struct {
	Rate           *float64 `json:"rate,omitempty" validate:"omitempty,gte=0.1,lte=10" doc:"Speech rate multiplier"`
	Pitch          *float64 `json:"pitch,omitempty" validate:"omitempty,gte=0,lte=2" doc:"Speech pitch"`
	RepeatTrack    *string  `json:"repeat_track,omitempty" validate:"omitempty,oneof=off one" doc:"Segment repeat mode"`
	RepeatPlaylist *string  `json:"repeat_playlist,omitempty" validate:"omitempty,oneof=off all" doc:"Playlist repeat mode"`
}

// UpdateSettingsInput wraps the settings patch for huma.
type UpdateSettingsInput struct {
	Body UpdateSettingsRequest
}

// SetVoiceInput assigns a voice to a language.
type SetVoiceInput struct {
	Lang string `path:"lang" doc:"Language code"`
	Body struct {
		VoiceURI string `json:"voice_uri" doc:"Synthesizer voice identifier; empty removes the override"`
	}
}

// SetSleepTimerInput sets or clears the sleep timer.
type SetSleepTimerInput struct {
	Body struct {
		DurationMin *int `json:"duration_min,omitempty" validate:"omitempty,gte=1,lte=720" doc:"Minutes until auto-pause; null clears"`
	}
}

// SettingsOutput wraps the settings bundle for huma.
type SettingsOutput struct {
	Body domain.AudioSettings
}

func (s *Server) handleGetSettings(_ context.Context, _ *struct{}) (*SettingsOutput, error) {
	return &SettingsOutput{Body: s.engine.GetState().Settings}, nil
}

func (s *Server) handleUpdateSettings(_ context.Context, input *UpdateSettingsInput) (*SettingsOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if input.Body.Rate != nil {
		s.engine.SetTTSRate(*input.Body.Rate)
	}
	if input.Body.Pitch != nil {
		s.engine.SetTTSPitch(*input.Body.Pitch)
	}
	if input.Body.RepeatTrack != nil {
		s.engine.SetRepeatMode(domain.RepeatTrackMode(*input.Body.RepeatTrack))
	}
	if input.Body.RepeatPlaylist != nil {
		s.engine.SetPlaylistRepeatMode(domain.RepeatPlaylistMode(*input.Body.RepeatPlaylist))
	}

	return &SettingsOutput{Body: s.engine.GetState().Settings}, nil
}

func (s *Server) handleSetVoice(_ context.Context, input *SetVoiceInput) (*SettingsOutput, error) {
	s.engine.SetVoiceForLanguage(input.Lang, input.Body.VoiceURI)
	return &SettingsOutput{Body: s.engine.GetState().Settings}, nil
}

func (s *Server) handleSetSleepTimer(_ context.Context, input *SetSleepTimerInput) (*SettingsOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	s.engine.SetSleepTimer(input.Body.DurationMin)
	return &SettingsOutput{Body: s.engine.GetState().Settings}, nil
}
