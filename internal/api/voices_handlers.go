package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	apperrors "github.com/lectio/lectio-server/internal/errors"
	"github.com/lectio/lectio-server/internal/speech"
)

func (s *Server) registerVoiceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listVoices",
		Method:      http.MethodGet,
		Path:        "/api/v1/voices",
		Summary:     "List available voices",
		Description: "Returns the voices the speech backend reports, optionally filtered by language",
		Tags:        []string{"Voices"},
	}, s.handleListVoices)
}

// ListVoicesInput filters the voice listing.
type ListVoicesInput struct {
	Lang string `query:"lang" doc:"Only return voices for this language code"`
}

// VoicesOutput wraps the voice listing for huma.
type VoicesOutput struct {
	Body struct {
		Voices []speech.Voice `json:"voices"`
	}
}

func (s *Server) handleListVoices(_ context.Context, input *ListVoicesInput) (*VoicesOutput, error) {
	voices, err := s.synth.Voices()
	if err != nil {
		s.logger.Error("listing voices failed", "error", err)
		return nil, apperrors.Internal("speech backend unavailable")
	}

	if input.Lang != "" {
		filtered := voices[:0]
		for _, v := range voices {
			if v.Lang == input.Lang {
				filtered = append(filtered, v)
			}
		}
		voices = filtered
	}

	out := &VoicesOutput{}
	out.Body.Voices = voices
	return out, nil
}
