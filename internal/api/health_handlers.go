package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	merge := func(name string, h ComponentHealth) {
		components[name] = h
		if h.Status == "unhealthy" {
			overall = "unhealthy"
		} else if h.Status == "degraded" && overall == "healthy" {
			overall = "degraded"
		}
	}

	merge("vocab_db", s.checkVocabDB(ctx))
	merge("speech", s.checkSpeech())
	merge("sse", s.checkSSEManager())

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkVocabDB verifies the SQLite vocabulary store is reachable.
func (s *Server) checkVocabDB(ctx context.Context) ComponentHealth {
	if s.vocab == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "vocabulary store not configured",
		}
	}

	start := time.Now()
	err := s.vocab.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "database ping failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkSpeech verifies the synthesizer can enumerate voices.
func (s *Server) checkSpeech() ComponentHealth {
	if s.synth == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "speech backend not configured",
		}
	}

	start := time.Now()
	voices, err := s.synth.Voices()
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "speech backend unreachable",
		}
	}

	if len(voices) == 0 {
		return ComponentHealth{
			Status:  "degraded",
			Latency: latency.String(),
			Message: "no voices available",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkSSEManager reports the SSE event system state.
func (s *Server) checkSSEManager() ComponentHealth {
	if s.sseManager == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "SSE manager not configured",
		}
	}

	count := s.sseManager.ClientCount()
	return ComponentHealth{
		Status:  "healthy",
		Message: formatSSEStatus(count),
	}
}

func formatSSEStatus(count int) string {
	switch count {
	case 0:
		return "no connected clients"
	case 1:
		return "1 connected client"
	default:
		return strconv.Itoa(count) + " connected clients"
	}
}
