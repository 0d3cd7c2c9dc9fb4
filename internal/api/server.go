// Package api provides the HTTP API server and handlers for the Lectio
// read-aloud server.
package api

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lectio/lectio-server/internal/engine"
	"github.com/lectio/lectio-server/internal/ratelimit"
	"github.com/lectio/lectio-server/internal/speech"
	"github.com/lectio/lectio-server/internal/sse"
	"github.com/lectio/lectio-server/internal/validation"
	"github.com/lectio/lectio-server/internal/vocab"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine     *engine.Engine
	vocab      *vocab.Store
	synth      speech.Synthesizer
	sseManager *sse.Manager
	sseHandler http.Handler
	validator  *validation.Validator
	limiter    *ratelimit.KeyedRateLimiter
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
	userID     string
}

// Options configures a new Server.
type Options struct {
	Engine     *engine.Engine
	Vocab      *vocab.Store
	Synth      speech.Synthesizer
	SSEManager *sse.Manager
	SSEHandler http.Handler
	Logger     *slog.Logger
	// UserID identifies the owner of the player and vocabulary data.
	UserID string

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 25
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 50
	}

	s := &Server{
		engine:     opts.Engine,
		vocab:      opts.Vocab,
		synth:      opts.Synth,
		sseManager: opts.SSEManager,
		sseHandler: opts.SSEHandler,
		validator:  validation.New(),
		limiter:    ratelimit.New(opts.RateLimitRPS, opts.RateLimitBurst),
		router:     chi.NewRouter(),
		logger:     opts.Logger,
		userID:     opts.UserID,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(opts.AllowedOrigins),
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	s.router.Use(s.rateLimitMiddleware)

	humaConfig := huma.DefaultConfig("Lectio API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerPlayerRoutes()
	s.registerPlaylistRoutes()
	s.registerSettingsRoutes()
	s.registerVoiceRoutes()
	s.registerVocabRoutes()

	if s.sseHandler != nil {
		s.router.Get("/api/v1/player/stream", s.sseHandler.ServeHTTP)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma registry, used by tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// rateLimitMiddleware rejects clients that exceed the per-address budget.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter.Allow(host) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"v":1,"success":false,"error":{"code":"UNAVAILABLE","message":"rate limit exceeded"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
