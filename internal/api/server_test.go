package api

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectio/lectio-server/internal/domain"
	"github.com/lectio/lectio-server/internal/engine"
	"github.com/lectio/lectio-server/internal/speech"
	"github.com/lectio/lectio-server/internal/sse"
	"github.com/lectio/lectio-server/internal/vocab"
)

const testUserID = "usr_api_test"

// setupTestServer creates a test server wired to a mock synthesizer and an
// in-memory vocabulary store.
func setupTestServer(t *testing.T) (*Server, *speech.Mock) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	vocabStore, err := vocab.Open(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = vocabStore.Close() })

	synth := speech.NewMock()

	eng := engine.New(engine.Options{
		Synth:  synth,
		Vocab:  vocabStore,
		Logger: logger,
		UserID: testUserID,
	})

	server := NewServer(Options{
		Engine:     eng,
		Vocab:      vocabStore,
		Synth:      synth,
		SSEManager: sse.NewManager(logger),
		Logger:     logger,
		UserID:     testUserID,
	})
	t.Cleanup(server.Close)

	return server, synth
}

// doJSON issues a request with an optional JSON body and returns the recorder.
func doJSON(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// decodeEnvelope unmarshals a response body into the API envelope.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

// dataMap extracts the envelope payload as a generic map.
func dataMap(t *testing.T, env Envelope) map[string]any {
	t.Helper()

	data, ok := env.Data.(map[string]any)
	require.True(t, ok, "data is %T", env.Data)
	return data
}

// waitActive blocks until the engine finishes its async track load.
func waitActive(t *testing.T, server *Server) {
	t.Helper()
	require.Eventually(t, func() bool {
		return server.engine.GetState().Status.Kind == domain.StatusActive
	}, 2*time.Second, time.Millisecond)
}

const playBookBody = `{
	"track": {
		"id": "book_api",
		"type": "book",
		"title": "Der Prozess",
		"primary_language": "de",
		"book": {
			"chapters": [
				{
					"id": "ch1",
					"title": "Erstes Kapitel",
					"segments": [
						{"id": "s1", "text": {"de": "Jemand musste Josef K. verleumdet haben."}},
						{"id": "s2", "text": {"de": "Die Koechin kam nicht."}}
					]
				}
			]
		}
	}
}`

func TestHealthCheck(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, 1, env.V)
	assert.True(t, env.Success)

	data := dataMap(t, env)
	assert.Equal(t, "healthy", data["status"])

	components, ok := data["components"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, components, "vocab_db")
	assert.Contains(t, components, "speech")
	assert.Contains(t, components, "sse")
}

func TestGetPlayerState_Initial(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/player/state", "")
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	data := dataMap(t, env)
	status, ok := data["status"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "idle", status["kind"])
	assert.Equal(t, float64(0), data["progress"])
}

func TestPlay_StartsPlayback(t *testing.T) {
	server, synth := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/player/play", playBookBody)
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	waitActive(t, server)
	assert.Equal(t, []string{"Jemand musste Josef K. verleumdet haben."}, synth.SpokenTexts())

	state := server.engine.GetState()
	require.Len(t, state.Playlist, 1)
	assert.Equal(t, "book_api", state.Playlist[0].ID)
}

func TestPlay_RejectsInvalidTrack(t *testing.T) {
	server, _ := setupTestServer(t)

	// Missing the required title and an unknown type. The schema layer
	// rejects this before the handler runs.
	body := `{"track": {"id": "x", "type": "podcast"}}`
	w := doJSON(t, server, http.MethodPost, "/api/v1/player/play", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
}

func TestPlay_BookWithoutContentRejected(t *testing.T) {
	server, _ := setupTestServer(t)

	body := `{"track": {"id": "b1", "type": "book", "title": "Empty", "primary_language": "de"}}`
	w := doJSON(t, server, http.MethodPost, "/api/v1/player/play", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "book content")
}

func TestPauseAndResume(t *testing.T) {
	server, synth := setupTestServer(t)

	doJSON(t, server, http.MethodPost, "/api/v1/player/play", playBookBody)
	waitActive(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/player/pause", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, synth.Paused())

	data := dataMap(t, decodeEnvelope(t, w))
	status := data["status"].(map[string]any)
	assert.Equal(t, "paused", status["play"])

	w = doJSON(t, server, http.MethodPost, "/api/v1/player/resume", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, synth.Paused())
}

func TestStop_ReturnsIdleState(t *testing.T) {
	server, _ := setupTestServer(t)

	doJSON(t, server, http.MethodPost, "/api/v1/player/play", playBookBody)
	waitActive(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/player/stop", "")
	assert.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, decodeEnvelope(t, w))
	status := data["status"].(map[string]any)
	assert.Equal(t, "idle", status["kind"])
}

func TestSeek_MovesToSegment(t *testing.T) {
	server, synth := setupTestServer(t)

	doJSON(t, server, http.MethodPost, "/api/v1/player/play", playBookBody)
	waitActive(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/player/seek", `{"segment_index": 1}`)
	assert.Equal(t, http.StatusOK, w.Code)

	texts := synth.SpokenTexts()
	require.Len(t, texts, 2)
	assert.Equal(t, "Die Koechin kam nicht.", texts[1])
}

func TestPlaylistEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)

	addBody := `{
		"id": "book_pl",
		"type": "book",
		"title": "Queued",
		"primary_language": "en",
		"book": {"chapters": [{"id": "c1", "segments": [{"id": "s1", "text": {"en": "Hello."}}]}]}
	}`
	w := doJSON(t, server, http.MethodPost, "/api/v1/player/playlist", addBody)
	assert.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, decodeEnvelope(t, w))
	playlist, ok := data["playlist"].([]any)
	require.True(t, ok)
	assert.Len(t, playlist, 1)

	// Adding is append-only; playback must not start.
	status := data["status"].(map[string]any)
	assert.Equal(t, "idle", status["kind"])

	w = doJSON(t, server, http.MethodDelete, "/api/v1/player/playlist/book_pl", "")
	assert.Equal(t, http.StatusOK, w.Code)
	data = dataMap(t, decodeEnvelope(t, w))
	assert.Nil(t, data["playlist"])

	w = doJSON(t, server, http.MethodDelete, "/api/v1/player/playlist", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSettings_PatchAndGet(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doJSON(t, server, http.MethodPatch, "/api/v1/player/settings",
		`{"rate": 1.5, "repeat_playlist": "all"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, decodeEnvelope(t, w))
	tts := data["tts"].(map[string]any)
	assert.Equal(t, 1.5, tts["rate"])
	assert.Equal(t, "all", data["repeat_playlist"])

	// Untouched fields keep their defaults.
	assert.Equal(t, 1.0, tts["pitch"])
	assert.Equal(t, "off", data["repeat_track"])

	w = doJSON(t, server, http.MethodGet, "/api/v1/player/settings", "")
	data = dataMap(t, decodeEnvelope(t, w))
	assert.Equal(t, "all", data["repeat_playlist"])
}

func TestSettings_RejectsBadRepeatMode(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doJSON(t, server, http.MethodPatch, "/api/v1/player/settings",
		`{"repeat_track": "forever"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
}

func TestSetVoice(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doJSON(t, server, http.MethodPut, "/api/v1/player/settings/voices/de",
		`{"voice_uri": "mock:de"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, decodeEnvelope(t, w))
	tts := data["tts"].(map[string]any)
	voices := tts["voices"].(map[string]any)
	assert.Equal(t, "mock:de", voices["de"])
}

func TestSleepTimer_SetAndClear(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doJSON(t, server, http.MethodPut, "/api/v1/player/sleep-timer",
		`{"duration_min": 30}`)
	assert.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, decodeEnvelope(t, w))
	timer := data["sleep_timer"].(map[string]any)
	assert.Equal(t, float64(30), timer["duration_min"])

	w = doJSON(t, server, http.MethodPut, "/api/v1/player/sleep-timer", `{}`)
	data = dataMap(t, decodeEnvelope(t, w))
	timer, _ = data["sleep_timer"].(map[string]any)
	assert.NotContains(t, timer, "duration_min")
}

func TestListVoices(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/voices", "")
	assert.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, decodeEnvelope(t, w))
	voices, ok := data["voices"].([]any)
	require.True(t, ok)
	assert.Len(t, voices, 2)

	w = doJSON(t, server, http.MethodGet, "/api/v1/voices?lang=de", "")
	data = dataMap(t, decodeEnvelope(t, w))
	voices = data["voices"].([]any)
	require.Len(t, voices, 1)
	voice := voices[0].(map[string]any)
	assert.Equal(t, "mock:de", voice["voice_uri"])
}

func TestEnvelope_ErrorShape(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/vocab/folders/folder_missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, 1, env.V)
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.NotEmpty(t, env.Error.Message)
}

func TestRateLimit_Returns429(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	vocabStore, err := vocab.Open(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = vocabStore.Close() })

	synth := speech.NewMock()
	eng := engine.New(engine.Options{Synth: synth, Logger: logger, UserID: testUserID})
	server := NewServer(Options{
		Engine:         eng,
		Vocab:          vocabStore,
		Synth:          synth,
		Logger:         logger,
		UserID:         testUserID,
		RateLimitRPS:   1,
		RateLimitBurst: 2,
	})
	t.Cleanup(server.Close)

	var last *httptest.ResponseRecorder
	codes := make([]int, 0, 4)
	for range 4 {
		last = doJSON(t, server, http.MethodGet, "/api/v1/player/state", "")
		codes = append(codes, last.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])

	env := decodeEnvelope(t, last)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAVAILABLE", env.Error.Code)
}
