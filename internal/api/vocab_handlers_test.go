package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createFolderT creates a folder through the API and returns its ID.
func createFolderT(t *testing.T, server *Server, name string) string {
	t.Helper()

	w := doJSON(t, server, http.MethodPost, "/api/v1/vocab/folders",
		fmt.Sprintf(`{"name": %q}`, name))
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	data := dataMap(t, decodeEnvelope(t, w))
	id, ok := data["id"].(string)
	require.True(t, ok)
	return id
}

// createItemT adds an item and returns its ID.
func createItemT(t *testing.T, server *Server, folderID, term, meaning string) string {
	t.Helper()

	body := fmt.Sprintf(`{
		"term": %q, "term_language": "de",
		"meaning": %q, "meaning_language": "en"
	}`, term, meaning)
	w := doJSON(t, server, http.MethodPost, "/api/v1/vocab/folders/"+folderID+"/items", body)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	data := dataMap(t, decodeEnvelope(t, w))
	id, ok := data["id"].(string)
	require.True(t, ok)
	return id
}

func TestVocabFolderLifecycle(t *testing.T) {
	server, _ := setupTestServer(t)

	folderID := createFolderT(t, server, "Lektion 1")

	w := doJSON(t, server, http.MethodGet, "/api/v1/vocab/folders", "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, decodeEnvelope(t, w))
	folders, ok := data["folders"].([]any)
	require.True(t, ok)
	require.Len(t, folders, 1)

	w = doJSON(t, server, http.MethodPatch, "/api/v1/vocab/folders/"+folderID,
		`{"name": "Lektion Eins"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	data = dataMap(t, decodeEnvelope(t, w))
	assert.Equal(t, "Lektion Eins", data["name"])

	w = doJSON(t, server, http.MethodDelete, "/api/v1/vocab/folders/"+folderID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/vocab/folders/"+folderID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVocabFolder_RejectsEmptyName(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/vocab/folders", `{"name": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
}

func TestVocabItemLifecycle(t *testing.T) {
	server, _ := setupTestServer(t)

	folderID := createFolderT(t, server, "Verben")
	itemID := createItemT(t, server, folderID, "laufen", "to run")

	w := doJSON(t, server, http.MethodGet, "/api/v1/vocab/folders/"+folderID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, decodeEnvelope(t, w))
	items, ok := data["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	item := items[0].(map[string]any)
	assert.Equal(t, "laufen", item["term"])
	assert.Equal(t, float64(0), item["position"])

	w = doJSON(t, server, http.MethodPut, "/api/v1/vocab/items/"+itemID, `{
		"term": "rennen", "term_language": "de",
		"meaning": "to sprint", "meaning_language": "en",
		"example": "Er rennt schnell.", "example_language": "de"
	}`)
	assert.Equal(t, http.StatusOK, w.Code)
	data = dataMap(t, decodeEnvelope(t, w))
	assert.Equal(t, "rennen", data["term"])
	assert.Equal(t, "Er rennt schnell.", data["example"])

	w = doJSON(t, server, http.MethodDelete, "/api/v1/vocab/items/"+itemID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/vocab/folders/"+folderID, "")
	data = dataMap(t, decodeEnvelope(t, w))
	items, _ = data["items"].([]any)
	assert.Empty(t, items)
}

func TestVocabItem_BadLanguageCode(t *testing.T) {
	server, _ := setupTestServer(t)

	folderID := createFolderT(t, server, "Kaputt")

	w := doJSON(t, server, http.MethodPost, "/api/v1/vocab/folders/"+folderID+"/items", `{
		"term": "x", "term_language": "not a lang",
		"meaning": "y", "meaning_language": "en"
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
	assert.NotNil(t, env.Error.Details)
}

func TestVocabReorder(t *testing.T) {
	server, _ := setupTestServer(t)

	folderID := createFolderT(t, server, "Reihenfolge")
	first := createItemT(t, server, folderID, "eins", "one")
	second := createItemT(t, server, folderID, "zwei", "two")

	w := doJSON(t, server, http.MethodPut, "/api/v1/vocab/folders/"+folderID+"/order",
		fmt.Sprintf(`{"item_ids": [%q, %q]}`, second, first))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/vocab/folders/"+folderID, "")
	data := dataMap(t, decodeEnvelope(t, w))
	items := data["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "zwei", items[0].(map[string]any)["term"])
	assert.Equal(t, "eins", items[1].(map[string]any)["term"])
}

func TestVocabReorder_RejectsPartialList(t *testing.T) {
	server, _ := setupTestServer(t)

	folderID := createFolderT(t, server, "Teilmenge")
	first := createItemT(t, server, folderID, "eins", "one")
	createItemT(t, server, folderID, "zwei", "two")

	w := doJSON(t, server, http.MethodPut, "/api/v1/vocab/folders/"+folderID+"/order",
		fmt.Sprintf(`{"item_ids": [%q]}`, first))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVocabPlaybackThroughAPI(t *testing.T) {
	server, synth := setupTestServer(t)

	folderID := createFolderT(t, server, "Spielbar")
	createItemT(t, server, folderID, "Haus", "house")

	body := fmt.Sprintf(`{"track": {"id": %q, "type": "vocab", "title": "Spielbar"}}`, folderID)
	w := doJSON(t, server, http.MethodPost, "/api/v1/player/play", body)
	assert.Equal(t, http.StatusOK, w.Code)

	waitActive(t, server)
	require.NotEmpty(t, synth.SpokenTexts())
	assert.Equal(t, "Haus", synth.SpokenTexts()[0])
}

func TestDeleteFolderRemovesPlaylistEntry(t *testing.T) {
	server, _ := setupTestServer(t)

	folderID := createFolderT(t, server, "Wegwerf")
	createItemT(t, server, folderID, "Tisch", "table")

	body := fmt.Sprintf(`{"id": %q, "type": "vocab", "title": "Wegwerf"}`, folderID)
	w := doJSON(t, server, http.MethodPost, "/api/v1/player/playlist", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, server.engine.GetState().Playlist, 1)

	w = doJSON(t, server, http.MethodDelete, "/api/v1/vocab/folders/"+folderID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	require.Eventually(t, func() bool {
		return len(server.engine.GetState().Playlist) == 0
	}, 2*time.Second, time.Millisecond)
}
