package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"npcforge/internal/character"
	"npcforge/internal/chat"
	"npcforge/internal/discovery"
	"npcforge/internal/gamevars"
	"npcforge/internal/prompts"
)

type stubCompleter struct {
	reply string
}

func (s *stubCompleter) Generate(_ context.Context, _ string, _ []character.Message, _ string) (string, error) {
	return s.reply, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *character.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := character.NewStore()
	engine := discovery.NewEngine(store)
	chatSvc := chat.NewService(store, &stubCompleter{reply: "Greetings."}, prompts.NewLoader("missing.yaml"), gamevars.NewStore())
	return newRouter(zap.NewNop(), store, engine, chatSvc), store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestRegisterCharacter_NormalizesPayload(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/characters", map[string]interface{}{
		"name":         "Blacksmith",
		"relationship": `"Mayor": "Respectful"`,
		"inventory":    "HammerTongsSword",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created character.Character
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, map[string]string{"Mayor": "Respectful"}, created.Relationships)
	assert.Equal(t, []string{"Hammer", "Tongs", "Sword"}, created.Inventory)
	assert.Equal(t, "neutral", created.Player.Status)
}

func TestRegisterCharacter_MissingName(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/characters", map[string]interface{}{
		"description": "nameless",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCharacter_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, "GET", "/api/characters/Nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAndDeleteCharacter(t *testing.T) {
	router, store := newTestRouter(t)

	created, err := store.Create("Guard", nil)
	require.NoError(t, err)

	w := doJSON(t, router, "PUT", "/api/characters/guard", map[string]interface{}{
		"location": "North gate",
	})
	require.Equal(t, http.StatusOK, w.Code)

	found, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "North gate", found.Location)

	w = doJSON(t, router, "DELETE", "/api/characters/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/characters/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatEndpoint(t *testing.T) {
	router, store := newTestRouter(t)

	_, err := store.Create("Bard", nil)
	require.NoError(t, err)

	w := doJSON(t, router, "POST", "/api/characters/Bard/chat", map[string]interface{}{
		"message": "Play something",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result chat.TurnResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Greetings.", result.Content)

	found, err := store.Get("Bard")
	require.NoError(t, err)
	assert.Len(t, found.Conversations, 2)
}

func TestChatEndpoint_InvalidRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/characters/Bard/chat", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPairwiseRelationshipEndpoint(t *testing.T) {
	router, store := newTestRouter(t)

	_, err := store.Create("Blacksmith", map[string]interface{}{
		"relationships": map[string]string{"Mayor": "Respectful"},
	})
	require.NoError(t, err)
	_, err = store.Create("Mayor", map[string]interface{}{
		"relationships": map[string]string{"Blacksmith": "Reliable"},
	})
	require.NoError(t, err)

	w := doJSON(t, router, "GET", "/api/relationships?a=Blacksmith&b=Mayor", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var pw discovery.Pairwise
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pw))
	assert.Equal(t, "Respectful", pw.AToB)
	assert.Equal(t, "Reliable", pw.BToA)
	assert.True(t, pw.IsConflicting)

	w = doJSON(t, router, "GET", "/api/relationships?a=Blacksmith", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNetworkAndDiscoverEndpoints(t *testing.T) {
	router, store := newTestRouter(t)

	_, err := store.Create("Blacksmith", map[string]interface{}{
		"relationships": map[string]string{"Mayor": "Respectful", "Dragon": "Terrified"},
	})
	require.NoError(t, err)
	_, err = store.Create("Mayor", nil)
	require.NoError(t, err)

	w := doJSON(t, router, "GET", "/api/characters/Blacksmith/network", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report discovery.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Len(t, report.Direct, 1)
	assert.Len(t, report.Future, 1)

	w = doJSON(t, router, "GET", "/api/relationships/discover", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var pop discovery.PopulationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pop))
	assert.Equal(t, 2, pop.Totals.Characters)
}
