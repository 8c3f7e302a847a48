package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-chat-api/internal/database"
	"ai-chat-api/internal/middleware"
	"ai-chat-api/internal/models"
	"ai-chat-api/internal/realtime"
	"ai-chat-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupRuleRouter(t *testing.T) (*gin.Engine, *realtime.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	hub := realtime.NewHub(realtime.NewRegistry(), nil)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.POST("/rules", ProposeRule(hub))
	api.GET("/rules", GetRules)
	api.PATCH("/rules/:id", UpdateRule)
	return r, hub
}

func TestProposeRule_NotifiesUserConnections(t *testing.T) {
	r, hub := setupRuleRouter(t)

	// The user has one live connection; another user has one too.
	mine := &recordingClient{}
	theirs := &recordingClient{}
	hub.Registry().Insert("c-1", mine)
	hub.Registry().SetIdentity("c-1", "u-1")
	hub.Registry().Insert("c-2", theirs)
	hub.Registry().SetIdentity("c-2", "u-2")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/rules", "u-1",
		map[string]string{"content": "prefers concise answers"}))
	require.Equal(t, http.StatusCreated, w.Code)

	frames := mine.frames(t)
	require.Len(t, frames, 1)
	require.Equal(t, "rule:proposed", frames[0]["type"])
	require.Empty(t, theirs.frames(t))
}

func TestUpdateRule_Accept(t *testing.T) {
	r, _ := setupRuleRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/rules", "u-1",
		map[string]string{"content": "always reply in French"}))
	var created models.Rule
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPatch, "/api/rules/"+created.ID, "u-1",
		map[string]string{"status": "accepted"}))
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Rule
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	require.Equal(t, models.RuleAccepted, updated.Status)
}

func TestUpdateRule_RejectsBogusStatus(t *testing.T) {
	r, _ := setupRuleRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPatch, "/api/rules/r-404", "u-1",
		map[string]string{"status": "maybe"}))
	require.Equal(t, http.StatusBadRequest, w.Code)
}
