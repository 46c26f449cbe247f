package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daypilot/backend/internal/live"
)

func TestCollections(t *testing.T) {
	assert.Equal(t, []string{"tasks", "menu"}, collections(" tasks, ,menu"))
	assert.Nil(t, collections(""))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.daypilot.dev"})

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://app.daypilot.dev")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}

func TestLiveStreamForwardsOwnEvents(t *testing.T) {
	a := newTestAPI(t)
	token, userID := a.signUp("live@example.com")
	otherToken, _ := a.signUp("quiet@example.com")

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/live?c=tasks&token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return a.hub.Subscribers(userID) == 1 }, 2*time.Second, 10*time.Millisecond)

	// Another user's writes and other collections are filtered out.
	a.do(http.MethodPost, "/api/v1/tasks", otherToken, map[string]any{"title": "not mine", "date": "2026-03-02"})
	a.do(http.MethodPost, "/api/v1/meals", token, map[string]any{"name": "oats", "meal_type": "breakfast", "date": "2026-03-02"})
	rr := a.do(http.MethodPost, "/api/v1/tasks", token, map[string]any{"title": "mine", "date": "2026-03-02"})
	require.Equal(t, http.StatusCreated, rr.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev live.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, live.CollectionTasks, ev.Collection)
	assert.Equal(t, live.ActionCreated, ev.Action)
	assert.Equal(t, userID, ev.UserID)
	assert.Equal(t, decode[map[string]any](t, rr)["id"], ev.ID)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return a.hub.Subscribers(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLiveStreamRejectsMissingToken(t *testing.T) {
	a := newTestAPI(t)
	srv := httptest.NewServer(a.router)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/live", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
