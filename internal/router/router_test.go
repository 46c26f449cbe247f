package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/nutrition"
	"github.com/daypilot/backend/internal/service"
	"github.com/daypilot/backend/internal/testhelpers"
)

func setup(t *testing.T, origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)
	log, _ := testhelpers.Logger()
	hub := live.NewHub(0)

	return SetupRouter(Dependencies{
		Auth:        service.NewAuthService(db, "secret", time.Hour, log),
		Profiles:    service.NewProfileService(db, hub, log),
		Tasks:       service.NewTaskService(db, hub, log),
		Routines:    service.NewRoutineService(db, hub, log),
		Menu:        service.NewMenuService(db, nil, nutrition.MatchFirstInOrder, hub, log),
		Meals:       service.NewMealService(db, hub, log),
		Shopping:    service.NewShoppingService(db, hub, log),
		Uploads:     service.NewUploadService(nil, 0, hub, log),
		Hub:         hub,
		CORSOrigins: origins,
		Log:         log,
	})
}

func TestRoutesRegistered(t *testing.T) {
	r := setup(t, nil)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, route := range []string{
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/me",
		"GET /api/v1/tasks/grouped",
		"PATCH /api/v1/routines/:date/blocks/:blockId",
		"POST /api/v1/routines/:date/reset",
		"GET /api/v1/menu",
		"POST /api/v1/nutrition/calculate",
		"DELETE /api/v1/nutrition/custom-foods/:id",
		"GET /api/v1/meals/by-type",
		"POST /api/v1/shopping/reminders/:id/need-to-buy",
		"POST /api/v1/uploads",
		"GET /api/v1/live",
		"GET /health",
	} {
		assert.True(t, registered[route], route)
	}
}

func TestCORS(t *testing.T) {
	r := setup(t, []string{"https://app.daypilot.dev"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
	req.Header.Set("Origin", "https://app.daypilot.dev")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://app.daypilot.dev", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCORSConfigWildcard(t *testing.T) {
	cfg := corsConfig([]string{"*"})
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.Empty(t, cfg.AllowOrigins)
}
