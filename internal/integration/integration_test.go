package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/daypilot/backend/internal/api"
	"github.com/daypilot/backend/internal/database"
	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/nutrition"
	"github.com/daypilot/backend/internal/router"
	"github.com/daypilot/backend/internal/service"
	"github.com/daypilot/backend/internal/testhelpers"
	"github.com/daypilot/backend/internal/types"
)

const day = "2026-03-02"

type app struct {
	t        *testing.T
	handler  http.Handler
	routines *service.RoutineService
}

func newApp(t *testing.T, db *gorm.DB) *app {
	gin.SetMode(gin.TestMode)
	log, _ := testhelpers.Logger()
	hub := live.NewHub(0)
	routines := service.NewRoutineService(db, hub, log)

	handler := router.SetupRouter(router.Dependencies{
		Auth:     service.NewAuthService(db, "integration-secret", time.Hour, log),
		Profiles: service.NewProfileService(db, hub, log),
		Tasks:    service.NewTaskService(db, hub, log),
		Routines: routines,
		Menu:     service.NewMenuService(db, nil, nutrition.MatchLongestKey, hub, log),
		Meals:    service.NewMealService(db, hub, log),
		Shopping: service.NewShoppingService(db, hub, log),
		Uploads:  service.NewUploadService(nil, 0, hub, log),
		Hub:      hub,
		Checks: map[string]api.Pinger{
			"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
		},
		Log: log,
	})
	return &app{t: t, handler: handler, routines: routines}
}

func (a *app) call(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *app) register(email string) (string, uuid.UUID) {
	a.t.Helper()
	rr := a.call(http.MethodPost, "/api/v1/auth/register", "", types.RegisterRequest{
		Email: email, Password: "password1", DisplayName: "Integration",
	})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	var res types.AuthResponse
	require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &res))
	return res.Token, res.Profile.UserID
}

func TestPostgresEndToEnd(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	a := newApp(t, db)

	assert.Equal(t, http.StatusOK, a.call(http.MethodGet, "/ready", "", nil).Code)

	token, _ := a.register("e2e@example.com")

	rr := a.call(http.MethodGet, "/api/v1/routines/"+day, token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = a.call(http.MethodPost, "/api/v1/menu", token, types.MenuItemRequest{
		FoodName: "chicken breast", Quantity: 1.5, Unit: "100g", Time: "13:00",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = a.call(http.MethodGet, "/api/v1/menu", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var daily struct {
		Totals nutrition.DailyTotals `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &daily))
	assert.Equal(t, nutrition.DailyTotals{TotalProtein: 46.5, TotalCalories: 248}, daily.Totals)

	rr = a.call(http.MethodPost, "/api/v1/tasks", token, map[string]any{"title": "Ship it", "date": day, "time": "15:00"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = a.call(http.MethodGet, "/api/v1/tasks/grouped?date="+day, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Ship it")
}

func TestConcurrentRoutineCreationAndEdits(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	a := newApp(t, db)
	_, userID := a.register("race@example.com")
	ctx := context.Background()

	// Concurrent first reads still produce a single routine.
	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := a.routines.Get(ctx, userID, day)
			if assert.NoError(t, err) {
				ids[i] = r.ID
			}
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	// Two writers holding the same version: exactly one wins.
	blockID := day + "_block_3"
	results := make(chan error, 2)
	for _, title := range []string{"Deep work", "Email"} {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			_, err := a.routines.UpdateBlock(ctx, userID, day, blockID, &types.UpdateBlockRequest{Version: 1, Title: &title})
			results <- err
		}(title)
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, service.ErrVersionConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	// An edit on a different block is unaffected.
	done := true
	_, err := a.routines.UpdateBlock(ctx, userID, day, day+"_block_4", &types.UpdateBlockRequest{Version: 1, Completed: &done})
	assert.NoError(t, err)
}
