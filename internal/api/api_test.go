package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/middleware"
	"github.com/daypilot/backend/internal/nutrition"
	"github.com/daypilot/backend/internal/service"
	"github.com/daypilot/backend/internal/testhelpers"
	"github.com/daypilot/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	hub    *live.Hub
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	log, _ := testhelpers.Logger()
	hub := live.NewHub(0)

	auth := service.NewAuthService(db, "test-secret", time.Hour, log)
	profiles := service.NewProfileService(db, hub, log)
	authHandler := NewAuthHandler(auth, profiles, log)

	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	NewHealthHandler("test", nil).RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(auth))
	protected.GET("/auth/me", authHandler.Me)
	NewProfileHandler(profiles, log).RegisterRoutes(protected)
	NewTaskHandler(service.NewTaskService(db, hub, log), log).RegisterRoutes(protected)
	NewRoutineHandler(service.NewRoutineService(db, hub, log), log).RegisterRoutes(protected)
	NewMenuHandler(service.NewMenuService(db, nil, nutrition.MatchFirstInOrder, hub, log), log).RegisterRoutes(protected)
	NewMealHandler(service.NewMealService(db, hub, log), log).RegisterRoutes(protected)
	NewShoppingHandler(service.NewShoppingService(db, hub, log), log).RegisterRoutes(protected)
	NewUploadHandler(service.NewUploadService(nil, 0, hub, log), nil, log).RegisterRoutes(protected)
	NewLiveHandler(hub, []string{"*"}, log).RegisterRoutes(protected)

	return &testAPI{t: t, db: db, hub: hub, router: r}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
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
	a.router.ServeHTTP(rr, req)
	return rr
}

// signUp registers a user and returns its token and id.
func (a *testAPI) signUp(email string) (string, uuid.UUID) {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/v1/auth/register", "", types.RegisterRequest{
		Email: email, Password: "secret123", DisplayName: "Tester",
	})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())

	var res types.AuthResponse
	require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.NotEmpty(a.t, res.Token)
	return res.Token, res.Profile.UserID
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "healthy")
}

func TestReady(t *testing.T) {
	r := gin.New()
	NewHealthHandler("test", map[string]Pinger{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	}).RegisterRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"checks":{"database":"ok","redis":"connection refused"}}`, rr.Body.String())
}

func TestAuthFlow(t *testing.T) {
	a := newTestAPI(t)
	token, userID := a.signUp("ada@example.com")

	rr := a.do(http.MethodPost, "/api/v1/auth/register", "", types.RegisterRequest{
		Email: "ADA@example.com", Password: "secret123", DisplayName: "Again",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(http.MethodPost, "/api/v1/auth/login", "", types.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = a.do(http.MethodPost, "/api/v1/auth/login", "", types.LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, decode[types.AuthResponse](t, rr).Token)

	rr = a.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), userID.String())
	assert.NotContains(t, rr.Body.String(), "password")

	rr = a.do(http.MethodPut, "/api/v1/profile", token, map[string]string{"photo_url": "https://cdn/p.png"})
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]any](t, rr)
	assert.Equal(t, "https://cdn/p.png", body["photo_url"])
	assert.Equal(t, "Tester", body["display_name"])

	assert.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/v1/profile/logout", token, nil).Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newTestAPI(t)

	for _, path := range []string{"/api/v1/tasks", "/api/v1/menu", "/api/v1/profile", "/api/v1/routines/2026-03-02"} {
		assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, path, "", nil).Code, path)
		assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, path, "garbage", nil).Code, path)
	}
}

func TestTaskEndpoints(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp("tasks@example.com")
	otherToken, _ := a.signUp("other@example.com")

	rr := a.do(http.MethodPost, "/api/v1/tasks", token, map[string]any{
		"title": "Read book", "date": "2026-03-02", "time": "09:30", "category": "learn",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	task := decode[map[string]any](t, rr)
	id := task["id"].(string)

	rr = a.do(http.MethodPost, "/api/v1/tasks", token, map[string]any{"title": "x", "date": "soon"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "date", decode[ErrorResponse](t, rr).Field)

	rr = a.do(http.MethodGet, "/api/v1/tasks?date=2026-03-02", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)

	rr = a.do(http.MethodGet, "/api/v1/tasks/learn", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)

	rr = a.do(http.MethodGet, "/api/v1/tasks/grouped?date=2026-03-02", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	groups := decode[map[string][]map[string]any](t, rr)
	assert.Len(t, groups["morning"], 1)

	rr = a.do(http.MethodPost, "/api/v1/tasks/"+id+"/complete", token, map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode[map[string]any](t, rr)["completed"])

	rr = a.do(http.MethodPost, "/api/v1/tasks/"+id+"/complete", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/tasks/"+id, otherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/v1/tasks/"+id, otherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/tasks/not-a-uuid", token, nil).Code)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/v1/tasks/"+id, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/v1/tasks/"+id, token, nil).Code)
}

func TestRoutineEndpoints(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp("routine@example.com")
	base := "/api/v1/routines/2026-03-02"

	rr := a.do(http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Tatkal Booking Work")

	rr = a.do(http.MethodDelete, base+"/blocks/2026-03-02_block_0", token, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, service.ErrBlockLocked.Error(), decode[ErrorResponse](t, rr).Error)

	// Lock state is not part of the update body; a locked block stays locked.
	sleep := base + "/blocks/2026-03-02_block_10"
	rr = a.do(http.MethodPatch, sleep, token, map[string]any{"version": 1, "is_locked": false, "completed": true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"is_locked":true`)
	rr = a.do(http.MethodDelete, sleep, token, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = a.do(http.MethodPost, base+"/blocks/2026-03-02_block_3/complete", token, map[string]any{"completed": true, "version": 1})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = a.do(http.MethodPatch, base+"/blocks/2026-03-02_block_3", token, map[string]any{"version": 1, "notes": "stale"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = a.do(http.MethodGet, base+"/stats", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"total":11,"completed":2,"progress":18}`, rr.Body.String())

	rr = a.do(http.MethodGet, base+"/current?at=18:15", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Gym Time")

	rr = a.do(http.MethodPost, base+"/blocks", token, map[string]any{"title": "Reading", "start_time": "17:00", "end_time": "17:30"})
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = a.do(http.MethodGet, "/api/v1/routines/someday", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMenuEndpoints(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp("menu@example.com")

	rr := a.do(http.MethodPost, "/api/v1/menu", token, types.MenuItemRequest{
		FoodName: "Egg", Quantity: 2, Unit: "piece", Time: "08:00",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	known := decode[map[string]any](t, rr)
	assert.Equal(t, false, known["nutrition_unknown"])
	assert.Equal(t, 12.0, known["total_protein"])
	assert.Equal(t, "egg", known["matched_key"])

	rr = a.do(http.MethodPost, "/api/v1/menu", token, types.MenuItemRequest{
		FoodName: "zzz mystery", Quantity: 1, Unit: "bowl", Time: "20:00",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, true, decode[map[string]any](t, rr)["nutrition_unknown"])

	rr = a.do(http.MethodPost, "/api/v1/menu", token, types.MenuItemRequest{FoodName: "egg", Quantity: 0, Unit: "piece", Time: "08:00"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "quantity", decode[ErrorResponse](t, rr).Field)

	rr = a.do(http.MethodGet, "/api/v1/menu", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	daily := decode[map[string]any](t, rr)
	assert.Len(t, daily["items"], 2)
	assert.Equal(t, map[string]any{"total_protein": 12.0, "total_calories": 140.0}, daily["totals"])

	rr = a.do(http.MethodGet, "/api/v1/nutrition/lookup?food=zzz", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, decode[map[string]any](t, rr)["found"])

	rr = a.do(http.MethodPost, "/api/v1/nutrition/calculate", token, types.CalculateRequest{FoodName: "rice", Quantity: 1, Unit: "cup"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = a.do(http.MethodGet, "/api/v1/nutrition/units", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "100g")

	rr = a.do(http.MethodPost, "/api/v1/nutrition/custom-foods", token, types.CustomFoodRequest{Name: "Protein bar", Protein: 30, Calories: 350})
	require.Equal(t, http.StatusCreated, rr.Code)
	food := decode[map[string]any](t, rr)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/v1/nutrition/custom-foods/"+food["id"].(string), token, nil).Code)
}

func TestMealAndShoppingEndpoints(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp("kitchen@example.com")

	rr := a.do(http.MethodPost, "/api/v1/meals", token, types.MealRequest{Name: "oats", MealType: "breakfast", Date: "2026-03-02"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "08:00", decode[map[string]any](t, rr)["time"])

	rr = a.do(http.MethodGet, "/api/v1/meals/by-type?date=2026-03-02", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[map[string][]any](t, rr)["breakfast"], 1)

	rr = a.do(http.MethodPost, "/api/v1/shopping/items", token, map[string]any{"name": "milk", "quantity": 2})
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[map[string]any](t, rr)["id"].(string)

	rr = a.do(http.MethodPost, "/api/v1/shopping/items/"+id+"/purchased", token, map[string]bool{"purchased": true})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = a.do(http.MethodGet, "/api/v1/shopping/items/stats", token, nil)
	assert.JSONEq(t, `{"total":1,"purchased":1,"unpurchased":0}`, rr.Body.String())

	rr = a.do(http.MethodPost, "/api/v1/shopping/items/clear-purchased", token, nil)
	assert.JSONEq(t, `{"cleared":1}`, rr.Body.String())

	rr = a.do(http.MethodPost, "/api/v1/shopping/reminders", token, map[string]string{"name": "soap", "quantity": "2 bars"})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, true, decode[map[string]any](t, rr)["need_to_buy"])

	rr = a.do(http.MethodPost, "/api/v1/shopping/reminders", token, map[string]string{"quantity": "1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadWithoutStorage(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp("media@example.com")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "a.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/uploads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRespondError(t *testing.T) {
	log, hook := testhelpers.Logger()

	tests := []struct {
		err    error
		status int
	}{
		{&service.ValidationError{Field: "unit", Message: "is not supported"}, http.StatusBadRequest},
		{fmt.Errorf("get task: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("update block: %w", service.ErrVersionConflict), http.StatusConflict},
		{service.ErrUploadsDisabled, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(c, log, tt.err)
			assert.Equal(t, tt.status, rr.Code)
			assert.NotContains(t, rr.Body.String(), "disk on fire")
		})
	}
	assert.Len(t, hook.Entries, 1)
}
