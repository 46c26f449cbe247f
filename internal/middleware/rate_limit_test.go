package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/daypilot/backend/internal/types"
)

func limitedRouter(rl *RateLimiter, userID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(ContextClaims, &types.TokenClaims{UserID: userID})
		}
	})
	r.Use(rl.RateLimitMiddleware())
	r.POST("/uploads", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func post(r http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/uploads", nil))
	return rr
}

func TestRateLimitRequiresUser(t *testing.T) {
	log, _ := test.NewNullLogger()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	rr := post(limitedRouter(NewUploadRateLimiter(client, 1, time.Minute, log), uuid.Nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	log, hook := test.NewNullLogger()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	rr := post(limitedRouter(NewUploadRateLimiter(client, 1, time.Minute, log), uuid.New()))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "rate limit check failed", rr.Header().Get("X-RateLimit-Error"))
	assert.NotEmpty(t, hook.Entries)
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRateLimitWindow(t *testing.T) {
	client := startRedis(t)
	log, _ := test.NewNullLogger()
	rl := NewUploadRateLimiter(client, 2, time.Hour, log)
	fixed := time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	userID := uuid.New()
	r := limitedRouter(rl, userID)

	first := post(r)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusCreated, post(r).Code)

	blocked := post(r)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "2700", blocked.Header().Get("Retry-After"))

	remaining, _, err := rl.Remaining(context.Background(), userID.String())
	require.NoError(t, err)
	assert.Zero(t, remaining)

	// Another user has their own window.
	assert.Equal(t, http.StatusCreated, post(limitedRouter(rl, uuid.New())).Code)

	// The next window starts fresh.
	rl.now = func() time.Time { return fixed.Add(time.Hour) }
	assert.Equal(t, http.StatusCreated, post(r).Code)
}

func TestAuthRateLimitByClientIP(t *testing.T) {
	client := startRedis(t)
	log, _ := test.NewNullLogger()
	rl := NewAuthRateLimiter(client, 1, time.Minute, log)

	r := gin.New()
	r.Use(rl.RateLimitMiddleware())
	r.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	login := func(addr string) int {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, login("10.0.0.1:5000"))
	assert.Equal(t, http.StatusTooManyRequests, login("10.0.0.1:5001"))
	assert.Equal(t, http.StatusOK, login("10.0.0.2:5000"))
}
