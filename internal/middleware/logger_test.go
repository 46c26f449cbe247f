package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daypilot/backend/internal/types"
)

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	userID := uuid.New()

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/tasks/:id", func(c *gin.Context) {
		c.Set(ContextClaims, &types.TokenClaims{UserID: userID})
		c.Status(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks/42", nil))

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "/tasks/:id", entry.Data["path"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, userID, entry.Data["user_id"])
}
