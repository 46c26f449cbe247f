package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(ErrorHandler(log))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "boom", hook.LastEntry().Data["panic"])
}

func TestErrorHandlerAttachedError(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(ErrorHandler(log))
	r.GET("/", func(c *gin.Context) { _ = c.Error(errors.New("db down")) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
	assert.Len(t, hook.Entries, 1)
}

func TestErrorHandlerLeavesWrittenResponses(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := gin.New()
	r.Use(ErrorHandler(log))
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(errors.New("bad input"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "title: is required"})
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"title: is required"}`, rr.Body.String())
}
