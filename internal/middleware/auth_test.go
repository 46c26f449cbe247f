package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/daypilot/backend/internal/types"
)

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

func authRouter(v TokenValidator) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(v))
	r.GET("/me", func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "name": claims.DisplayName})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	v := &mockValidator{}
	v.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: userID, DisplayName: "Ada"}, nil)
	v.On("ValidateToken", "bad").Return(nil, errors.New("signature is invalid"))
	v.On("ValidateToken", "anonymous").Return(&types.TokenClaims{}, nil)
	r := authRouter(v)

	tests := []struct {
		name   string
		header string
		query  string
		ws     bool
		status int
	}{
		{"valid", "Bearer good", "", false, http.StatusOK},
		{"missing", "", "", false, http.StatusUnauthorized},
		{"lowercase scheme", "bearer good", "", false, http.StatusOK},
		{"wrong scheme", "Basic good", "", false, http.StatusUnauthorized},
		{"extra fields", "Bearer good extra", "", false, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", "", false, http.StatusUnauthorized},
		{"token without user", "Bearer anonymous", "", false, http.StatusUnauthorized},
		{"query token on websocket", "", "?token=good", true, http.StatusOK},
		{"query token on plain request", "", "?token=good", false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.ws {
				req.Header.Set("Upgrade", "websocket")
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, rr.Body.String(), userID.String())
				assert.Contains(t, rr.Body.String(), "Ada")
			}
		})
	}
}

func TestAuthMiddlewareHidesValidatorError(t *testing.T) {
	v := &mockValidator{}
	v.On("ValidateToken", "bad").Return(nil, errors.New("signature is invalid"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rr := httptest.NewRecorder()
	authRouter(v).ServeHTTP(rr, req)

	assert.NotContains(t, rr.Body.String(), "signature")
}
