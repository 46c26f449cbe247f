package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/daypilot/backend/internal/types"
)

// ContextClaims is the gin context key AuthMiddleware stores the token claims
// under.
const ContextClaims = "auth_claims"

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// a websocket handshake, so upgrade requests may pass ?token= instead.
func bearerToken(c *gin.Context) (token, problem string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := c.Query("token"); q != "" && strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			return q, ""
		}
		return "", "missing authorization header"
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.Contains(token, " ") {
		return "", "invalid authorization header format"
	}
	return token, ""
}

// AuthMiddleware rejects requests without a valid bearer token. Validator
// errors are not echoed to the client.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, problem := bearerToken(c)
		if problem != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": problem})
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil || claims == nil || claims.UserID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// Claims returns what AuthMiddleware stored for this request.
func Claims(c *gin.Context) (*types.TokenClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*types.TokenClaims)
	return claims, ok && claims != nil
}

// UserID returns the authenticated user's id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := Claims(c)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, claims.UserID != uuid.Nil
}
