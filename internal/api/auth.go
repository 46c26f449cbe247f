package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/service"
	"github.com/daypilot/backend/internal/types"
)

// AuthHandler handles sign-up, sign-in and the current-user lookup.
type AuthHandler struct {
	authService    service.IAuthService
	profileService service.IProfileService
	log            logrus.FieldLogger
}

func NewAuthHandler(authService service.IAuthService, profileService service.IProfileService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
		log:            log.WithField("handler", "auth"),
	}
}

// RegisterRoutes mounts the public routes. Me needs the auth middleware and is
// mounted separately.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

func (h *AuthHandler) respond(c *gin.Context, status int, user *models.User, profile *models.UserProfile) {
	token, err := h.authService.GenerateToken(&types.TokenClaims{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: profile.DisplayName,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(status, types.AuthResponse{Token: token, Profile: profile})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, profile, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.WithField("user_id", user.ID).Info("user registered")
	h.respond(c, http.StatusCreated, user, profile)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, profile, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respond(c, http.StatusOK, user, profile)
}

// Me returns the authenticated user and their profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	profile, err := h.profileService.GetProfile(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "profile": profile})
}
