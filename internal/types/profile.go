package types

import (
	"github.com/daypilot/backend/internal/models"
)

// RegisterRequest represents the request body for sign-up
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
}

// LoginRequest represents the request body for sign-in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token   string              `json:"token"`
	Profile *models.UserProfile `json:"profile"`
}

// UpdateProfileRequest merges only the fields that are present.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=1,max=100"`
	PhotoURL    *string `json:"photo_url" binding:"omitempty,max=512"`
	VideoURL    *string `json:"video_url" binding:"omitempty,max=512"`
}
