package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/types"
)

// ProfileService handles user profile operations
type ProfileService struct {
	db  *gorm.DB
	pub live.Publisher
	log logrus.FieldLogger
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB, pub live.Publisher, log logrus.FieldLogger) *ProfileService {
	return &ProfileService{
		db:  db,
		pub: pub,
		log: log.WithField("service", "profile"),
	}
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFound("get profile", err)
	}
	return &profile, nil
}

// UpdateProfile merges the fields present in req. An empty photo or video URL
// clears it.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.UserProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			return nil, invalid("display_name", "cannot be empty")
		}
		profile.DisplayName = name
	}
	if req.PhotoURL != nil {
		profile.PhotoURL = emptyToNil(*req.PhotoURL)
	}
	if req.VideoURL != nil {
		profile.VideoURL = emptyToNil(*req.VideoURL)
	}

	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	publish(s.pub, userID, live.CollectionProfile, live.ActionUpdated, profile.ID.String(), profile)
	return profile, nil
}

// Logout is stateless; the client drops its token.
func (s *ProfileService) Logout(ctx context.Context, userID uuid.UUID) error {
	s.log.WithField("user_id", userID).Debug("user logged out")
	return nil
}
