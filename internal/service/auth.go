package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/types"
)

const (
	minPasswordLength = 6
	tokenIssuer       = "daypilot"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	tokenTTL  time.Duration
	log       logrus.FieldLogger
}

// Ensure AuthService implements IAuthService
var _ IAuthService = (*AuthService)(nil)

func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, log logrus.FieldLogger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log.WithField("service", "auth"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and their profile in one transaction.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, *models.UserProfile, error) {
	email := normalizeEmail(req.Email)
	displayName := strings.TrimSpace(req.DisplayName)
	switch {
	case email == "":
		return nil, nil, invalid("email", "is required")
	case len(req.Password) < minPasswordLength:
		return nil, nil, invalid("password", "must be at least %d characters", minPasswordLength)
	case displayName == "":
		return nil, nil, invalid("display_name", "is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Email: email, PasswordHash: string(hashedPassword)}
	profile := models.UserProfile{DisplayName: displayName, Email: email}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserExists
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(&profile).Error
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("register user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return &user, &profile, nil
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *models.UserProfile, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		return nil, nil, notFound("find profile", err)
	}

	return &user, &profile, nil
}

// GenerateToken signs claims, filling in the registered fields.
func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   claims.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// TokenFor issues a token for a freshly authenticated user.
func (s *AuthService) TokenFor(user *models.User, profile *models.UserProfile) (string, error) {
	return s.GenerateToken(&types.TokenClaims{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: profile.DisplayName,
	})
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, notFound("find user", err)
	}
	return &user, nil
}
