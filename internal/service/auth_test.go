package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/testhelpers"
	"github.com/daypilot/backend/internal/types"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	log, _ := testhelpers.Logger()
	svc := NewAuthService(f.db, "test-secret", time.Hour, log)

	user, profile, err := svc.Register(f.ctx, &types.RegisterRequest{
		Email:       "  Ada@Example.com ",
		Password:    "secret1",
		DisplayName: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.Equal(t, user.ID, profile.UserID)
	assert.Equal(t, "Ada", profile.DisplayName)

	got, gotProfile, err := svc.Login(f.ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, profile.ID, gotProfile.ID)

	_, _, err = svc.Login(f.ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(f.ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	log, _ := testhelpers.Logger()
	svc := NewAuthService(f.db, "test-secret", time.Hour, log)

	tests := []struct {
		name  string
		req   types.RegisterRequest
		field string
	}{
		{"no email", types.RegisterRequest{Password: "secret1", DisplayName: "A"}, "email"},
		{"short password", types.RegisterRequest{Email: "a@b.c", Password: "123", DisplayName: "A"}, "password"},
		{"no name", types.RegisterRequest{Email: "a@b.c", Password: "secret1", DisplayName: " "}, "display_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(f.ctx, &tt.req)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	log, _ := testhelpers.Logger()
	svc := NewAuthService(f.db, "test-secret", time.Hour, log)

	req := &types.RegisterRequest{Email: "dup@example.com", Password: "secret1", DisplayName: "Dup"}
	_, _, err := svc.Register(f.ctx, req)
	require.NoError(t, err)

	_, _, err = svc.Register(f.ctx, req)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestTokenRoundTrip(t *testing.T) {
	log, _ := testhelpers.Logger()
	svc := NewAuthService(nil, "test-secret", time.Hour, log)
	userID := uuid.New()

	token, err := svc.GenerateToken(&types.TokenClaims{UserID: userID, Email: "t@example.com", DisplayName: "tester"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "tester", claims.DisplayName)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateTokenRejects(t *testing.T) {
	log, _ := testhelpers.Logger()
	svc := NewAuthService(nil, "test-secret", time.Hour, log)
	other := NewAuthService(nil, "other-secret", time.Hour, log)
	expired := NewAuthService(nil, "test-secret", time.Nanosecond, log)

	foreign, err := other.GenerateToken(&types.TokenClaims{UserID: uuid.New()})
	require.NoError(t, err)
	stale, err := expired.GenerateToken(&types.TokenClaims{UserID: uuid.New()})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &types.TokenClaims{UserID: uuid.New()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "invalid.token",
		"wrong secret": foreign,
		"expired":      stale,
		"alg none":     noneAlg,
	} {
		t.Run(name, func(t *testing.T) {
			claims, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestUpdateProfileMerges(t *testing.T) {
	f := newFixture(t)
	log, _ := testhelpers.Logger()
	auth := NewAuthService(f.db, "test-secret", time.Hour, log)
	svc := NewProfileService(f.db, f.pub, log)

	user, _, err := auth.Register(f.ctx, &types.RegisterRequest{Email: "p@example.com", Password: "secret1", DisplayName: "Pat"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(f.ctx, user.ID, &types.UpdateProfileRequest{PhotoURL: strPtr("https://cdn/p.png")})
	require.NoError(t, err)
	assert.Equal(t, "Pat", updated.DisplayName)
	require.NotNil(t, updated.PhotoURL)
	assert.Equal(t, "https://cdn/p.png", *updated.PhotoURL)

	updated, err = svc.UpdateProfile(f.ctx, user.ID, &types.UpdateProfileRequest{DisplayName: strPtr("Patricia"), PhotoURL: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Patricia", updated.DisplayName)
	assert.Nil(t, updated.PhotoURL)

	ev := f.pub.Last()
	assert.Equal(t, live.CollectionProfile, ev.Collection)
	assert.Equal(t, user.ID, ev.UserID)

	_, err = svc.UpdateProfile(f.ctx, user.ID, &types.UpdateProfileRequest{DisplayName: strPtr("")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.GetProfile(f.ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
