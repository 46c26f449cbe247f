package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/testhelpers"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

type fixture struct {
	ctx context.Context
	db  *gorm.DB
	pub *testhelpers.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		ctx: context.Background(),
		db:  testhelpers.SetupTestDB(t),
		pub: &testhelpers.Recorder{},
	}
}

func (f *fixture) user(t *testing.T, email string) uuid.UUID {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x"}
	require.NoError(t, f.db.Create(u).Error)
	return u.ID
}
