package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the id and timestamps every owned document shares.
type Base struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type User struct {
	Base
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
}

type UserProfile struct {
	Base
	UserID      uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	DisplayName string    `gorm:"size:100;not null" json:"display_name"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	PhotoURL    *string   `gorm:"size:512" json:"photo_url"`
	VideoURL    *string   `gorm:"size:512" json:"video_url"`
}
