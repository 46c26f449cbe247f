package models

import (
	"github.com/google/uuid"

	"github.com/daypilot/backend/internal/nutrition"
)

// Where a menu item's saved nutrition came from.
const (
	SourceReference = "reference"
	SourceCustom    = "custom"
	SourceManual    = "manual"
	SourceUnknown   = "unknown"
)

// MenuItem is a recurring entry in the user's daily menu. Nutrition fields are
// a snapshot taken when the item was saved; reads never recompute them.
// ReferenceBasis says what the Reference values describe: per 100g for table
// and custom foods, per unit for manual entries, empty when unknown.
type MenuItem struct {
	Base
	UserID            uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	FoodName          string          `gorm:"size:200;not null" json:"food_name"`
	Quantity          float64         `gorm:"not null" json:"quantity"`
	Unit              string          `gorm:"size:20;not null" json:"unit"`
	Time              string          `gorm:"size:5;not null" json:"time"`
	Notes             *string         `gorm:"type:text" json:"notes"`
	TotalProtein      float64         `gorm:"not null;default:0" json:"total_protein"`
	TotalCalories     float64         `gorm:"not null;default:0" json:"total_calories"`
	ReferenceProtein  float64         `gorm:"not null;default:0" json:"reference_protein"`
	ReferenceCalories float64         `gorm:"not null;default:0" json:"reference_calories"`
	ReferenceBasis    nutrition.Basis `gorm:"size:10" json:"reference_basis,omitempty"`
	MatchedKey        string          `gorm:"size:200" json:"matched_key,omitempty"`
	IsFromReference   bool            `gorm:"not null;default:false" json:"is_from_reference"`
	NutritionSource   string          `gorm:"size:20;not null;default:'unknown'" json:"nutrition_source"`
}

// NutritionTotals returns the saved snapshot.
func (m MenuItem) NutritionTotals() (float64, float64) {
	return m.TotalProtein, m.TotalCalories
}

// CustomFood is a user-defined per-100g reference entry.
type CustomFood struct {
	Base
	UserID       uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_custom_food_user_name" json:"user_id"`
	Name         string    `gorm:"size:200;not null;uniqueIndex:idx_custom_food_user_name" json:"name"`
	Protein      float64   `gorm:"not null" json:"protein"`
	Calories     float64   `gorm:"not null" json:"calories"`
	DefaultUnit  string    `gorm:"size:20;not null" json:"default_unit"`
	GramsPerUnit float64   `gorm:"not null;default:0" json:"grams_per_unit"`
}
