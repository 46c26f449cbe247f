package models

import "github.com/google/uuid"

// Meal types.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// MealTypes lists every meal type in display order.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

// MealTimeDefaults is the time a meal gets when none is given.
var MealTimeDefaults = map[string]string{
	MealBreakfast: "08:00",
	MealLunch:     "13:00",
	MealDinner:    "19:00",
	MealSnack:     "16:00",
}

type Meal struct {
	Base
	UserID      uuid.UUID `gorm:"type:varchar(36);not null;index:idx_meal_user_date" json:"user_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	MealType    string    `gorm:"size:20;not null" json:"meal_type"`
	Date        string    `gorm:"size:10;not null;index:idx_meal_user_date" json:"date"`
	Time        string    `gorm:"size:5;not null" json:"time"`
	ImageURL    *string   `gorm:"size:512" json:"image_url,omitempty"`
	Calories    *float64  `json:"calories,omitempty"`
}
