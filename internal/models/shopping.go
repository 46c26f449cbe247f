package models

import "github.com/google/uuid"

// ShoppingCategories are the accepted item categories. Items without one
// are shown under "Other".
var ShoppingCategories = []string{
	"Fruits & Vegetables",
	"Dairy & Eggs",
	"Meat & Seafood",
	"Bakery",
	"Pantry",
	"Frozen",
	"Beverages",
	"Snacks",
	"Other",
}

// DefaultShoppingCategory is used when an item has no category.
const DefaultShoppingCategory = "Other"

// ShoppingUnits are the accepted item units.
var ShoppingUnits = []string{
	"pcs", "kg", "g", "lbs", "oz", "liters", "ml", "dozen",
	"pack", "box", "bag", "bottle", "can",
}

type ShoppingItem struct {
	Base
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Quantity  float64   `gorm:"not null" json:"quantity"`
	Unit      *string   `gorm:"size:20" json:"unit,omitempty"`
	Category  string    `gorm:"size:50;not null;default:'Other'" json:"category"`
	ImageURL  *string   `gorm:"size:512" json:"image_url,omitempty"`
	Purchased bool      `gorm:"not null;default:false" json:"purchased"`
}

// ShoppingReminder is a quick "remember to buy" note with free-text quantity.
type ShoppingReminder struct {
	Base
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Quantity  string    `gorm:"size:100" json:"quantity"`
	NeedToBuy bool      `gorm:"not null" json:"need_to_buy"`
}
