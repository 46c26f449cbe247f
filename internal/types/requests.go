package types

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title     string  `json:"title" binding:"required,max=200"`
	Notes     *string `json:"notes"`
	Date      string  `json:"date" binding:"required"`
	Time      *string `json:"time"`
	Priority  bool    `json:"priority"`
	Category  string  `json:"category"`
	Completed bool    `json:"completed"`
	Repeat    *string `json:"repeat"`
}

// UpdateTaskRequest represents a partial task update
type UpdateTaskRequest struct {
	Title     *string `json:"title" binding:"omitempty,max=200"`
	Notes     *string `json:"notes"`
	Date      *string `json:"date"`
	Time      *string `json:"time"`
	Priority  *bool   `json:"priority"`
	Category  *string `json:"category"`
	Completed *bool   `json:"completed"`
	Repeat    *string `json:"repeat"`
}

// CompleteRequest sets the completed flag. Version is only checked for
// routine blocks.
type CompleteRequest struct {
	Completed *bool `json:"completed" binding:"required"`
	Version   int   `json:"version"`
}

// PriorityRequest sets the priority flag. Version is only checked for
// routine blocks.
type PriorityRequest struct {
	Priority *bool `json:"priority" binding:"required"`
	Version  int   `json:"version"`
}

// PurchasedRequest sets a shopping item's purchased flag.
type PurchasedRequest struct {
	Purchased *bool `json:"purchased" binding:"required"`
}

// NeedToBuyRequest sets a reminder's need-to-buy flag.
type NeedToBuyRequest struct {
	NeedToBuy *bool `json:"need_to_buy" binding:"required"`
}

// UpdateBlockRequest edits one routine block. Version must match the stored
// block or the update is rejected. Lock state is fixed by the default
// timeline and cannot be changed.
type UpdateBlockRequest struct {
	Version   int     `json:"version" binding:"required,min=1"`
	Title     *string `json:"title" binding:"omitempty,min=1,max=200"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Notes     *string `json:"notes"`
	Priority  *bool   `json:"priority"`
	Completed *bool   `json:"completed"`
}

// AddBlockRequest appends a user block to a routine.
type AddBlockRequest struct {
	Title     string  `json:"title" binding:"required,max=200"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   string  `json:"end_time" binding:"required"`
	Type      string  `json:"type"`
	Notes     *string `json:"notes"`
	Priority  bool    `json:"priority"`
}

// ManualNutrition is user-entered per-unit nutrition for a food the
// reference table does not know.
type ManualNutrition struct {
	Protein  float64 `json:"protein" binding:"min=0"`
	Calories float64 `json:"calories" binding:"min=0"`
}

// MenuItemRequest represents the body for creating or replacing a menu item
type MenuItemRequest struct {
	FoodName string           `json:"food_name"`
	Quantity float64          `json:"quantity"`
	Unit     string           `json:"unit"`
	Time     string           `json:"time"`
	Notes    *string          `json:"notes"`
	Manual   *ManualNutrition `json:"manual_nutrition"`
}

// CalculateRequest asks for nutrition without saving anything.
type CalculateRequest struct {
	FoodName string  `json:"food_name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit" binding:"required"`
}

// CustomFoodRequest defines a user per-100g food.
type CustomFoodRequest struct {
	Name         string  `json:"name" binding:"required,max=200"`
	Protein      float64 `json:"protein" binding:"min=0"`
	Calories     float64 `json:"calories" binding:"min=0"`
	DefaultUnit  string  `json:"default_unit"`
	GramsPerUnit float64 `json:"grams_per_unit" binding:"min=0"`
}

// MealRequest represents the body for creating a meal
type MealRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Description *string  `json:"description"`
	MealType    string   `json:"meal_type" binding:"required"`
	Date        string   `json:"date" binding:"required"`
	Time        string   `json:"time"`
	ImageURL    *string  `json:"image_url"`
	Calories    *float64 `json:"calories" binding:"omitempty,min=0"`
}

// UpdateMealRequest represents a partial meal update
type UpdateMealRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description"`
	MealType    *string  `json:"meal_type"`
	Date        *string  `json:"date"`
	Time        *string  `json:"time"`
	ImageURL    *string  `json:"image_url"`
	Calories    *float64 `json:"calories" binding:"omitempty,min=0"`
}

// ShoppingItemRequest represents the body for creating a shopping item
type ShoppingItemRequest struct {
	Name     string  `json:"name" binding:"required,max=200"`
	Quantity float64 `json:"quantity"`
	Unit     *string `json:"unit"`
	Category *string `json:"category"`
	ImageURL *string `json:"image_url"`
}

// UpdateShoppingItemRequest represents a partial shopping item update
type UpdateShoppingItemRequest struct {
	Name      *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Quantity  *float64 `json:"quantity"`
	Unit      *string  `json:"unit"`
	Category  *string  `json:"category"`
	ImageURL  *string  `json:"image_url"`
	Purchased *bool    `json:"purchased"`
}

// ReminderRequest represents the body for creating or editing a reminder
type ReminderRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Quantity *string `json:"quantity" binding:"omitempty,max=100"`
}
