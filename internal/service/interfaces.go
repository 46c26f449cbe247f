package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/daypilot/backend/internal/clock"
	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/nutrition"
	"github.com/daypilot/backend/internal/routine"
	"github.com/daypilot/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, *models.UserProfile, error)
	Login(ctx context.Context, email, password string) (*models.User, *models.UserProfile, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.UserProfile, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

// ITaskService defines the interface for task operations
type ITaskService interface {
	List(ctx context.Context, userID uuid.UUID, date string) ([]models.Task, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, userID uuid.UUID, req *types.CreateTaskRequest) (*models.Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *types.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetCompleted(ctx context.Context, userID, id uuid.UUID, completed bool) (*models.Task, error)
	SetPriority(ctx context.Context, userID, id uuid.UUID, priority bool) (*models.Task, error)
	Priority(ctx context.Context, userID uuid.UUID) ([]models.Task, error)
	ByCategory(ctx context.Context, userID uuid.UUID, category string) ([]models.Task, error)
	Grouped(ctx context.Context, userID uuid.UUID, date string) (map[clock.Slot][]models.Task, error)
}

// IRoutineService defines the interface for daily routine operations
type IRoutineService interface {
	Get(ctx context.Context, userID uuid.UUID, date string) (*models.Routine, error)
	UpdateBlock(ctx context.Context, userID uuid.UUID, date, blockID string, req *types.UpdateBlockRequest) (*models.RoutineBlock, error)
	DeleteBlock(ctx context.Context, userID uuid.UUID, date, blockID string) error
	AddBlock(ctx context.Context, userID uuid.UUID, date string, req *types.AddBlockRequest) (*models.RoutineBlock, error)
	Reset(ctx context.Context, userID uuid.UUID, date string) (*models.Routine, error)
	Stats(ctx context.Context, userID uuid.UUID, date string) (routine.Stats, error)
	Current(ctx context.Context, userID uuid.UUID, date, at string) (*models.RoutineBlock, error)
}

// IMenuService defines the interface for the daily menu and nutrition lookups
type IMenuService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.MenuItem, error)
	Daily(ctx context.Context, userID uuid.UUID) (*DailyMenu, error)
	Create(ctx context.Context, userID uuid.UUID, req *types.MenuItemRequest) (*models.MenuItem, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *types.MenuItemRequest) (*models.MenuItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Lookup(ctx context.Context, userID uuid.UUID, food string) (*FoodLookup, error)
	Calculate(ctx context.Context, userID uuid.UUID, req *types.CalculateRequest) (nutrition.Result, error)
	CreateCustomFood(ctx context.Context, userID uuid.UUID, req *types.CustomFoodRequest) (*models.CustomFood, error)
	ListCustomFoods(ctx context.Context, userID uuid.UUID) ([]models.CustomFood, error)
	DeleteCustomFood(ctx context.Context, userID, id uuid.UUID) error
}

// IMealService defines the interface for meal log operations
type IMealService interface {
	List(ctx context.Context, userID uuid.UUID, date string) ([]models.Meal, error)
	Create(ctx context.Context, userID uuid.UUID, req *types.MealRequest) (*models.Meal, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *types.UpdateMealRequest) (*models.Meal, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ByType(ctx context.Context, userID uuid.UUID, date string) (map[string][]models.Meal, error)
}

// IShoppingService defines the interface for both shopping lists
type IShoppingService interface {
	ListItems(ctx context.Context, userID uuid.UUID) ([]models.ShoppingItem, error)
	CreateItem(ctx context.Context, userID uuid.UUID, req *types.ShoppingItemRequest) (*models.ShoppingItem, error)
	UpdateItem(ctx context.Context, userID, id uuid.UUID, req *types.UpdateShoppingItemRequest) (*models.ShoppingItem, error)
	DeleteItem(ctx context.Context, userID, id uuid.UUID) error
	SetPurchased(ctx context.Context, userID, id uuid.UUID, purchased bool) (*models.ShoppingItem, error)
	ClearPurchased(ctx context.Context, userID uuid.UUID) (int64, error)
	ItemsByCategory(ctx context.Context, userID uuid.UUID) (map[string][]models.ShoppingItem, error)
	ItemStats(ctx context.Context, userID uuid.UUID) (ShoppingStats, error)

	ListReminders(ctx context.Context, userID uuid.UUID) ([]models.ShoppingReminder, error)
	CreateReminder(ctx context.Context, userID uuid.UUID, name, quantity string) (*models.ShoppingReminder, error)
	UpdateReminder(ctx context.Context, userID, id uuid.UUID, req *types.ReminderRequest) (*models.ShoppingReminder, error)
	SetNeedToBuy(ctx context.Context, userID, id uuid.UUID, needToBuy bool) (*models.ShoppingReminder, error)
	DeleteReminder(ctx context.Context, userID, id uuid.UUID) error
	ClearBought(ctx context.Context, userID uuid.UUID) (int64, error)
	ReminderStats(ctx context.Context, userID uuid.UUID) (ReminderStats, error)
}

// IUploadService defines the interface for media uploads
type IUploadService interface {
	Upload(ctx context.Context, userID uuid.UUID, file *UploadFile, progress ProgressFunc) (*UploadResult, error)
	Presign(ctx context.Context, userID uuid.UUID, key string) (string, error)
}

// UploadFile is an incoming file. Body must be seekable so the size is known
// up front.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}
