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

// MealService handles the dated meal log.
type MealService struct {
	db  *gorm.DB
	pub live.Publisher
	log logrus.FieldLogger
}

var _ IMealService = (*MealService)(nil)

func NewMealService(db *gorm.DB, pub live.Publisher, log logrus.FieldLogger) *MealService {
	return &MealService{db: db, pub: pub, log: log.WithField("service", "meals")}
}

func checkMealType(mealType string) error {
	if !oneOf(mealType, models.MealTypes) {
		return invalid("meal_type", "must be one of %s", strings.Join(models.MealTypes, ", "))
	}
	return nil
}

func checkCalories(calories *float64) error {
	if calories != nil && *calories < 0 {
		return invalid("calories", "cannot be negative")
	}
	return nil
}

// List returns one date's meals by time, or every meal newest date first.
func (s *MealService) List(ctx context.Context, userID uuid.UUID, date string) ([]models.Meal, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if date != "" {
		if err := checkDate("date", date); err != nil {
			return nil, err
		}
		q = q.Where("date = ?", date).Order("time asc")
	} else {
		q = q.Order("date desc").Order("time asc")
	}

	var meals []models.Meal
	if err := q.Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return meals, nil
}

// Create logs a meal. Without a time the meal type's usual time is used.
func (s *MealService) Create(ctx context.Context, userID uuid.UUID, req *types.MealRequest) (*models.Meal, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if err := checkMealType(req.MealType); err != nil {
		return nil, err
	}
	if err := checkDate("date", req.Date); err != nil {
		return nil, err
	}
	tm := req.Time
	if tm == "" {
		tm = models.MealTimeDefaults[req.MealType]
	} else if err := checkTime("time", tm); err != nil {
		return nil, err
	}
	if err := checkCalories(req.Calories); err != nil {
		return nil, err
	}

	meal := models.Meal{
		UserID:      userID,
		Name:        name,
		Description: emptyToNil(deref(req.Description)),
		MealType:    req.MealType,
		Date:        req.Date,
		Time:        tm,
		ImageURL:    emptyToNil(deref(req.ImageURL)),
		Calories:    req.Calories,
	}
	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}

	publish(s.pub, userID, live.CollectionMeals, live.ActionCreated, meal.ID.String(), meal)
	return &meal, nil
}

func (s *MealService) Update(ctx context.Context, userID, id uuid.UUID, req *types.UpdateMealRequest) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&meal).Error; err != nil {
		return nil, notFound("get meal", err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "cannot be empty")
		}
		meal.Name = name
	}
	if req.Description != nil {
		meal.Description = emptyToNil(*req.Description)
	}
	if req.MealType != nil {
		if err := checkMealType(*req.MealType); err != nil {
			return nil, err
		}
		meal.MealType = *req.MealType
	}
	if req.Date != nil {
		if err := checkDate("date", *req.Date); err != nil {
			return nil, err
		}
		meal.Date = *req.Date
	}
	if req.Time != nil {
		if err := checkTime("time", *req.Time); err != nil {
			return nil, err
		}
		meal.Time = *req.Time
	}
	if req.ImageURL != nil {
		meal.ImageURL = emptyToNil(*req.ImageURL)
	}
	if req.Calories != nil {
		if err := checkCalories(req.Calories); err != nil {
			return nil, err
		}
		meal.Calories = req.Calories
	}

	if err := s.db.WithContext(ctx).Save(&meal).Error; err != nil {
		return nil, fmt.Errorf("update meal: %w", err)
	}
	publish(s.pub, userID, live.CollectionMeals, live.ActionUpdated, meal.ID.String(), meal)
	return &meal, nil
}

func (s *MealService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.Meal{})
	if res.Error != nil {
		return fmt.Errorf("delete meal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete meal: %w", ErrNotFound)
	}
	publish(s.pub, userID, live.CollectionMeals, live.ActionDeleted, id.String(), nil)
	return nil
}

// ByType groups a date's meals under every meal type, empty ones included.
func (s *MealService) ByType(ctx context.Context, userID uuid.UUID, date string) (map[string][]models.Meal, error) {
	if date == "" {
		return nil, invalid("date", "is required")
	}
	meals, err := s.List(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.Meal, len(models.MealTypes))
	for _, t := range models.MealTypes {
		out[t] = []models.Meal{}
	}
	for _, m := range meals {
		out[m.MealType] = append(out[m.MealType], m)
	}
	return out, nil
}
