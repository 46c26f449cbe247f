package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/daypilot/backend/internal/clock"
	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/nutrition"
	"github.com/daypilot/backend/internal/types"
)

const defaultCustomFoodUnit = "100g"

// DailyMenu is the menu as shown for a day: every item in time order, the
// summed nutrition and the items bucketed by part of the day.
type DailyMenu struct {
	Items   []models.MenuItem                `json:"items"`
	Totals  nutrition.DailyTotals            `json:"totals"`
	Grouped map[clock.Slot][]models.MenuItem `json:"grouped"`
}

// FoodLookup is what the resolver made of a free-text food name.
type FoodLookup struct {
	Query  string           `json:"query"`
	Found  bool             `json:"found"`
	Key    string           `json:"matched_key,omitempty"`
	Entry  *nutrition.Entry `json:"entry,omitempty"`
	Source string           `json:"source"`
}

// MenuService owns the recurring daily menu and the user's custom foods.
// Nutrition is resolved once, when an item is saved.
type MenuService struct {
	db       *gorm.DB
	table    *nutrition.Table
	strategy nutrition.MatchStrategy
	pub      live.Publisher
	log      logrus.FieldLogger
}

var _ IMenuService = (*MenuService)(nil)

// NewMenuService layers each user's custom foods over table. A nil table
// means the built-in one.
func NewMenuService(db *gorm.DB, table *nutrition.Table, strategy nutrition.MatchStrategy, pub live.Publisher, log logrus.FieldLogger) *MenuService {
	if table == nil {
		table = nutrition.DefaultTable()
	}
	return &MenuService{
		db:       db,
		table:    table,
		strategy: strategy,
		pub:      pub,
		log:      log.WithField("service", "menu"),
	}
}

// userCalculator builds a calculator whose table puts the user's custom foods
// ahead of the reference foods. The returned set holds the custom keys.
func (s *MenuService) userCalculator(ctx context.Context, userID uuid.UUID) (*nutrition.Calculator, map[string]bool, error) {
	foods, err := s.ListCustomFoods(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(foods) == 0 {
		return nutrition.NewCalculator(nutrition.NewResolver(s.table, s.strategy)), nil, nil
	}

	items := make([]nutrition.Item, len(foods))
	custom := make(map[string]bool, len(foods))
	for i, f := range foods {
		items[i] = nutrition.Item{Name: f.Name, Entry: nutrition.Entry{
			Protein:      f.Protein,
			Calories:     f.Calories,
			DefaultUnit:  f.DefaultUnit,
			GramsPerUnit: f.GramsPerUnit,
			Basis:        nutrition.BasisPer100g,
		}}
		custom[nutrition.NormalizeName(f.Name)] = true
	}
	table, err := s.table.Prepend(items...)
	if err != nil {
		return nil, nil, fmt.Errorf("build custom food table: %w", err)
	}
	return nutrition.NewCalculator(nutrition.NewResolver(table, s.strategy)), custom, nil
}

func validateFood(foodName string, quantity float64, unit string) error {
	switch {
	case strings.TrimSpace(foodName) == "":
		return invalid("food_name", "is required")
	case quantity <= 0:
		return invalid("quantity", "must be greater than zero")
	case !nutrition.ValidUnit(unit):
		return invalid("unit", "must be one of %s", strings.Join(nutrition.FoodUnits, ", "))
	}
	return nil
}

func validateMenuItem(req *types.MenuItemRequest) error {
	if err := validateFood(req.FoodName, req.Quantity, req.Unit); err != nil {
		return err
	}
	if req.Time == "" {
		return invalid("time", "is required")
	}
	if err := checkTime("time", req.Time); err != nil {
		return err
	}
	if m := req.Manual; m != nil && (m.Protein < 0 || m.Calories < 0) {
		return invalid("manual_nutrition", "values cannot be negative")
	}
	return nil
}

// fill snapshots nutrition onto item. A resolved food wins over manual values;
// an unresolved food without manual values is saved with zero totals.
func (s *MenuService) fill(ctx context.Context, userID uuid.UUID, item *models.MenuItem, manual *types.ManualNutrition) error {
	calc, custom, err := s.userCalculator(ctx, userID)
	if err != nil {
		return err
	}

	res := calc.Calculate(item.FoodName, item.Quantity, item.Unit)
	switch {
	case res.IsFromReference:
		item.NutritionSource = models.SourceReference
		if custom[res.MatchedKey] {
			item.NutritionSource = models.SourceCustom
		}
	case manual != nil:
		res = nutrition.Result{
			TotalProtein:      nutrition.Round1(manual.Protein * item.Quantity),
			TotalCalories:     nutrition.Round0(manual.Calories * item.Quantity),
			ReferenceProtein:  manual.Protein,
			ReferenceCalories: manual.Calories,
			Basis:             nutrition.BasisPerUnit,
		}
		item.NutritionSource = models.SourceManual
	default:
		item.NutritionSource = models.SourceUnknown
		s.log.WithFields(logrus.Fields{"user_id": userID, "food": item.FoodName}).
			Debug("food not in reference table")
	}

	item.TotalProtein = res.TotalProtein
	item.TotalCalories = res.TotalCalories
	item.ReferenceProtein = res.ReferenceProtein
	item.ReferenceCalories = res.ReferenceCalories
	item.ReferenceBasis = res.Basis
	item.MatchedKey = res.MatchedKey
	item.IsFromReference = res.IsFromReference
	return nil
}

// List returns the menu in time order.
func (s *MenuService) List(ctx context.Context, userID uuid.UUID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("time asc").Order("created_at asc").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}

// Daily returns the saved items with their totals. Nothing is recomputed.
func (s *MenuService) Daily(ctx context.Context, userID uuid.UUID) (*DailyMenu, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	grouped := map[clock.Slot][]models.MenuItem{
		clock.Morning:   {},
		clock.Afternoon: {},
		clock.Evening:   {},
	}
	for _, it := range items {
		slot := clock.SlotOf(it.Time)
		grouped[slot] = append(grouped[slot], it)
	}

	return &DailyMenu{
		Items:   items,
		Totals:  nutrition.Aggregate(items),
		Grouped: grouped,
	}, nil
}

func (s *MenuService) Create(ctx context.Context, userID uuid.UUID, req *types.MenuItemRequest) (*models.MenuItem, error) {
	if err := validateMenuItem(req); err != nil {
		return nil, err
	}

	item := models.MenuItem{
		UserID:   userID,
		FoodName: strings.TrimSpace(req.FoodName),
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Time:     req.Time,
		Notes:    emptyToNil(deref(req.Notes)),
	}
	if err := s.fill(ctx, userID, &item, req.Manual); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}

	publish(s.pub, userID, live.CollectionMenu, live.ActionCreated, item.ID.String(), item)
	return &item, nil
}

// Update replaces the item and resolves its nutrition again.
func (s *MenuService) Update(ctx context.Context, userID, id uuid.UUID, req *types.MenuItemRequest) (*models.MenuItem, error) {
	if err := validateMenuItem(req); err != nil {
		return nil, err
	}

	var item models.MenuItem
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&item).Error; err != nil {
		return nil, notFound("get menu item", err)
	}
	item.FoodName = strings.TrimSpace(req.FoodName)
	item.Quantity = req.Quantity
	item.Unit = req.Unit
	item.Time = req.Time
	item.Notes = emptyToNil(deref(req.Notes))
	if err := s.fill(ctx, userID, &item, req.Manual); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}

	publish(s.pub, userID, live.CollectionMenu, live.ActionUpdated, item.ID.String(), item)
	return &item, nil
}

func (s *MenuService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.MenuItem{})
	if res.Error != nil {
		return fmt.Errorf("delete menu item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete menu item: %w", ErrNotFound)
	}
	publish(s.pub, userID, live.CollectionMenu, live.ActionDeleted, id.String(), nil)
	return nil
}

// Lookup reports how food would resolve for this user. An unknown food is
// not an error.
func (s *MenuService) Lookup(ctx context.Context, userID uuid.UUID, food string) (*FoodLookup, error) {
	if strings.TrimSpace(food) == "" {
		return nil, invalid("food", "is required")
	}
	calc, custom, err := s.userCalculator(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &FoodLookup{Query: food, Source: models.SourceUnknown}
	m, ok := calc.Resolve(food)
	if !ok {
		return out, nil
	}
	entry := m.Entry
	out.Found = true
	out.Key = m.Key
	out.Entry = &entry
	out.Source = models.SourceReference
	if custom[m.Key] {
		out.Source = models.SourceCustom
	}
	return out, nil
}

// Calculate computes nutrition without saving anything.
func (s *MenuService) Calculate(ctx context.Context, userID uuid.UUID, req *types.CalculateRequest) (nutrition.Result, error) {
	if err := validateFood(req.FoodName, req.Quantity, req.Unit); err != nil {
		return nutrition.Result{}, err
	}
	calc, _, err := s.userCalculator(ctx, userID)
	if err != nil {
		return nutrition.Result{}, err
	}
	return calc.Calculate(req.FoodName, req.Quantity, req.Unit), nil
}

// CreateCustomFood saves a per-100g food. Saving a name the user already has
// replaces its values.
func (s *MenuService) CreateCustomFood(ctx context.Context, userID uuid.UUID, req *types.CustomFoodRequest) (*models.CustomFood, error) {
	name := nutrition.NormalizeName(req.Name)
	switch {
	case name == "":
		return nil, invalid("name", "is required")
	case req.Protein < 0 || req.Calories < 0:
		return nil, invalid("nutrition", "values cannot be negative")
	case req.GramsPerUnit < 0:
		return nil, invalid("grams_per_unit", "cannot be negative")
	}
	unit := req.DefaultUnit
	if unit == "" {
		unit = defaultCustomFoodUnit
	}
	if !nutrition.ValidUnit(unit) {
		return nil, invalid("default_unit", "must be one of %s", strings.Join(nutrition.FoodUnits, ", "))
	}

	var food models.CustomFood
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND name = ?", userID, name).First(&food).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		food.UserID = userID
		food.Name = name
		food.Protein = req.Protein
		food.Calories = req.Calories
		food.DefaultUnit = unit
		food.GramsPerUnit = req.GramsPerUnit
		return tx.Save(&food).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save custom food: %w", err)
	}

	publish(s.pub, userID, live.CollectionCustomFood, live.ActionUpdated, food.ID.String(), food)
	return &food, nil
}

// ListCustomFoods returns the user's foods oldest first, which is also the
// order they are matched in.
func (s *MenuService) ListCustomFoods(ctx context.Context, userID uuid.UUID) ([]models.CustomFood, error) {
	var foods []models.CustomFood
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at asc").Find(&foods).Error
	if err != nil {
		return nil, fmt.Errorf("list custom foods: %w", err)
	}
	return foods, nil
}

func (s *MenuService) DeleteCustomFood(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.CustomFood{})
	if res.Error != nil {
		return fmt.Errorf("delete custom food: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete custom food: %w", ErrNotFound)
	}
	publish(s.pub, userID, live.CollectionCustomFood, live.ActionDeleted, id.String(), nil)
	return nil
}
