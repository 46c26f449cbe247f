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

type ShoppingStats struct {
	Total       int `json:"total"`
	Purchased   int `json:"purchased"`
	Unpurchased int `json:"unpurchased"`
}

type ReminderStats struct {
	Total     int `json:"total"`
	NeedToBuy int `json:"need_to_buy"`
	Bought    int `json:"bought"`
}

// ShoppingService manages the shopping list and the lighter reminder list.
type ShoppingService struct {
	db  *gorm.DB
	pub live.Publisher
	log logrus.FieldLogger
}

var _ IShoppingService = (*ShoppingService)(nil)

func NewShoppingService(db *gorm.DB, pub live.Publisher, log logrus.FieldLogger) *ShoppingService {
	return &ShoppingService{db: db, pub: pub, log: log.WithField("service", "shopping")}
}

func (s *ShoppingService) scoped(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return s.db.WithContext(ctx).Where("user_id = ?", userID)
}

func checkShoppingUnit(unit *string) (*string, error) {
	u := emptyToNil(deref(unit))
	if u != nil && !oneOf(*u, models.ShoppingUnits) {
		return nil, invalid("unit", "must be one of %s", strings.Join(models.ShoppingUnits, ", "))
	}
	return u, nil
}

func shoppingCategory(category *string) (string, error) {
	c := emptyToNil(deref(category))
	if c == nil {
		return models.DefaultShoppingCategory, nil
	}
	if !oneOf(*c, models.ShoppingCategories) {
		return "", invalid("category", "must be one of %s", strings.Join(models.ShoppingCategories, ", "))
	}
	return *c, nil
}

// ListItems returns unpurchased items first, newest first within each half.
func (s *ShoppingService) ListItems(ctx context.Context, userID uuid.UUID) ([]models.ShoppingItem, error) {
	var items []models.ShoppingItem
	err := s.scoped(ctx, userID).Order("purchased asc").Order("created_at desc").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	return items, nil
}

func (s *ShoppingService) CreateItem(ctx context.Context, userID uuid.UUID, req *types.ShoppingItemRequest) (*models.ShoppingItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if req.Quantity <= 0 {
		return nil, invalid("quantity", "must be greater than zero")
	}
	unit, err := checkShoppingUnit(req.Unit)
	if err != nil {
		return nil, err
	}
	category, err := shoppingCategory(req.Category)
	if err != nil {
		return nil, err
	}

	item := models.ShoppingItem{
		UserID:   userID,
		Name:     name,
		Quantity: req.Quantity,
		Unit:     unit,
		Category: category,
		ImageURL: emptyToNil(deref(req.ImageURL)),
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create shopping item: %w", err)
	}

	publish(s.pub, userID, live.CollectionShopping, live.ActionCreated, item.ID.String(), item)
	return &item, nil
}

func (s *ShoppingService) getItem(ctx context.Context, userID, id uuid.UUID) (*models.ShoppingItem, error) {
	var item models.ShoppingItem
	if err := s.scoped(ctx, userID).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, notFound("get shopping item", err)
	}
	return &item, nil
}

func (s *ShoppingService) UpdateItem(ctx context.Context, userID, id uuid.UUID, req *types.UpdateShoppingItemRequest) (*models.ShoppingItem, error) {
	item, err := s.getItem(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "cannot be empty")
		}
		item.Name = name
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, invalid("quantity", "must be greater than zero")
		}
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		if item.Unit, err = checkShoppingUnit(req.Unit); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		if item.Category, err = shoppingCategory(req.Category); err != nil {
			return nil, err
		}
	}
	if req.ImageURL != nil {
		item.ImageURL = emptyToNil(*req.ImageURL)
	}
	if req.Purchased != nil {
		item.Purchased = *req.Purchased
	}

	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("update shopping item: %w", err)
	}
	publish(s.pub, userID, live.CollectionShopping, live.ActionUpdated, item.ID.String(), item)
	return item, nil
}

func (s *ShoppingService) DeleteItem(ctx context.Context, userID, id uuid.UUID) error {
	res := s.scoped(ctx, userID).Where("id = ?", id).Delete(&models.ShoppingItem{})
	if res.Error != nil {
		return fmt.Errorf("delete shopping item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete shopping item: %w", ErrNotFound)
	}
	publish(s.pub, userID, live.CollectionShopping, live.ActionDeleted, id.String(), nil)
	return nil
}

func (s *ShoppingService) SetPurchased(ctx context.Context, userID, id uuid.UUID, purchased bool) (*models.ShoppingItem, error) {
	return s.UpdateItem(ctx, userID, id, &types.UpdateShoppingItemRequest{Purchased: &purchased})
}

// ClearPurchased deletes every purchased item and reports how many went.
func (s *ShoppingService) ClearPurchased(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.scoped(ctx, userID).Where("purchased = ?", true).Delete(&models.ShoppingItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear purchased items: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		publish(s.pub, userID, live.CollectionShopping, live.ActionDeleted, "", map[string]int64{"cleared": res.RowsAffected})
	}
	return res.RowsAffected, nil
}

// ItemsByCategory groups the list under each category that has items.
func (s *ShoppingService) ItemsByCategory(ctx context.Context, userID uuid.UUID) (map[string][]models.ShoppingItem, error) {
	items, err := s.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]models.ShoppingItem)
	for _, it := range items {
		c := it.Category
		if c == "" {
			c = models.DefaultShoppingCategory
		}
		out[c] = append(out[c], it)
	}
	return out, nil
}

func (s *ShoppingService) ItemStats(ctx context.Context, userID uuid.UUID) (ShoppingStats, error) {
	items, err := s.ListItems(ctx, userID)
	if err != nil {
		return ShoppingStats{}, err
	}
	stats := ShoppingStats{Total: len(items)}
	for _, it := range items {
		if it.Purchased {
			stats.Purchased++
		}
	}
	stats.Unpurchased = stats.Total - stats.Purchased
	return stats, nil
}

// ListReminders returns reminders still to buy first, newest first within
// each half.
func (s *ShoppingService) ListReminders(ctx context.Context, userID uuid.UUID) ([]models.ShoppingReminder, error) {
	var reminders []models.ShoppingReminder
	err := s.scoped(ctx, userID).Order("need_to_buy desc").Order("created_at desc").Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// CreateReminder adds a reminder that still needs buying.
func (s *ShoppingService) CreateReminder(ctx context.Context, userID uuid.UUID, name, quantity string) (*models.ShoppingReminder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	reminder := models.ShoppingReminder{
		UserID:    userID,
		Name:      name,
		Quantity:  strings.TrimSpace(quantity),
		NeedToBuy: true,
	}
	if err := s.db.WithContext(ctx).Create(&reminder).Error; err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}

	publish(s.pub, userID, live.CollectionReminders, live.ActionCreated, reminder.ID.String(), reminder)
	return &reminder, nil
}

func (s *ShoppingService) getReminder(ctx context.Context, userID, id uuid.UUID) (*models.ShoppingReminder, error) {
	var reminder models.ShoppingReminder
	if err := s.scoped(ctx, userID).Where("id = ?", id).First(&reminder).Error; err != nil {
		return nil, notFound("get reminder", err)
	}
	return &reminder, nil
}

func (s *ShoppingService) saveReminder(ctx context.Context, reminder *models.ShoppingReminder) (*models.ShoppingReminder, error) {
	if err := s.db.WithContext(ctx).Save(reminder).Error; err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	publish(s.pub, reminder.UserID, live.CollectionReminders, live.ActionUpdated, reminder.ID.String(), reminder)
	return reminder, nil
}

func (s *ShoppingService) UpdateReminder(ctx context.Context, userID, id uuid.UUID, req *types.ReminderRequest) (*models.ShoppingReminder, error) {
	reminder, err := s.getReminder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "cannot be empty")
		}
		reminder.Name = name
	}
	if req.Quantity != nil {
		reminder.Quantity = strings.TrimSpace(*req.Quantity)
	}
	return s.saveReminder(ctx, reminder)
}

func (s *ShoppingService) SetNeedToBuy(ctx context.Context, userID, id uuid.UUID, needToBuy bool) (*models.ShoppingReminder, error) {
	reminder, err := s.getReminder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	reminder.NeedToBuy = needToBuy
	return s.saveReminder(ctx, reminder)
}

func (s *ShoppingService) DeleteReminder(ctx context.Context, userID, id uuid.UUID) error {
	res := s.scoped(ctx, userID).Where("id = ?", id).Delete(&models.ShoppingReminder{})
	if res.Error != nil {
		return fmt.Errorf("delete reminder: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete reminder: %w", ErrNotFound)
	}
	publish(s.pub, userID, live.CollectionReminders, live.ActionDeleted, id.String(), nil)
	return nil
}

// ClearBought deletes reminders that no longer need buying.
func (s *ShoppingService) ClearBought(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.scoped(ctx, userID).Where("need_to_buy = ?", false).Delete(&models.ShoppingReminder{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear bought reminders: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		publish(s.pub, userID, live.CollectionReminders, live.ActionDeleted, "", map[string]int64{"cleared": res.RowsAffected})
	}
	return res.RowsAffected, nil
}

func (s *ShoppingService) ReminderStats(ctx context.Context, userID uuid.UUID) (ReminderStats, error) {
	reminders, err := s.ListReminders(ctx, userID)
	if err != nil {
		return ReminderStats{}, err
	}
	stats := ReminderStats{Total: len(reminders)}
	for _, r := range reminders {
		if r.NeedToBuy {
			stats.NeedToBuy++
		}
	}
	stats.Bought = stats.Total - stats.NeedToBuy
	return stats, nil
}
