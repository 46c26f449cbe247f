package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/daypilot/backend/internal/clock"
	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/types"
)

var taskRepeats = []string{models.RepeatDaily, models.RepeatWeekly, models.RepeatMonthly}

// TaskService handles the per-day task lists and their views.
type TaskService struct {
	db  *gorm.DB
	pub live.Publisher
	log logrus.FieldLogger
}

var _ ITaskService = (*TaskService)(nil)

func NewTaskService(db *gorm.DB, pub live.Publisher, log logrus.FieldLogger) *TaskService {
	return &TaskService{db: db, pub: pub, log: log.WithField("service", "tasks")}
}

func (s *TaskService) scoped(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return s.db.WithContext(ctx).Where("user_id = ?", userID)
}

// List returns the tasks of one date ordered by time, or every task ordered
// by date when date is empty.
func (s *TaskService) List(ctx context.Context, userID uuid.UUID, date string) ([]models.Task, error) {
	q := s.scoped(ctx, userID)
	if date != "" {
		if err := checkDate("date", date); err != nil {
			return nil, err
		}
		q = q.Where("date = ?", date).Order("time asc").Order("created_at asc")
	} else {
		q = q.Order("date asc").Order("time asc")
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := s.scoped(ctx, userID).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, notFound("get task", err)
	}
	return &task, nil
}

func validCategory(category string) (string, error) {
	if category == "" {
		return models.CategoryOther, nil
	}
	if !oneOf(category, models.TaskCategories) {
		return "", invalid("category", "must be one of %s", strings.Join(models.TaskCategories, ", "))
	}
	return category, nil
}

func validRepeat(repeat *string) (*string, error) {
	r := emptyToNil(deref(repeat))
	if r != nil && !oneOf(*r, taskRepeats) {
		return nil, invalid("repeat", "must be one of %s", strings.Join(taskRepeats, ", "))
	}
	return r, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, req *types.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	if err := checkDate("date", req.Date); err != nil {
		return nil, err
	}
	tm, err := optionalTime("time", req.Time)
	if err != nil {
		return nil, err
	}
	category, err := validCategory(req.Category)
	if err != nil {
		return nil, err
	}
	repeat, err := validRepeat(req.Repeat)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		UserID:    userID,
		Title:     title,
		Notes:     emptyToNil(deref(req.Notes)),
		Date:      req.Date,
		Time:      tm,
		Priority:  req.Priority,
		Category:  category,
		Completed: req.Completed,
		Repeat:    repeat,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	publish(s.pub, userID, live.CollectionTasks, live.ActionCreated, task.ID.String(), task)
	return &task, nil
}

// Update applies only the fields present in req.
func (s *TaskService) Update(ctx context.Context, userID, id uuid.UUID, req *types.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title", "cannot be empty")
		}
		task.Title = title
	}
	if req.Notes != nil {
		task.Notes = emptyToNil(*req.Notes)
	}
	if req.Date != nil {
		if err := checkDate("date", *req.Date); err != nil {
			return nil, err
		}
		task.Date = *req.Date
	}
	if req.Time != nil {
		if task.Time, err = optionalTime("time", req.Time); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Category != nil {
		if task.Category, err = validCategory(*req.Category); err != nil {
			return nil, err
		}
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if req.Repeat != nil {
		if task.Repeat, err = validRepeat(req.Repeat); err != nil {
			return nil, err
		}
	}

	return s.save(ctx, task)
}

func (s *TaskService) save(ctx context.Context, task *models.Task) (*models.Task, error) {
	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	publish(s.pub, task.UserID, live.CollectionTasks, live.ActionUpdated, task.ID.String(), task)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.scoped(ctx, userID).Where("id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete task: %w", ErrNotFound)
	}
	publish(s.pub, userID, live.CollectionTasks, live.ActionDeleted, id.String(), nil)
	return nil
}

func (s *TaskService) SetCompleted(ctx context.Context, userID, id uuid.UUID, completed bool) (*models.Task, error) {
	return s.Update(ctx, userID, id, &types.UpdateTaskRequest{Completed: &completed})
}

func (s *TaskService) SetPriority(ctx context.Context, userID, id uuid.UUID, priority bool) (*models.Task, error) {
	return s.Update(ctx, userID, id, &types.UpdateTaskRequest{Priority: &priority})
}

// Priority returns every priority task ordered by date.
func (s *TaskService) Priority(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := s.scoped(ctx, userID).Where("priority = ?", true).
		Order("date asc").Order("time asc").Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list priority tasks: %w", err)
	}
	return tasks, nil
}

// ByCategory backs the "to learn" and company views.
func (s *TaskService) ByCategory(ctx context.Context, userID uuid.UUID, category string) ([]models.Task, error) {
	if !oneOf(category, models.TaskCategories) {
		return nil, invalid("category", "unknown category %q", category)
	}
	var tasks []models.Task
	err := s.scoped(ctx, userID).Where("category = ?", category).
		Order("date asc").Order("time asc").Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list %s tasks: %w", category, err)
	}
	return tasks, nil
}

// Grouped buckets one date's tasks into morning, afternoon, evening and
// unscheduled, keeping time order inside each bucket.
func (s *TaskService) Grouped(ctx context.Context, userID uuid.UUID, date string) (map[clock.Slot][]models.Task, error) {
	if date == "" {
		return nil, invalid("date", "is required")
	}
	tasks, err := s.List(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	groups := map[clock.Slot][]models.Task{
		clock.Morning:     {},
		clock.Afternoon:   {},
		clock.Evening:     {},
		clock.Unscheduled: {},
	}
	for _, t := range tasks {
		slot := clock.SlotOf(t.TimeOrEmpty())
		groups[slot] = append(groups[slot], t)
	}
	return groups, nil
}
