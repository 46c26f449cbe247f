package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/daypilot/backend/internal/clock"
	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/routine"
	"github.com/daypilot/backend/internal/types"
)

// RoutineService stores one routine per user and date. Blocks are rows of
// their own, and every block write is conditional on the caller's version.
type RoutineService struct {
	db  *gorm.DB
	pub live.Publisher
	log logrus.FieldLogger
	now func() time.Time
}

var _ IRoutineService = (*RoutineService)(nil)

func NewRoutineService(db *gorm.DB, pub live.Publisher, log logrus.FieldLogger) *RoutineService {
	return &RoutineService{
		db:  db,
		pub: pub,
		log: log.WithField("service", "routine"),
		now: time.Now,
	}
}

func orderedBlocks(db *gorm.DB) *gorm.DB {
	return db.Order("start_time asc").Order("position asc")
}

func (s *RoutineService) find(ctx context.Context, userID uuid.UUID, date string) (*models.Routine, error) {
	var r models.Routine
	err := s.db.WithContext(ctx).
		Preload("Blocks", orderedBlocks).
		Where("user_id = ? AND date = ?", userID, date).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func defaultRows(routineID uuid.UUID, date string) []models.RoutineBlock {
	blocks := routine.GenerateDefault(date)
	rows := make([]models.RoutineBlock, len(blocks))
	for i, b := range blocks {
		rows[i] = models.NewRoutineBlock(routineID, i, b)
	}
	return rows
}

// Get returns the routine for date, creating the default one first when the
// user has none. Two concurrent first reads both end up with the same row.
func (s *RoutineService) Get(ctx context.Context, userID uuid.UUID, date string) (*models.Routine, error) {
	if err := checkDate("date", date); err != nil {
		return nil, err
	}

	r, err := s.find(ctx, userID, date)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get routine: %w", err)
	}

	created := models.Routine{UserID: userID, Date: date}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Blocks").Create(&created).Error; err != nil {
			return err
		}
		rows := defaultRows(created.ID, date)
		return tx.Create(&rows).Error
	})
	if err != nil {
		// Lost the race against another first read.
		if r, findErr := s.find(ctx, userID, date); findErr == nil {
			return r, nil
		}
		return nil, fmt.Errorf("init routine: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "date": date}).Debug("default routine created")
	r, err = s.find(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("get routine: %w", err)
	}
	publish(s.pub, userID, live.CollectionRoutines, live.ActionCreated, date, r)
	return r, nil
}

func blockIn(r *models.Routine, blockID string) (*models.RoutineBlock, error) {
	for i := range r.Blocks {
		if r.Blocks[i].BlockID == blockID {
			return &r.Blocks[i], nil
		}
	}
	return nil, fmt.Errorf("routine block %s: %w", blockID, ErrNotFound)
}

// UpdateBlock applies the fields present in req when req.Version still matches
// the stored block.
func (s *RoutineService) UpdateBlock(ctx context.Context, userID uuid.UUID, date, blockID string, req *types.UpdateBlockRequest) (*models.RoutineBlock, error) {
	if req.Version < 1 {
		return nil, invalid("version", "is required")
	}
	r, err := s.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	block, err := blockIn(r, blockID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil || req.StartTime != nil || req.EndTime != nil {
		if !block.Editable {
			return nil, ErrBlockNotEditable
		}
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title", "cannot be empty")
		}
		updates["title"] = title
	}
	if req.StartTime != nil {
		if err := checkTime("start_time", *req.StartTime); err != nil {
			return nil, err
		}
		updates["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		if err := checkTime("end_time", *req.EndTime); err != nil {
			return nil, err
		}
		updates["end_time"] = *req.EndTime
	}
	if req.Notes != nil {
		updates["notes"] = emptyToNil(*req.Notes)
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Completed != nil {
		updates["completed"] = *req.Completed
	}
	if len(updates) == 0 {
		return nil, invalid("body", "no fields to update")
	}
	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = s.now()

	res := s.db.WithContext(ctx).Model(&models.RoutineBlock{}).
		Where("routine_id = ? AND block_id = ? AND version = ?", r.ID, blockID, req.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update routine block: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrVersionConflict
	}

	var updated models.RoutineBlock
	if err := s.db.WithContext(ctx).
		Where("routine_id = ? AND block_id = ?", r.ID, blockID).
		First(&updated).Error; err != nil {
		return nil, notFound("reload routine block", err)
	}

	publish(s.pub, userID, live.CollectionRoutines, live.ActionUpdated, blockID, updated)
	return &updated, nil
}

// DeleteBlock removes an unlocked block.
func (s *RoutineService) DeleteBlock(ctx context.Context, userID uuid.UUID, date, blockID string) error {
	r, err := s.Get(ctx, userID, date)
	if err != nil {
		return err
	}
	block, err := blockIn(r, blockID)
	if err != nil {
		return err
	}
	if block.Locked {
		return ErrBlockLocked
	}

	res := s.db.WithContext(ctx).
		Where("routine_id = ? AND block_id = ? AND locked = ?", r.ID, blockID, false).
		Delete(&models.RoutineBlock{})
	if res.Error != nil {
		return fmt.Errorf("delete routine block: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}

	publish(s.pub, userID, live.CollectionRoutines, live.ActionDeleted, blockID, nil)
	return nil
}

// AddBlock appends an editable, unlocked block.
func (s *RoutineService) AddBlock(ctx context.Context, userID uuid.UUID, date string, req *types.AddBlockRequest) (*models.RoutineBlock, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	if err := checkTime("start_time", req.StartTime); err != nil {
		return nil, err
	}
	if err := checkTime("end_time", req.EndTime); err != nil {
		return nil, err
	}
	typ := routine.TypeEditable
	if req.Type != "" {
		typ = routine.BlockType(req.Type)
		if !routine.ValidType(typ) {
			return nil, invalid("type", "unknown block type %q", req.Type)
		}
	}

	r, err := s.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	position := 0
	for _, b := range r.Blocks {
		if b.Position >= position {
			position = b.Position + 1
		}
	}
	row := models.NewRoutineBlock(r.ID, position, routine.Block{
		ID:        "routine_" + uuid.NewString(),
		Title:     title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Type:      typ,
		Editable:  true,
		Notes:     emptyToNil(deref(req.Notes)),
		Priority:  req.Priority,
	})
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("add routine block: %w", err)
	}

	publish(s.pub, userID, live.CollectionRoutines, live.ActionCreated, row.BlockID, row)
	return &row, nil
}

// Reset replaces every block with the default timeline. New rows start one
// version past the highest version the routine held, so an edit prepared
// before the reset conflicts instead of landing on the fresh block.
func (s *RoutineService) Reset(ctx context.Context, userID uuid.UUID, date string) (*models.Routine, error) {
	r, err := s.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest int
		if err := tx.Model(&models.RoutineBlock{}).
			Where("routine_id = ?", r.ID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&latest).Error; err != nil {
			return err
		}
		if err := tx.Where("routine_id = ?", r.ID).Delete(&models.RoutineBlock{}).Error; err != nil {
			return err
		}
		rows := defaultRows(r.ID, date)
		for i := range rows {
			rows[i].Version = latest + 1
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("reset routine: %w", err)
	}

	r, err = s.find(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("reload routine: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "date": date}).Info("routine reset")
	publish(s.pub, userID, live.CollectionRoutines, live.ActionReset, date, r)
	return r, nil
}

func (s *RoutineService) Stats(ctx context.Context, userID uuid.UUID, date string) (routine.Stats, error) {
	r, err := s.Get(ctx, userID, date)
	if err != nil {
		return routine.Stats{}, err
	}
	return routine.Summarize(r.DomainBlocks()), nil
}

// Current returns the block containing at, or the current wall-clock time when
// at is empty.
func (s *RoutineService) Current(ctx context.Context, userID uuid.UUID, date, at string) (*models.RoutineBlock, error) {
	if at == "" {
		at = clock.Format(s.now())
	} else if err := checkTime("at", at); err != nil {
		return nil, err
	}

	r, err := s.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	b, ok := routine.CurrentBlock(r.DomainBlocks(), at)
	if !ok {
		return nil, fmt.Errorf("no routine block at %s: %w", at, ErrNotFound)
	}
	return blockIn(r, b.ID)
}
