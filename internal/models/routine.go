package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/daypilot/backend/internal/routine"
)

// Routine is one user's timeline for one date.
type Routine struct {
	Base
	UserID uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_routine_user_date" json:"user_id"`
	Date   string         `gorm:"size:10;not null;uniqueIndex:idx_routine_user_date" json:"date"`
	Blocks []RoutineBlock `gorm:"foreignKey:RoutineID;constraint:OnDelete:CASCADE" json:"blocks"`
}

// RoutineBlock is stored one row per block so edits touch a single row.
// Version increases on every write and guards concurrent edits.
type RoutineBlock struct {
	RoutineID uuid.UUID         `gorm:"type:varchar(36);primaryKey" json:"-"`
	BlockID   string            `gorm:"size:100;primaryKey" json:"id"`
	Position  int               `gorm:"not null" json:"-"`
	Title     string            `gorm:"size:200;not null" json:"title"`
	StartTime string            `gorm:"size:5;not null" json:"start_time"`
	EndTime   string            `gorm:"size:5;not null" json:"end_time"`
	Type      routine.BlockType `gorm:"size:20;not null" json:"type"`
	Locked    bool              `gorm:"not null" json:"is_locked"`
	Editable  bool              `gorm:"not null" json:"is_editable"`
	Completed bool              `gorm:"not null;default:false" json:"completed"`
	Notes     *string           `gorm:"type:text" json:"notes"`
	Priority  bool              `gorm:"not null;default:false" json:"priority"`
	Version   int               `gorm:"not null;default:1" json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewRoutineBlock stores b under routineID at version 1. position breaks ties
// between blocks that start at the same time.
func NewRoutineBlock(routineID uuid.UUID, position int, b routine.Block) RoutineBlock {
	return RoutineBlock{
		RoutineID: routineID,
		BlockID:   b.ID,
		Position:  position,
		Title:     b.Title,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Type:      b.Type,
		Locked:    b.Locked,
		Editable:  b.Editable,
		Completed: b.Completed,
		Notes:     b.Notes,
		Priority:  b.Priority,
		Version:   1,
	}
}

// Block converts the row back to its domain form.
func (rb RoutineBlock) Block() routine.Block {
	return routine.Block{
		ID:        rb.BlockID,
		Title:     rb.Title,
		StartTime: rb.StartTime,
		EndTime:   rb.EndTime,
		Type:      rb.Type,
		Locked:    rb.Locked,
		Editable:  rb.Editable,
		Completed: rb.Completed,
		Notes:     rb.Notes,
		Priority:  rb.Priority,
	}
}

// DomainBlocks converts the routine's rows in order.
func (r Routine) DomainBlocks() []routine.Block {
	out := make([]routine.Block, len(r.Blocks))
	for i, b := range r.Blocks {
		out[i] = b.Block()
	}
	return out
}
