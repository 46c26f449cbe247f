package models

import "github.com/google/uuid"

// Task categories.
const (
	CategoryWork     = "work"
	CategoryPersonal = "personal"
	CategoryLearn    = "learn"
	CategoryHealth   = "health"
	CategoryCompany  = "company"
	CategoryOther    = "other"
)

// TaskCategories lists every accepted task category.
var TaskCategories = []string{
	CategoryWork,
	CategoryPersonal,
	CategoryLearn,
	CategoryHealth,
	CategoryCompany,
	CategoryOther,
}

// Repeat cadences. A nil Repeat means a one-off task.
const (
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

type Task struct {
	Base
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index:idx_task_user_date" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	Date      string    `gorm:"size:10;not null;index:idx_task_user_date" json:"date"`
	Time      *string   `gorm:"size:5" json:"time"`
	Priority  bool      `gorm:"not null;default:false" json:"priority"`
	Category  string    `gorm:"size:20;not null;default:'other'" json:"category"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	Repeat    *string   `gorm:"size:10" json:"repeat"`
}

// TimeOrEmpty returns the scheduled time, or "" for unscheduled tasks.
func (t Task) TimeOrEmpty() string {
	if t.Time == nil {
		return ""
	}
	return *t.Time
}
