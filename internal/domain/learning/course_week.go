package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseWeek is one slot of a course curriculum. (course_id, week_number) is
// unique and week_number is checked to 1..12, so storage alone caps a course
// at twelve weeks.
type CourseWeek struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_course_week_number,priority:1" json:"course_id"`
	WeekNumber  int                         `gorm:"column:week_number;not null;uniqueIndex:idx_course_week_number,priority:2;check:chk_course_week_number,week_number BETWEEN 1 AND 12" json:"week_number"`
	Title       string                      `gorm:"column:title;not null" json:"title"`
	Description string                      `gorm:"column:description;type:text" json:"description"`
	Objectives  datatypes.JSONSlice[string] `gorm:"column:objectives" json:"objectives"`
	Topics      datatypes.JSONSlice[string] `gorm:"column:topics" json:"topics"`
	IsLocked    bool                        `gorm:"column:is_locked;not null" json:"is_locked"`
	UnlockDate  *time.Time                  `gorm:"column:unlock_date" json:"unlock_date,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (CourseWeek) TableName() string { return "course_week" }

func (w *CourseWeek) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Objectives == nil {
		w.Objectives = datatypes.JSONSlice[string]{}
	}
	if w.Topics == nil {
		w.Topics = datatypes.JSONSlice[string]{}
	}
	return nil
}
