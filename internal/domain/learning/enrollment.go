package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentStatus string

// Completed and Paused are recognised values; no lifecycle operation sets them.
const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentPaused    EnrollmentStatus = "paused"
	EnrollmentWithdrawn EnrollmentStatus = "withdrawn"
)

// Enrollment ties a student to a course. One row per pair; re-enrolling
// after withdrawal flips the same row back to active.
type Enrollment struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_pair,priority:1" json:"user_id"`
	CourseID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_pair,priority:2;index" json:"course_id"`
	Status      EnrollmentStatus `gorm:"column:status;not null;index" json:"status"`
	Progress    int              `gorm:"column:progress;not null" json:"progress"`
	CurrentWeek int              `gorm:"column:current_week;not null" json:"current_week"`
	EnrolledAt  time.Time        `gorm:"column:enrolled_at;not null" json:"enrolled_at"`
	UpdatedAt   time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollment" }

func (e *Enrollment) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Enrollment) IsActive() bool {
	return e != nil && e.Status == EnrollmentActive
}

// WeekUnlock grants one student access to one week regardless of the week's
// global lock flag. CourseID is denormalised so removal can clear a course's
// unlocks in one statement.
type WeekUnlock struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_week_unlock_pair,priority:1" json:"user_id"`
	WeekID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_week_unlock_pair,priority:2" json:"week_id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	IsAutomatic bool      `gorm:"column:is_automatic;not null" json:"is_automatic"`
	UnlockedAt  time.Time `gorm:"column:unlocked_at;not null" json:"unlocked_at"`
}

func (WeekUnlock) TableName() string { return "week_unlock" }

func (u *WeekUnlock) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
