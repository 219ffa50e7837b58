package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionType string

const (
	SubmissionText SubmissionType = "text"
	SubmissionFile SubmissionType = "file"
	SubmissionURL  SubmissionType = "url"
	SubmissionQuiz SubmissionType = "quiz"
)

// Assignment is a fixed, typed record; it has no free-form payload.
type Assignment struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WeekID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"week_id"`
	Title          string         `gorm:"column:title;not null" json:"title"`
	Description    string         `gorm:"column:description;type:text" json:"description"`
	MaxPoints      int            `gorm:"column:max_points;not null" json:"max_points"`
	DueDate        *time.Time     `gorm:"column:due_date" json:"due_date,omitempty"`
	IsRequired     bool           `gorm:"column:is_required;not null" json:"is_required"`
	SubmissionType SubmissionType `gorm:"column:submission_type;not null" json:"submission_type"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Assignment) TableName() string { return "assignment" }

func (a *Assignment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
