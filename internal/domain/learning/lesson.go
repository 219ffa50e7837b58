package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonType string

const (
	LessonTypeVideo      LessonType = "video"
	LessonTypeReading    LessonType = "reading"
	LessonTypeExercise   LessonType = "exercise"
	LessonTypeQuiz       LessonType = "quiz"
	LessonTypeAssignment LessonType = "assignment"
)

// Lesson belongs to exactly one week. OrderIndex only orders display.
type Lesson struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WeekID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"week_id"`
	Title           string     `gorm:"column:title;not null" json:"title"`
	Type            LessonType `gorm:"column:type;not null" json:"type"`
	OrderIndex      int        `gorm:"column:order_index;not null" json:"order_index"`
	DurationMinutes int        `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	Points          int        `gorm:"column:points;not null" json:"points"`
	IsRequired      bool       `gorm:"column:is_required;not null" json:"is_required"`
	ContentURL      string     `gorm:"column:content_url" json:"content_url,omitempty"`
	ContentText     string     `gorm:"column:content_text;type:text" json:"content_text,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
