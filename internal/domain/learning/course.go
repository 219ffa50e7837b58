package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/domain/user"
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// MaxWeeksPerCourse bounds the curriculum; week numbers live in 1..MaxWeeksPerCourse.
const MaxWeeksPerCourse = 12

// Course is the root of the owned tree (weeks, lessons, assignments).
// Deletion clears IsActive; rows are kept.
type Course struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"creator_id"`
	Creator         *user.User `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`
	Title           string     `gorm:"column:title;not null" json:"title"`
	Description     string     `gorm:"column:description;type:text" json:"description"`
	Level           Level      `gorm:"column:level;not null" json:"level"`
	MaxStudents     int        `gorm:"column:max_students;not null;check:chk_course_max_students,max_students >= 1" json:"max_students"`
	CurrentStudents int        `gorm:"column:current_students;not null;check:chk_course_current_students,current_students >= 0" json:"current_students"`
	IsActive        bool       `gorm:"column:is_active;not null;index" json:"is_active"`

	Weeks []*CourseWeek `gorm:"-" json:"weeks,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// HasCapacity reports whether one more active enrollment fits.
func (c *Course) HasCapacity() bool {
	return c != nil && c.CurrentStudents < c.MaxStudents
}

type InstructorRole string

const (
	InstructorRoleCreator    InstructorRole = "creator"
	InstructorRoleInstructor InstructorRole = "instructor"
)

// CourseInstructor lists an identity as staff on a course. The creator row is
// written with the course and is never removed.
type CourseInstructor struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_course_instructor_pair,priority:1" json:"course_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_course_instructor_pair,priority:2;index" json:"user_id"`
	Role      InstructorRole `gorm:"column:role;not null" json:"role"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (CourseInstructor) TableName() string { return "course_instructor" }

func (ci *CourseInstructor) BeforeCreate(*gorm.DB) error {
	if ci.ID == uuid.Nil {
		ci.ID = uuid.New()
	}
	return nil
}
