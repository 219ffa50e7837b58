package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/domain/learning"
)

var CourseAggregateContract = Contract{
	Name:             "Learning.CourseAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyAuthorizedReads,
	Notes:            "Owns the course/week/lesson/assignment tree, the twelve-week cap and course soft deletion.",
}

// CourseAggregate owns the course content tree.
//
// Failures are *aggregates.Error with codes:
// CodeUnauthenticated, CodeForbidden, CodeNotFound, CodeCapacityExceeded,
// CodeConflict, CodeValidation, CodeRetryable, CodeCollaboratorFailure.
type CourseAggregate interface {
	Aggregate

	// CreateCourse writes the course, its creator row and twelve scaffold weeks in one transaction.
	CreateCourse(ctx context.Context, actor Identity, in CreateCourseInput) (*learning.Course, error)
	GetCourse(ctx context.Context, actor Identity, courseID uuid.UUID) (*learning.Course, error)
	// DeleteCourse soft-deletes; only the creator or an admin may call it.
	DeleteCourse(ctx context.Context, actor Identity, courseID uuid.UUID) error

	CreateCourseWeek(ctx context.Context, actor Identity, courseID uuid.UUID, in WeekInput) (*learning.CourseWeek, error)
	UpdateCourseWeek(ctx context.Context, actor Identity, weekID uuid.UUID, in WeekPatch) (*learning.CourseWeek, error)
	// DeleteCourseWeek also deletes the week's lessons, assignments and unlocks.
	DeleteCourseWeek(ctx context.Context, actor Identity, weekID uuid.UUID) error
	GetCourseWeeks(ctx context.Context, actor Identity, courseID uuid.UUID) ([]*learning.CourseWeek, error)

	CreateLesson(ctx context.Context, actor Identity, weekID uuid.UUID, in LessonInput) (*learning.Lesson, error)
	UpdateLesson(ctx context.Context, actor Identity, lessonID uuid.UUID, in LessonPatch) (*learning.Lesson, error)
	DeleteLesson(ctx context.Context, actor Identity, lessonID uuid.UUID) error
	GetWeekLessons(ctx context.Context, actor Identity, weekID uuid.UUID) ([]*learning.Lesson, error)

	CreateAssignment(ctx context.Context, actor Identity, weekID uuid.UUID, in AssignmentInput) (*learning.Assignment, error)
	UpdateAssignment(ctx context.Context, actor Identity, assignmentID uuid.UUID, in AssignmentPatch) (*learning.Assignment, error)
	DeleteAssignment(ctx context.Context, actor Identity, assignmentID uuid.UUID) error
	GetWeekAssignments(ctx context.Context, actor Identity, weekID uuid.UUID) ([]*learning.Assignment, error)
}

type CreateCourseInput struct {
	Title       string         `json:"title" validate:"notblank,max=200"`
	Description string         `json:"description" validate:"max=5000"`
	Level       learning.Level `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	// MaxStudents of 0 means the default capacity.
	MaxStudents int `json:"max_students" validate:"gte=0,lte=10000"`
}

// WeekInput creates a week. WeekNumber 0 picks the lowest free slot.
type WeekInput struct {
	WeekNumber  int        `json:"week_number" validate:"gte=0,lte=12"`
	Title       string     `json:"title" validate:"notblank,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Objectives  []string   `json:"objectives" validate:"max=50,dive,max=500"`
	Topics      []string   `json:"topics" validate:"max=50,dive,max=500"`
	IsLocked    bool       `json:"is_locked"`
	UnlockDate  *time.Time `json:"unlock_date"`
}

// WeekPatch updates the set fields only. The week number is fixed once created.
type WeekPatch struct {
	Title       *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Objectives  *[]string  `json:"objectives" validate:"omitempty,max=50,dive,max=500"`
	Topics      *[]string  `json:"topics" validate:"omitempty,max=50,dive,max=500"`
	IsLocked    *bool      `json:"is_locked"`
	UnlockDate  *time.Time `json:"unlock_date"`
}

type LessonInput struct {
	Title           string              `json:"title" validate:"notblank,max=200"`
	Type            learning.LessonType `json:"type" validate:"required,oneof=video reading exercise quiz assignment"`
	OrderIndex      int                 `json:"order_index" validate:"gte=0"`
	DurationMinutes int                 `json:"duration_minutes" validate:"gte=0"`
	Points          int                 `json:"points" validate:"gte=0"`
	IsRequired      bool                `json:"is_required"`
	ContentURL      string              `json:"content_url" validate:"omitempty,url"`
	ContentText     string              `json:"content_text"`
}

type LessonPatch struct {
	Title           *string              `json:"title" validate:"omitempty,notblank,max=200"`
	Type            *learning.LessonType `json:"type" validate:"omitempty,oneof=video reading exercise quiz assignment"`
	OrderIndex      *int                 `json:"order_index" validate:"omitempty,gte=0"`
	DurationMinutes *int                 `json:"duration_minutes" validate:"omitempty,gte=0"`
	Points          *int                 `json:"points" validate:"omitempty,gte=0"`
	IsRequired      *bool                `json:"is_required"`
	ContentURL      *string              `json:"content_url" validate:"omitempty,url"`
	ContentText     *string              `json:"content_text"`
}

type AssignmentInput struct {
	Title          string                  `json:"title" validate:"notblank,max=200"`
	Description    string                  `json:"description" validate:"max=5000"`
	MaxPoints      int                     `json:"max_points" validate:"gte=0"`
	DueDate        *time.Time              `json:"due_date"`
	IsRequired     bool                    `json:"is_required"`
	SubmissionType learning.SubmissionType `json:"submission_type" validate:"required,oneof=text file url quiz"`
}

type AssignmentPatch struct {
	Title          *string                  `json:"title" validate:"omitempty,notblank,max=200"`
	Description    *string                  `json:"description" validate:"omitempty,max=5000"`
	MaxPoints      *int                     `json:"max_points" validate:"omitempty,gte=0"`
	DueDate        *time.Time               `json:"due_date"`
	ClearDueDate   bool                     `json:"clear_due_date"`
	IsRequired     *bool                    `json:"is_required"`
	SubmissionType *learning.SubmissionType `json:"submission_type" validate:"omitempty,oneof=text file url quiz"`
}
