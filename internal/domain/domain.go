package domain

import (
	"github.com/yungbote/lms-backend/internal/domain/learning"
	"github.com/yungbote/lms-backend/internal/domain/user"
)

type (
	User = user.User
	Role = user.Role

	Course            = learning.Course
	CourseInstructor  = learning.CourseInstructor
	CourseWeek        = learning.CourseWeek
	Lesson            = learning.Lesson
	Assignment        = learning.Assignment
	Enrollment        = learning.Enrollment
	WeekUnlock        = learning.WeekUnlock
	WithdrawalRequest = learning.WithdrawalRequest

	Level            = learning.Level
	InstructorRole   = learning.InstructorRole
	LessonType       = learning.LessonType
	SubmissionType   = learning.SubmissionType
	EnrollmentStatus = learning.EnrollmentStatus
	WithdrawalStatus = learning.WithdrawalStatus
)

const (
	RoleStudent = user.RoleStudent
	RoleTeacher = user.RoleTeacher
	RoleAdmin   = user.RoleAdmin

	LevelBeginner     = learning.LevelBeginner
	LevelIntermediate = learning.LevelIntermediate
	LevelAdvanced     = learning.LevelAdvanced

	LessonTypeVideo      = learning.LessonTypeVideo
	LessonTypeReading    = learning.LessonTypeReading
	LessonTypeExercise   = learning.LessonTypeExercise
	LessonTypeQuiz       = learning.LessonTypeQuiz
	LessonTypeAssignment = learning.LessonTypeAssignment

	SubmissionText = learning.SubmissionText
	SubmissionFile = learning.SubmissionFile
	SubmissionURL  = learning.SubmissionURL
	SubmissionQuiz = learning.SubmissionQuiz

	EnrollmentActive    = learning.EnrollmentActive
	EnrollmentCompleted = learning.EnrollmentCompleted
	EnrollmentPaused    = learning.EnrollmentPaused
	EnrollmentWithdrawn = learning.EnrollmentWithdrawn

	WithdrawalPending  = learning.WithdrawalPending
	WithdrawalApproved = learning.WithdrawalApproved
	WithdrawalDenied   = learning.WithdrawalDenied

	InstructorRoleCreator    = learning.InstructorRoleCreator
	InstructorRoleInstructor = learning.InstructorRoleInstructor

	MaxWeeksPerCourse = learning.MaxWeeksPerCourse
)

// AllModels lists every persisted model in migration order.
func AllModels() []any {
	return []any{
		&user.User{},
		&learning.Course{},
		&learning.CourseInstructor{},
		&learning.CourseWeek{},
		&learning.Lesson{},
		&learning.Assignment{},
		&learning.Enrollment{},
		&learning.WeekUnlock{},
		&learning.WithdrawalRequest{},
	}
}
