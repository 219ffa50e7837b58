package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/repos/learning"
	"github.com/yungbote/lms-backend/internal/data/repos/user"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type CourseRepo = learning.CourseRepo
type CourseInstructorRepo = learning.CourseInstructorRepo
type CourseWeekRepo = learning.CourseWeekRepo
type LessonRepo = learning.LessonRepo
type AssignmentRepo = learning.AssignmentRepo

type EnrollmentRepo = learning.EnrollmentRepo
type WeekUnlockRepo = learning.WeekUnlockRepo
type WithdrawalRequestRepo = learning.WithdrawalRequestRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, baseLog)
}
func NewCourseInstructorRepo(db *gorm.DB, baseLog *logger.Logger) CourseInstructorRepo {
	return learning.NewCourseInstructorRepo(db, baseLog)
}
func NewCourseWeekRepo(db *gorm.DB, baseLog *logger.Logger) CourseWeekRepo {
	return learning.NewCourseWeekRepo(db, baseLog)
}
func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return learning.NewLessonRepo(db, baseLog)
}
func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return learning.NewAssignmentRepo(db, baseLog)
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return learning.NewEnrollmentRepo(db, baseLog)
}
func NewWeekUnlockRepo(db *gorm.DB, baseLog *logger.Logger) WeekUnlockRepo {
	return learning.NewWeekUnlockRepo(db, baseLog)
}
func NewWithdrawalRequestRepo(db *gorm.DB, baseLog *logger.Logger) WithdrawalRequestRepo {
	return learning.NewWithdrawalRequestRepo(db, baseLog)
}
