// Package policy decides who may manage or read a course. Every function is
// a pure predicate over facts the caller loaded in the current transaction;
// nothing here performs I/O or caches.
package policy

import (
	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/domain/learning"
	"github.com/yungbote/lms-backend/internal/domain/user"
)

// Actor is the acting identity with its role as currently stored.
type Actor struct {
	UserID uuid.UUID
	Role   user.Role
}

func (a Actor) IsAdmin() bool   { return a.Role == user.RoleAdmin }
func (a Actor) IsTeacher() bool { return a.Role == user.RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == user.RoleStudent }

// CourseFacts is the actor's relationship to one course.
// InstructorRole and EnrollmentStatus are empty when no row exists.
type CourseFacts struct {
	CourseID         uuid.UUID
	CreatorID        uuid.UUID
	InstructorRole   learning.InstructorRole
	EnrollmentStatus learning.EnrollmentStatus
}

// CanManage: admins, or anyone listed as creator/instructor on the course.
func CanManage(a Actor, f CourseFacts) bool {
	if a.UserID == uuid.Nil {
		return false
	}
	return a.IsAdmin() || f.InstructorRole != ""
}

// CanAccess: managers, or students with an active enrollment.
func CanAccess(a Actor, f CourseFacts) bool {
	if CanManage(a, f) {
		return true
	}
	return a.UserID != uuid.Nil && f.EnrollmentStatus == learning.EnrollmentActive
}

// CanDeleteCourse is narrower than CanManage: admin or the course creator.
func CanDeleteCourse(a Actor, f CourseFacts) bool {
	return isAdminOrCreator(a, f)
}

// CanRemoveInstructor is narrower than CanManage: admin or the course creator.
func CanRemoveInstructor(a Actor, f CourseFacts) bool {
	return isAdminOrCreator(a, f)
}

func CanCreateCourse(a Actor) bool {
	return a.UserID != uuid.Nil && (a.IsTeacher() || a.IsAdmin())
}

// CanReview gates withdrawal review: staff role and management rights.
func CanReview(a Actor, f CourseFacts) bool {
	return (a.IsTeacher() || a.IsAdmin()) && CanManage(a, f)
}

func CanAdministerRoles(a Actor) bool {
	return a.UserID != uuid.Nil && a.IsAdmin()
}

func isAdminOrCreator(a Actor, f CourseFacts) bool {
	if a.UserID == uuid.Nil {
		return false
	}
	return a.IsAdmin() || (f.CreatorID != uuid.Nil && a.UserID == f.CreatorID)
}
