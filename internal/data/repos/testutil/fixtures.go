package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lms-backend/internal/domain"
)

func SeedUser(tb testing.TB, db *gorm.DB, role types.Role) *types.User {
	tb.Helper()
	id := uuid.New()
	u := &types.User{
		ID:        id,
		Email:     fmt.Sprintf("%s-%s@example.com", role, id.String()[:8]),
		Password:  "pw",
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		IsActive:  true,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedCourse writes an active course plus its creator row, without weeks.
func SeedCourse(tb testing.TB, db *gorm.DB, creatorID uuid.UUID, maxStudents int) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Title:       "course",
		Level:       "beginner",
		MaxStudents: maxStudents,
		IsActive:    true,
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	ci := &types.CourseInstructor{CourseID: c.ID, UserID: creatorID, Role: types.InstructorRoleCreator}
	if err := db.Create(ci).Error; err != nil {
		tb.Fatalf("seed creator: %v", err)
	}
	return c
}

func SeedWeek(tb testing.TB, db *gorm.DB, courseID uuid.UUID, number int) *types.CourseWeek {
	tb.Helper()
	w := &types.CourseWeek{
		CourseID:   courseID,
		WeekNumber: number,
		Title:      fmt.Sprintf("Week %d", number),
		IsLocked:   number != 1,
	}
	if err := db.Create(w).Error; err != nil {
		tb.Fatalf("seed week: %v", err)
	}
	return w
}

// SeedEnrollment writes an enrollment row without touching the course counter.
func SeedEnrollment(tb testing.TB, db *gorm.DB, userID, courseID uuid.UUID, status types.EnrollmentStatus) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{
		UserID:      userID,
		CourseID:    courseID,
		Status:      status,
		CurrentWeek: 1,
		EnrolledAt:  time.Now().UTC(),
	}
	if err := db.Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}
