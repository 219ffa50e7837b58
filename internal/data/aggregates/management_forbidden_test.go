package aggregates

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

// managedCourse is a course with one of every row a management call can touch.
type managedCourse struct {
	course            *types.Course
	week1, week2      *types.CourseWeek
	week3             *types.CourseWeek
	lesson            *types.Lesson
	assignment        *types.Assignment
	enrolled          domainagg.Identity
	unlockee          domainagg.Identity
	candidate         domainagg.Identity
	instructorToBe    domainagg.Identity
	pendingWithdrawal *types.WithdrawalRequest
}

func (f *lmsFixture) newManagedCourse(t *testing.T) managedCourse {
	t.Helper()
	ctx := context.Background()
	creator := f.user(t, types.RoleTeacher)
	mc := managedCourse{course: f.newCourse(t, creator, 10)}

	weeks, err := f.course.GetCourseWeeks(ctx, creator, mc.course.ID)
	if err != nil || len(weeks) != types.MaxWeeksPerCourse {
		t.Fatalf("GetCourseWeeks: %d %v", len(weeks), err)
	}
	// Free one slot so CreateCourseWeek has room.
	if err := f.course.DeleteCourseWeek(ctx, creator, weeks[len(weeks)-1].ID); err != nil {
		t.Fatalf("DeleteCourseWeek: %v", err)
	}
	mc.week1, mc.week2, mc.week3 = weeks[0], weeks[1], weeks[2]

	if mc.lesson, err = f.course.CreateLesson(ctx, creator, mc.week1.ID, domainagg.LessonInput{Title: "Intro", Type: types.LessonTypeReading}); err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}
	if mc.assignment, err = f.course.CreateAssignment(ctx, creator, mc.week1.ID, domainagg.AssignmentInput{Title: "HW1", SubmissionType: types.SubmissionText}); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	mc.enrolled = f.user(t, types.RoleStudent)
	mc.unlockee = f.user(t, types.RoleStudent)
	requester := f.user(t, types.RoleStudent)
	for _, s := range []domainagg.Identity{mc.enrolled, mc.unlockee, requester} {
		if _, err := f.enrollment.SelfEnrollInCourse(ctx, s, mc.course.ID); err != nil {
			t.Fatalf("SelfEnroll: %v", err)
		}
	}
	if mc.pendingWithdrawal, err = f.enrollment.RequestWithdrawal(ctx, requester, mc.course.ID, "moving"); err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	mc.candidate = f.user(t, types.RoleStudent)
	mc.instructorToBe = f.user(t, types.RoleTeacher)
	return mc
}

// fingerprint summarizes every row under a course that a management call may change.
func (f *lmsFixture) fingerprint(t *testing.T, courseID uuid.UUID) string {
	t.Helper()
	weekIDs := f.db.Model(&types.CourseWeek{}).Select("id").Where("course_id = ?", courseID)
	var (
		weeks, lessons, assignments []string
		active, pending, unlocks    int64
		instructors                 int64
	)
	f.db.Model(&types.CourseWeek{}).Where("course_id = ?", courseID).Order("week_number").Pluck("title", &weeks)
	f.db.Model(&types.Lesson{}).Where("week_id IN (?)", weekIDs).Order("title").Pluck("title", &lessons)
	f.db.Model(&types.Assignment{}).Where("week_id IN (?)", weekIDs).Order("title").Pluck("title", &assignments)
	f.db.Model(&types.Enrollment{}).Where("course_id = ? AND status = ?", courseID, types.EnrollmentActive).Count(&active)
	f.db.Model(&types.WithdrawalRequest{}).Where("course_id = ? AND status = ?", courseID, types.WithdrawalPending).Count(&pending)
	f.db.Model(&types.WeekUnlock{}).Where("course_id = ?", courseID).Count(&unlocks)
	f.db.Model(&types.CourseInstructor{}).Where("course_id = ?", courseID).Count(&instructors)
	return fmt.Sprintf("weeks=%s lessons=%s assignments=%s active=%d pending=%d unlocks=%d instructors=%d students=%d",
		strings.Join(weeks, ","), strings.Join(lessons, ","), strings.Join(assignments, ","),
		active, pending, unlocks, instructors, f.reloadCourse(t, courseID).CurrentStudents)
}

func TestUnlistedTeacherIsForbiddenFromManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.newManagedCourse(t)
	y := f.newManagedCourse(t)

	helper := f.user(t, types.RoleTeacher)
	if _, err := f.roster.AddInstructor(ctx, f.creatorOf(t, y.course.ID), y.course.ID, helper.UserID); err != nil {
		t.Fatalf("AddInstructor: %v", err)
	}

	renamed := "Renamed"
	// Ordered: later calls depend on rows earlier calls leave on course Y.
	cases := []struct {
		name string
		call func(mc managedCourse) error
	}{
		{"CreateCourseWeek", func(mc managedCourse) error {
			_, err := f.course.CreateCourseWeek(ctx, helper, mc.course.ID, domainagg.WeekInput{Title: "Extra"})
			return err
		}},
		{"UpdateCourseWeek", func(mc managedCourse) error {
			_, err := f.course.UpdateCourseWeek(ctx, helper, mc.week1.ID, domainagg.WeekPatch{Title: &renamed})
			return err
		}},
		{"DeleteCourseWeek", func(mc managedCourse) error {
			return f.course.DeleteCourseWeek(ctx, helper, mc.week2.ID)
		}},
		{"CreateLesson", func(mc managedCourse) error {
			_, err := f.course.CreateLesson(ctx, helper, mc.week1.ID, domainagg.LessonInput{Title: "Extra", Type: types.LessonTypeVideo})
			return err
		}},
		{"UpdateLesson", func(mc managedCourse) error {
			_, err := f.course.UpdateLesson(ctx, helper, mc.lesson.ID, domainagg.LessonPatch{Title: &renamed})
			return err
		}},
		{"DeleteLesson", func(mc managedCourse) error {
			return f.course.DeleteLesson(ctx, helper, mc.lesson.ID)
		}},
		{"CreateAssignment", func(mc managedCourse) error {
			_, err := f.course.CreateAssignment(ctx, helper, mc.week1.ID, domainagg.AssignmentInput{Title: "Extra", SubmissionType: types.SubmissionURL})
			return err
		}},
		{"UpdateAssignment", func(mc managedCourse) error {
			_, err := f.course.UpdateAssignment(ctx, helper, mc.assignment.ID, domainagg.AssignmentPatch{Title: &renamed})
			return err
		}},
		{"DeleteAssignment", func(mc managedCourse) error {
			return f.course.DeleteAssignment(ctx, helper, mc.assignment.ID)
		}},
		{"EnrollStudent", func(mc managedCourse) error {
			_, err := f.enrollment.EnrollStudent(ctx, helper, mc.course.ID, mc.candidate.UserID)
			return err
		}},
		{"RemoveStudentFromCourse", func(mc managedCourse) error {
			return f.enrollment.RemoveStudentFromCourse(ctx, helper, mc.course.ID, mc.enrolled.UserID)
		}},
		{"ReviewWithdrawalRequest", func(mc managedCourse) error {
			_, err := f.enrollment.ReviewWithdrawalRequest(ctx, helper, mc.pendingWithdrawal.ID, false, "stay")
			return err
		}},
		{"UnlockWeekForStudent", func(mc managedCourse) error {
			_, err := f.enrollment.UnlockWeekForStudent(ctx, helper, mc.week3.ID, mc.unlockee.UserID)
			return err
		}},
		{"AddInstructor", func(mc managedCourse) error {
			_, err := f.roster.AddInstructor(ctx, helper, mc.course.ID, mc.instructorToBe.UserID)
			return err
		}},
	}

	for _, tc := range cases {
		before := f.fingerprint(t, x.course.ID)
		if err := tc.call(x); !domainagg.IsCode(err, domainagg.CodeForbidden) {
			t.Fatalf("%s on unlisted course: want forbidden, got %v", tc.name, err)
		}
		if after := f.fingerprint(t, x.course.ID); after != before {
			t.Fatalf("%s changed unlisted course:\nbefore %s\nafter  %s", tc.name, before, after)
		}

		before = f.fingerprint(t, y.course.ID)
		if err := tc.call(y); err != nil {
			t.Fatalf("%s on listed course: %v", tc.name, err)
		}
		if after := f.fingerprint(t, y.course.ID); after == before {
			t.Fatalf("%s on listed course changed nothing: %s", tc.name, after)
		}
	}
}

func (f *lmsFixture) creatorOf(t *testing.T, courseID uuid.UUID) domainagg.Identity {
	t.Helper()
	c := f.reloadCourse(t, courseID)
	return domainagg.Identity{UserID: c.CreatorID, Role: types.RoleTeacher}
}
