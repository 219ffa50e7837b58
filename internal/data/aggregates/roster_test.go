package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

func TestAddInstructorRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.user(t, types.RoleTeacher)
	course := f.newCourse(t, creator, 5)
	helper := f.user(t, types.RoleTeacher)

	_, err := f.roster.AddInstructor(ctx, helper, course.ID, helper.UserID)
	requireCode(t, err, domainagg.CodeForbidden)

	_, err = f.roster.AddInstructor(ctx, creator, course.ID, f.user(t, types.RoleStudent).UserID)
	requireCode(t, err, domainagg.CodeValidation)

	_, err = f.roster.AddInstructor(ctx, creator, course.ID, uuid.New())
	requireCode(t, err, domainagg.CodeNotFound)

	row, err := f.roster.AddInstructor(ctx, creator, course.ID, helper.UserID)
	if err != nil {
		t.Fatalf("AddInstructor: %v", err)
	}
	if row.Role != types.InstructorRoleInstructor {
		t.Fatalf("role: want=instructor got=%s", row.Role)
	}

	_, err = f.roster.AddInstructor(ctx, creator, course.ID, helper.UserID)
	requireCode(t, err, domainagg.CodeConflict)
	_, err = f.roster.AddInstructor(ctx, helper, course.ID, creator.UserID)
	requireCode(t, err, domainagg.CodeConflict)
}

func TestRemoveInstructorNeverRemovesCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.user(t, types.RoleTeacher)
	admin := f.user(t, types.RoleAdmin)
	helper := f.user(t, types.RoleTeacher)
	other := f.user(t, types.RoleTeacher)
	course := f.newCourse(t, creator, 5)
	for _, u := range []domainagg.Identity{helper, other} {
		if _, err := f.roster.AddInstructor(ctx, creator, course.ID, u.UserID); err != nil {
			t.Fatalf("AddInstructor: %v", err)
		}
	}

	for name, actor := range map[string]domainagg.Identity{"creator": creator, "admin": admin, "instructor": helper} {
		t.Run(name, func(t *testing.T) {
			requireCode(t, f.roster.RemoveInstructor(ctx, actor, course.ID, creator.UserID), domainagg.CodeConflict)
		})
	}
	if ci, _ := f.instructors.GetByCourseAndUser(dbcBackground(), course.ID, creator.UserID); ci == nil {
		t.Fatalf("creator row must survive")
	}

	requireCode(t, f.roster.RemoveInstructor(ctx, helper, course.ID, other.UserID), domainagg.CodeForbidden)
	if err := f.roster.RemoveInstructor(ctx, admin, course.ID, other.UserID); err != nil {
		t.Fatalf("admin remove: %v", err)
	}
	if err := f.roster.RemoveInstructor(ctx, creator, course.ID, helper.UserID); err != nil {
		t.Fatalf("creator remove: %v", err)
	}
	requireCode(t, f.roster.RemoveInstructor(ctx, creator, course.ID, helper.UserID), domainagg.CodeNotFound)

	_, err := f.course.CreateLesson(ctx, helper, f.firstWeek(t, creator, course.ID).ID, domainagg.LessonInput{Title: "x", Type: types.LessonTypeReading})
	requireCode(t, err, domainagg.CodeForbidden)
}

func TestUpdateUserRoleAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, types.RoleAdmin)
	teacher := f.user(t, types.RoleTeacher)
	student := f.user(t, types.RoleStudent)

	_, err := f.roster.UpdateUserRole(ctx, teacher, student.UserID, "teacher")
	requireCode(t, err, domainagg.CodeForbidden)
	_, err = f.roster.UpdateUserRole(ctx, student, student.UserID, "admin")
	requireCode(t, err, domainagg.CodeForbidden)
	_, err = f.roster.UpdateUserRole(ctx, admin, student.UserID, "superuser")
	requireCode(t, err, domainagg.CodeValidation)
	_, err = f.roster.UpdateUserRole(ctx, admin, uuid.New(), "teacher")
	requireCode(t, err, domainagg.CodeNotFound)

	f.events.reset()
	u, err := f.roster.UpdateUserRole(ctx, admin, student.UserID, " Teacher ")
	if err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if u.Role != types.RoleTeacher {
		t.Fatalf("role: want=teacher got=%s", u.Role)
	}
	if got := f.events.eventTypes(); len(got) != 1 || got[0] != bus.EventUserRoleChanged {
		t.Fatalf("events: %v", got)
	}

	// Roles are reloaded per call: the promoted user can create courses now.
	if _, err := f.course.CreateCourse(ctx, domainagg.Identity{UserID: student.UserID, Role: types.RoleStudent}, domainagg.CreateCourseInput{Title: "New"}); err != nil {
		t.Fatalf("CreateCourse after promotion: %v", err)
	}

	f.events.reset()
	if _, err := f.roster.UpdateUserRole(ctx, admin, student.UserID, "teacher"); err != nil {
		t.Fatalf("no-op role update: %v", err)
	}
	if got := f.events.eventTypes(); len(got) != 0 {
		t.Fatalf("unchanged role must not publish: %v", got)
	}
}

func TestListInstructorsAndStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.user(t, types.RoleTeacher)
	helper := f.user(t, types.RoleTeacher)
	course := f.newCourse(t, creator, 5)
	if _, err := f.roster.AddInstructor(ctx, creator, course.ID, helper.UserID); err != nil {
		t.Fatalf("AddInstructor: %v", err)
	}
	enrolled := f.user(t, types.RoleStudent)
	outsider := f.user(t, types.RoleStudent)
	if _, err := f.enrollment.SelfEnrollInCourse(ctx, enrolled, course.ID); err != nil {
		t.Fatalf("SelfEnroll: %v", err)
	}

	staff, err := f.roster.ListInstructors(ctx, enrolled, course.ID)
	if err != nil {
		t.Fatalf("ListInstructors: %v", err)
	}
	if len(staff) != 2 || staff[0].UserID != creator.UserID || staff[0].Role != types.InstructorRoleCreator {
		t.Fatalf("staff: %+v", staff)
	}
	_, err = f.roster.ListInstructors(ctx, outsider, course.ID)
	requireCode(t, err, domainagg.CodeForbidden)

	students, err := f.enrollment.ListCourseStudents(ctx, helper, course.ID, types.EnrollmentActive)
	if err != nil || len(students) != 1 || students[0].UserID != enrolled.UserID {
		t.Fatalf("ListCourseStudents: %v %+v", err, students)
	}
	withdrawn, err := f.enrollment.ListCourseStudents(ctx, helper, course.ID, types.EnrollmentWithdrawn)
	if err != nil || withdrawn == nil || len(withdrawn) != 0 {
		t.Fatalf("withdrawn list should be empty and non-nil: %v %v", err, withdrawn)
	}
	_, err = f.enrollment.ListCourseStudents(ctx, enrolled, course.ID, "")
	requireCode(t, err, domainagg.CodeForbidden)
	_, err = f.enrollment.ListCourseStudents(ctx, helper, course.ID, "graduated")
	requireCode(t, err, domainagg.CodeValidation)
}

func (f *lmsFixture) firstWeek(t *testing.T, actor domainagg.Identity, courseID uuid.UUID) *types.CourseWeek {
	t.Helper()
	weeks, err := f.course.GetCourseWeeks(context.Background(), actor, courseID)
	if err != nil || len(weeks) == 0 {
		t.Fatalf("GetCourseWeeks: %v", err)
	}
	return weeks[0]
}
