package aggregates

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/repos"
	repotest "github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

// lmsFixture wires the three aggregates over one migrated database.
type lmsFixture struct {
	db     *gorm.DB
	events *recordingBus

	users       repos.UserRepo
	courses     repos.CourseRepo
	instructors repos.CourseInstructorRepo
	weeks       repos.CourseWeekRepo
	lessons     repos.LessonRepo
	assignments repos.AssignmentRepo
	enrollments repos.EnrollmentRepo
	unlocks     repos.WeekUnlockRepo
	withdrawals repos.WithdrawalRequestRepo

	course     domainagg.CourseAggregate
	enrollment domainagg.EnrollmentAggregate
	roster     domainagg.RosterAggregate
}

func newFixture(t *testing.T) *lmsFixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	f := &lmsFixture{
		db:          db,
		events:      &recordingBus{},
		users:       repos.NewUserRepo(db, log),
		courses:     repos.NewCourseRepo(db, log),
		instructors: repos.NewCourseInstructorRepo(db, log),
		weeks:       repos.NewCourseWeekRepo(db, log),
		lessons:     repos.NewLessonRepo(db, log),
		assignments: repos.NewAssignmentRepo(db, log),
		enrollments: repos.NewEnrollmentRepo(db, log),
		unlocks:     repos.NewWeekUnlockRepo(db, log),
		withdrawals: repos.NewWithdrawalRequestRepo(db, log),
	}
	f.rewire(f.courses)
	return f
}

// rewire rebuilds the aggregates around courses, so a test can wrap the
// course repo with failure injection.
func (f *lmsFixture) rewire(courses repos.CourseRepo) {
	base := BaseDeps{DB: f.db, Events: f.events}
	f.course = NewCourseAggregate(CourseAggregateDeps{
		Base:        base,
		Users:       f.users,
		Courses:     courses,
		Instructors: f.instructors,
		Weeks:       f.weeks,
		Lessons:     f.lessons,
		Assignments: f.assignments,
		Enrollments: f.enrollments,
		Unlocks:     f.unlocks,
	})
	f.enrollment = NewEnrollmentAggregate(EnrollmentAggregateDeps{
		Base:        base,
		Users:       f.users,
		Courses:     courses,
		Instructors: f.instructors,
		Weeks:       f.weeks,
		Enrollments: f.enrollments,
		Unlocks:     f.unlocks,
		Withdrawals: f.withdrawals,
	})
	f.roster = NewRosterAggregate(RosterAggregateDeps{
		Base:        base,
		Users:       f.users,
		Courses:     courses,
		Instructors: f.instructors,
		Enrollments: f.enrollments,
	})
}

func (f *lmsFixture) user(t *testing.T, role types.Role) domainagg.Identity {
	t.Helper()
	u := repotest.SeedUser(t, f.db, role)
	return domainagg.Identity{UserID: u.ID, Role: u.Role}
}

// newCourse creates a scaffolded course through the aggregate.
func (f *lmsFixture) newCourse(t *testing.T, creator domainagg.Identity, maxStudents int) *types.Course {
	t.Helper()
	c, err := f.course.CreateCourse(context.Background(), creator, domainagg.CreateCourseInput{
		Title:       "Distributed Systems",
		MaxStudents: maxStudents,
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	return c
}

func (f *lmsFixture) reloadCourse(t *testing.T, id uuid.UUID) *types.Course {
	t.Helper()
	c, err := f.courses.GetByID(dbcBackground(), id)
	if err != nil || c == nil {
		t.Fatalf("reload course: %v", err)
	}
	return c
}

func (f *lmsFixture) enrollmentOf(t *testing.T, userID, courseID uuid.UUID) *types.Enrollment {
	t.Helper()
	e, err := f.enrollments.GetByUserAndCourse(dbcBackground(), userID, courseID)
	if err != nil {
		t.Fatalf("load enrollment: %v", err)
	}
	return e
}

func (f *lmsFixture) unlocksOf(t *testing.T, userID, courseID uuid.UUID) []*types.WeekUnlock {
	t.Helper()
	rows, err := f.unlocks.ListByUserAndCourse(dbcBackground(), userID, courseID)
	if err != nil {
		t.Fatalf("list unlocks: %v", err)
	}
	return rows
}

func requireCode(t *testing.T, err error, want domainagg.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", want)
	}
	if got := domainagg.CodeOf(err); got != want {
		t.Fatalf("code: want=%s got=%s (%v)", want, got, err)
	}
}

type recordingBus struct {
	mu     sync.Mutex
	events []bus.Event
}

func (b *recordingBus) Publish(_ context.Context, ev bus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) eventTypes() []bus.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]bus.EventType, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Type)
	}
	return out
}

func (b *recordingBus) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

// failingDecrementCourses fails the counter release so a review approval
// has to roll back after its earlier writes succeeded.
type failingDecrementCourses struct {
	repos.CourseRepo
	err error
}

func (r failingDecrementCourses) DecrementStudents(dbctx.Context, uuid.UUID) (bool, error) {
	return false, r.err
}

func dbcBackground() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}
