package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/datatypes"

	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/validate"
	"github.com/yungbote/lms-backend/internal/policy"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

const DefaultMaxStudents = 30

type CourseAggregateDeps struct {
	Base BaseDeps

	Users       repos.UserRepo
	Courses     repos.CourseRepo
	Instructors repos.CourseInstructorRepo
	Weeks       repos.CourseWeekRepo
	Lessons     repos.LessonRepo
	Assignments repos.AssignmentRepo
	Enrollments repos.EnrollmentRepo
	Unlocks     repos.WeekUnlockRepo

	Scaffold *CourseScaffold
	// DefaultMaxStudents applies when a course is created with max_students 0.
	DefaultMaxStudents int
}

type courseAggregate struct {
	deps CourseAggregateDeps
	look lookups
}

func NewCourseAggregate(deps CourseAggregateDeps) domainagg.CourseAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Scaffold == nil {
		deps.Scaffold = FallbackCourseScaffold()
	}
	if deps.DefaultMaxStudents <= 0 {
		deps.DefaultMaxStudents = DefaultMaxStudents
	}
	return &courseAggregate{
		deps: deps,
		look: lookups{
			users:       deps.Users,
			courses:     deps.Courses,
			instructors: deps.Instructors,
			enrollments: deps.Enrollments,
		},
	}
}

func (a *courseAggregate) Contract() domainagg.Contract {
	return domainagg.CourseAggregateContract
}

func (a *courseAggregate) configured(op string) error {
	if !a.look.configured() || a.deps.Weeks == nil || a.deps.Lessons == nil || a.deps.Assignments == nil || a.deps.Unlocks == nil {
		return domainagg.NewError(domainagg.CodeCollaboratorFailure, op, "course aggregate repos not configured", nil)
	}
	return nil
}

func (a *courseAggregate) CreateCourse(ctx context.Context, id domainagg.Identity, in domainagg.CreateCourseInput) (*types.Course, error) {
	const op = "Learning.Course.Create"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var (
		out    *types.Course
		events outbox
	)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		actor, err := a.look.actor(dbc, op, id)
		if err != nil {
			return err
		}
		if !policy.CanCreateCourse(actor) {
			return forbidden(op, "only teachers and admins can create courses")
		}
		if err := validate.Struct(op, in); err != nil {
			return err
		}

		level := in.Level
		if level == "" {
			level = types.LevelBeginner
		}
		maxStudents := in.MaxStudents
		if maxStudents == 0 {
			maxStudents = a.deps.DefaultMaxStudents
		}
		course := &types.Course{
			CreatorID:       actor.UserID,
			Title:           strings.TrimSpace(in.Title),
			Description:     strings.TrimSpace(in.Description),
			Level:           level,
			MaxStudents:     maxStudents,
			CurrentStudents: 0,
			IsActive:        true,
		}
		if _, err := a.deps.Courses.Create(dbc, []*types.Course{course}); err != nil {
			return err
		}
		if _, err := a.deps.Instructors.Create(dbc, []*types.CourseInstructor{{
			CourseID: course.ID,
			UserID:   actor.UserID,
			Role:     types.InstructorRoleCreator,
		}}); err != nil {
			return err
		}

		weeks := a.scaffoldWeeks(course.ID, a.deps.Base.now())
		if _, err := a.deps.Weeks.Create(dbc, weeks); err != nil {
			return err
		}
		course.Weeks = weeks
		out = course

		events.add(bus.Event{
			Type:     bus.EventCourseCreated,
			CourseID: course.ID,
			ActorID:  actor.UserID,
			Data:     datatypes.JSONMap{"title": course.Title, "weeks": len(weeks)},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.flush(ctx, a.deps.Base)
	return out, nil
}

// scaffoldWeeks builds weeks 1..12. Week 1 opens today (UTC midnight); the
// rest start locked.
func (a *courseAggregate) scaffoldWeeks(courseID uuid.UUID, now time.Time) []*types.CourseWeek {
	today := startOfDayUTC(now)
	weeks := make([]*types.CourseWeek, 0, len(a.deps.Scaffold.Weeks))
	for _, sw := range a.deps.Scaffold.Weeks {
		w := &types.CourseWeek{
			CourseID:    courseID,
			WeekNumber:  sw.Number,
			Title:       sw.Title,
			Description: sw.Description,
			Objectives:  datatypes.JSONSlice[string](append([]string{}, sw.Objectives...)),
			Topics:      datatypes.JSONSlice[string](append([]string{}, sw.Topics...)),
			IsLocked:    sw.Number != 1,
		}
		if sw.Number == 1 {
			unlock := today
			w.UnlockDate = &unlock
		}
		weeks = append(weeks, w)
	}
	return weeks
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (a *courseAggregate) GetCourse(ctx context.Context, id domainagg.Identity, courseID uuid.UUID) (*types.Course, error) {
	const op = "Learning.Course.Get"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out *types.Course
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		_, course, err := a.look.authorize(dbc, op, id, courseID, false, policy.CanAccess, "not allowed to view this course")
		if err != nil {
			return err
		}
		out = course
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *courseAggregate) DeleteCourse(ctx context.Context, id domainagg.Identity, courseID uuid.UUID) error {
	const op = "Learning.Course.Delete"
	if err := a.configured(op); err != nil {
		return err
	}
	var events outbox
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		actor, course, err := a.look.authorize(dbc, op, id, courseID, true, policy.CanDeleteCourse, "only the course creator or an admin can delete a course")
		if err != nil {
			return err
		}
		ok, err := a.deps.Courses.SoftDelete(dbc, course.ID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(op, "course not found")
		}
		events.add(bus.Event{Type: bus.EventCourseDeleted, CourseID: course.ID, ActorID: actor.UserID})
		return nil
	})
	if err != nil {
		return err
	}
	events.flush(ctx, a.deps.Base)
	return nil
}

func (a *courseAggregate) CreateCourseWeek(ctx context.Context, id domainagg.Identity, courseID uuid.UUID, in domainagg.WeekInput) (*types.CourseWeek, error) {
	const op = "Learning.Course.CreateWeek"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out *types.CourseWeek
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		// The course row lock serializes concurrent week creation.
		_, course, err := a.look.authorize(dbc, op, id, courseID, true, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		count, err := a.deps.Weeks.CountByCourse(dbc, course.ID)
		if err != nil {
			return err
		}
		if count >= types.MaxWeeksPerCourse {
			return capacityExceeded(op, fmt.Sprintf("course already has %d weeks", types.MaxWeeksPerCourse))
		}
		if err := validate.Struct(op, in); err != nil {
			return err
		}

		existing, err := a.deps.Weeks.ListByCourse(dbc, course.ID)
		if err != nil {
			return err
		}
		taken := lo.Map(existing, func(w *types.CourseWeek, _ int) int { return w.WeekNumber })
		number := in.WeekNumber
		if number == 0 {
			number = lowestFreeWeek(taken)
		} else if lo.Contains(taken, number) {
			return conflict(op, fmt.Sprintf("week %d already exists", number))
		}
		if number == 0 {
			return capacityExceeded(op, fmt.Sprintf("course already has %d weeks", types.MaxWeeksPerCourse))
		}

		week := &types.CourseWeek{
			CourseID:    course.ID,
			WeekNumber:  number,
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			Objectives:  datatypes.JSONSlice[string](orEmpty(in.Objectives)),
			Topics:      datatypes.JSONSlice[string](orEmpty(in.Topics)),
			IsLocked:    in.IsLocked,
			UnlockDate:  utcPtr(in.UnlockDate),
		}
		if _, err := a.deps.Weeks.Create(dbc, []*types.CourseWeek{week}); err != nil {
			return err
		}
		out = week
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// lowestFreeWeek returns the smallest week number not in taken, or 0 when
// every slot is used.
func lowestFreeWeek(taken []int) int {
	for n := 1; n <= types.MaxWeeksPerCourse; n++ {
		if !lo.Contains(taken, n) {
			return n
		}
	}
	return 0
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// weekOwner resolves a week and authorizes against the course that owns it.
func (a *courseAggregate) weekOwner(
	dbc dbctx.Context,
	op string,
	actor policy.Actor,
	weekID uuid.UUID,
	lock bool,
	check func(policy.Actor, policy.CourseFacts) bool,
	denial string,
) (*types.CourseWeek, *types.Course, error) {
	week, err := a.deps.Weeks.GetByID(dbc, weekID)
	if err != nil {
		return nil, nil, err
	}
	if week == nil {
		return nil, nil, notFound(op, "week not found")
	}
	course, err := a.look.authorizeFor(dbc, op, actor, week.CourseID, lock, check, denial)
	if err != nil {
		return nil, nil, err
	}
	return week, course, nil
}

// weekFor is weekOwner for callers holding only the identity.
func (a *courseAggregate) weekFor(
	dbc dbctx.Context,
	op string,
	id domainagg.Identity,
	weekID uuid.UUID,
	lock bool,
	check func(policy.Actor, policy.CourseFacts) bool,
	denial string,
) (*types.CourseWeek, error) {
	actor, err := a.look.actor(dbc, op, id)
	if err != nil {
		return nil, err
	}
	week, _, err := a.weekOwner(dbc, op, actor, weekID, lock, check, denial)
	return week, err
}

func (a *courseAggregate) UpdateCourseWeek(ctx context.Context, id domainagg.Identity, weekID uuid.UUID, in domainagg.WeekPatch) (*types.CourseWeek, error) {
	const op = "Learning.Course.UpdateWeek"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out *types.CourseWeek
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		week, err := a.weekFor(dbc, op, id, weekID, false, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		if err := validate.Struct(op, in); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			updates["description"] = strings.TrimSpace(*in.Description)
		}
		if in.Objectives != nil {
			updates["objectives"] = datatypes.JSONSlice[string](orEmpty(*in.Objectives))
		}
		if in.Topics != nil {
			updates["topics"] = datatypes.JSONSlice[string](orEmpty(*in.Topics))
		}
		if in.IsLocked != nil {
			updates["is_locked"] = *in.IsLocked
		}
		if in.UnlockDate != nil {
			updates["unlock_date"] = utcPtr(in.UnlockDate)
		}
		if len(updates) > 0 {
			updates["updated_at"] = a.deps.Base.now()
			if err := a.deps.Weeks.UpdateFields(dbc, week.ID, updates); err != nil {
				return err
			}
		}
		out, err = a.deps.Weeks.GetByID(dbc, week.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *courseAggregate) DeleteCourseWeek(ctx context.Context, id domainagg.Identity, weekID uuid.UUID) error {
	const op = "Learning.Course.DeleteWeek"
	if err := a.configured(op); err != nil {
		return err
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		week, err := a.weekFor(dbc, op, id, weekID, true, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		if err := a.deps.Lessons.DeleteByWeekID(dbc, week.ID); err != nil {
			return err
		}
		if err := a.deps.Assignments.DeleteByWeekID(dbc, week.ID); err != nil {
			return err
		}
		if err := a.deps.Unlocks.DeleteByWeekID(dbc, week.ID); err != nil {
			return err
		}
		ok, err := a.deps.Weeks.DeleteByID(dbc, week.ID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(op, "week not found")
		}
		return nil
	})
}

func (a *courseAggregate) GetCourseWeeks(ctx context.Context, id domainagg.Identity, courseID uuid.UUID) ([]*types.CourseWeek, error) {
	const op = "Learning.Course.GetWeeks"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out []*types.CourseWeek
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		_, course, err := a.look.authorize(dbc, op, id, courseID, false, policy.CanAccess, "not allowed to view this course")
		if err != nil {
			return err
		}
		out, err = a.deps.Weeks.ListByCourse(dbc, course.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

func (a *courseAggregate) CreateLesson(ctx context.Context, id domainagg.Identity, weekID uuid.UUID, in domainagg.LessonInput) (*types.Lesson, error) {
	const op = "Learning.Course.CreateLesson"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out *types.Lesson
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		week, err := a.weekFor(dbc, op, id, weekID, false, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		if err := validate.Struct(op, in); err != nil {
			return err
		}
		lesson := &types.Lesson{
			WeekID:          week.ID,
			Title:           strings.TrimSpace(in.Title),
			Type:            in.Type,
			OrderIndex:      in.OrderIndex,
			DurationMinutes: in.DurationMinutes,
			Points:          in.Points,
			IsRequired:      in.IsRequired,
			ContentURL:      strings.TrimSpace(in.ContentURL),
			ContentText:     in.ContentText,
		}
		if _, err := a.deps.Lessons.Create(dbc, []*types.Lesson{lesson}); err != nil {
			return err
		}
		out = lesson
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *courseAggregate) lessonOwner(dbc dbctx.Context, op string, id domainagg.Identity, lessonID uuid.UUID) (*types.Lesson, error) {
	actor, err := a.look.actor(dbc, op, id)
	if err != nil {
		return nil, err
	}
	lesson, err := a.deps.Lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, notFound(op, "lesson not found")
	}
	if _, _, err := a.weekOwner(dbc, op, actor, lesson.WeekID, false, policy.CanManage, "not an instructor of this course"); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (a *courseAggregate) UpdateLesson(ctx context.Context, id domainagg.Identity, lessonID uuid.UUID, in domainagg.LessonPatch) (*types.Lesson, error) {
	const op = "Learning.Course.UpdateLesson"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out *types.Lesson
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		lesson, err := a.lessonOwner(dbc, op, id, lessonID)
		if err != nil {
			return err
		}
		if err := validate.Struct(op, in); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Type != nil {
			updates["type"] = *in.Type
		}
		if in.OrderIndex != nil {
			updates["order_index"] = *in.OrderIndex
		}
		if in.DurationMinutes != nil {
			updates["duration_minutes"] = *in.DurationMinutes
		}
		if in.Points != nil {
			updates["points"] = *in.Points
		}
		if in.IsRequired != nil {
			updates["is_required"] = *in.IsRequired
		}
		if in.ContentURL != nil {
			updates["content_url"] = strings.TrimSpace(*in.ContentURL)
		}
		if in.ContentText != nil {
			updates["content_text"] = *in.ContentText
		}
		if len(updates) > 0 {
			updates["updated_at"] = a.deps.Base.now()
			if err := a.deps.Lessons.UpdateFields(dbc, lesson.ID, updates); err != nil {
				return err
			}
		}
		out, err = a.deps.Lessons.GetByID(dbc, lesson.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *courseAggregate) DeleteLesson(ctx context.Context, id domainagg.Identity, lessonID uuid.UUID) error {
	const op = "Learning.Course.DeleteLesson"
	if err := a.configured(op); err != nil {
		return err
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		lesson, err := a.lessonOwner(dbc, op, id, lessonID)
		if err != nil {
			return err
		}
		ok, err := a.deps.Lessons.DeleteByID(dbc, lesson.ID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(op, "lesson not found")
		}
		return nil
	})
}

func (a *courseAggregate) GetWeekLessons(ctx context.Context, id domainagg.Identity, weekID uuid.UUID) ([]*types.Lesson, error) {
	const op = "Learning.Course.GetWeekLessons"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out []*types.Lesson
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		week, err := a.weekFor(dbc, op, id, weekID, false, policy.CanAccess, "not allowed to view this course")
		if err != nil {
			return err
		}
		out, err = a.deps.Lessons.ListByWeek(dbc, week.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

func (a *courseAggregate) CreateAssignment(ctx context.Context, id domainagg.Identity, weekID uuid.UUID, in domainagg.AssignmentInput) (*types.Assignment, error) {
	const op = "Learning.Course.CreateAssignment"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out *types.Assignment
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		week, err := a.weekFor(dbc, op, id, weekID, false, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		if err := validate.Struct(op, in); err != nil {
			return err
		}
		row := &types.Assignment{
			WeekID:         week.ID,
			Title:          strings.TrimSpace(in.Title),
			Description:    strings.TrimSpace(in.Description),
			MaxPoints:      in.MaxPoints,
			DueDate:        utcPtr(in.DueDate),
			IsRequired:     in.IsRequired,
			SubmissionType: in.SubmissionType,
		}
		if _, err := a.deps.Assignments.Create(dbc, []*types.Assignment{row}); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *courseAggregate) assignmentOwner(dbc dbctx.Context, op string, id domainagg.Identity, assignmentID uuid.UUID) (*types.Assignment, error) {
	actor, err := a.look.actor(dbc, op, id)
	if err != nil {
		return nil, err
	}
	row, err := a.deps.Assignments.GetByID(dbc, assignmentID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, notFound(op, "assignment not found")
	}
	if _, _, err := a.weekOwner(dbc, op, actor, row.WeekID, false, policy.CanManage, "not an instructor of this course"); err != nil {
		return nil, err
	}
	return row, nil
}

func (a *courseAggregate) UpdateAssignment(ctx context.Context, id domainagg.Identity, assignmentID uuid.UUID, in domainagg.AssignmentPatch) (*types.Assignment, error) {
	const op = "Learning.Course.UpdateAssignment"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out *types.Assignment
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.assignmentOwner(dbc, op, id, assignmentID)
		if err != nil {
			return err
		}
		if err := validate.Struct(op, in); err != nil {
			return err
		}
		if in.ClearDueDate && in.DueDate != nil {
			return invalid(op, "due_date", "due_date and clear_due_date are mutually exclusive")
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			updates["description"] = strings.TrimSpace(*in.Description)
		}
		if in.MaxPoints != nil {
			updates["max_points"] = *in.MaxPoints
		}
		if in.DueDate != nil {
			updates["due_date"] = utcPtr(in.DueDate)
		}
		if in.ClearDueDate {
			updates["due_date"] = nil
		}
		if in.IsRequired != nil {
			updates["is_required"] = *in.IsRequired
		}
		if in.SubmissionType != nil {
			updates["submission_type"] = *in.SubmissionType
		}
		if len(updates) > 0 {
			updates["updated_at"] = a.deps.Base.now()
			if err := a.deps.Assignments.UpdateFields(dbc, row.ID, updates); err != nil {
				return err
			}
		}
		out, err = a.deps.Assignments.GetByID(dbc, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *courseAggregate) DeleteAssignment(ctx context.Context, id domainagg.Identity, assignmentID uuid.UUID) error {
	const op = "Learning.Course.DeleteAssignment"
	if err := a.configured(op); err != nil {
		return err
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.assignmentOwner(dbc, op, id, assignmentID)
		if err != nil {
			return err
		}
		ok, err := a.deps.Assignments.DeleteByID(dbc, row.ID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(op, "assignment not found")
		}
		return nil
	})
}

func (a *courseAggregate) GetWeekAssignments(ctx context.Context, id domainagg.Identity, weekID uuid.UUID) ([]*types.Assignment, error) {
	const op = "Learning.Course.GetWeekAssignments"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out []*types.Assignment
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		week, err := a.weekFor(dbc, op, id, weekID, false, policy.CanAccess, "not allowed to view this course")
		if err != nil {
			return err
		}
		out, err = a.deps.Assignments.ListByWeek(dbc, week.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}
