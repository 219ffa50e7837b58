package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/datatypes"

	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/policy"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

const (
	enrollmentTable        = "enrollment"
	withdrawalRequestTable = "withdrawal_request"

	maxWithdrawalReasonLen = 2000
	maxReviewNotesLen      = 2000
)

type EnrollmentAggregateDeps struct {
	Base BaseDeps

	Users       repos.UserRepo
	Courses     repos.CourseRepo
	Instructors repos.CourseInstructorRepo
	Weeks       repos.CourseWeekRepo
	Enrollments repos.EnrollmentRepo
	Unlocks     repos.WeekUnlockRepo
	Withdrawals repos.WithdrawalRequestRepo
}

type enrollmentAggregate struct {
	deps EnrollmentAggregateDeps
	look lookups
}

func NewEnrollmentAggregate(deps EnrollmentAggregateDeps) domainagg.EnrollmentAggregate {
	deps.Base = deps.Base.withDefaults()
	return &enrollmentAggregate{
		deps: deps,
		look: lookups{
			users:       deps.Users,
			courses:     deps.Courses,
			instructors: deps.Instructors,
			enrollments: deps.Enrollments,
		},
	}
}

func (a *enrollmentAggregate) Contract() domainagg.Contract {
	return domainagg.EnrollmentAggregateContract
}

func (a *enrollmentAggregate) configured(op string) error {
	if !a.look.configured() || a.deps.Weeks == nil || a.deps.Unlocks == nil || a.deps.Withdrawals == nil {
		return domainagg.NewError(domainagg.CodeCollaboratorFailure, op, "enrollment aggregate repos not configured", nil)
	}
	return nil
}

func (a *enrollmentAggregate) SelfEnrollInCourse(ctx context.Context, id domainagg.Identity, courseID uuid.UUID) (*types.Enrollment, error) {
	const op = "Learning.Enrollment.SelfEnroll"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var (
		out    *types.Enrollment
		events outbox
	)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		actor, err := a.look.actor(dbc, op, id)
		if err != nil {
			return err
		}
		if !actor.IsStudent() {
			return forbidden(op, "only students can self-enroll")
		}
		course, err := a.look.activeCourse(dbc, op, courseID, true)
		if err != nil {
			return err
		}

		existing, err := a.deps.Enrollments.GetByUserAndCourse(dbc, actor.UserID, course.ID)
		if err != nil {
			return err
		}
		// Conflicts win over capacity; only a seat-taking path checks the cap.
		if existing != nil && existing.Status == types.EnrollmentActive {
			return conflict(op, "already enrolled in this course")
		}
		if existing != nil && existing.Status != types.EnrollmentWithdrawn {
			return conflict(op, fmt.Sprintf("enrollment is %s", existing.Status))
		}
		if !course.HasCapacity() {
			return capacityExceeded(op, "course is full")
		}

		now := a.deps.Base.now()
		reactivated := false
		switch {
		case existing == nil:
			e := &types.Enrollment{
				UserID:      actor.UserID,
				CourseID:    course.ID,
				Status:      types.EnrollmentActive,
				Progress:    0,
				CurrentWeek: 1,
				EnrolledAt:  now,
			}
			if _, err := a.deps.Enrollments.Create(dbc, []*types.Enrollment{e}); err != nil {
				return err
			}
			existing = e
		default:
			ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, enrollmentTable, existing.ID,
				[]string{string(types.EnrollmentWithdrawn)},
				map[string]any{
					"status":      types.EnrollmentActive,
					"enrolled_at": now,
					"updated_at":  now,
				})
			if err != nil {
				return err
			}
			if err := RequireCASSuccess(ok, "enrollment changed concurrently"); err != nil {
				return err
			}
			reactivated = true
		}

		unlocked, err := a.unlockFirstWeek(dbc, actor.UserID, course.ID)
		if err != nil {
			return err
		}
		if err := a.incrementStudents(dbc, op, course.ID); err != nil {
			return err
		}

		out, err = a.deps.Enrollments.GetByID(dbc, existing.ID)
		if err != nil {
			return err
		}
		events.add(bus.Event{
			Type:     bus.EventEnrollmentActivated,
			CourseID: course.ID,
			UserID:   actor.UserID,
			ActorID:  actor.UserID,
			Data:     datatypes.JSONMap{"reactivated": reactivated, "self": true},
		})
		if unlocked != nil {
			events.add(weekUnlockedEvent(unlocked, actor.UserID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.flush(ctx, a.deps.Base)
	return out, nil
}

func (a *enrollmentAggregate) EnrollStudent(ctx context.Context, id domainagg.Identity, courseID, studentID uuid.UUID) (*types.Enrollment, error) {
	const op = "Learning.Enrollment.EnrollStudent"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var (
		out    *types.Enrollment
		events outbox
	)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		actor, course, err := a.look.authorize(dbc, op, id, courseID, true, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		student, err := a.deps.Users.GetByID(dbc, studentID)
		if err != nil {
			return err
		}
		if student == nil || !student.IsActive {
			return notFound(op, "student not found")
		}
		if !student.IsStudent() {
			return invalid(op, "student_id", "target user is not a student")
		}
		existing, err := a.deps.Enrollments.GetByUserAndCourse(dbc, student.ID, course.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflict(op, fmt.Sprintf("student already has a %s enrollment", existing.Status))
		}
		if !course.HasCapacity() {
			return capacityExceeded(op, "course is full")
		}

		e := &types.Enrollment{
			UserID:      student.ID,
			CourseID:    course.ID,
			Status:      types.EnrollmentActive,
			Progress:    0,
			CurrentWeek: 1,
			EnrolledAt:  a.deps.Base.now(),
		}
		if _, err := a.deps.Enrollments.Create(dbc, []*types.Enrollment{e}); err != nil {
			return err
		}
		unlocked, err := a.unlockFirstWeek(dbc, student.ID, course.ID)
		if err != nil {
			return err
		}
		if err := a.incrementStudents(dbc, op, course.ID); err != nil {
			return err
		}
		out = e

		events.add(bus.Event{
			Type:     bus.EventEnrollmentActivated,
			CourseID: course.ID,
			UserID:   student.ID,
			ActorID:  actor.UserID,
			Data:     datatypes.JSONMap{"reactivated": false, "self": false},
		})
		if unlocked != nil {
			events.add(weekUnlockedEvent(unlocked, actor.UserID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.flush(ctx, a.deps.Base)
	return out, nil
}

// unlockFirstWeek grants week 1 automatically. It returns the new unlock, or
// nil when the course has no week 1 or the student already had it.
func (a *enrollmentAggregate) unlockFirstWeek(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.WeekUnlock, error) {
	w1, err := a.deps.Weeks.GetByCourseAndNumber(dbc, courseID, 1)
	if err != nil || w1 == nil {
		return nil, err
	}
	row := &types.WeekUnlock{
		UserID:      userID,
		WeekID:      w1.ID,
		CourseID:    courseID,
		IsAutomatic: true,
		UnlockedAt:  a.deps.Base.now(),
	}
	created, err := a.deps.Unlocks.Upsert(dbc, row)
	if err != nil || !created {
		return nil, err
	}
	return row, nil
}

// incrementStudents is the guarded counter bump; zero rows means the course
// filled up (or was deleted) since it was read.
func (a *enrollmentAggregate) incrementStudents(dbc dbctx.Context, op string, courseID uuid.UUID) error {
	ok, err := a.deps.Courses.IncrementStudents(dbc, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return capacityExceeded(op, "course is full")
	}
	return nil
}

func weekUnlockedEvent(u *types.WeekUnlock, actorID uuid.UUID) bus.Event {
	return bus.Event{
		Type:     bus.EventWeekUnlocked,
		CourseID: u.CourseID,
		UserID:   u.UserID,
		ActorID:  actorID,
		Data:     datatypes.JSONMap{"week_id": u.WeekID.String(), "automatic": u.IsAutomatic},
	}
}

func (a *enrollmentAggregate) RemoveStudentFromCourse(ctx context.Context, id domainagg.Identity, courseID, studentID uuid.UUID) error {
	const op = "Learning.Enrollment.RemoveStudent"
	if err := a.configured(op); err != nil {
		return err
	}
	var events outbox
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		actor, course, err := a.look.authorize(dbc, op, id, courseID, true, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		if err := a.removeStudent(dbc, op, course.ID, studentID); err != nil {
			return err
		}
		events.add(bus.Event{
			Type:     bus.EventEnrollmentWithdrawn,
			CourseID: course.ID,
			UserID:   studentID,
			ActorID:  actor.UserID,
			Data:     datatypes.JSONMap{"reason": "removed"},
		})
		return nil
	})
	if err != nil {
		return err
	}
	events.flush(ctx, a.deps.Base)
	return nil
}

// removeStudent withdraws an active enrollment, releases its seat and clears
// the student's week unlocks. A non-active student never touches the counter.
func (a *enrollmentAggregate) removeStudent(dbc dbctx.Context, op string, courseID, studentID uuid.UUID) error {
	e, err := a.deps.Enrollments.GetByUserAndCourse(dbc, studentID, courseID)
	if err != nil {
		return err
	}
	if e == nil || !e.IsActive() {
		return notFound(op, "student is not enrolled in this course")
	}
	ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, enrollmentTable, e.ID,
		[]string{string(types.EnrollmentActive)},
		map[string]any{
			"status":     types.EnrollmentWithdrawn,
			"updated_at": a.deps.Base.now(),
		})
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, "enrollment changed concurrently"); err != nil {
		return err
	}
	decremented, err := a.deps.Courses.DecrementStudents(dbc, courseID)
	if err != nil {
		return err
	}
	if !decremented {
		a.deps.Base.Log.Warn("student counter already at zero on removal",
			"course_id", courseID.String(),
			"student_id", studentID.String(),
		)
	}
	return a.deps.Unlocks.DeleteByUserAndCourse(dbc, studentID, courseID)
}

func (a *enrollmentAggregate) RequestWithdrawal(ctx context.Context, id domainagg.Identity, courseID uuid.UUID, reason string) (*types.WithdrawalRequest, error) {
	const op = "Learning.Enrollment.RequestWithdrawal"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var (
		out    *types.WithdrawalRequest
		events outbox
	)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		actor, err := a.look.actor(dbc, op, id)
		if err != nil {
			return err
		}
		if !actor.IsStudent() {
			return forbidden(op, "only students can request withdrawal")
		}
		course, err := a.look.activeCourse(dbc, op, courseID, false)
		if err != nil {
			return err
		}
		e, err := a.deps.Enrollments.GetByUserAndCourse(dbc, actor.UserID, course.ID)
		if err != nil {
			return err
		}
		if e == nil || !e.IsActive() {
			return forbidden(op, "not enrolled in this course")
		}
		reason = strings.TrimSpace(reason)
		if len(reason) > maxWithdrawalReasonLen {
			return invalid(op, "reason", fmt.Sprintf("reason must be at most %d characters", maxWithdrawalReasonLen))
		}
		pending, err := a.deps.Withdrawals.GetPending(dbc, actor.UserID, course.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			return conflict(op, "a withdrawal request is already pending")
		}

		req := &types.WithdrawalRequest{
			UserID:   actor.UserID,
			CourseID: course.ID,
			Status:   types.WithdrawalPending,
			Reason:   reason,
		}
		if _, err := a.deps.Withdrawals.Create(dbc, []*types.WithdrawalRequest{req}); err != nil {
			return err
		}
		out = req
		events.add(bus.Event{
			Type:     bus.EventWithdrawalRequested,
			CourseID: course.ID,
			UserID:   actor.UserID,
			ActorID:  actor.UserID,
			Data:     datatypes.JSONMap{"request_id": req.ID.String()},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.flush(ctx, a.deps.Base)
	return out, nil
}

func (a *enrollmentAggregate) ReviewWithdrawalRequest(ctx context.Context, id domainagg.Identity, requestID uuid.UUID, approved bool, notes string) (*types.WithdrawalRequest, error) {
	const op = "Learning.Enrollment.ReviewWithdrawal"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var (
		out    *types.WithdrawalRequest
		events outbox
	)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		actor, err := a.look.actor(dbc, op, id)
		if err != nil {
			return err
		}
		req, err := a.deps.Withdrawals.GetByID(dbc, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return notFound(op, "withdrawal request not found")
		}
		course, err := a.look.authorizeFor(dbc, op, actor, req.CourseID, true, policy.CanReview, "not allowed to review withdrawals for this course")
		if err != nil {
			return err
		}
		if err := RequireStatusAllowed(string(req.Status), string(types.WithdrawalPending)); err != nil {
			return conflict(op, fmt.Sprintf("withdrawal request already %s", req.Status))
		}
		notes = strings.TrimSpace(notes)
		if len(notes) > maxReviewNotesLen {
			return invalid(op, "notes", fmt.Sprintf("notes must be at most %d characters", maxReviewNotesLen))
		}

		status := types.WithdrawalDenied
		if approved {
			status = types.WithdrawalApproved
		}
		now := a.deps.Base.now()
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, withdrawalRequestTable, req.ID,
			[]string{string(types.WithdrawalPending)},
			map[string]any{
				"status":       status,
				"reviewed_by":  actor.UserID,
				"reviewed_at":  now,
				"review_notes": notes,
				"updated_at":   now,
			})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "withdrawal request already reviewed"); err != nil {
			return err
		}
		if approved {
			if err := a.removeStudent(dbc, op, course.ID, req.UserID); err != nil {
				return err
			}
			events.add(bus.Event{
				Type:     bus.EventEnrollmentWithdrawn,
				CourseID: course.ID,
				UserID:   req.UserID,
				ActorID:  actor.UserID,
				Data:     datatypes.JSONMap{"reason": "withdrawal_approved", "request_id": req.ID.String()},
			})
		}

		out, err = a.deps.Withdrawals.GetByID(dbc, req.ID)
		if err != nil {
			return err
		}
		events.add(bus.Event{
			Type:     bus.EventWithdrawalReviewed,
			CourseID: course.ID,
			UserID:   req.UserID,
			ActorID:  actor.UserID,
			Data:     datatypes.JSONMap{"request_id": req.ID.String(), "status": string(status)},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.flush(ctx, a.deps.Base)
	return out, nil
}

func (a *enrollmentAggregate) ListWithdrawalRequests(ctx context.Context, id domainagg.Identity, courseID uuid.UUID, status types.WithdrawalStatus) ([]*types.WithdrawalRequest, error) {
	const op = "Learning.Enrollment.ListWithdrawals"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out []*types.WithdrawalRequest
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		_, course, err := a.look.authorize(dbc, op, id, courseID, false, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		if status != "" && !lo.Contains([]types.WithdrawalStatus{
			types.WithdrawalPending, types.WithdrawalApproved, types.WithdrawalDenied,
		}, status) {
			return invalid(op, "status", "status must be one of pending approved denied")
		}
		out, err = a.deps.Withdrawals.ListByCourse(dbc, course.ID, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

func (a *enrollmentAggregate) ListCourseStudents(ctx context.Context, id domainagg.Identity, courseID uuid.UUID, status types.EnrollmentStatus) ([]*types.Enrollment, error) {
	const op = "Learning.Enrollment.ListStudents"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out []*types.Enrollment
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		_, course, err := a.look.authorize(dbc, op, id, courseID, false, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		if status != "" && !lo.Contains([]types.EnrollmentStatus{
			types.EnrollmentActive, types.EnrollmentCompleted, types.EnrollmentPaused, types.EnrollmentWithdrawn,
		}, status) {
			return invalid(op, "status", "status must be one of active completed paused withdrawn")
		}
		out, err = a.deps.Enrollments.ListByCourse(dbc, course.ID, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

func (a *enrollmentAggregate) UnlockWeekForStudent(ctx context.Context, id domainagg.Identity, weekID, studentID uuid.UUID) (*types.WeekUnlock, error) {
	const op = "Learning.Enrollment.UnlockWeek"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var (
		out    *types.WeekUnlock
		events outbox
	)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		actor, err := a.look.actor(dbc, op, id)
		if err != nil {
			return err
		}
		week, err := a.deps.Weeks.GetByID(dbc, weekID)
		if err != nil {
			return err
		}
		if week == nil {
			return notFound(op, "week not found")
		}
		course, err := a.look.authorizeFor(dbc, op, actor, week.CourseID, false, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		e, err := a.deps.Enrollments.GetByUserAndCourse(dbc, studentID, course.ID)
		if err != nil {
			return err
		}
		if e == nil || !e.IsActive() {
			return conflict(op, "student is not actively enrolled in this course")
		}

		row := &types.WeekUnlock{
			UserID:      studentID,
			WeekID:      week.ID,
			CourseID:    course.ID,
			IsAutomatic: false,
			UnlockedAt:  a.deps.Base.now(),
		}
		created, err := a.deps.Unlocks.Upsert(dbc, row)
		if err != nil {
			return err
		}
		if created {
			out = row
			events.add(weekUnlockedEvent(row, actor.UserID))
			return nil
		}
		rows, err := a.deps.Unlocks.ListByUserAndCourse(dbc, studentID, course.ID)
		if err != nil {
			return err
		}
		existing, found := lo.Find(rows, func(u *types.WeekUnlock) bool { return u.WeekID == week.ID })
		if !found {
			return conflict(op, "week unlock changed concurrently")
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.flush(ctx, a.deps.Base)
	return out, nil
}
