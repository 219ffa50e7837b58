package aggregates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/domain/user"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/policy"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

type RosterAggregateDeps struct {
	Base BaseDeps

	Users       repos.UserRepo
	Courses     repos.CourseRepo
	Instructors repos.CourseInstructorRepo
	Enrollments repos.EnrollmentRepo
}

type rosterAggregate struct {
	deps RosterAggregateDeps
	look lookups
}

func NewRosterAggregate(deps RosterAggregateDeps) domainagg.RosterAggregate {
	deps.Base = deps.Base.withDefaults()
	return &rosterAggregate{
		deps: deps,
		look: lookups{
			users:       deps.Users,
			courses:     deps.Courses,
			instructors: deps.Instructors,
			enrollments: deps.Enrollments,
		},
	}
}

func (a *rosterAggregate) Contract() domainagg.Contract {
	return domainagg.RosterAggregateContract
}

func (a *rosterAggregate) configured(op string) error {
	if !a.look.configured() {
		return domainagg.NewError(domainagg.CodeCollaboratorFailure, op, "roster aggregate repos not configured", nil)
	}
	return nil
}

func (a *rosterAggregate) AddInstructor(ctx context.Context, id domainagg.Identity, courseID, userID uuid.UUID) (*types.CourseInstructor, error) {
	const op = "Learning.Roster.AddInstructor"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out *types.CourseInstructor
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		_, course, err := a.look.authorize(dbc, op, id, courseID, true, policy.CanManage, "not an instructor of this course")
		if err != nil {
			return err
		}
		target, err := a.deps.Users.GetByID(dbc, userID)
		if err != nil {
			return err
		}
		if target == nil || !target.IsActive {
			return notFound(op, "user not found")
		}
		if !target.IsTeacher() && !target.IsAdmin() {
			return invalid(op, "user_id", "only teachers and admins can be instructors")
		}
		existing, err := a.deps.Instructors.GetByCourseAndUser(dbc, course.ID, target.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflict(op, "user is already an instructor of this course")
		}
		row := &types.CourseInstructor{
			CourseID: course.ID,
			UserID:   target.ID,
			Role:     types.InstructorRoleInstructor,
		}
		if _, err := a.deps.Instructors.Create(dbc, []*types.CourseInstructor{row}); err != nil {
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

func (a *rosterAggregate) RemoveInstructor(ctx context.Context, id domainagg.Identity, courseID, userID uuid.UUID) error {
	const op = "Learning.Roster.RemoveInstructor"
	if err := a.configured(op); err != nil {
		return err
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		actor, err := a.look.actor(dbc, op, id)
		if err != nil {
			return err
		}
		course, err := a.look.activeCourse(dbc, op, courseID, true)
		if err != nil {
			return err
		}
		row, err := a.deps.Instructors.GetByCourseAndUser(dbc, course.ID, userID)
		if err != nil {
			return err
		}
		// The creator stays on the course whoever asks, admins included.
		if userID == course.CreatorID || (row != nil && row.Role == types.InstructorRoleCreator) {
			return conflict(op, "the course creator cannot be removed")
		}
		f, err := a.look.facts(dbc, actor, course)
		if err != nil {
			return err
		}
		if !policy.CanRemoveInstructor(actor, f) {
			return forbidden(op, "only the course creator or an admin can remove instructors")
		}
		if row == nil {
			return notFound(op, "instructor not found on this course")
		}
		deleted, err := a.deps.Instructors.DeleteNonCreator(dbc, row.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return conflict(op, "instructor changed concurrently")
		}
		return nil
	})
}

func (a *rosterAggregate) UpdateUserRole(ctx context.Context, id domainagg.Identity, targetID uuid.UUID, role string) (*types.User, error) {
	const op = "Learning.Roster.UpdateUserRole"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var (
		out    *types.User
		events outbox
	)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		actor, err := a.look.actor(dbc, op, id)
		if err != nil {
			return err
		}
		if !policy.CanAdministerRoles(actor) {
			return forbidden(op, "only admins can change roles")
		}
		next, ok := user.ParseRole(role)
		if !ok {
			return invalid(op, "role", "role must be one of student teacher admin")
		}
		target, err := a.deps.Users.GetByID(dbc, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return notFound(op, "user not found")
		}
		previous := target.Role
		if previous != next {
			updated, err := a.deps.Users.UpdateRole(dbc, target.ID, next)
			if err != nil {
				return err
			}
			if !updated {
				return notFound(op, "user not found")
			}
			events.add(bus.Event{
				Type:    bus.EventUserRoleChanged,
				UserID:  target.ID,
				ActorID: actor.UserID,
				Data:    datatypes.JSONMap{"from": string(previous), "to": string(next)},
			})
		}
		out, err = a.deps.Users.GetByID(dbc, target.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	events.flush(ctx, a.deps.Base)
	return out, nil
}

// ListInstructors requires CanAccess rather than CanManage.
func (a *rosterAggregate) ListInstructors(ctx context.Context, id domainagg.Identity, courseID uuid.UUID) ([]*types.CourseInstructor, error) {
	const op = "Learning.Roster.ListInstructors"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out []*types.CourseInstructor
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		_, course, err := a.look.authorize(dbc, op, id, courseID, false, policy.CanAccess, "no access to this course")
		if err != nil {
			return err
		}
		out, err = a.deps.Instructors.ListByCourse(dbc, course.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}
