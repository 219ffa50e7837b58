package aggregates

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/policy"
)

// lookups resolves the actor and the actor's relationship to a course from
// storage, inside the caller's transaction.
type lookups struct {
	users       repos.UserRepo
	courses     repos.CourseRepo
	instructors repos.CourseInstructorRepo
	enrollments repos.EnrollmentRepo
}

func (l lookups) configured() bool {
	return l.users != nil && l.courses != nil && l.instructors != nil && l.enrollments != nil
}

// actor reloads the identity; a missing or inactive user cannot act.
func (l lookups) actor(dbc dbctx.Context, op string, id domainagg.Identity) (policy.Actor, error) {
	if id.IsZero() {
		return policy.Actor{}, unauthenticated(op, "no authenticated identity")
	}
	u, err := l.users.GetByID(dbc, id.UserID)
	if err != nil {
		return policy.Actor{}, err
	}
	if u == nil || !u.IsActive {
		return policy.Actor{}, unauthenticated(op, "unknown or inactive user")
	}
	return policy.Actor{UserID: u.ID, Role: u.Role}, nil
}

// activeCourse loads the course, optionally under a row lock. Missing and
// soft-deleted courses are both not found.
func (l lookups) activeCourse(dbc dbctx.Context, op string, courseID uuid.UUID, lock bool) (*types.Course, error) {
	if courseID == uuid.Nil {
		return nil, notFound(op, "course not found")
	}
	var (
		c   *types.Course
		err error
	)
	if lock {
		c, err = l.courses.LockByID(dbc, courseID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c, err = nil, nil
		}
	} else {
		c, err = l.courses.GetByID(dbc, courseID)
	}
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsActive {
		return nil, notFound(op, "course not found")
	}
	return c, nil
}

func (l lookups) facts(dbc dbctx.Context, a policy.Actor, c *types.Course) (policy.CourseFacts, error) {
	f := policy.CourseFacts{CourseID: c.ID, CreatorID: c.CreatorID}
	ci, err := l.instructors.GetByCourseAndUser(dbc, c.ID, a.UserID)
	if err != nil {
		return f, err
	}
	if ci != nil {
		f.InstructorRole = ci.Role
	}
	e, err := l.enrollments.GetByUserAndCourse(dbc, a.UserID, c.ID)
	if err != nil {
		return f, err
	}
	if e != nil {
		f.EnrollmentStatus = e.Status
	}
	return f, nil
}

// authorize resolves the actor and the active course, then applies check.
func (l lookups) authorize(
	dbc dbctx.Context,
	op string,
	id domainagg.Identity,
	courseID uuid.UUID,
	lock bool,
	check func(policy.Actor, policy.CourseFacts) bool,
	denial string,
) (policy.Actor, *types.Course, error) {
	a, err := l.actor(dbc, op, id)
	if err != nil {
		return a, nil, err
	}
	c, err := l.authorizeFor(dbc, op, a, courseID, lock, check, denial)
	return a, c, err
}

// authorizeFor is authorize for an actor already resolved in this transaction.
func (l lookups) authorizeFor(
	dbc dbctx.Context,
	op string,
	a policy.Actor,
	courseID uuid.UUID,
	lock bool,
	check func(policy.Actor, policy.CourseFacts) bool,
	denial string,
) (*types.Course, error) {
	c, err := l.activeCourse(dbc, op, courseID, lock)
	if err != nil {
		return nil, err
	}
	f, err := l.facts(dbc, a, c)
	if err != nil {
		return nil, err
	}
	if !check(a, f) {
		return nil, forbidden(op, denial)
	}
	return c, nil
}

func orEmpty[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
