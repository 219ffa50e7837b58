package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/domain/learning"
	"github.com/yungbote/lms-backend/internal/domain/user"
)

var RosterAggregateContract = Contract{
	Name:             "Learning.RosterAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns course staff membership and user roles. The creator row is never removed.",
}

type RosterAggregate interface {
	Aggregate

	AddInstructor(ctx context.Context, actor Identity, courseID, userID uuid.UUID) (*learning.CourseInstructor, error)
	// RemoveInstructor rejects removal of the creator with CodeConflict for every caller.
	RemoveInstructor(ctx context.Context, actor Identity, courseID, userID uuid.UUID) error
	UpdateUserRole(ctx context.Context, actor Identity, targetID uuid.UUID, role string) (*user.User, error)
	// ListInstructors returns the creator first, then instructors by join time.
	ListInstructors(ctx context.Context, actor Identity, courseID uuid.UUID) ([]*learning.CourseInstructor, error)
}
