package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/domain/learning"
)

var EnrollmentAggregateContract = Contract{
	Name:             "Learning.EnrollmentAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns enrollment status, the course student counter, week unlocks and withdrawal review.",
}

// EnrollmentAggregate owns the enrollment lifecycle. The course student
// counter only moves inside these operations, through guarded single-statement
// updates.
type EnrollmentAggregate interface {
	Aggregate

	// SelfEnrollInCourse enrolls the calling student, reactivating a withdrawn enrollment.
	SelfEnrollInCourse(ctx context.Context, actor Identity, courseID uuid.UUID) (*learning.Enrollment, error)
	// EnrollStudent is the instructor-driven enroll; any existing enrollment conflicts.
	EnrollStudent(ctx context.Context, actor Identity, courseID, studentID uuid.UUID) (*learning.Enrollment, error)
	RemoveStudentFromCourse(ctx context.Context, actor Identity, courseID, studentID uuid.UUID) error

	RequestWithdrawal(ctx context.Context, actor Identity, courseID uuid.UUID, reason string) (*learning.WithdrawalRequest, error)
	// ReviewWithdrawalRequest records the decision and, when approved, removes
	// the student in the same transaction.
	ReviewWithdrawalRequest(ctx context.Context, actor Identity, requestID uuid.UUID, approved bool, notes string) (*learning.WithdrawalRequest, error)
	ListWithdrawalRequests(ctx context.Context, actor Identity, courseID uuid.UUID, status learning.WithdrawalStatus) ([]*learning.WithdrawalRequest, error)
	// ListCourseStudents is the instructor roster view; an empty status lists every enrollment.
	ListCourseStudents(ctx context.Context, actor Identity, courseID uuid.UUID, status learning.EnrollmentStatus) ([]*learning.Enrollment, error)

	UnlockWeekForStudent(ctx context.Context, actor Identity, weekID, studentID uuid.UUID) (*learning.WeekUnlock, error)
}
