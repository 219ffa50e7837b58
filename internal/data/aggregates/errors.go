package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrConflict indicates a state or concurrency conflict.
	ErrConflict = errors.New("aggregate conflict")
	// ErrCapacity indicates a bounded collection is full.
	ErrCapacity = errors.New("aggregate capacity exceeded")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("aggregate retryable")
)

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// ConflictError tags an error as conflict failure.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// CapacityError tags an error as capacity exhaustion.
func CapacityError(msg string) error {
	return errors.Join(ErrCapacity, errors.New(strings.TrimSpace(msg)))
}

// RetryableError tags an error as retryable failure.
func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure/domain failures into aggregate error codes.
// Errors that already carry a code pass through unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var coded *domainagg.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, ErrConflict):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, ErrCapacity):
		return domainagg.Wrap(domainagg.CodeCapacityExceeded, op, err)
	case errors.Is(err, ErrRetryable):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domainagg.Wrap(domainagg.CodeCollaboratorFailure, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return domainagg.Wrap(domainagg.CodeConflict, op, err) // unique_violation
		case "23514":
			return domainagg.Wrap(domainagg.CodeValidation, op, err) // check_violation
		case "23503":
			return domainagg.Wrap(domainagg.CodeCollaboratorFailure, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return domainagg.Wrap(domainagg.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	// sqlite and driver errors only carry text.
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "already exists"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case strings.Contains(msg, "check constraint failed"),
		strings.Contains(msg, "violates check constraint"):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeCollaboratorFailure, op, err)
	}
}

func unauthenticated(op, msg string) error {
	return domainagg.NewError(domainagg.CodeUnauthenticated, op, msg, nil)
}

func forbidden(op, msg string) error {
	return domainagg.NewError(domainagg.CodeForbidden, op, msg, nil)
}

func notFound(op, msg string) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, msg, nil)
}

func conflict(op, msg string) error {
	return domainagg.NewError(domainagg.CodeConflict, op, msg, nil)
}

func capacityExceeded(op, msg string) error {
	return domainagg.NewError(domainagg.CodeCapacityExceeded, op, msg, nil)
}

func invalid(op, field, msg string) error {
	return domainagg.NewValidationError(op, msg, []domainagg.FieldError{{Field: field, Message: msg}})
}
