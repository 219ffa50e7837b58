package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EventType string

const (
	EventCourseCreated       EventType = "course.created"
	EventCourseDeleted       EventType = "course.deleted"
	EventEnrollmentActivated EventType = "enrollment.activated"
	EventEnrollmentWithdrawn EventType = "enrollment.withdrawn"
	EventWithdrawalRequested EventType = "withdrawal.requested"
	EventWithdrawalReviewed  EventType = "withdrawal.reviewed"
	EventWeekUnlocked        EventType = "week.unlocked"
	EventUserRoleChanged     EventType = "user.role_changed"
)

// Event is a committed lifecycle change. It is published after the
// transaction that produced it has committed. RequestID names the HTTP
// request that caused it, when there was one.
type Event struct {
	Type      EventType         `json:"type"`
	CourseID  uuid.UUID         `json:"course_id,omitempty"`
	UserID    uuid.UUID         `json:"user_id,omitempty"`
	ActorID   uuid.UUID         `json:"actor_id"`
	At        time.Time         `json:"at"`
	Data      datatypes.JSONMap `json:"data,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type noopBus struct{}

// NewNoopBus drops every event. Used when Redis is not configured.
func NewNoopBus() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, Event) error { return nil }
func (noopBus) Close() error                         { return nil }
