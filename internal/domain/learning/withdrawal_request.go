package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalDenied   WithdrawalStatus = "denied"
)

// WithdrawalRequest moves pending -> approved|denied exactly once.
type WithdrawalRequest struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"course_id"`
	Status      WithdrawalStatus `gorm:"column:status;not null;index" json:"status"`
	Reason      string           `gorm:"column:reason;type:text" json:"reason"`
	ReviewedBy  *uuid.UUID       `gorm:"type:uuid;column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time       `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNotes string           `gorm:"column:review_notes;type:text" json:"review_notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (WithdrawalRequest) TableName() string { return "withdrawal_request" }

func (r *WithdrawalRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
