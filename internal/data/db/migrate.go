package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/lms-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// EnsureLifecycleIndexes adds indexes gorm tags cannot express. Both
// statements are valid on postgres and sqlite.
func EnsureLifecycleIndexes(db *gorm.DB) error {
	// At most one open withdrawal request per (student, course).
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_withdrawal_request_pending
		ON withdrawal_request (user_id, course_id)
		WHERE status = 'pending';
	`).Error; err != nil {
		return fmt.Errorf("create idx_withdrawal_request_pending: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_enrollment_course_status
		ON enrollment (course_id, status);
	`).Error; err != nil {
		return fmt.Errorf("create idx_enrollment_course_status: %w", err)
	}
	return nil
}
