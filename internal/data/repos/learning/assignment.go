package learning

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type AssignmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Assignment) ([]*types.Assignment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Assignment, error)
	ListByWeek(dbc dbctx.Context, weekID uuid.UUID) ([]*types.Assignment, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (bool, error)
	DeleteByWeekID(dbc dbctx.Context, weekID uuid.UUID) error
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (r *assignmentRepo) Create(dbc dbctx.Context, rows []*types.Assignment) ([]*types.Assignment, error) {
	if len(rows) == 0 {
		return []*types.Assignment{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Assignment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Assignment
	if err := dbc.DB(r.db).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// ListByWeek orders by due date with undated assignments last.
func (r *assignmentRepo) ListByWeek(dbc dbctx.Context, weekID uuid.UUID) ([]*types.Assignment, error) {
	out := []*types.Assignment{}
	if weekID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("week_id = ?", weekID).
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").
		Order("due_date ASC").
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.Assignment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *assignmentRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Assignment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *assignmentRepo) DeleteByWeekID(dbc dbctx.Context, weekID uuid.UUID) error {
	return dbc.DB(r.db).Where("week_id = ?", weekID).Delete(&types.Assignment{}).Error
}
