package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type WithdrawalRequestRepo interface {
	Create(dbc dbctx.Context, rows []*types.WithdrawalRequest) ([]*types.WithdrawalRequest, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.WithdrawalRequest, error)
	GetPending(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.WithdrawalRequest, error)
	// ListByCourse filters by status when status is non-empty; newest first.
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID, status types.WithdrawalStatus) ([]*types.WithdrawalRequest, error)
}

type withdrawalRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWithdrawalRequestRepo(db *gorm.DB, baseLog *logger.Logger) WithdrawalRequestRepo {
	repoLog := baseLog.With("repo", "WithdrawalRequestRepo")
	return &withdrawalRequestRepo{db: db, log: repoLog}
}

func (r *withdrawalRequestRepo) Create(dbc dbctx.Context, rows []*types.WithdrawalRequest) ([]*types.WithdrawalRequest, error) {
	if len(rows) == 0 {
		return []*types.WithdrawalRequest{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *withdrawalRequestRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.WithdrawalRequest, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.WithdrawalRequest
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

func (r *withdrawalRequestRepo) GetPending(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.WithdrawalRequest, error) {
	var out []*types.WithdrawalRequest
	if err := dbc.DB(r.db).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, types.WithdrawalPending).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *withdrawalRequestRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID, status types.WithdrawalStatus) ([]*types.WithdrawalRequest, error) {
	out := []*types.WithdrawalRequest{}
	q := dbc.DB(r.db).Where("course_id = ?", courseID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
