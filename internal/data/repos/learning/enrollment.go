package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type EnrollmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Enrollment) ([]*types.Enrollment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error)
	GetByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.Enrollment, error)
	// ListByCourse filters by status when status is non-empty.
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID, status types.EnrollmentStatus) ([]*types.Enrollment, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

func (r *enrollmentRepo) Create(dbc dbctx.Context, rows []*types.Enrollment) ([]*types.Enrollment, error) {
	if len(rows) == 0 {
		return []*types.Enrollment{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *enrollmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Enrollment
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

func (r *enrollmentRepo) GetByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.Enrollment, error) {
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Enrollment
	if err := dbc.DB(r.db).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *enrollmentRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID, status types.EnrollmentStatus) ([]*types.Enrollment, error) {
	out := []*types.Enrollment{}
	if courseID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("course_id = ?", courseID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("enrolled_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
