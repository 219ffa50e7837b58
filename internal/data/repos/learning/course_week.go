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

type CourseWeekRepo interface {
	Create(dbc dbctx.Context, weeks []*types.CourseWeek) ([]*types.CourseWeek, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseWeek, error)
	GetByCourseAndNumber(dbc dbctx.Context, courseID uuid.UUID, weekNumber int) (*types.CourseWeek, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseWeek, error)
	CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type courseWeekRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseWeekRepo(db *gorm.DB, baseLog *logger.Logger) CourseWeekRepo {
	repoLog := baseLog.With("repo", "CourseWeekRepo")
	return &courseWeekRepo{db: db, log: repoLog}
}

func (r *courseWeekRepo) Create(dbc dbctx.Context, weeks []*types.CourseWeek) ([]*types.CourseWeek, error) {
	if len(weeks) == 0 {
		return []*types.CourseWeek{}, nil
	}
	if err := dbc.DB(r.db).Create(&weeks).Error; err != nil {
		return nil, err
	}
	return weeks, nil
}

func (r *courseWeekRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseWeek, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.CourseWeek
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

func (r *courseWeekRepo) GetByCourseAndNumber(dbc dbctx.Context, courseID uuid.UUID, weekNumber int) (*types.CourseWeek, error) {
	var out []*types.CourseWeek
	if err := dbc.DB(r.db).
		Where("course_id = ? AND week_number = ?", courseID, weekNumber).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *courseWeekRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseWeek, error) {
	out := []*types.CourseWeek{}
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id = ?", courseID).
		Order("week_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseWeekRepo) CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.CourseWeek{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *courseWeekRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.CourseWeek{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *courseWeekRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Where("id = ?", id).
		Delete(&types.CourseWeek{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
