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

type LessonRepo interface {
	Create(dbc dbctx.Context, lessons []*types.Lesson) ([]*types.Lesson, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	ListByWeek(dbc dbctx.Context, weekID uuid.UUID) ([]*types.Lesson, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (bool, error)
	DeleteByWeekID(dbc dbctx.Context, weekID uuid.UUID) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	repoLog := baseLog.With("repo", "LessonRepo")
	return &lessonRepo{db: db, log: repoLog}
}

func (r *lessonRepo) Create(dbc dbctx.Context, lessons []*types.Lesson) ([]*types.Lesson, error) {
	if len(lessons) == 0 {
		return []*types.Lesson{}, nil
	}
	if err := dbc.DB(r.db).Create(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Lesson
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

func (r *lessonRepo) ListByWeek(dbc dbctx.Context, weekID uuid.UUID) ([]*types.Lesson, error) {
	out := []*types.Lesson{}
	if weekID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("week_id = ?", weekID).
		Order("order_index ASC").
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.Lesson{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *lessonRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Lesson{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *lessonRepo) DeleteByWeekID(dbc dbctx.Context, weekID uuid.UUID) error {
	return dbc.DB(r.db).Where("week_id = ?", weekID).Delete(&types.Lesson{}).Error
}
