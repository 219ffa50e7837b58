package learning

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type CourseRepo interface {
	Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	SoftDelete(dbc dbctx.Context, id uuid.UUID) (bool, error)

	// IncrementStudents and DecrementStudents are the only writers of
	// current_students. Each is a single guarded UPDATE; false means the
	// guard rejected the change (full/inactive course, or already zero).
	IncrementStudents(dbc dbctx.Context, id uuid.UUID) (bool, error)
	DecrementStudents(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error) {
	if len(courses) == 0 {
		return []*types.Course{}, nil
	}
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// GetByID returns nil, nil when no row exists. Inactive courses are returned;
// callers decide whether inactive means not found.
func (r *courseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Course
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

// LockByID takes a row lock (FOR UPDATE) and fails with gorm.ErrRecordNotFound when missing.
func (r *courseRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.Course
	if err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *courseRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Course{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *courseRepo) IncrementStudents(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Course{}).
		Where("id = ? AND is_active = ? AND current_students < max_students", id, true).
		Updates(map[string]interface{}{
			"current_students": gorm.Expr("current_students + 1"),
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *courseRepo) DecrementStudents(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Course{}).
		Where("id = ? AND current_students > 0", id).
		Updates(map[string]interface{}{
			"current_students": gorm.Expr("current_students - 1"),
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
