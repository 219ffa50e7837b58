package learning

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type CourseInstructorRepo interface {
	Create(dbc dbctx.Context, rows []*types.CourseInstructor) ([]*types.CourseInstructor, error)
	GetByCourseAndUser(dbc dbctx.Context, courseID, userID uuid.UUID) (*types.CourseInstructor, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseInstructor, error)
	// DeleteNonCreator never removes a creator row, whatever id is passed.
	DeleteNonCreator(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type courseInstructorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseInstructorRepo(db *gorm.DB, baseLog *logger.Logger) CourseInstructorRepo {
	repoLog := baseLog.With("repo", "CourseInstructorRepo")
	return &courseInstructorRepo{db: db, log: repoLog}
}

func (r *courseInstructorRepo) Create(dbc dbctx.Context, rows []*types.CourseInstructor) ([]*types.CourseInstructor, error) {
	if len(rows) == 0 {
		return []*types.CourseInstructor{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *courseInstructorRepo) GetByCourseAndUser(dbc dbctx.Context, courseID, userID uuid.UUID) (*types.CourseInstructor, error) {
	if courseID == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	var out []*types.CourseInstructor
	if err := dbc.DB(r.db).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *courseInstructorRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseInstructor, error) {
	var out []*types.CourseInstructor
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id = ?", courseID).
		Order(fmt.Sprintf("CASE WHEN role = '%s' THEN 0 ELSE 1 END, created_at ASC", types.InstructorRoleCreator)).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseInstructorRepo) DeleteNonCreator(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Where("id = ? AND role <> ?", id, types.InstructorRoleCreator).
		Delete(&types.CourseInstructor{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
