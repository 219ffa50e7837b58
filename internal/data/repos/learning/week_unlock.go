package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type WeekUnlockRepo interface {
	// Upsert inserts row unless (user_id, week_id) already exists; created
	// reports whether a new row was written.
	Upsert(dbc dbctx.Context, row *types.WeekUnlock) (created bool, err error)
	ListByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) ([]*types.WeekUnlock, error)
	DeleteByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) error
	DeleteByWeekID(dbc dbctx.Context, weekID uuid.UUID) error
}

type weekUnlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeekUnlockRepo(db *gorm.DB, baseLog *logger.Logger) WeekUnlockRepo {
	repoLog := baseLog.With("repo", "WeekUnlockRepo")
	return &weekUnlockRepo{db: db, log: repoLog}
}

func (r *weekUnlockRepo) Upsert(dbc dbctx.Context, row *types.WeekUnlock) (bool, error) {
	if row == nil {
		return false, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *weekUnlockRepo) ListByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) ([]*types.WeekUnlock, error) {
	out := []*types.WeekUnlock{}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("unlocked_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *weekUnlockRepo) DeleteByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) error {
	return dbc.DB(r.db).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&types.WeekUnlock{}).Error
}

func (r *weekUnlockRepo) DeleteByWeekID(dbc dbctx.Context, weekID uuid.UUID) error {
	return dbc.DB(r.db).
		Where("week_id = ?", weekID).
		Delete(&types.WeekUnlock{}).Error
}
