package learning

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

func TestEnrollmentAndUnlockRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	log := testutil.Logger(t)

	enrollments := NewEnrollmentRepo(db, log)
	unlocks := NewWeekUnlockRepo(db, log)

	creator := testutil.SeedUser(t, tx, types.RoleTeacher)
	student := testutil.SeedUser(t, tx, types.RoleStudent)
	c := testutil.SeedCourse(t, tx, creator.ID, 10)
	w1 := testutil.SeedWeek(t, tx, c.ID, 1)
	w2 := testutil.SeedWeek(t, tx, c.ID, 2)

	e := &types.Enrollment{UserID: student.ID, CourseID: c.ID, Status: types.EnrollmentActive, CurrentWeek: 1, EnrolledAt: time.Now().UTC()}
	if _, err := enrollments.Create(dbc, []*types.Enrollment{e}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := enrollments.GetByUserAndCourse(dbc, student.ID, c.ID)
	if err != nil || got == nil || got.ID != e.ID {
		t.Fatalf("GetByUserAndCourse: err=%v got=%+v", err, got)
	}
	active, err := enrollments.ListByCourse(dbc, c.ID, types.EnrollmentActive)
	if err != nil || len(active) != 1 {
		t.Fatalf("ListByCourse(active): err=%v len=%d", err, len(active))
	}
	withdrawn, err := enrollments.ListByCourse(dbc, c.ID, types.EnrollmentWithdrawn)
	if err != nil || len(withdrawn) != 0 {
		t.Fatalf("ListByCourse(withdrawn): err=%v len=%d", err, len(withdrawn))
	}

	now := time.Now().UTC()
	created, err := unlocks.Upsert(dbc, &types.WeekUnlock{UserID: student.ID, WeekID: w1.ID, CourseID: c.ID, IsAutomatic: true, UnlockedAt: now})
	if err != nil || !created {
		t.Fatalf("Upsert: err=%v created=%v", err, created)
	}
	created, err = unlocks.Upsert(dbc, &types.WeekUnlock{UserID: student.ID, WeekID: w1.ID, CourseID: c.ID, UnlockedAt: now})
	if err != nil || created {
		t.Fatalf("Upsert duplicate: err=%v created=%v", err, created)
	}
	if _, err := unlocks.Upsert(dbc, &types.WeekUnlock{UserID: student.ID, WeekID: w2.ID, CourseID: c.ID, UnlockedAt: now}); err != nil {
		t.Fatalf("Upsert week 2: %v", err)
	}
	rows, err := unlocks.ListByUserAndCourse(dbc, student.ID, c.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByUserAndCourse: err=%v len=%d", err, len(rows))
	}

	if err := unlocks.DeleteByWeekID(dbc, w2.ID); err != nil {
		t.Fatalf("DeleteByWeekID: %v", err)
	}
	if err := unlocks.DeleteByUserAndCourse(dbc, student.ID, c.ID); err != nil {
		t.Fatalf("DeleteByUserAndCourse: %v", err)
	}
	rows, _ = unlocks.ListByUserAndCourse(dbc, student.ID, c.ID)
	if len(rows) != 0 {
		t.Fatalf("expected no unlocks, got %d", len(rows))
	}
}

func TestWithdrawalRequestRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewWithdrawalRequestRepo(db, testutil.Logger(t))
	creator := testutil.SeedUser(t, tx, types.RoleTeacher)
	student := testutil.SeedUser(t, tx, types.RoleStudent)
	c := testutil.SeedCourse(t, tx, creator.ID, 10)

	req := &types.WithdrawalRequest{UserID: student.ID, CourseID: c.ID, Status: types.WithdrawalPending, Reason: "schedule conflict"}
	if _, err := repo.Create(dbc, []*types.WithdrawalRequest{req}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	pending, err := repo.GetPending(dbc, student.ID, c.ID)
	if err != nil || pending == nil || pending.ID != req.ID {
		t.Fatalf("GetPending: err=%v got=%+v", err, pending)
	}
	list, err := repo.ListByCourse(dbc, c.ID, "")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByCourse: err=%v len=%d", err, len(list))
	}
	list, err = repo.ListByCourse(dbc, c.ID, types.WithdrawalDenied)
	if err != nil || len(list) != 0 {
		t.Fatalf("ListByCourse(denied): err=%v len=%d", err, len(list))
	}
}
