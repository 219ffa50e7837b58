package aggregates

import (
	"context"
	"testing"
	"time"

	repotest "github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/ctxutil"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

type kindRunner struct {
	writes, reads int
}

func (r *kindRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.writes++
	return fn(dbctx.Context{Ctx: ctx})
}

func (r *kindRunner) InReadTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.reads++
	return fn(dbctx.Context{Ctx: ctx})
}

func TestExecuteRoutesReadsToReadTransactions(t *testing.T) {
	runner := &kindRunner{}
	deps := BaseDeps{Runner: runner, Hooks: &spyHooks{}}
	noop := func(_ dbctx.Context) error { return nil }

	if err := executeRead(context.Background(), deps, "aggregate.test.read", noop); err != nil {
		t.Fatalf("executeRead: %v", err)
	}
	if err := executeWrite(context.Background(), deps, "aggregate.test.write", noop); err != nil {
		t.Fatalf("executeWrite: %v", err)
	}
	if runner.reads != 1 || runner.writes != 1 {
		t.Fatalf("reads=%d writes=%d", runner.reads, runner.writes)
	}
}

func TestGormTxRunnerReadTransactionSeesCommittedRows(t *testing.T) {
	db := repotest.DB(t)
	teacher := repotest.SeedUser(t, db, types.RoleTeacher)
	runner := NewGormTxRunner(db, WithLockTimeout(time.Second))

	rr, ok := runner.(ReadTxRunner)
	if !ok {
		t.Fatalf("gorm runner should serve read transactions")
	}
	var n int64
	err := rr.InReadTx(context.Background(), func(dbc dbctx.Context) error {
		if dbc.Tx == nil {
			t.Fatalf("read transaction should carry a tx")
		}
		return dbc.Tx.Model(&types.User{}).Where("id = ?", teacher.ID).Count(&n).Error
	})
	if err != nil {
		t.Fatalf("InReadTx: %v", err)
	}
	if n != 1 {
		t.Fatalf("count: want=1 got=%d", n)
	}

	// sqlite has no SET LOCAL; the lock timeout must be skipped there.
	if err := runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		return dbc.Tx.Model(&types.User{}).Count(&n).Error
	}); err != nil {
		t.Fatalf("InTx with lock timeout on sqlite: %v", err)
	}
}

func TestGormTxRunnerWithoutDB(t *testing.T) {
	runner := NewGormTxRunner(nil)
	body := func(_ dbctx.Context) error { return nil }

	if err := runner.InTx(context.Background(), body); !domainagg.IsCode(err, domainagg.CodeCollaboratorFailure) {
		t.Fatalf("InTx: want collaborator failure, got %v", err)
	}
	if err := runner.(ReadTxRunner).InReadTx(context.Background(), body); !domainagg.IsCode(err, domainagg.CodeCollaboratorFailure) {
		t.Fatalf("InReadTx: want collaborator failure, got %v", err)
	}
	if err := runner.InTx(context.Background(), nil); err != nil {
		t.Fatalf("nil body should be a no-op, got %v", err)
	}
}

func TestLockTimeoutStatement(t *testing.T) {
	cases := []struct {
		dialect string
		d       time.Duration
		want    string
	}{
		{"postgres", 1500 * time.Millisecond, "SET LOCAL lock_timeout = '1500ms'"},
		{"postgres", time.Microsecond, "SET LOCAL lock_timeout = '1ms'"},
		{"postgres", 0, ""},
		{"sqlite", time.Second, ""},
	}
	for _, tc := range cases {
		if got := lockTimeoutStatement(tc.dialect, tc.d); got != tc.want {
			t.Fatalf("%s %v: want %q got %q", tc.dialect, tc.d, tc.want, got)
		}
	}
}

func TestOutboxFlushStampsRequestID(t *testing.T) {
	pub := &spyBus{}
	deps := BaseDeps{Runner: spyTxRunner{}, Hooks: &spyHooks{}, Events: pub}
	ctx := ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{TraceID: "t-1", RequestID: "req-9"})

	var ob outbox
	ob.add(bus.Event{Type: bus.EventEnrollmentActivated})
	ob.add(bus.Event{Type: bus.EventWeekUnlocked, RequestID: "upstream"})
	ob.flush(ctx, deps)

	if len(pub.got) != 2 {
		t.Fatalf("published: want=2 got=%d", len(pub.got))
	}
	if pub.got[0].RequestID != "req-9" {
		t.Fatalf("request id should come from the request, got %q", pub.got[0].RequestID)
	}
	if pub.got[1].RequestID != "upstream" {
		t.Fatalf("preset request id should be kept, got %q", pub.got[1].RequestID)
	}
}
