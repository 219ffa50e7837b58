package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

func TestExecuteWriteObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}
	runner := spyTxRunner{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "aggregate.test.success", func(_ dbctx.Context) error { return nil })
	if err != nil {
		t.Fatalf("executeWrite success: %v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != "success" {
		t.Fatalf("operation status: want=success got=%s", hooks.Operations[0].Status)
	}
}

func TestExecuteWriteObservesCapacityStatus(t *testing.T) {
	hooks := &spyHooks{}
	runner := spyTxRunner{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "aggregate.test.capacity", func(_ dbctx.Context) error {
		return CapacityError("course is full")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domainagg.IsCode(err, domainagg.CodeCapacityExceeded) {
		t.Fatalf("expected capacity code, got=%v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != string(domainagg.CodeCapacityExceeded) {
		t.Fatalf("operation status: want=%s got=%s", domainagg.CodeCapacityExceeded, hooks.Operations[0].Status)
	}
	if len(hooks.Conflicts) != 0 || len(hooks.Retries) != 0 {
		t.Fatalf("capacity must not count as conflict or retry: %+v %+v", hooks.Conflicts, hooks.Retries)
	}
}

func TestExecuteReadUsesReadKindAndPassesThroughCodedErrors(t *testing.T) {
	hooks := &spyHooks{}
	in := forbidden("aggregate.test.read", "nope")
	err := executeRead(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "aggregate.test.read", func(_ dbctx.Context) error { return in })
	if err != in {
		t.Fatalf("coded error should pass through unchanged, got=%v", err)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeForbidden) {
		t.Fatalf("unexpected op status: %+v", hooks.Operations)
	}
}

func TestOutboxFlushPublishesAfterCommitAndCountsFailures(t *testing.T) {
	hooks := &spyHooks{}
	pub := &spyBus{fail: map[bus.EventType]error{bus.EventWeekUnlocked: errors.New("redis down")}}
	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	deps := BaseDeps{Runner: spyTxRunner{}, Hooks: hooks, Events: pub, Now: func() time.Time { return fixed }}

	var ob outbox
	ob.add(bus.Event{Type: bus.EventEnrollmentActivated})
	ob.add(bus.Event{Type: bus.EventWeekUnlocked})
	ob.flush(context.Background(), deps)

	if len(pub.got) != 2 {
		t.Fatalf("published: want=2 got=%d", len(pub.got))
	}
	if !pub.got[0].At.Equal(fixed) {
		t.Fatalf("event time should default to deps clock, got=%v", pub.got[0].At)
	}
	if len(hooks.Published) != 2 || !hooks.Published[0].OK || hooks.Published[1].OK {
		t.Fatalf("publish outcomes: %+v", hooks.Published)
	}
	if len(ob.events) != 0 {
		t.Fatalf("outbox should be drained")
	}
}

func TestExecuteWriteTracksConflictAndRetryCounters(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		hooks := &spyHooks{}
		runner := spyTxRunner{}
		err := executeWrite(context.Background(), BaseDeps{
			Runner: runner,
			Hooks:  hooks,
		}, "aggregate.test.conflict", func(_ dbctx.Context) error {
			return ConflictError("stale version")
		})
		if err == nil {
			t.Fatalf("expected error")
		}
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("expected conflict code, got=%v", err)
		}
		if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "aggregate.test.conflict" {
			t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
		}
		if len(hooks.Retries) != 0 {
			t.Fatalf("retry hooks should be empty, got=%+v", hooks.Retries)
		}
		if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeConflict) {
			t.Fatalf("unexpected op status: %+v", hooks.Operations)
		}
	})

	t.Run("retryable", func(t *testing.T) {
		hooks := &spyHooks{}
		runner := spyTxRunner{}
		err := executeWrite(context.Background(), BaseDeps{
			Runner: runner,
			Hooks:  hooks,
		}, "aggregate.test.retry", func(_ dbctx.Context) error {
			return RetryableError("temporary lock timeout")
		})
		if err == nil {
			t.Fatalf("expected error")
		}
		if !domainagg.IsCode(err, domainagg.CodeRetryable) {
			t.Fatalf("expected retryable code, got=%v", err)
		}
		if len(hooks.Retries) != 1 || hooks.Retries[0] != "aggregate.test.retry" {
			t.Fatalf("retry hooks: %+v", hooks.Retries)
		}
		if len(hooks.Conflicts) != 0 {
			t.Fatalf("conflict hooks should be empty, got=%+v", hooks.Conflicts)
		}
		if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeRetryable) {
			t.Fatalf("unexpected op status: %+v", hooks.Operations)
		}
	})
}

// compile-time guard to catch accidental status format regressions.
func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(CapacityError("x")); got != string(domainagg.CodeCapacityExceeded) {
		t.Fatalf("capacity status: got=%s", got)
	}
	if got := aggregateErrorStatus(ConflictError("x")); got != string(domainagg.CodeConflict) {
		t.Fatalf("conflict status: got=%s", got)
	}
	if got := aggregateErrorStatus(RetryableError("x")); got != string(domainagg.CodeRetryable) {
		t.Fatalf("retry status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
	Published  []spyPublish
}

type spyPublish struct {
	Type string
	OK   bool
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}

func (h *spyHooks) IncEventPublished(eventType string, ok bool) {
	h.Published = append(h.Published, spyPublish{Type: eventType, OK: ok})
}

type spyBus struct {
	got  []bus.Event
	fail map[bus.EventType]error
}

func (b *spyBus) Publish(_ context.Context, ev bus.Event) error {
	b.got = append(b.got, ev)
	return b.fail[ev.Type]
}

func (b *spyBus) Close() error { return nil }
