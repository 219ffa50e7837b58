package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/ctxutil"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

const tracerName = "github.com/yungbote/lms-backend/internal/data/aggregates"

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	Events   bus.Bus
	Now      func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Events == nil {
		d.Events = bus.NewNoopBus()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d BaseDeps) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	return execute(ctx, deps, op, "write", fn)
}

// executeRead runs fn in its own transaction so authorization facts and the
// rows returned come from one snapshot.
func executeRead(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	return execute(ctx, deps, op, "read", fn)
}

func execute(ctx context.Context, deps BaseDeps, op, kind string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate." + kind
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, op,
		trace.WithAttributes(attribute.String("aggregate.kind", kind)),
	)
	defer span.End()

	err := runTx(ctx, deps.Runner, kind, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
		if isServerFailure(mapped) {
			deps.Log.Warn("aggregate operation failed",
				append(ctxutil.LogFields(ctx), "op", op, "status", status, "error", mapped)...,
			)
		}
		span.RecordError(mapped)
		span.SetStatus(codes.Error, status)
	}
	span.SetAttributes(attribute.String("aggregate.status", status))
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func runTx(ctx context.Context, runner TxRunner, kind string, fn func(dbc dbctx.Context) error) error {
	if kind == "read" {
		if rr, ok := runner.(ReadTxRunner); ok {
			return rr.InReadTx(ctx, fn)
		}
	}
	return runner.InTx(ctx, fn)
}

// isServerFailure reports failures the caller could not have caused.
func isServerFailure(err error) bool {
	return domainagg.IsCode(err, domainagg.CodeCollaboratorFailure) || domainagg.IsCode(err, domainagg.CodeRetryable)
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
