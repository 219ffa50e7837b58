package aggregates

import (
	"context"

	"github.com/yungbote/lms-backend/internal/platform/ctxutil"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

// outbox collects events inside a transaction; they are published only after
// the transaction commits.
type outbox struct {
	events []bus.Event
}

func (o *outbox) add(ev bus.Event) {
	o.events = append(o.events, ev)
}

// flush publishes on a context detached from cancellation: the writes are
// already committed. Publish failures are logged and counted, never returned.
func (o *outbox) flush(ctx context.Context, deps BaseDeps) {
	if o == nil || len(o.events) == 0 {
		return
	}
	deps = deps.withDefaults()
	ctx = context.WithoutCancel(ctx)
	for _, ev := range o.events {
		if ev.At.IsZero() {
			ev.At = deps.now()
		}
		if ev.RequestID == "" {
			ev.RequestID = ctxutil.RequestID(ctx)
		}
		err := deps.Events.Publish(ctx, ev)
		deps.Hooks.IncEventPublished(string(ev.Type), err == nil)
		if err != nil {
			deps.Log.Warn("lifecycle event publish failed",
				append(ctxutil.LogFields(ctx),
					"type", string(ev.Type),
					"course_id", ev.CourseID.String(),
					"error", err,
				)...,
			)
		}
	}
	o.events = nil
}
