package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

// BusRecorder is an in-memory bus.Bus. FailWith makes every publish fail
// after recording the event.
type BusRecorder struct {
	mu sync.Mutex

	Events   []bus.Event
	FailWith error
	Closed   bool
}

var _ bus.Bus = (*BusRecorder)(nil)

func (b *BusRecorder) Publish(_ context.Context, ev bus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, ev)
	return b.FailWith
}

func (b *BusRecorder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closed = true
	return nil
}

func (b *BusRecorder) Types() []bus.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]bus.EventType, 0, len(b.Events))
	for _, ev := range b.Events {
		out = append(out, ev.Type)
	}
	return out
}
