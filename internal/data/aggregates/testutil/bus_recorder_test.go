package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

func TestBusRecorder_RecordsEvenWhenFailing(t *testing.T) {
	b := &BusRecorder{FailWith: errors.New("down")}
	if err := b.Publish(context.Background(), bus.Event{Type: bus.EventCourseCreated}); err == nil {
		t.Fatalf("expected injected error")
	}
	if got := b.Types(); len(got) != 1 || got[0] != bus.EventCourseCreated {
		t.Fatalf("unexpected events: %v", got)
	}
	_ = b.Close()
	if !b.Closed {
		t.Fatalf("expected closed")
	}
}
