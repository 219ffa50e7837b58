package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("LMS_TEST_INT", "nope")
	if got := Int("LMS_TEST_INT", 7); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("LMS_TEST_INT", " 42 ")
	if got := Int("LMS_TEST_INT", 7); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("LMS_TEST_BOOL", "YES")
	if !Bool("LMS_TEST_BOOL", false) {
		t.Fatalf("Bool: expected true")
	}
	t.Setenv("LMS_TEST_BOOL", "maybe")
	if Bool("LMS_TEST_BOOL", false) {
		t.Fatalf("Bool: expected default false")
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("LMS_TEST_DUR", "90")
	if got := Duration("LMS_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("Duration seconds: got=%s", got)
	}
	t.Setenv("LMS_TEST_DUR", "2m")
	if got := Duration("LMS_TEST_DUR", time.Second); got != 2*time.Minute {
		t.Fatalf("Duration string: got=%s", got)
	}
	t.Setenv("LMS_TEST_DUR", "")
	if got := Duration("LMS_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("Duration default: got=%s", got)
	}
}
