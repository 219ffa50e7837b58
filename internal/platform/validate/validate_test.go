package validate

import (
	"testing"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

type sample struct {
	Title string `json:"title" validate:"notblank,max=20"`
	Level string `json:"level" validate:"omitempty,oneof=beginner advanced"`
	Seats int    `json:"seats" validate:"gte=0"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct("test.validate", sample{Title: "   ", Level: "expert", Seats: -1})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got=%v", err)
	}
	fields := domainagg.FieldsOf(err)
	if len(fields) != 3 {
		t.Fatalf("fields: want=3 got=%+v", fields)
	}
	seen := map[string]bool{}
	for _, f := range fields {
		seen[f.Field] = true
		if f.Message == "" {
			t.Fatalf("field %s has empty message", f.Field)
		}
	}
	for _, want := range []string{"title", "level", "seats"} {
		if !seen[want] {
			t.Fatalf("missing field %q in %+v", want, fields)
		}
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	if err := Struct("test.validate", sample{Title: "Intro", Level: "beginner"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
