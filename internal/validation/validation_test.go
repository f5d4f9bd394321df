package validation

import (
	"strings"
	"testing"

	apperrors "github.com/trailpine/campground/internal/errors"
)

type samplePayload struct {
	Title  string  `json:"title" validate:"required"`
	Price  float64 `json:"price" validate:"gte=0"`
	Rating int     `json:"rating" validate:"omitempty,min=1,max=5"`
}

func TestStructPassesValidPayload(t *testing.T) {
	if err := Struct(samplePayload{Title: "Ridge Camp", Price: 15}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructJoinsAllViolations(t *testing.T) {
	err := Struct(samplePayload{Price: -5, Rating: 9})
	if err == nil {
		t.Fatal("expected validation error")
	}
	svcErr, ok := apperrors.As(err)
	if !ok || svcErr.Code != apperrors.CodeValidation {
		t.Fatalf("unexpected error type: %v", err)
	}

	msg := svcErr.ClientMessage()
	for _, want := range []string{`"title" is required`, `"price" must be 0 or more`, `"rating" must be at most 5`} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
	if got := strings.Count(msg, ","); got < 2 {
		t.Fatalf("expected joined violations, got %q", msg)
	}
}

func TestStructUsesJSONFieldNames(t *testing.T) {
	err := Struct(samplePayload{Title: ""})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), `"title"`) {
		t.Fatalf("expected json tag name in %q", err.Error())
	}
}
