package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestValidationJoinsViolations(t *testing.T) {
	err := Validation("title is required", "price must be 0 or more")
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", err.HTTPStatus)
	}
	want := "title is required,price must be 0 or more"
	if err.ClientMessage() != want {
		t.Fatalf("got %q, want %q", err.ClientMessage(), want)
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := fmt.Errorf("pq: connection refused")
	err := Internal(cause)
	if err.ClientMessage() != DefaultMessage {
		t.Fatalf("internal error leaked: %q", err.ClientMessage())
	}
	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved for logging")
	}
}

func TestStatusOfDefaultsToServerError(t *testing.T) {
	if got := StatusOf(fmt.Errorf("plain")); got != http.StatusInternalServerError {
		t.Fatalf("got %d", got)
	}
	if got := StatusOf(fmt.Errorf("wrapped: %w", NotFound("campground"))); got != http.StatusNotFound {
		t.Fatalf("got %d", got)
	}
}

func TestIsNotFoundThroughWrap(t *testing.T) {
	err := fmt.Errorf("load: %w", NotFound("review"))
	if !IsNotFound(err) {
		t.Fatalf("expected not-found to survive wrapping")
	}
	if IsValidation(err) {
		t.Fatalf("unexpected validation classification")
	}
}
