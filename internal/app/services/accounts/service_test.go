package accounts

import (
	"context"
	"testing"

	"github.com/trailpine/campground/internal/app/storage/memory"
	apperrors "github.com/trailpine/campground/internal/errors"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := New(memory.New(), nil)

	u, err := svc.Register(context.Background(), RegisterPayload{
		Username: "ranger",
		Email:    "Ranger@Example.com",
		Password: "trailhead42",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected id to be generated")
	}
	if u.Email != "ranger@example.com" {
		t.Fatalf("email not normalised: %s", u.Email)
	}
	if u.PasswordHash == "trailhead42" || u.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}

	got, err := svc.Authenticate(context.Background(), "ranger", "trailhead42")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("authenticated wrong user %s", got.ID)
	}
}

func TestAuthenticateFailureIsGeneric(t *testing.T) {
	svc := New(memory.New(), nil)

	if _, err := svc.Register(context.Background(), RegisterPayload{
		Username: "ranger",
		Email:    "ranger@example.com",
		Password: "trailhead42",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, unknownErr := svc.Authenticate(context.Background(), "nobody", "trailhead42")
	_, wrongErr := svc.Authenticate(context.Background(), "ranger", "wrongpass")

	if unknownErr == nil || wrongErr == nil {
		t.Fatal("expected both attempts to fail")
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failure messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestRegisterRejectsInvalidPayload(t *testing.T) {
	svc := New(memory.New(), nil)

	_, err := svc.Register(context.Background(), RegisterPayload{
		Username: "r",
		Email:    "not-an-email",
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	payload := RegisterPayload{Username: "ranger", Email: "a@example.com", Password: "trailhead42"}
	if _, err := svc.Register(ctx, payload); err != nil {
		t.Fatalf("first register: %v", err)
	}

	payload.Email = "b@example.com"
	_, err := svc.Register(ctx, payload)
	svcErr, ok := apperrors.As(err)
	if !ok || svcErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}
