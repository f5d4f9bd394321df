package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/trailpine/campground/internal/app/domain/session"
	"github.com/trailpine/campground/internal/app/storage/memory"
)

func TestEstablishAndCurrent(t *testing.T) {
	svc := New(memory.New(), time.Hour, 24*time.Hour, nil)
	ctx := context.Background()

	sess, err := svc.Establish(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	if sess.Token == "" || sess.Anonymous() {
		t.Fatalf("unexpected session %+v", sess)
	}

	got, ok := svc.Current(ctx, sess.Token)
	if !ok || got.UserID != "user-1" {
		t.Fatalf("current: ok=%v sess=%+v", ok, got)
	}
}

func TestCurrentMissingTokenIsAnonymousNotError(t *testing.T) {
	svc := New(memory.New(), time.Hour, 24*time.Hour, nil)

	if _, ok := svc.Current(context.Background(), "no-such-token"); ok {
		t.Fatal("expected anonymous")
	}
	if _, ok := svc.Current(context.Background(), ""); ok {
		t.Fatal("expected anonymous for empty token")
	}
}

func TestEstablishRotatesTokenAndCarriesState(t *testing.T) {
	svc := New(memory.New(), time.Hour, 24*time.Hour, nil)
	ctx := context.Background()

	anon, err := svc.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	anon.ReturnTo = "/campgrounds/new"
	anon.FlashError = []string{"You must be signed in first!"}
	if err := svc.Save(ctx, anon); err != nil {
		t.Fatalf("save: %v", err)
	}

	authed, err := svc.Establish(ctx, "user-1", &anon)
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	if authed.Token == anon.Token {
		t.Fatal("token not rotated on login")
	}
	if authed.ReturnTo != "/campgrounds/new" {
		t.Fatalf("return-to lost: %+v", authed)
	}
	if _, ok := svc.Current(ctx, anon.Token); ok {
		t.Fatal("pre-login token still valid")
	}
}

func TestDestroy(t *testing.T) {
	svc := New(memory.New(), time.Hour, 24*time.Hour, nil)
	ctx := context.Background()

	sess, err := svc.Establish(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	if err := svc.Destroy(ctx, sess.Token); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, ok := svc.Current(ctx, sess.Token); ok {
		t.Fatal("destroyed session still resolves")
	}
	if err := svc.Destroy(ctx, "unknown"); err != nil {
		t.Fatalf("destroy unknown: %v", err)
	}
}

func TestAbsoluteLifetimeCapsSliding(t *testing.T) {
	store := memory.New()
	svc := New(store, time.Hour, 24*time.Hour, nil)
	ctx := context.Background()

	sess, err := svc.Establish(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("establish: %v", err)
	}

	// Age the record past the absolute lifetime; the next resolution must
	// treat it as anonymous even though the store still holds it.
	aged := session.Session{
		Token:      sess.Token,
		UserID:     sess.UserID,
		CreatedAt:  time.Now().UTC().Add(-25 * time.Hour),
		LastSeenAt: time.Now().UTC(),
	}
	if err := store.PutSession(ctx, aged, time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok := svc.Current(ctx, sess.Token); ok {
		t.Fatal("session outlived its absolute lifetime")
	}
}
