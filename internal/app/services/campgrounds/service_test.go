package campgrounds

import (
	"context"
	"fmt"
	"testing"

	"github.com/trailpine/campground/internal/app/domain/campsite"
	"github.com/trailpine/campground/internal/app/domain/review"
	"github.com/trailpine/campground/internal/app/domain/user"
	"github.com/trailpine/campground/internal/app/storage/memory"
	apperrors "github.com/trailpine/campground/internal/errors"
)

type stubGeocoder struct {
	point campsite.Point
	err   error
	calls int
}

func (g *stubGeocoder) Forward(_ context.Context, _ string) (campsite.Point, error) {
	g.calls++
	return g.point, g.err
}

func newService(t *testing.T) (*Service, *memory.Store, string) {
	t.Helper()
	store := memory.New()
	owner, err := store.CreateUser(context.Background(), user.User{
		Username: "ranger", Email: "ranger@example.com", PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	geo := &stubGeocoder{point: campsite.Point{Longitude: -121.76, Latitude: 46.78}}
	return New(store, store, store, geo, nil), store, owner.ID
}

func validPayload() Payload {
	return Payload{
		Title:       "Ridge Camp",
		Description: "High meadow with a creek.",
		Price:       15,
		Location:    "Ashford, Washington",
	}
}

func TestCreateThenGet(t *testing.T) {
	svc, _, ownerID := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validPayload(), ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerID != ownerID {
		t.Fatalf("owner = %s, want %s", got.OwnerID, ownerID)
	}
	if len(got.ReviewIDs) != 0 {
		t.Fatalf("new listing has %d reviews", len(got.ReviewIDs))
	}
	if got.Geometry.Latitude == 0 && got.Geometry.Longitude == 0 {
		t.Fatal("location not geocoded")
	}
}

func TestCreateRejectsInvalidPayloads(t *testing.T) {
	svc, _, ownerID := newService(t)
	ctx := context.Background()

	cases := map[string]Payload{
		"missing title":  {Description: "x", Price: 10, Location: "somewhere"},
		"negative price": {Title: "Ridge Camp", Description: "x", Price: -5, Location: "somewhere"},
		"bad longitude":  {Title: "Ridge Camp", Description: "x", Price: 5, Location: "somewhere", Longitude: f(-320), Latitude: f(10)},
	}
	for name, payload := range cases {
		if _, err := svc.Create(ctx, payload, ownerID); !apperrors.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	listings, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("rejected payloads mutated the store: %d listings", len(listings))
	}
}

func TestUpdateKeepsOwnerImmutable(t *testing.T) {
	svc, _, ownerID := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validPayload(), ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	payload := validPayload()
	payload.Title = "Ridge Camp (renamed)"
	updated, err := svc.Update(ctx, created.ID, payload)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Ridge Camp (renamed)" {
		t.Fatalf("title not updated: %s", updated.Title)
	}
	if updated.OwnerID != ownerID {
		t.Fatalf("owner changed on update: %s", updated.OwnerID)
	}
}

func TestDeleteCascadesReviews(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("reviews=%d", n), func(t *testing.T) {
			svc, store, ownerID := newService(t)
			ctx := context.Background()

			created, err := svc.Create(ctx, validPayload(), ownerID)
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			var reviewIDs []string
			for i := 0; i < n; i++ {
				rv, err := store.CreateReview(ctx, review.Review{
					CampgroundID: created.ID,
					Body:         "nice",
					Rating:       4,
					AuthorID:     ownerID,
				})
				if err != nil {
					t.Fatalf("seed review: %v", err)
				}
				reviewIDs = append(reviewIDs, rv.ID)
			}

			if err := svc.Delete(ctx, created.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := svc.Get(ctx, created.ID); !apperrors.IsNotFound(err) {
				t.Fatalf("listing survived delete: %v", err)
			}
			for _, id := range reviewIDs {
				if _, err := store.GetReview(ctx, id); err == nil {
					t.Fatalf("review %s survived cascade", id)
				}
			}
		})
	}
}

func TestDeleteMissingIsSoftNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	err := svc.Delete(context.Background(), "no-such-id")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGetDetailExpandsReviewsAndAuthors(t *testing.T) {
	svc, store, ownerID := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validPayload(), ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	author, err := store.CreateUser(ctx, user.User{Username: "hiker", Email: "hiker@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("seed author: %v", err)
	}
	if _, err := store.CreateReview(ctx, review.Review{
		CampgroundID: created.ID, Body: "stars for days", Rating: 5, AuthorID: author.ID,
	}); err != nil {
		t.Fatalf("seed review: %v", err)
	}

	detail, err := svc.GetDetail(ctx, created.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Owner.Username != "ranger" {
		t.Fatalf("owner not expanded: %+v", detail.Owner)
	}
	if len(detail.Reviews) != 1 || detail.Reviews[0].Author.Username != "hiker" {
		t.Fatalf("review author not expanded: %+v", detail.Reviews)
	}
}

func TestGeocoderFailureDoesNotBlockCreate(t *testing.T) {
	store := memory.New()
	owner, _ := store.CreateUser(context.Background(), user.User{Username: "r", Email: "r@example.com", PasswordHash: "x"})
	geo := &stubGeocoder{err: fmt.Errorf("upstream down")}
	svc := New(store, store, store, geo, nil)

	created, err := svc.Create(context.Background(), validPayload(), owner.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Geometry != (campsite.Point{}) {
		t.Fatalf("expected zero point, got %+v", created.Geometry)
	}
}

func f(v float64) *float64 { return &v }
