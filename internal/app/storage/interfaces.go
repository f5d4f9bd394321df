// Package storage declares the persistence interfaces for the
// application. Implementations: memory (tests, local dev), postgres
// (production records) and redis (sessions).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/trailpine/campground/internal/app/domain/campsite"
	"github.com/trailpine/campground/internal/app/domain/review"
	"github.com/trailpine/campground/internal/app/domain/session"
	"github.com/trailpine/campground/internal/app/domain/user"
)

// ErrNotFound is returned for reads and deletes of absent records.
var ErrNotFound = errors.New("storage: record not found")

// ErrDuplicate is returned when a uniqueness constraint is violated.
var ErrDuplicate = errors.New("storage: duplicate record")

// CampgroundStore persists campground listings. Reads return the listing
// with its ordered review-id sequence resolved.
type CampgroundStore interface {
	CreateCampground(ctx context.Context, cg campsite.Campground) (campsite.Campground, error)
	UpdateCampground(ctx context.Context, cg campsite.Campground) (campsite.Campground, error)
	GetCampground(ctx context.Context, id string) (campsite.Campground, error)
	ListCampgrounds(ctx context.Context) ([]campsite.Campground, error)

	// DeleteCampground removes the listing and cascades removal of every
	// review it references as one atomic operation. It returns the ids of
	// the cascaded reviews.
	DeleteCampground(ctx context.Context, id string) ([]string, error)
}

// ReviewStore persists reviews. Creation appends the reference to the
// parent campground's sequence and deletion removes it, atomically with
// the review row itself in both directions.
type ReviewStore interface {
	CreateReview(ctx context.Context, rv review.Review) (review.Review, error)
	GetReview(ctx context.Context, id string) (review.Review, error)
	ListReviews(ctx context.Context, campgroundID string) ([]review.Review, error)
	DeleteReview(ctx context.Context, campgroundID, reviewID string) error
}

// UserStore persists accounts. Username and email are unique.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
}

// SessionStore persists sessions keyed by their opaque token. Put both
// creates and refreshes; ttl is the remaining lifetime from now.
type SessionStore interface {
	PutSession(ctx context.Context, sess session.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (session.Session, error)
	DeleteSession(ctx context.Context, token string) error
}
