// Package reviews manages review creation and deletion against a parent
// campground.
package reviews

import (
	"context"
	"errors"
	"strings"

	"github.com/trailpine/campground/internal/app/domain/review"
	"github.com/trailpine/campground/internal/app/storage"
	apperrors "github.com/trailpine/campground/internal/errors"
	"github.com/trailpine/campground/internal/validation"
	"github.com/trailpine/campground/pkg/logger"
)

// Payload is the declared schema for review creation.
type Payload struct {
	Body   string `json:"body" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

// Service manages reviews.
type Service struct {
	store storage.ReviewStore
	log   *logger.Logger
}

// New constructs a reviews service.
func New(store storage.ReviewStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reviews")
	}
	return &Service{store: store, log: log}
}

// Create validates the payload and appends a new review authored by
// authorID to the campground's sequence. The review row and the parent
// reference persist together or not at all.
func (s *Service) Create(ctx context.Context, campgroundID string, payload Payload, authorID string) (review.Review, error) {
	if authorID == "" {
		return review.Review{}, apperrors.Unauthenticated("")
	}
	payload.Body = strings.TrimSpace(payload.Body)
	if err := validation.Struct(payload); err != nil {
		return review.Review{}, err
	}

	rv, err := s.store.CreateReview(ctx, review.Review{
		CampgroundID: campgroundID,
		Body:         payload.Body,
		Rating:       payload.Rating,
		AuthorID:     authorID,
	})
	if errors.Is(err, storage.ErrNotFound) {
		return review.Review{}, apperrors.NotFound("campground")
	}
	if err != nil {
		return review.Review{}, apperrors.Internal(err)
	}

	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"review_id":     rv.ID,
		"campground_id": campgroundID,
	}).Info("review created")
	return rv, nil
}

// Get loads one review, used by the authorship guard.
func (s *Service) Get(ctx context.Context, id string) (review.Review, error) {
	rv, err := s.store.GetReview(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return review.Review{}, apperrors.NotFound("review")
	}
	if err != nil {
		return review.Review{}, apperrors.Internal(err)
	}
	return rv, nil
}

// Delete removes a review and its reference from the campground's
// sequence together.
func (s *Service) Delete(ctx context.Context, campgroundID, reviewID string) error {
	err := s.store.DeleteReview(ctx, campgroundID, reviewID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound("review")
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"review_id":     reviewID,
		"campground_id": campgroundID,
	}).Info("review deleted")
	return nil
}
