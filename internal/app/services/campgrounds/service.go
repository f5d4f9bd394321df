// Package campgrounds manages campground listings: validated creation,
// reads with owner/review expansion, owner-immutable updates, and delete
// with review cascade.
package campgrounds

import (
	"context"
	"errors"
	"strings"

	"github.com/trailpine/campground/internal/app/domain/campsite"
	"github.com/trailpine/campground/internal/app/domain/review"
	"github.com/trailpine/campground/internal/app/domain/user"
	"github.com/trailpine/campground/internal/app/storage"
	apperrors "github.com/trailpine/campground/internal/errors"
	"github.com/trailpine/campground/internal/validation"
	"github.com/trailpine/campground/pkg/logger"
)

// Geocoder resolves a free-text place name to a point.
type Geocoder interface {
	Forward(ctx context.Context, place string) (campsite.Point, error)
}

// ImagePayload is one hosted image reference in a listing payload.
type ImagePayload struct {
	URL      string `json:"url" validate:"required,url"`
	Filename string `json:"filename" validate:"required"`
}

// Payload is the declared schema for campground creation and update.
// Owner and id never appear here: they cannot be set or changed through a
// payload. Longitude/latitude are optional overrides; when absent the
// location text is geocoded.
type Payload struct {
	Title       string         `json:"title" validate:"required,max=120"`
	Description string         `json:"description" validate:"required"`
	Price       float64        `json:"price" validate:"gte=0"`
	Location    string         `json:"location" validate:"required"`
	Longitude   *float64       `json:"longitude" validate:"omitempty,longitude"`
	Latitude    *float64       `json:"latitude" validate:"omitempty,latitude"`
	Images      []ImagePayload `json:"images" validate:"dive"`
}

// Detail is a listing with its reviews and user references expanded for
// the show page.
type Detail struct {
	Campground campsite.Campground
	Owner      user.User
	Reviews    []ReviewDetail
}

// ReviewDetail is a review with its author expanded.
type ReviewDetail struct {
	Review review.Review
	Author user.User
}

// Service manages campground listings.
type Service struct {
	store    storage.CampgroundStore
	reviews  storage.ReviewStore
	users    storage.UserStore
	geocoder Geocoder
	log      *logger.Logger
}

// New constructs a campgrounds service. geocoder may be nil, in which
// case points come only from payload overrides.
func New(store storage.CampgroundStore, reviews storage.ReviewStore, users storage.UserStore, geocoder Geocoder, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("campgrounds")
	}
	return &Service{store: store, reviews: reviews, users: users, geocoder: geocoder, log: log}
}

// Create validates the payload and persists a new listing owned by
// ownerID with an empty review sequence.
func (s *Service) Create(ctx context.Context, payload Payload, ownerID string) (campsite.Campground, error) {
	if ownerID == "" {
		return campsite.Campground{}, apperrors.Unauthenticated("")
	}
	payload.trim()
	if err := validation.Struct(payload); err != nil {
		return campsite.Campground{}, err
	}

	point := s.resolvePoint(ctx, payload)

	cg, err := s.store.CreateCampground(ctx, campsite.Campground{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		Location:    payload.Location,
		Geometry:    point,
		Images:      payload.images(),
		OwnerID:     ownerID,
	})
	if err != nil {
		return campsite.Campground{}, apperrors.Internal(err)
	}

	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"campground_id": cg.ID,
		"owner_id":      ownerID,
	}).Info("campground created")
	return cg, nil
}

// Get loads one listing.
func (s *Service) Get(ctx context.Context, id string) (campsite.Campground, error) {
	cg, err := s.store.GetCampground(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return campsite.Campground{}, apperrors.NotFound("campground")
	}
	if err != nil {
		return campsite.Campground{}, apperrors.Internal(err)
	}
	return cg, nil
}

// List returns every listing.
func (s *Service) List(ctx context.Context) ([]campsite.Campground, error) {
	out, err := s.store.ListCampgrounds(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return out, nil
}

// GetDetail loads a listing with its owner, reviews and review authors
// expanded.
func (s *Service) GetDetail(ctx context.Context, id string) (Detail, error) {
	cg, err := s.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	detail := Detail{Campground: cg}
	if owner, err := s.users.GetUser(ctx, cg.OwnerID); err == nil {
		detail.Owner = owner
	}

	reviews, err := s.reviews.ListReviews(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return Detail{}, apperrors.Internal(err)
	}
	for _, rv := range reviews {
		rd := ReviewDetail{Review: rv}
		if author, err := s.users.GetUser(ctx, rv.AuthorID); err == nil {
			rd.Author = author
		}
		detail.Reviews = append(detail.Reviews, rd)
	}
	return detail, nil
}

// Update applies a validated payload to an existing listing. Owner and id
// are immutable regardless of the request body.
func (s *Service) Update(ctx context.Context, id string, payload Payload) (campsite.Campground, error) {
	payload.trim()
	if err := validation.Struct(payload); err != nil {
		return campsite.Campground{}, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return campsite.Campground{}, err
	}

	point := existing.Geometry
	if payload.Location != existing.Location || payload.Longitude != nil || payload.Latitude != nil {
		point = s.resolvePoint(ctx, payload)
	}

	images := existing.Images
	if payload.Images != nil {
		images = payload.images()
	}

	updated, err := s.store.UpdateCampground(ctx, campsite.Campground{
		ID:          id,
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		Location:    payload.Location,
		Geometry:    point,
		Images:      images,
	})
	if errors.Is(err, storage.ErrNotFound) {
		return campsite.Campground{}, apperrors.NotFound("campground")
	}
	if err != nil {
		return campsite.Campground{}, apperrors.Internal(err)
	}
	return updated, nil
}

// Delete removes a listing and cascades removal of every review it
// references. The cascade is unconditional; deleting an absent id yields
// a not-found error the HTTP layer treats as a soft redirect.
func (s *Service) Delete(ctx context.Context, id string) error {
	cascaded, err := s.store.DeleteCampground(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound("campground")
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"campground_id":   id,
		"cascaded_review": len(cascaded),
	}).Info("campground deleted")
	return nil
}

func (s *Service) resolvePoint(ctx context.Context, payload Payload) campsite.Point {
	if payload.Longitude != nil && payload.Latitude != nil {
		return campsite.Point{Longitude: *payload.Longitude, Latitude: *payload.Latitude}
	}
	if s.geocoder == nil {
		return campsite.Point{}
	}
	point, err := s.geocoder.Forward(ctx, payload.Location)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).WithField("location", payload.Location).Warn("geocoding failed")
		return campsite.Point{}
	}
	return point
}

func (p *Payload) trim() {
	p.Title = strings.TrimSpace(p.Title)
	p.Location = strings.TrimSpace(p.Location)
	p.Description = strings.TrimSpace(p.Description)
}

func (p Payload) images() []campsite.Image {
	out := make([]campsite.Image, 0, len(p.Images))
	for _, img := range p.Images {
		out = append(out, campsite.Image{URL: img.URL, Filename: img.Filename})
	}
	return out
}
