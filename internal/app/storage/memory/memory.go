// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trailpine/campground/internal/app/domain/campsite"
	"github.com/trailpine/campground/internal/app/domain/review"
	"github.com/trailpine/campground/internal/app/domain/session"
	"github.com/trailpine/campground/internal/app/domain/user"
	"github.com/trailpine/campground/internal/app/storage"
)

// Store is the in-memory store.
type Store struct {
	mu              sync.RWMutex
	campgrounds     map[string]campsite.Campground
	reviews         map[string]review.Review
	users           map[string]user.User
	usersByUsername map[string]string
	usersByEmail    map[string]string
	sessions        map[string]session.Session
	sessionExpiry   map[string]time.Time
}

var _ storage.CampgroundStore = (*Store)(nil)
var _ storage.ReviewStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		campgrounds:     make(map[string]campsite.Campground),
		reviews:         make(map[string]review.Review),
		users:           make(map[string]user.User),
		usersByUsername: make(map[string]string),
		usersByEmail:    make(map[string]string),
		sessions:        make(map[string]session.Session),
		sessionExpiry:   make(map[string]time.Time),
	}
}

// CampgroundStore implementation ---------------------------------------------

func (s *Store) CreateCampground(_ context.Context, cg campsite.Campground) (campsite.Campground, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cg.ID == "" {
		cg.ID = uuid.NewString()
	} else if _, exists := s.campgrounds[cg.ID]; exists {
		return campsite.Campground{}, storage.ErrDuplicate
	}
	now := time.Now().UTC()
	cg.CreatedAt = now
	cg.UpdatedAt = now
	cg.ReviewIDs = nil

	s.campgrounds[cg.ID] = cg
	return cg, nil
}

func (s *Store) UpdateCampground(_ context.Context, cg campsite.Campground) (campsite.Campground, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.campgrounds[cg.ID]
	if !ok {
		return campsite.Campground{}, storage.ErrNotFound
	}

	// Owner, creation time and the review sequence never change on update.
	cg.OwnerID = existing.OwnerID
	cg.CreatedAt = existing.CreatedAt
	cg.ReviewIDs = existing.ReviewIDs
	cg.UpdatedAt = time.Now().UTC()

	s.campgrounds[cg.ID] = cg
	return cg, nil
}

func (s *Store) GetCampground(_ context.Context, id string) (campsite.Campground, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cg, ok := s.campgrounds[id]
	if !ok {
		return campsite.Campground{}, storage.ErrNotFound
	}
	return cloneCampground(cg), nil
}

func (s *Store) ListCampgrounds(_ context.Context) ([]campsite.Campground, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]campsite.Campground, 0, len(s.campgrounds))
	for _, cg := range s.campgrounds {
		out = append(out, cloneCampground(cg))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteCampground(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cg, ok := s.campgrounds[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cascaded := append([]string(nil), cg.ReviewIDs...)
	for _, reviewID := range cascaded {
		delete(s.reviews, reviewID)
	}
	delete(s.campgrounds, id)
	return cascaded, nil
}

// ReviewStore implementation --------------------------------------------------

func (s *Store) CreateReview(_ context.Context, rv review.Review) (review.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cg, ok := s.campgrounds[rv.CampgroundID]
	if !ok {
		return review.Review{}, storage.ErrNotFound
	}

	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	rv.CreatedAt = time.Now().UTC()

	// Both writes happen under one lock hold: the review record and its
	// reference on the parent persist together or not at all.
	s.reviews[rv.ID] = rv
	cg.ReviewIDs = append(cg.ReviewIDs, rv.ID)
	s.campgrounds[cg.ID] = cg
	return rv, nil
}

func (s *Store) GetReview(_ context.Context, id string) (review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rv, ok := s.reviews[id]
	if !ok {
		return review.Review{}, storage.ErrNotFound
	}
	return rv, nil
}

func (s *Store) ListReviews(_ context.Context, campgroundID string) ([]review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cg, ok := s.campgrounds[campgroundID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	out := make([]review.Review, 0, len(cg.ReviewIDs))
	for _, id := range cg.ReviewIDs {
		if rv, ok := s.reviews[id]; ok {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (s *Store) DeleteReview(_ context.Context, campgroundID, reviewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rv, ok := s.reviews[reviewID]
	if !ok || rv.CampgroundID != campgroundID {
		return storage.ErrNotFound
	}

	delete(s.reviews, reviewID)

	cg, ok := s.campgrounds[campgroundID]
	if !ok {
		return nil
	}
	kept := cg.ReviewIDs[:0]
	for _, id := range cg.ReviewIDs {
		if id != reviewID {
			kept = append(kept, id)
		}
	}
	cg.ReviewIDs = kept
	s.campgrounds[campgroundID] = cg
	return nil
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByUsername[u.Username]; taken {
		return user.User{}, storage.ErrDuplicate
	}
	if _, taken := s.usersByEmail[u.Email]; taken {
		return user.User{}, storage.ErrDuplicate
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	s.users[u.ID] = u
	s.usersByUsername[u.Username] = u.ID
	s.usersByEmail[u.Email] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByUsername[username]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

// SessionStore implementation -------------------------------------------------

func (s *Store) PutSession(_ context.Context, sess session.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.Token] = sess
	s.sessionExpiry[sess.Token] = time.Now().UTC().Add(ttl)
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok {
		return session.Session{}, storage.ErrNotFound
	}
	if expiry, ok := s.sessionExpiry[token]; ok && time.Now().UTC().After(expiry) {
		return session.Session{}, storage.ErrNotFound
	}
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	delete(s.sessionExpiry, token)
	return nil
}

func cloneCampground(cg campsite.Campground) campsite.Campground {
	cg.ReviewIDs = append([]string(nil), cg.ReviewIDs...)
	cg.Images = append([]campsite.Image(nil), cg.Images...)
	return cg
}
