// Package accounts manages user registration and credential verification.
package accounts

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/trailpine/campground/internal/app/domain/user"
	"github.com/trailpine/campground/internal/app/storage"
	apperrors "github.com/trailpine/campground/internal/errors"
	"github.com/trailpine/campground/internal/validation"
	"github.com/trailpine/campground/pkg/logger"
)

// RegisterPayload is the declared schema for account creation.
type RegisterPayload struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Service manages accounts.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs an accounts service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("accounts")
	}
	return &Service{store: store, log: log}
}

// Register creates a new account. The raw password is hashed immediately
// and never persisted.
func (s *Service) Register(ctx context.Context, payload RegisterPayload) (user.User, error) {
	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))

	if err := validation.Struct(payload); err != nil {
		return user.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, apperrors.Internal(err)
	}

	u, err := s.store.CreateUser(ctx, user.User{
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return user.User{}, apperrors.Conflict("A user with that username or email already exists")
	}
	if err != nil {
		return user.User{}, apperrors.Internal(err)
	}

	s.log.WithContext(ctx).WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords produce the same generic failure so callers cannot
// enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, username, password string) (user.User, error) {
	genericFailure := apperrors.Unauthenticated("Invalid username or password")

	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		// Burn a comparison anyway so the two failure paths take
		// comparable time.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0CpOwUzDiBGQ4DLrnlAgqgUM0G2"), []byte(password))
		return user.User{}, genericFailure
	}
	if err != nil {
		return user.User{}, apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, genericFailure
	}
	return u, nil
}

// Get loads an account by id.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, apperrors.NotFound("user")
	}
	if err != nil {
		return user.User{}, apperrors.Internal(err)
	}
	return u, nil
}
