// Package sessions issues and resolves the opaque tokens behind the
// session cookie. Tokens slide: each use refreshes the idle expiry, up to
// a fixed absolute lifetime from creation.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/trailpine/campground/internal/app/domain/session"
	"github.com/trailpine/campground/internal/app/storage"
	apperrors "github.com/trailpine/campground/internal/errors"
	"github.com/trailpine/campground/pkg/logger"
)

// Service manages sessions.
type Service struct {
	store       storage.SessionStore
	idleTTL     time.Duration
	maxLifetime time.Duration
	log         *logger.Logger
}

// New constructs a session service. idleTTL is the sliding window,
// maxLifetime the absolute cap from session creation.
func New(store storage.SessionStore, idleTTL, maxLifetime time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("sessions")
	}
	if idleTTL <= 0 {
		idleTTL = 24 * time.Hour
	}
	if maxLifetime < idleTTL {
		maxLifetime = 7 * 24 * time.Hour
	}
	return &Service{store: store, idleTTL: idleTTL, maxLifetime: maxLifetime, log: log}
}

// Begin creates an anonymous session, used to carry flash messages and
// the return-to path for visitors who have not logged in.
func (s *Service) Begin(ctx context.Context) (session.Session, error) {
	return s.create(ctx, "", session.Session{})
}

// Establish creates an authenticated session for userID. When prior is
// non-nil its return-to path and pending flashes carry over and the old
// token is invalidated, so a login cannot reuse a pre-auth token.
func (s *Service) Establish(ctx context.Context, userID string, prior *session.Session) (session.Session, error) {
	var carried session.Session
	if prior != nil {
		carried = *prior
		if err := s.store.DeleteSession(ctx, prior.Token); err != nil {
			s.log.WithContext(ctx).WithError(err).Warn("failed to drop pre-login session")
		}
	}
	return s.create(ctx, userID, carried)
}

func (s *Service) create(ctx context.Context, userID string, carried session.Session) (session.Session, error) {
	token, err := newToken()
	if err != nil {
		return session.Session{}, apperrors.Internal(err)
	}

	now := time.Now().UTC()
	sess := session.Session{
		Token:        token,
		UserID:       userID,
		ReturnTo:     carried.ReturnTo,
		FlashSuccess: carried.FlashSuccess,
		FlashError:   carried.FlashError,
		CreatedAt:    now,
		LastSeenAt:   now,
	}
	if err := s.store.PutSession(ctx, sess, s.ttlFor(sess)); err != nil {
		return session.Session{}, apperrors.Internal(err)
	}
	return sess, nil
}

// Current resolves a token to its session, refreshing the sliding expiry.
// A missing, expired or aged-out token yields (zero, false): anonymous is
// not an error.
func (s *Service) Current(ctx context.Context, token string) (session.Session, bool) {
	if token == "" {
		return session.Session{}, false
	}

	sess, err := s.store.GetSession(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return session.Session{}, false
	}
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Error("session lookup failed")
		return session.Session{}, false
	}

	now := time.Now().UTC()
	if now.After(sess.CreatedAt.Add(s.maxLifetime)) {
		_ = s.store.DeleteSession(ctx, token)
		return session.Session{}, false
	}

	sess.LastSeenAt = now
	if err := s.store.PutSession(ctx, sess, s.ttlFor(sess)); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("session refresh failed")
	}
	return sess, true
}

// Save persists a mutated session (flash messages, return-to path)
// without advancing the sliding window.
func (s *Service) Save(ctx context.Context, sess session.Session) error {
	if err := s.store.PutSession(ctx, sess, s.ttlFor(sess)); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Destroy invalidates a token. Destroying an unknown token is a no-op.
func (s *Service) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// ttlFor caps the sliding window at the remaining absolute lifetime.
func (s *Service) ttlFor(sess session.Session) time.Duration {
	remaining := time.Until(sess.CreatedAt.Add(s.maxLifetime))
	if remaining < s.idleTTL {
		return remaining
	}
	return s.idleTTL
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
