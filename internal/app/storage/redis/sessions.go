// Package redis implements the session store backed by Redis. The key TTL
// is the sliding expiry; refreshing a session rewrites the record with a
// fresh TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/trailpine/campground/internal/app/domain/session"
	"github.com/trailpine/campground/internal/app/storage"
)

const keyPrefix = "session:"

// SessionStore persists sessions in Redis.
type SessionStore struct {
	client *goredis.Client
}

var _ storage.SessionStore = (*SessionStore)(nil)

// NewSessionStore wraps an existing client.
func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr, password string, db int) (*SessionStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &SessionStore{client: client}, nil
}

func (s *SessionStore) PutSession(ctx context.Context, sess session.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+sess.Token, data, ttl).Err()
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (session.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, goredis.Nil) {
		return session.Session{}, storage.ErrNotFound
	}
	if err != nil {
		return session.Session{}, err
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}

// Close releases the underlying client.
func (s *SessionStore) Close() error { return s.client.Close() }
