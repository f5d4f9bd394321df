// Package migrations applies the database schema at startup. Statements
// are idempotent so repeated application is safe.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS campgrounds (
		id          UUID PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       NUMERIC(10,2) NOT NULL CHECK (price >= 0),
		location    TEXT NOT NULL DEFAULT '',
		longitude   DOUBLE PRECISION NOT NULL DEFAULT 0,
		latitude    DOUBLE PRECISION NOT NULL DEFAULT 0,
		images      JSONB NOT NULL DEFAULT '[]',
		owner_id    UUID NOT NULL REFERENCES users (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id            UUID PRIMARY KEY,
		campground_id UUID NOT NULL REFERENCES campgrounds (id),
		body          TEXT NOT NULL,
		rating        INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		author_id     UUID NOT NULL REFERENCES users (id),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_campgrounds_owner ON campgrounds (owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_campground ON reviews (campground_id, created_at)`,
}

// Apply executes every migration statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
