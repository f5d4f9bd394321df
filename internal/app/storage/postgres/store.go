// Package postgres implements the storage interfaces backed by
// PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/trailpine/campground/internal/app/domain/campsite"
	"github.com/trailpine/campground/internal/app/domain/review"
	"github.com/trailpine/campground/internal/app/storage"

	"github.com/trailpine/campground/internal/app/domain/user"
)

// Store implements the record stores backed by PostgreSQL. Sessions live
// in redis, not here.
type Store struct {
	db *sql.DB
}

var _ storage.CampgroundStore = (*Store)(nil)
var _ storage.ReviewStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- CampgroundStore --------------------------------------------------------

func (s *Store) CreateCampground(ctx context.Context, cg campsite.Campground) (campsite.Campground, error) {
	if cg.ID == "" {
		cg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cg.CreatedAt = now
	cg.UpdatedAt = now
	cg.ReviewIDs = nil

	imagesJSON, err := json.Marshal(cg.Images)
	if err != nil {
		return campsite.Campground{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO campgrounds (id, title, description, price, location, longitude, latitude, images, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, cg.ID, cg.Title, cg.Description, cg.Price, cg.Location, cg.Geometry.Longitude, cg.Geometry.Latitude, imagesJSON, cg.OwnerID, cg.CreatedAt, cg.UpdatedAt)
	if err != nil {
		return campsite.Campground{}, translate(err)
	}
	return cg, nil
}

func (s *Store) UpdateCampground(ctx context.Context, cg campsite.Campground) (campsite.Campground, error) {
	existing, err := s.GetCampground(ctx, cg.ID)
	if err != nil {
		return campsite.Campground{}, err
	}

	// Owner, creation time and the review sequence never change on update.
	cg.OwnerID = existing.OwnerID
	cg.CreatedAt = existing.CreatedAt
	cg.ReviewIDs = existing.ReviewIDs
	cg.UpdatedAt = time.Now().UTC()

	imagesJSON, err := json.Marshal(cg.Images)
	if err != nil {
		return campsite.Campground{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE campgrounds
		SET title = $2, description = $3, price = $4, location = $5, longitude = $6, latitude = $7, images = $8, updated_at = $9
		WHERE id = $1
	`, cg.ID, cg.Title, cg.Description, cg.Price, cg.Location, cg.Geometry.Longitude, cg.Geometry.Latitude, imagesJSON, cg.UpdatedAt)
	if err != nil {
		return campsite.Campground{}, translate(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return campsite.Campground{}, storage.ErrNotFound
	}
	return cg, nil
}

func (s *Store) GetCampground(ctx context.Context, id string) (campsite.Campground, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, price, location, longitude, latitude, images, owner_id, created_at, updated_at
		FROM campgrounds
		WHERE id = $1
	`, id)

	cg, err := scanCampground(row)
	if err != nil {
		return campsite.Campground{}, translate(err)
	}

	cg.ReviewIDs, err = s.reviewIDs(ctx, id)
	if err != nil {
		return campsite.Campground{}, err
	}
	return cg, nil
}

func (s *Store) ListCampgrounds(ctx context.Context) ([]campsite.Campground, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, price, location, longitude, latitude, images, owner_id, created_at, updated_at
		FROM campgrounds
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []campsite.Campground
	for rows.Next() {
		cg, err := scanCampground(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].ReviewIDs, err = s.reviewIDs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) DeleteCampground(ctx context.Context, id string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Cascade first so the listing and its reviews disappear together.
	rows, err := tx.QueryContext(ctx, `DELETE FROM reviews WHERE campground_id = $1 RETURNING id`, id)
	if err != nil {
		return nil, err
	}
	var cascaded []string
	for rows.Next() {
		var reviewID string
		if err := rows.Scan(&reviewID); err != nil {
			rows.Close()
			return nil, err
		}
		cascaded = append(cascaded, reviewID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	result, err := tx.ExecContext(ctx, `DELETE FROM campgrounds WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return cascaded, nil
}

func (s *Store) reviewIDs(ctx context.Context, campgroundID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM reviews WHERE campground_id = $1 ORDER BY created_at, id
	`, campgroundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- ReviewStore ------------------------------------------------------------

func (s *Store) CreateReview(ctx context.Context, rv review.Review) (review.Review, error) {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	rv.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return review.Review{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the parent row so the review row and its reference appear
	// together; a concurrent campground delete cannot interleave.
	var parentID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM campgrounds WHERE id = $1 FOR UPDATE`, rv.CampgroundID).Scan(&parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return review.Review{}, storage.ErrNotFound
	}
	if err != nil {
		return review.Review{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reviews (id, campground_id, body, rating, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rv.ID, rv.CampgroundID, rv.Body, rv.Rating, rv.AuthorID, rv.CreatedAt)
	if err != nil {
		return review.Review{}, translate(err)
	}

	if err := tx.Commit(); err != nil {
		return review.Review{}, err
	}
	return rv, nil
}

func (s *Store) GetReview(ctx context.Context, id string) (review.Review, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, campground_id, body, rating, author_id, created_at
		FROM reviews
		WHERE id = $1
	`, id)

	var rv review.Review
	err := row.Scan(&rv.ID, &rv.CampgroundID, &rv.Body, &rv.Rating, &rv.AuthorID, &rv.CreatedAt)
	if err != nil {
		return review.Review{}, translate(err)
	}
	return rv, nil
}

func (s *Store) ListReviews(ctx context.Context, campgroundID string) ([]review.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, campground_id, body, rating, author_id, created_at
		FROM reviews
		WHERE campground_id = $1
		ORDER BY created_at, id
	`, campgroundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []review.Review
	for rows.Next() {
		var rv review.Review
		if err := rows.Scan(&rv.ID, &rv.CampgroundID, &rv.Body, &rv.Rating, &rv.AuthorID, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (s *Store) DeleteReview(ctx context.Context, campgroundID, reviewID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM reviews WHERE id = $1 AND campground_id = $2
	`, reviewID, campgroundID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return user.User{}, translate(err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1
	`, id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1
	`, username))
}

func (s *Store) scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return user.User{}, translate(err)
	}
	return u, nil
}

// --- helpers ----------------------------------------------------------------

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCampground(row scanner) (campsite.Campground, error) {
	var (
		cg        campsite.Campground
		imagesRaw []byte
	)
	err := row.Scan(&cg.ID, &cg.Title, &cg.Description, &cg.Price, &cg.Location,
		&cg.Geometry.Longitude, &cg.Geometry.Latitude, &imagesRaw, &cg.OwnerID,
		&cg.CreatedAt, &cg.UpdatedAt)
	if err != nil {
		return campsite.Campground{}, err
	}
	if len(imagesRaw) > 0 {
		if err := json.Unmarshal(imagesRaw, &cg.Images); err != nil {
			return campsite.Campground{}, fmt.Errorf("decode images for %s: %w", cg.ID, err)
		}
	}
	return cg, nil
}

const uniqueViolation = "23505"

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return storage.ErrDuplicate
	}
	return err
}
