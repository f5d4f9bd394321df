// Package review defines the review model.
package review

import "time"

// Rating bounds enforced at validation time.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a rated comment authored by one user against one campground.
// AuthorID is set at creation and never changes.
type Review struct {
	ID           string    `json:"id"`
	CampgroundID string    `json:"campground_id"`
	Body         string    `json:"body"`
	Rating       int       `json:"rating"`
	AuthorID     string    `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
}
