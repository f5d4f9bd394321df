// Package campsite defines the campground listing model.
package campsite

import (
	"strings"
	"time"
)

// Image is a hosted image reference returned by the external image
// service. Only the URL and filename are stored.
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Thumbnail derives a resized variant URL from the hosted original.
func (i Image) Thumbnail() string {
	return strings.Replace(i.URL, "/upload", "/upload/w_200", 1)
}

// Point is a longitude/latitude pair.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Campground is a listing owned by exactly one user. OwnerID is set at
// creation and never changes; ReviewIDs is the ordered sequence of reviews
// posted against it.
type Campground struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	Geometry    Point     `json:"geometry"`
	Images      []Image   `json:"images"`
	OwnerID     string    `json:"owner_id"`
	ReviewIDs   []string  `json:"review_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
