// Package geocode resolves free-text place names to coordinates through a
// Mapbox-compatible forward geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/trailpine/campground/internal/app/domain/campsite"
)

// Client calls the forward geocoding API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
}

// Config configures the client.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
}

// New creates a geocoding client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 2
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		maxRetries: maxRetries,
	}
}

type featureCollection struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Forward resolves place to a longitude/latitude pair, retrying transient
// upstream failures. An empty result set is an error; callers decide how
// soft that failure is.
func (c *Client) Forward(ctx context.Context, place string) (campsite.Point, error) {
	endpoint := fmt.Sprintf("%s/%s.json?access_token=%s&limit=1",
		c.baseURL, url.PathEscape(place), url.QueryEscape(c.token))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		point, retryable, err := c.forwardOnce(ctx, endpoint)
		if err == nil {
			return point, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return campsite.Point{}, lastErr
}

func (c *Client) forwardOnce(ctx context.Context, endpoint string) (campsite.Point, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return campsite.Point{}, false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return campsite.Point{}, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return campsite.Point{}, true, fmt.Errorf("geocoding upstream returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return campsite.Point{}, false, fmt.Errorf("geocoding request failed with %d", resp.StatusCode)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return campsite.Point{}, false, fmt.Errorf("decode geocoding response: %w", err)
	}
	if len(fc.Features) == 0 || len(fc.Features[0].Geometry.Coordinates) < 2 {
		return campsite.Point{}, false, fmt.Errorf("no geocoding result")
	}

	coords := fc.Features[0].Geometry.Coordinates
	return campsite.Point{Longitude: coords[0], Latitude: coords[1]}, false, nil
}
