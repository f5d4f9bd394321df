package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/trailpine/campground/internal/app/services/accounts"
	"github.com/trailpine/campground/internal/app/services/campgrounds"
	"github.com/trailpine/campground/internal/app/services/reviews"
	apperrors "github.com/trailpine/campground/internal/errors"
)

func isJSONBody(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// decodeJSON fills dst from the request body. Unknown fields are
// ignored; validation decides what the payload must contain.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation("request body is not valid JSON")
	}
	return nil
}

// campgroundPayload reads a listing payload from a JSON body or the
// bracket-named form fields the pages submit.
func campgroundPayload(r *http.Request) (campgrounds.Payload, error) {
	var payload campgrounds.Payload
	if isJSONBody(r) {
		return payload, decodeJSON(r, &payload)
	}

	if err := r.ParseForm(); err != nil {
		return payload, apperrors.Validation("malformed form body")
	}
	payload.Title = r.PostForm.Get("campground[title]")
	payload.Description = r.PostForm.Get("campground[description]")
	payload.Location = r.PostForm.Get("campground[location]")
	if raw := r.PostForm.Get("campground[price]"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return payload, apperrors.Validation("price must be a number")
		}
		payload.Price = price
	}

	urls := r.PostForm["campground[images][url]"]
	names := r.PostForm["campground[images][filename]"]
	if len(urls) > 0 {
		payload.Images = make([]campgrounds.ImagePayload, 0, len(urls))
		for i, u := range urls {
			img := campgrounds.ImagePayload{URL: u}
			if i < len(names) {
				img.Filename = names[i]
			}
			payload.Images = append(payload.Images, img)
		}
	}
	return payload, nil
}

// reviewPayload reads a review payload from a JSON body or form fields.
func reviewPayload(r *http.Request) (reviews.Payload, error) {
	var payload reviews.Payload
	if isJSONBody(r) {
		return payload, decodeJSON(r, &payload)
	}

	if err := r.ParseForm(); err != nil {
		return payload, apperrors.Validation("malformed form body")
	}
	payload.Body = r.PostForm.Get("review[body]")
	if raw := r.PostForm.Get("review[rating]"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			return payload, apperrors.Validation("rating must be a number")
		}
		payload.Rating = rating
	}
	return payload, nil
}

// registerPayload reads an account payload from a JSON body or form
// fields.
func registerPayload(r *http.Request) (accounts.RegisterPayload, error) {
	var payload accounts.RegisterPayload
	if isJSONBody(r) {
		return payload, decodeJSON(r, &payload)
	}

	if err := r.ParseForm(); err != nil {
		return payload, apperrors.Validation("malformed form body")
	}
	payload.Username = r.PostForm.Get("username")
	payload.Email = r.PostForm.Get("email")
	payload.Password = r.PostForm.Get("password")
	return payload, nil
}

// credentials reads the login form or JSON body.
func credentials(r *http.Request) (username, password string, err error) {
	if isJSONBody(r) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if derr := decodeJSON(r, &body); derr != nil {
			return "", "", derr
		}
		return body.Username, body.Password, nil
	}

	if perr := r.ParseForm(); perr != nil {
		return "", "", apperrors.Validation("malformed form body")
	}
	return r.PostForm.Get("username"), r.PostForm.Get("password"), nil
}
