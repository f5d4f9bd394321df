package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/trailpine/campground/internal/errors"
)

// respondError writes the JSON error shape used for API clients. The
// client-safe message never includes internal detail.
func respondError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.StatusOf(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": clientMessage(err)})
}
