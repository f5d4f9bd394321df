package httpapi

import (
	"net/http"

	apperrors "github.com/trailpine/campground/internal/errors"
	"github.com/trailpine/campground/internal/middleware"
)

// errorPage is the payload for the rendered error template.
type errorPage struct {
	Status  int
	Message string
}

// renderError is the single stage every handler failure funnels through.
// API clients get a JSON error body; browsers get a flash-and-redirect
// for authentication failures and the error page for everything else.
func (h *handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusOf(err)
	message := apperrors.DefaultMessage
	if svcErr, ok := apperrors.As(err); ok {
		message = svcErr.ClientMessage()
	}

	if status >= http.StatusInternalServerError {
		h.log.WithContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}

	if middleware.WantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": message})
		return
	}

	if status == http.StatusUnauthorized {
		h.flash(w, r, "", message)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if rerr := h.renderPage(w, r, "error.tmpl", "Error", errorPage{Status: status, Message: message}); rerr != nil {
		h.log.WithContext(r.Context()).WithError(rerr).Error("failed to render error page")
	}
}
