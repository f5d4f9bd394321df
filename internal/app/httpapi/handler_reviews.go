package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/trailpine/campground/internal/errors"
	"github.com/trailpine/campground/internal/middleware"
)

func (h *handler) createReview(w http.ResponseWriter, r *http.Request) error {
	campgroundID := mux.Vars(r)["id"]

	payload, err := reviewPayload(r)
	if err != nil {
		return err
	}

	rv, err := h.app.Reviews.Create(r.Context(), campgroundID, payload, middleware.CurrentUserID(r.Context()))
	if apperrors.IsNotFound(err) && !middleware.WantsJSON(r) {
		h.flash(w, r, "", clientMessage(err))
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return nil
	}
	if err != nil {
		return err
	}

	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusCreated, rv)
		return nil
	}
	h.flash(w, r, "Created new review!", "")
	http.Redirect(w, r, "/campgrounds/"+campgroundID, http.StatusSeeOther)
	return nil
}

func (h *handler) deleteReview(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)

	if err := h.app.Reviews.Delete(r.Context(), vars["id"], vars["reviewId"]); err != nil {
		return err
	}

	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	h.flash(w, r, "Successfully deleted review", "")
	http.Redirect(w, r, "/campgrounds/"+vars["id"], http.StatusSeeOther)
	return nil
}
