package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/trailpine/campground/internal/errors"
	"github.com/trailpine/campground/internal/middleware"
)

func (h *handler) home(w http.ResponseWriter, r *http.Request) error {
	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"name": "campground", "status": "ok"})
		return nil
	}
	return h.renderPage(w, r, "home.tmpl", "Campgrounds", nil)
}

func (h *handler) listCampgrounds(w http.ResponseWriter, r *http.Request) error {
	list, err := h.app.Campgrounds.List(r.Context())
	if err != nil {
		return err
	}

	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"campgrounds": list})
		return nil
	}
	return h.renderPage(w, r, "campgrounds_index.tmpl", "All Campgrounds", list)
}

func (h *handler) newCampgroundForm(w http.ResponseWriter, r *http.Request) error {
	return h.renderPage(w, r, "campgrounds_new.tmpl", "New Campground", nil)
}

func (h *handler) createCampground(w http.ResponseWriter, r *http.Request) error {
	payload, err := campgroundPayload(r)
	if err != nil {
		return err
	}

	cg, err := h.app.Campgrounds.Create(r.Context(), payload, middleware.CurrentUserID(r.Context()))
	if err != nil {
		return err
	}

	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusCreated, cg)
		return nil
	}
	h.flash(w, r, "Successfully made a new campground!", "")
	http.Redirect(w, r, "/campgrounds/"+cg.ID, http.StatusSeeOther)
	return nil
}

func (h *handler) showCampground(w http.ResponseWriter, r *http.Request) error {
	detail, err := h.app.Campgrounds.GetDetail(r.Context(), mux.Vars(r)["id"])
	if apperrors.IsNotFound(err) && !middleware.WantsJSON(r) {
		// A stale link is not an error page: flash and send the
		// visitor back to the listing index.
		h.flash(w, r, "", clientMessage(err))
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return nil
	}
	if err != nil {
		return err
	}

	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, detail)
		return nil
	}
	return h.renderPage(w, r, "campgrounds_show.tmpl", detail.Campground.Title, detail)
}

func (h *handler) editCampgroundForm(w http.ResponseWriter, r *http.Request) error {
	cg, err := h.app.Campgrounds.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	return h.renderPage(w, r, "campgrounds_edit.tmpl", "Edit "+cg.Title, cg)
}

func (h *handler) updateCampground(w http.ResponseWriter, r *http.Request) error {
	payload, err := campgroundPayload(r)
	if err != nil {
		return err
	}

	cg, err := h.app.Campgrounds.Update(r.Context(), mux.Vars(r)["id"], payload)
	if err != nil {
		return err
	}

	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, cg)
		return nil
	}
	h.flash(w, r, "Successfully updated campground!", "")
	http.Redirect(w, r, "/campgrounds/"+cg.ID, http.StatusSeeOther)
	return nil
}

func (h *handler) deleteCampground(w http.ResponseWriter, r *http.Request) error {
	if err := h.app.Campgrounds.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		return err
	}

	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	h.flash(w, r, "Successfully deleted campground", "")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
	return nil
}

func clientMessage(err error) string {
	if svcErr, ok := apperrors.As(err); ok {
		return svcErr.ClientMessage()
	}
	return apperrors.DefaultMessage
}
