package httpapi

import (
	"net/http"

	"github.com/trailpine/campground/internal/app/domain/session"
	"github.com/trailpine/campground/internal/middleware"
)

func (h *handler) registerForm(w http.ResponseWriter, r *http.Request) error {
	return h.renderPage(w, r, "users_register.tmpl", "Register", nil)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) error {
	payload, err := registerPayload(r)
	if err != nil {
		return err
	}

	u, err := h.app.Accounts.Register(r.Context(), payload)
	if err != nil {
		return err
	}

	// Registration logs the new account straight in.
	sess, err := h.signIn(w, r, u.ID)
	if err != nil {
		return err
	}

	if middleware.WantsJSON(r) {
		token, terr := h.auth.IssueToken(u.ID)
		if terr != nil {
			h.log.WithContext(r.Context()).WithError(terr).Warn("failed to issue token")
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"user": u, "token": token})
		return nil
	}
	sess.FlashSuccess = append(sess.FlashSuccess, "Welcome to Campground!")
	if serr := h.app.Sessions.Save(r.Context(), sess); serr != nil {
		h.log.WithContext(r.Context()).WithError(serr).Warn("failed to save session after registration")
	}
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
	return nil
}

func (h *handler) loginForm(w http.ResponseWriter, r *http.Request) error {
	return h.renderPage(w, r, "users_login.tmpl", "Login", nil)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) error {
	username, password, err := credentials(r)
	if err != nil {
		return err
	}

	u, err := h.app.Accounts.Authenticate(r.Context(), username, password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLogin("failure")
		}
		return err
	}
	if h.metrics != nil {
		h.metrics.RecordLogin("success")
	}

	sess, err := h.signIn(w, r, u.ID)
	if err != nil {
		return err
	}

	if middleware.WantsJSON(r) {
		token, terr := h.auth.IssueToken(u.ID)
		if terr != nil {
			h.log.WithContext(r.Context()).WithError(terr).Warn("failed to issue token")
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": u, "token": token})
		return nil
	}

	// Send the visitor back to the page that required login, consuming
	// the remembered path.
	target := "/campgrounds"
	if sess.ReturnTo != "" {
		target = sess.ReturnTo
		sess.ReturnTo = ""
	}
	sess.FlashSuccess = append(sess.FlashSuccess, "Welcome back!")
	if serr := h.app.Sessions.Save(r.Context(), sess); serr != nil {
		h.log.WithContext(r.Context()).WithError(serr).Warn("failed to save session after login")
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
	return nil
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	if sess, ok := middleware.SessionFrom(ctx); ok && sess.Token != "" {
		if err := h.app.Sessions.Destroy(ctx, sess.Token); err != nil {
			h.log.WithContext(ctx).WithError(err).Warn("failed to destroy session")
		}
	}
	h.auth.ClearCookie(w)

	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	// A fresh anonymous session carries the goodbye flash.
	anon, err := h.app.Sessions.Begin(ctx)
	if err == nil {
		anon.FlashSuccess = append(anon.FlashSuccess, "Goodbye!")
		if serr := h.app.Sessions.Save(ctx, anon); serr == nil {
			h.auth.SetCookie(w, anon)
		}
	}
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
	return nil
}

// signIn rotates the request's session into an authenticated one and
// mirrors the new token into the cookie. The pre-login session's flashes
// and return-to path carry over; its token is invalidated.
func (h *handler) signIn(w http.ResponseWriter, r *http.Request, userID string) (session.Session, error) {
	var prior *session.Session
	if sess, ok := middleware.SessionFrom(r.Context()); ok && sess.Token != "" {
		prior = &sess
	}

	sess, err := h.app.Sessions.Establish(r.Context(), userID, prior)
	if err != nil {
		return session.Session{}, err
	}
	h.auth.SetCookie(w, sess)
	return sess, nil
}
