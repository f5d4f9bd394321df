package middleware

import (
	"context"
	"net/http"

	apperrors "github.com/trailpine/campground/internal/errors"
)

// OwnerLoader resolves the owning user id of the resource addressed by
// the route variables.
type OwnerLoader func(ctx context.Context, vars map[string]string) (string, error)

// RequireOwner permits the request only when the session identity matches
// the loaded resource owner. It must run after RequireAuthenticated. The
// same guard serves campground-owner and review-author checks; only the
// loader differs.
func (a *Auth) RequireOwner(load OwnerLoader, vars func(*http.Request) map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			routeVars := vars(r)

			ownerID, err := load(ctx, routeVars)
			if apperrors.IsNotFound(err) {
				if WantsJSON(r) {
					respondError(w, err)
					return
				}
				a.FlashError(w, r, clientMessage(err))
				http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
				return
			}
			if err != nil {
				a.log.WithContext(ctx).WithError(err).Error("ownership lookup failed")
				respondError(w, err)
				return
			}

			if ownerID != CurrentUserID(ctx) {
				denied := apperrors.Forbidden("")
				if WantsJSON(r) {
					respondError(w, denied)
					return
				}
				a.FlashError(w, r, denied.ClientMessage())
				target := "/campgrounds"
				if id := routeVars["id"]; id != "" {
					target = "/campgrounds/" + id
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// FlashError queues a one-shot error message on the session, creating an
// anonymous session when the request has none.
func (a *Auth) FlashError(w http.ResponseWriter, r *http.Request, message string) {
	ctx := r.Context()
	sess, ok := SessionFrom(ctx)
	if !ok {
		created, err := a.sessions.Begin(ctx)
		if err != nil {
			a.log.WithContext(ctx).WithError(err).Warn("failed to begin session for flash")
			return
		}
		sess = created
		a.SetCookie(w, sess)
	}
	sess.FlashError = append(sess.FlashError, message)
	if err := a.sessions.Save(ctx, sess); err != nil {
		a.log.WithContext(ctx).WithError(err).Warn("failed to save flash")
	}
}

func clientMessage(err error) string {
	if svcErr, ok := apperrors.As(err); ok {
		return svcErr.ClientMessage()
	}
	return apperrors.DefaultMessage
}
