// Package middleware provides the HTTP middleware chain: session
// resolution, authentication and ownership guards, request metrics and
// login rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trailpine/campground/internal/app/domain/session"
	"github.com/trailpine/campground/internal/app/services/sessions"
	apperrors "github.com/trailpine/campground/internal/errors"
	"github.com/trailpine/campground/pkg/logger"
)

type contextKey string

const sessionKey contextKey = "session"

// Claims are the JWT claims for the API token variant.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Auth resolves request identity and guards authenticated routes.
type Auth struct {
	sessions   *sessions.Service
	cookieName string
	secure     bool
	jwtSecret  []byte
	tokenTTL   time.Duration
	log        *logger.Logger
}

// NewAuth builds the auth middleware. jwtSecret may be empty, which
// disables the Bearer-token variant.
func NewAuth(sessionSvc *sessions.Service, cookieName string, secure bool, jwtSecret string, tokenTTL time.Duration, log *logger.Logger) *Auth {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Auth{
		sessions:   sessionSvc,
		cookieName: cookieName,
		secure:     secure,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		log:        log,
	}
}

// WithIdentity resolves the session cookie (or a Bearer token for API
// clients) and stores the result in the request context. Anonymous
// requests pass through; resolution never fails a request by itself.
func (a *Auth) WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if userID, ok := a.bearerIdentity(r); ok {
			ctx = context.WithValue(ctx, sessionKey, session.Session{UserID: userID})
			ctx = logger.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if cookie, err := r.Cookie(a.cookieName); err == nil {
			if sess, ok := a.sessions.Current(ctx, cookie.Value); ok {
				ctx = context.WithValue(ctx, sessionKey, sess)
				if !sess.Anonymous() {
					ctx = logger.WithUserID(ctx, sess.UserID)
				}
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthenticated rejects anonymous requests. Browser clients are
// redirected to the login page with the requested path remembered for the
// post-login redirect; API clients get a 401.
func (a *Auth) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := CurrentUserID(r.Context()); userID != "" {
			next.ServeHTTP(w, r)
			return
		}

		if WantsJSON(r) {
			respondError(w, apperrors.Unauthenticated(""))
			return
		}
		a.redirectToLogin(w, r)
	})
}

func (a *Auth) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, ok := SessionFrom(ctx)
	if !ok {
		created, err := a.sessions.Begin(ctx)
		if err != nil {
			a.log.WithContext(ctx).WithError(err).Error("failed to begin session")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		sess = created
		a.SetCookie(w, sess)
	}

	sess.ReturnTo = r.URL.RequestURI()
	sess.FlashError = append(sess.FlashError, "You must be signed in first!")
	if err := a.sessions.Save(ctx, sess); err != nil {
		a.log.WithContext(ctx).WithError(err).Warn("failed to record return path")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SetCookie mirrors the session token into the client cookie.
func (a *Auth) SetCookie(w http.ResponseWriter, sess session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (a *Auth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		MaxAge:   -1,
	})
}

// IssueToken mints a JWT for API clients at login.
func (a *Auth) IssueToken(userID string) (string, error) {
	if len(a.jwtSecret) == 0 {
		return "", nil
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	})
	return token.SignedString(a.jwtSecret)
}

func (a *Auth) bearerIdentity(r *http.Request) (string, bool) {
	if len(a.jwtSecret) == 0 {
		return "", false
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Unauthenticated("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

// SessionFrom extracts the resolved session from the context.
func SessionFrom(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(session.Session)
	return sess, ok
}

// CurrentUserID returns the authenticated user id, or "" for anonymous
// requests.
func CurrentUserID(ctx context.Context) string {
	sess, ok := SessionFrom(ctx)
	if !ok {
		return ""
	}
	return sess.UserID
}

// WantsJSON reports whether the client expects a JSON response rather
// than a browser redirect.
func WantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
