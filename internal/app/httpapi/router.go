// Package httpapi exposes the web surface: server-rendered pages for
// browsers, JSON for API clients, with every handler failure funnelled
// through one error-rendering stage.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/trailpine/campground/internal/app"
	apperrors "github.com/trailpine/campground/internal/errors"
	"github.com/trailpine/campground/internal/metrics"
	"github.com/trailpine/campground/internal/middleware"
	"github.com/trailpine/campground/pkg/logger"
)

// handler bundles the HTTP endpoints over the application services.
type handler struct {
	app     *app.Application
	auth    *middleware.Auth
	metrics *metrics.Metrics
	log     *logger.Logger
}

// Config wires the router dependencies.
type Config struct {
	App          *app.Application
	Auth         *middleware.Auth
	Metrics      *metrics.Metrics
	LoginLimiter *middleware.RateLimiter
	Log          *logger.Logger
}

// NewHandler returns the routed HTTP handler.
func NewHandler(cfg Config) http.Handler {
	h := &handler{app: cfg.App, auth: cfg.Auth, metrics: cfg.Metrics, log: cfg.Log}
	if h.log == nil {
		h.log = logger.NewDefault("httpapi")
	}

	r := mux.NewRouter()
	r.Use(middleware.Logging(h.log))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}
	r.Use(methodOverride)
	r.Use(cfg.Auth.WithIdentity)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/", h.wrap(h.home)).Methods(http.MethodGet)

	// Account routes.
	r.Handle("/register", h.wrap(h.registerForm)).Methods(http.MethodGet)
	r.Handle("/register", h.wrap(h.register)).Methods(http.MethodPost)
	r.Handle("/login", h.wrap(h.loginForm)).Methods(http.MethodGet)
	login := h.wrap(h.login)
	if cfg.LoginLimiter != nil {
		r.Handle("/login", cfg.LoginLimiter.Handler(login)).Methods(http.MethodPost)
	} else {
		r.Handle("/login", login).Methods(http.MethodPost)
	}
	r.Handle("/logout", h.wrap(h.logout)).Methods(http.MethodPost)

	// Campground routes. Guard order matters: authentication before
	// ownership.
	requireAuth := cfg.Auth.RequireAuthenticated
	requireCampgroundOwner := cfg.Auth.RequireOwner(h.campgroundOwner, mux.Vars)
	requireReviewAuthor := cfg.Auth.RequireOwner(h.reviewAuthor, mux.Vars)

	r.Handle("/campgrounds", h.wrap(h.listCampgrounds)).Methods(http.MethodGet)
	r.Handle("/campgrounds", requireAuth(h.wrap(h.createCampground))).Methods(http.MethodPost)
	r.Handle("/campgrounds/new", requireAuth(h.wrap(h.newCampgroundForm))).Methods(http.MethodGet)
	r.Handle("/campgrounds/{id}", h.wrap(h.showCampground)).Methods(http.MethodGet)
	r.Handle("/campgrounds/{id}/edit", requireAuth(requireCampgroundOwner(h.wrap(h.editCampgroundForm)))).Methods(http.MethodGet)
	r.Handle("/campgrounds/{id}", requireAuth(requireCampgroundOwner(h.wrap(h.updateCampground)))).Methods(http.MethodPut)
	r.Handle("/campgrounds/{id}", requireAuth(requireCampgroundOwner(h.wrap(h.deleteCampground)))).Methods(http.MethodDelete)

	// Review routes.
	r.Handle("/campgrounds/{id}/reviews", requireAuth(h.wrap(h.createReview))).Methods(http.MethodPost)
	r.Handle("/campgrounds/{id}/reviews/{reviewId}", requireAuth(requireReviewAuthor(h.wrap(h.deleteReview)))).Methods(http.MethodDelete)

	r.NotFoundHandler = cfg.Auth.WithIdentity(h.wrap(h.notFound))
	return r
}

// wrap adapts an error-returning handler so every failure reaches the
// single error-rendering stage.
func (h *handler) wrap(fn func(w http.ResponseWriter, r *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.renderError(w, r, err)
		}
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) error {
	return &apperrors.ServiceError{
		Code:       apperrors.CodeNotFound,
		Message:    "Page Not Found",
		HTTPStatus: http.StatusNotFound,
	}
}

// campgroundOwner loads the owning user of the campground addressed by
// the route.
func (h *handler) campgroundOwner(ctx context.Context, vars map[string]string) (string, error) {
	cg, err := h.app.Campgrounds.Get(ctx, vars["id"])
	if err != nil {
		return "", err
	}
	return cg.OwnerID, nil
}

// reviewAuthor loads the authoring user of the review addressed by the
// route.
func (h *handler) reviewAuthor(ctx context.Context, vars map[string]string) (string, error) {
	rv, err := h.app.Reviews.Get(ctx, vars["reviewId"])
	if err != nil {
		return "", err
	}
	if rv.CampgroundID != vars["id"] {
		return "", apperrors.NotFound("review")
	}
	return rv.AuthorID, nil
}

// methodOverride lets HTML forms express PUT and DELETE through a
// _method field, the way browsers cannot natively.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if override := r.URL.Query().Get("_method"); override != "" {
				switch override {
				case http.MethodPut, http.MethodDelete:
					r.Method = override
				}
			} else if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
				_ = r.ParseForm()
				switch r.PostForm.Get("_method") {
				case http.MethodPut:
					r.Method = http.MethodPut
				case http.MethodDelete:
					r.Method = http.MethodDelete
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
