// Package app ties the domain services together.
package app

import (
	"time"

	"github.com/trailpine/campground/internal/app/services/accounts"
	"github.com/trailpine/campground/internal/app/services/campgrounds"
	"github.com/trailpine/campground/internal/app/services/reviews"
	"github.com/trailpine/campground/internal/app/services/sessions"
	"github.com/trailpine/campground/internal/app/storage"
	"github.com/trailpine/campground/internal/app/storage/memory"
	"github.com/trailpine/campground/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Campgrounds storage.CampgroundStore
	Reviews     storage.ReviewStore
	Users       storage.UserStore
	Sessions    storage.SessionStore
}

// Options carries non-store dependencies.
type Options struct {
	Geocoder           campgrounds.Geocoder
	SessionIdleTTL     time.Duration
	SessionMaxLifetime time.Duration
}

// Application exposes the domain services.
type Application struct {
	log *logger.Logger

	Campgrounds *campgrounds.Service
	Reviews     *reviews.Service
	Accounts    *accounts.Service
	Sessions    *sessions.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Campgrounds == nil {
		stores.Campgrounds = mem
	}
	if stores.Reviews == nil {
		stores.Reviews = mem
	}
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Sessions == nil {
		stores.Sessions = mem
	}

	return &Application{
		log:         log,
		Campgrounds: campgrounds.New(stores.Campgrounds, stores.Reviews, stores.Users, opts.Geocoder, log),
		Reviews:     reviews.New(stores.Reviews, log),
		Accounts:    accounts.New(stores.Users, log),
		Sessions:    sessions.New(stores.Sessions, opts.SessionIdleTTL, opts.SessionMaxLifetime, log),
	}
}
