// Command server runs the campground web application.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/trailpine/campground/internal/app"
	"github.com/trailpine/campground/internal/app/httpapi"
	"github.com/trailpine/campground/internal/app/storage/memory"
	"github.com/trailpine/campground/internal/app/storage/postgres"
	redisstore "github.com/trailpine/campground/internal/app/storage/redis"
	"github.com/trailpine/campground/internal/config"
	"github.com/trailpine/campground/internal/geocode"
	"github.com/trailpine/campground/internal/metrics"
	"github.com/trailpine/campground/internal/middleware"
	"github.com/trailpine/campground/internal/platform/migrations"
	"github.com/trailpine/campground/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.NewDefault("server")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise storage")
	}
	defer cleanup()

	var geocoder *geocode.Client
	if cfg.Geocode.Token != "" {
		geocoder = geocode.New(geocode.Config{
			BaseURL: cfg.Geocode.BaseURL,
			Token:   cfg.Geocode.Token,
		})
	} else {
		log.Warn("no geocoding token configured, new listings get no coordinates")
	}

	opts := app.Options{
		SessionIdleTTL:     cfg.Sessions.IdleTTL,
		SessionMaxLifetime: cfg.Sessions.MaxLifetime,
	}
	if geocoder != nil {
		opts.Geocoder = geocoder
	}
	application := app.New(stores, opts, log)

	auth := middleware.NewAuth(
		application.Sessions,
		cfg.Sessions.CookieName,
		cfg.Sessions.Secure,
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
		log,
	)

	handler := httpapi.NewHandler(httpapi.Config{
		App:          application,
		Auth:         auth,
		Metrics:      metrics.New("campground"),
		LoginLimiter: middleware.NewRateLimiter(cfg.Auth.LoginPerMinute, cfg.Auth.LoginBurst, log),
		Log:          log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}

// buildStores wires PostgreSQL and Redis, falling back to the in-memory
// implementation when either is configured as "memory". The fallback
// keeps local development free of external services.
func buildStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (app.Stores, func(), error) {
	var stores app.Stores
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.Database.URL != "" && cfg.Database.URL != "memory" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return stores, cleanup, fmt.Errorf("open database: %w", err)
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		pingCancel()
		if err != nil {
			_ = db.Close()
			return stores, cleanup, fmt.Errorf("ping database: %w", err)
		}
		if err := migrations.Apply(ctx, db); err != nil {
			_ = db.Close()
			return stores, cleanup, fmt.Errorf("apply migrations: %w", err)
		}
		cleanups = append(cleanups, func() { _ = db.Close() })

		pg := postgres.New(db)
		stores.Campgrounds = pg
		stores.Reviews = pg
		stores.Users = pg
		log.Info("connected to postgres")
	} else {
		mem := memory.New()
		stores.Campgrounds = mem
		stores.Reviews = mem
		stores.Users = mem
		log.Warn("using in-memory stores, data will not survive restarts")
	}

	if cfg.Redis.Addr != "" && cfg.Redis.Addr != "memory" {
		sessions, err := redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			cleanup()
			return stores, func() {}, fmt.Errorf("connect redis: %w", err)
		}
		cleanups = append(cleanups, func() { _ = sessions.Close() })
		stores.Sessions = sessions
		log.Info("connected to redis")
	}

	return stores, cleanup, nil
}
