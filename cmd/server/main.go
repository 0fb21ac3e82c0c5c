// Package main runs the habit tracker API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/httpapi"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage/postgres"
	"github.com/jakehorton1228-droid/habit-tracker/internal/auth"
	"github.com/jakehorton1228-droid/habit-tracker/internal/config"
	"github.com/jakehorton1228-droid/habit-tracker/internal/middleware"
	"github.com/jakehorton1228-droid/habit-tracker/internal/platform/migrations"
	"github.com/jakehorton1228-droid/habit-tracker/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault("server").WithError(err).Fatal("load configuration")
	}
	log := logger.New("server", cfg.Log.Level, cfg.Log.Pretty)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	var stores app.Stores
	var pinger httpapi.Pinger
	if cfg.Storage.Driver == "postgres" {
		db, err := postgres.Open(cfg.Storage.DSN)
		if err != nil {
			log.WithError(err).Fatal("connect to postgres")
		}
		defer db.Close()

		if cfg.Storage.AutoMigrate {
			if err := migrations.Up(db.DB); err != nil {
				log.WithError(err).Fatal("apply migrations")
			}
			log.Info("migrations applied")
		}

		pg := postgres.New(db)
		stores = app.Stores{Users: pg, Habits: pg, Goals: pg, Journal: pg}
		pinger = pg
	}

	application, err := app.New(stores, tokens, log)
	if err != nil {
		log.WithError(err).Fatal("build application")
	}

	router := httpapi.NewRouter(application, httpapi.Options{
		ServiceName:   "habit-tracker",
		Version:       version,
		StorageDriver: cfg.Storage.Driver,
		DB:            pinger,
		Log:           log,
	})

	// Route-aware middleware runs inside mux so the metrics path label is
	// the route template.
	router.Use(middleware.MetricsMiddleware)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log)
	router.Use(rateLimiter.Handler)
	authMW := middleware.NewAuthMiddleware(tokens, log, []string{
		"/api/auth/register/",
		"/api/auth/login/",
		"/api/auth/token/refresh/",
		"/health",
		"/metrics",
	})
	router.Use(authMW.Handler)

	var handler http.Handler = router
	handler = middleware.NewTracingMiddleware(log).Handler(handler)
	handler = middleware.NewCORSMiddleware(cfg.HTTP.AllowedOrigins).Handler(handler)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := application.Start(ctx); err != nil {
		log.WithError(err).Fatal("start application")
	}

	go func() {
		log.WithField("addr", cfg.HTTP.Addr).WithField("driver", cfg.Storage.Driver).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("application stop")
	}
	log.Info("server stopped")
}
