package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap/zapcore"

	"taskhub/internal/config"
	"taskhub/internal/handlers"
	"taskhub/internal/logger"
	mw "taskhub/internal/middleware"
	"taskhub/internal/services"
	"taskhub/internal/store"
)

func main() {
	// Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Logging
	logg, err := logger.New(logger.Options{Mode: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	// Ensure data directory exists
	if cfg.DBDriver == config.DriverSQLite && cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			logg.Fatal("failed to create data directory", "path", cfg.DBPath, "error", err)
		}
	}

	// Initialize store
	s, err := store.Open(store.Options{
		Driver:        cfg.DBDriver,
		DSN:           cfg.DSN(),
		Logger:        logg,
		SlowThreshold: 200 * time.Millisecond,
	})
	if err != nil {
		logg.Fatal("failed to initialize store", "driver", cfg.DBDriver, "error", err)
	}
	defer s.Close()

	// Services and handlers
	db := s.DB()
	h := handlers.New(
		services.NewContactService(db, logg),
		services.NewTaskService(db, logg),
		services.NewProjectService(db, logg),
		logg,
		config.IsDevelopment,
	)

	metrics := mw.NewMetrics()
	limiter := mw.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(mw.ClientAddress(cfg.TrustProxy))
	r.Use(mw.RequestLogger(logg))
	r.Use(metrics.Middleware)
	r.Use(h.Recover)
	r.Use(mw.SecurityHeaders)
	r.Use(middleware.Compress(5))

	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Mount("/", h.Routes())
	})

	// Frontend
	if cfg.StaticDir != "" {
		r.Handle("/*", handlers.SPA(cfg.StaticDir))
	} else {
		r.NotFound(h.NotFound)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logg.StdLog(zapcore.ErrorLevel),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server
	go func() {
		logg.Info("starting server", "addr", "http://localhost"+srv.Addr, "env", cfg.Env, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", "error", err)
	}
}
