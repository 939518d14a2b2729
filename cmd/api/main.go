// Package main is the entry point for the Schengen planner API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkarlsen/schengen-planner/internal/compliance"
	"github.com/mkarlsen/schengen-planner/internal/config"
	"github.com/mkarlsen/schengen-planner/internal/handler"
	"github.com/mkarlsen/schengen-planner/internal/middleware"
	"github.com/mkarlsen/schengen-planner/internal/optimizer"
	"github.com/mkarlsen/schengen-planner/internal/repo"
	"github.com/mkarlsen/schengen-planner/internal/service"
)

// maxRequestBodyBytes bounds incoming JSON bodies. The largest legitimate
// payload is an /optimize/apply request with one placement per trip.
const maxRequestBodyBytes = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately, the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Engine and services ----------------------------------------------
	calc := compliance.NewCalculator(compliance.Rule{
		Limit:  cfg.DayLimit,
		Window: cfg.WindowDays,
	})
	cache := compliance.NewCache(cfg.ComplianceCacheSize)
	opt := optimizer.New(calc, optimizer.Config{
		BufferDays:  cfg.BufferDays,
		HorizonDays: cfg.SearchHorizonDays,
	})

	trips := repo.NewTripRepo(pool)
	tripService := service.NewTripService(trips, cache)
	complianceService := service.NewComplianceService(trips, calc, cache)
	plannerService := service.NewPlannerService(trips, opt, cache)
	exportService := service.NewExportService(trips, calc)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → SlogLogger → Recoverer → CORS →
	// body size limit. RequestID must come before the logger so the trace ID
	// is available; Recoverer turns panics into 500s instead of crashes.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxRequestBodyBytes))

	r.Mount("/", handler.NewServer(tripService, complianceService, plannerService, exportService).Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for an OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
