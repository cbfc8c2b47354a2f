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

	"github.com/google/uuid"

	"github.com/PratikDhanave/device-info-service/internal/config"
	"github.com/PratikDhanave/device-info-service/internal/devices"
	"github.com/PratikDhanave/device-info-service/internal/httpserver"
	"github.com/PratikDhanave/device-info-service/internal/metrics"
	"github.com/PratikDhanave/device-info-service/internal/reporting"
	"github.com/PratikDhanave/device-info-service/internal/store"
)

type backingStore interface {
	devices.Store
	Ping(ctx context.Context) error
	Close()
}

// main boots the service: config → store → schema → HTTP server.
func main() {
	instanceID := uuid.New().String()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	if err := config.LoadDotEnv(); err != nil {
		fail("Failed to load .env file", "error", err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", cfg.NonSensitiveString())

	flush, err := reporting.Init(cfg.SentryDSN, cfg.Environment)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The listener only starts once the store is reachable.
	st, err := openStore(ctx, cfg, logger.With("component", "store"))
	if err != nil {
		fail("Failed to initialize store", "error", err.Error())
	}
	defer st.Close()

	m := metrics.New()
	svc := devices.NewService(st, m, cfg.EnrichConcurrency)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpserver.NewRouter(cfg, st, svc, m.Handler(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down server", "error", err.Error())
		}
	}()

	logger.Info("Server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fail("Server stopped", "error", err.Error())
	}
	// ListenAndServe returns as soon as Shutdown starts; wait for in-flight requests.
	<-shutdownDone
	logger.Info("Server shut down")
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (backingStore, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	}

	logger.Info("Connecting to database")
	pg, err := store.ConnectPostgres(ctx, cfg.DBURL, cfg.DBConnectRetries, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to database")

	// Ensure required tables/indexes exist so a fresh database is enough.
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}
