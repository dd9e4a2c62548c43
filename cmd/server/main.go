package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/config"
	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/logger"
	"github.com/rotiroti/backoffice/internal/memstore"
	"github.com/rotiroti/backoffice/internal/router"
	"github.com/rotiroti/backoffice/internal/ws"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("logger error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("storage init")
	}
	defer cleanup()

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, store, hub, log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":    server.Addr,
			"storage": cfg.StorageBackend,
			"version": cfg.AppVersion,
		}).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil {
			log.WithError(closeErr).Error("force close failed")
		}
	}
}

// openStore builds the configured storage backend. The returned cleanup
// releases its resources.
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (database.Store, func(), error) {
	if cfg.StorageBackend == config.StorageBackendMemory {
		mem := memstore.New()
		if _, err := mem.SeedDemo(ctx, cfg.DemoPassword); err != nil {
			return nil, nil, err
		}
		log.Warn("using in-memory storage with demo data; nothing is persisted")
		return mem, func() {}, nil
	}

	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		log.Info("migrations applied")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return database.NewStore(pool), pool.Close, nil
}
