package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/trailback/backend/internal/notify"
	"github.com/trailback/backend/internal/router"
	"github.com/trailback/backend/pkg/config"
	"github.com/trailback/backend/pkg/firebase"
	"github.com/trailback/backend/pkg/logging"
	"github.com/trailback/backend/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.Env)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("TrailBack API stopped")
	}
}

// run owns every connection it opens, so they are closed on all return paths.
func run(cfg *config.Config, logger zerolog.Logger) error {
	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("initializing databases: %w", err)
	}
	defer db.CloseDB()

	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		return fmt.Errorf("initializing Firebase: %w", err)
	}

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		return fmt.Errorf("initializing Redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	mdb := db.Mongo.Database(cfg.MongoDatabase)
	if err := router.Migrate(ctx, db.Postgres, mdb); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e, cfg, logger)
	router.SetupRoutes(e, router.Dependencies{
		Config:       cfg,
		Repositories: router.NewRepositories(db.Postgres, mdb),
		Verifier:     firebaseApp.AuthClient,
		Store:        storage.NewGCSStore(firebaseApp.StorageClient.Bucket, cfg.StoragePublicBase),
		Events:       notify.New(rdb, logging.Component(logger, "events")),
		Logger:       logger,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Starting TrailBack API")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("serving: %w", err)
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	return nil
}
