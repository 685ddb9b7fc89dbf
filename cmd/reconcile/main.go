package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/trailback/backend/internal/reconcile"
	"github.com/trailback/backend/internal/repositories"
	"github.com/trailback/backend/pkg/config"
	"github.com/trailback/backend/pkg/firebase"
	"github.com/trailback/backend/pkg/logging"
	"github.com/trailback/backend/pkg/storage"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "only report orphaned objects")
	flag.Parse()

	cfg := config.Load()
	logger := logging.Component(logging.New(cfg.LogLevel, cfg.Env), "reconcile")

	if err := run(cfg, *dryRun, logger); err != nil {
		logger.Fatal().Err(err).Msg("Reconcile failed")
	}
}

func run(cfg *config.Config, dryRun bool, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("initializing databases: %w", err)
	}
	defer db.CloseDB()

	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		return fmt.Errorf("initializing Firebase: %w", err)
	}

	store := storage.NewGCSStore(firebaseApp.StorageClient.Bucket, cfg.StoragePublicBase)
	photos := repositories.NewMongoPhotoRepository(db.Mongo.Database(cfg.MongoDatabase))

	report, err := reconcile.New(store, photos, cfg.PhotosBucket, cfg.ReconcileGrace, dryRun, logger).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info().
		Int("scanned", report.Scanned).
		Int("orphans", report.Orphans).
		Int("deleted", report.Deleted).
		Int("failed", report.Failed).
		Bool("dry_run", dryRun).
		Msg("Reconcile finished")
	return nil
}
