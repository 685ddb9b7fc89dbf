// Package reconcile removes stored photo objects that no photo record points at.
// Uploads are two-phase (store the object, then register it), so a failed
// registration leaves an orphan behind.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/trailback/backend/pkg/storage"
)

// ObjectStore lists and deletes bucket objects.
type ObjectStore interface {
	List(ctx context.Context, bucket string) ([]storage.ObjectInfo, error)
	Delete(ctx context.Context, bucket, publicURL string) error
}

// URLSource reports which object URLs are referenced by photo records.
type URLSource interface {
	RegisteredURLs(ctx context.Context) (map[string]bool, error)
}

type Report struct {
	Scanned int
	Orphans int
	Deleted int
	Failed  int
}

type Reconciler struct {
	objects ObjectStore
	photos  URLSource
	bucket  string
	grace   time.Duration
	dryRun  bool
	now     func() time.Time
	logger  zerolog.Logger
}

// New builds a Reconciler. Objects younger than grace are skipped so in-flight
// uploads are not mistaken for orphans.
func New(objects ObjectStore, photos URLSource, bucket string, grace time.Duration, dryRun bool, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		objects: objects,
		photos:  photos,
		bucket:  bucket,
		grace:   grace,
		dryRun:  dryRun,
		now:     time.Now,
		logger:  logger,
	}
}

func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var report Report

	urls, err := r.photos.RegisteredURLs(ctx)
	if err != nil {
		return report, fmt.Errorf("loading photo urls: %w", err)
	}
	objects, err := r.objects.List(ctx, r.bucket)
	if err != nil {
		return report, err
	}

	cutoff := r.now().Add(-r.grace)
	for _, obj := range objects {
		report.Scanned++
		if urls[obj.URL] || obj.Created.After(cutoff) {
			continue
		}
		report.Orphans++

		if r.dryRun {
			r.logger.Info().Str("key", obj.Key).Time("created", obj.Created).Msg("orphan found (dry run)")
			continue
		}
		if err := r.objects.Delete(ctx, r.bucket, obj.URL); err != nil {
			report.Failed++
			r.logger.Warn().Err(err).Str("key", obj.Key).Msg("deleting orphan")
			continue
		}
		report.Deleted++
		r.logger.Info().Str("key", obj.Key).Time("created", obj.Created).Msg("orphan deleted")
	}
	return report, nil
}
