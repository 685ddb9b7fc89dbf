// Package storage wraps the object store that keeps photo and avatar binaries.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// ErrForeignURL is returned by Delete for URLs that do not address an object of
// the bucket.
var ErrForeignURL = errors.New("url does not address an object of this bucket")

// ObjectStore uploads binaries and addresses them by public URL.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, data io.Reader) (string, error)
	Delete(ctx context.Context, bucket, publicURL string) error
	PublicURL(bucket, key string) string
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key     string
	URL     string
	Created time.Time
}

// BucketFunc resolves a bucket by name. The Firebase storage client's Bucket
// method has this shape.
type BucketFunc func(name string) (*gcs.BucketHandle, error)

// GCSStore keeps objects in Google Cloud Storage buckets.
type GCSStore struct {
	bucket     BucketFunc
	publicBase string
}

func NewGCSStore(bucket BucketFunc, publicBase string) *GCSStore {
	return &GCSStore{bucket: bucket, publicBase: strings.TrimRight(publicBase, "/")}
}

func (s *GCSStore) Upload(ctx context.Context, bucket, key, contentType string, data io.Reader) (string, error) {
	bh, err := s.bucket(bucket)
	if err != nil {
		return "", fmt.Errorf("resolving bucket %s: %w", bucket, err)
	}

	w := bh.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return "", fmt.Errorf("writing %s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing %s/%s: %w", bucket, key, err)
	}
	return s.PublicURL(bucket, key), nil
}

// Delete removes the object behind publicURL. A missing object is not an error.
func (s *GCSStore) Delete(ctx context.Context, bucket, publicURL string) error {
	bh, err := s.bucket(bucket)
	if err != nil {
		return fmt.Errorf("resolving bucket %s: %w", bucket, err)
	}

	key, ok := KeyFromURL(s.publicBase, bucket, publicURL)
	if !ok {
		return fmt.Errorf("%w: %s", ErrForeignURL, publicURL)
	}
	if err := bh.Object(key).Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("deleting %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *GCSStore) PublicURL(bucket, key string) string {
	return s.publicBase + "/" + bucket + "/" + key
}

// List walks every object of bucket.
func (s *GCSStore) List(ctx context.Context, bucket string) ([]ObjectInfo, error) {
	bh, err := s.bucket(bucket)
	if err != nil {
		return nil, fmt.Errorf("resolving bucket %s: %w", bucket, err)
	}

	var objects []ObjectInfo
	it := bh.Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", bucket, err)
		}
		objects = append(objects, ObjectInfo{
			Key:     attrs.Name,
			URL:     s.PublicURL(bucket, attrs.Name),
			Created: attrs.Created,
		})
	}
	return objects, nil
}

// PhotoKey names a new photo object: "<memory id>/<random hex>.<ext>".
func PhotoKey(memoryID, filename string) string {
	return memoryID + "/" + strings.ReplaceAll(uuid.NewString(), "-", "") + "." + Extension(filename)
}

// AvatarKey names the avatar object of a user; a new upload with the same name
// replaces the old one.
func AvatarKey(userID, filename string) string {
	return userID + "/" + path.Base(strings.ReplaceAll(filename, "\\", "/"))
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return "bin"
	}
	return ext
}

// KeyFromURL recovers the object key from its public URL. It reports false for
// URLs that are not addressed inside bucket under publicBase.
func KeyFromURL(publicBase, bucket, publicURL string) (string, bool) {
	prefix := strings.TrimRight(publicBase, "/") + "/" + bucket + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, prefix)
	if key == "" || strings.Contains(key, "?") || strings.Contains(key, "#") {
		return "", false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", false
		}
	}
	return key, true
}

// IsPhotoURL reports whether url addresses a single photo object of memoryID,
// that is PublicURL(bucket, "<memory id>/<name>").
func IsPhotoURL(store ObjectStore, bucket, memoryID, url string) bool {
	prefix := store.PublicURL(bucket, memoryID+"/")
	if memoryID == "" || !strings.HasPrefix(url, prefix) {
		return false
	}
	name := strings.TrimPrefix(url, prefix)
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, "/?#\\")
}
