package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/trailback/backend/pkg/models"
	"github.com/trailback/backend/pkg/storage"
)

// ErrOwnPhotosOnly is returned by DeletePhoto when the caller is not the uploader.
var ErrOwnPhotosOnly = errors.New("you can only delete your own photos")

// ErrNoUploader is returned by AttachPhoto when the client has no ObjectUploader.
var ErrNoUploader = errors.New("client: no object uploader configured")

// ObjectUploader stores a binary and returns its public URL.
// *storage.GCSStore satisfies it.
type ObjectUploader interface {
	Upload(ctx context.Context, bucket, path, contentType string, data io.Reader) (string, error)
}

// OrphanedObjectError means the binary was stored but its metadata could not be
// registered. The object at URL is left for the reconcile job.
type OrphanedObjectError struct {
	URL string
	Err error
}

func (e *OrphanedObjectError) Error() string {
	return fmt.Sprintf("photo stored at %s but not registered: %v", e.URL, e.Err)
}

func (e *OrphanedObjectError) Unwrap() error { return e.Err }

func (c *Client) ListPhotos(ctx context.Context, memoryID string) ([]models.Photo, error) {
	var photos []models.Photo
	if err := c.doJSON(ctx, http.MethodGet, "/photos", userQuery("memory_id", memoryID), nil, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (c *Client) GetPhoto(ctx context.Context, photoID string) (*models.Photo, error) {
	var photo models.Photo
	if err := c.doJSON(ctx, http.MethodGet, "/photos/"+url.PathEscape(photoID), nil, nil, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

// RegisterPhoto records an object that is already stored.
func (c *Client) RegisterPhoto(ctx context.Context, memoryID, objectURL, uploadedBy string) (*models.Photo, error) {
	body := models.CreatePhotoRequest{MemoryID: memoryID, URL: objectURL, UploadedBy: uploadedBy}
	var photo models.Photo
	if err := c.doJSON(ctx, http.MethodPost, "/photos", nil, body, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

// AttachPhoto uploads data through the ObjectUploader and then registers it.
// When the second step fails the error is an *OrphanedObjectError.
func (c *Client) AttachPhoto(ctx context.Context, memoryID, userID, filename string, data []byte) (*models.Photo, error) {
	if c.uploader == nil {
		return nil, ErrNoUploader
	}
	key := storage.PhotoKey(memoryID, filename)
	objectURL, err := c.uploader.Upload(ctx, c.photosBucket, key, http.DetectContentType(data), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", filename, err)
	}

	photo, err := c.RegisterPhoto(ctx, memoryID, objectURL, userID)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", objectURL).Msg("photo uploaded but not registered")
		return nil, &OrphanedObjectError{URL: objectURL, Err: err}
	}
	return photo, nil
}

// UploadPhoto sends the file to the server, which stores and registers it in one request.
func (c *Client) UploadPhoto(ctx context.Context, memoryID, userID, filename string, data io.Reader) (*models.UploadPhotoResponse, error) {
	body, contentType, err := multipartFile(filename, data, nil)
	if err != nil {
		return nil, err
	}
	var resp models.UploadPhotoResponse
	path := "/memories/" + url.PathEscape(memoryID) + "/upload-photo"
	if err := c.do(ctx, http.MethodPost, path, userQuery("user_id", userID), body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePhoto removes a photo the caller uploaded. A 403 becomes ErrOwnPhotosOnly.
func (c *Client) DeletePhoto(ctx context.Context, photoID, userID string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/photos/"+url.PathEscape(photoID), userQuery("user_id", userID), nil, nil)
	if IsStatus(err, http.StatusForbidden) {
		return ErrOwnPhotosOnly
	}
	return err
}

// multipartFile builds a form with the "file" part and the given extra fields.
func multipartFile(filename string, data io.Reader, fields map[string]string) (io.Reader, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
