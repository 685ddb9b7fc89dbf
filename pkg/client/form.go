package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trailback/backend/pkg/models"
)

// Validation failures of the add-memory form, in the order they are checked.
var (
	ErrFormIncomplete = errors.New("fill in the title, description and date")
	ErrNoLocation     = errors.New("pick a location on the map")
	ErrNoPhotos       = errors.New("add at least one photo")
	ErrInvalidDate    = errors.New("the date is not valid")
	ErrFutureDate     = errors.New("the date cannot be in the future")
)

// Location is a point picked on the map.
type Location struct {
	Lat float64
	Lng float64
}

// PhotoFile is a file chosen in the add-memory form.
type PhotoFile struct {
	Name string
	Data []byte
}

// MemoryForm is the raw input of the add-memory form.
type MemoryForm struct {
	Title       string
	Description string
	Date        string
	Location    *Location
	Photos      []PhotoFile
}

// ValidateMemoryForm returns the first problem with form, or nil.
func ValidateMemoryForm(form MemoryForm, now time.Time) error {
	if strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Description) == "" || strings.TrimSpace(form.Date) == "" {
		return ErrFormIncomplete
	}
	if form.Location == nil {
		return ErrNoLocation
	}
	if len(form.Photos) == 0 {
		return ErrNoPhotos
	}
	date, err := models.ParseDate(strings.TrimSpace(form.Date))
	if err != nil {
		return ErrInvalidDate
	}
	if date.After(now) {
		return ErrFutureDate
	}
	return nil
}

// PhotoFailure is a photo of the form that could not be added.
type PhotoFailure struct {
	Name string
	Err  error
}

// CreateResult reports what CreateMemoryWithPhotos managed to store.
type CreateResult struct {
	Memory   *models.Memory
	Photos   []models.Photo
	Failures []PhotoFailure
}

// Complete reports whether every photo was stored.
func (r *CreateResult) Complete() bool {
	return len(r.Failures) == 0
}

// CreateMemoryWithPhotos validates form, creates the memory and adds each photo
// in order. An invalid form makes no request. A failed photo is recorded in the
// result and does not undo the memory or the photos stored before it.
func (c *Client) CreateMemoryWithPhotos(ctx context.Context, userID string, form MemoryForm) (*CreateResult, error) {
	if err := ValidateMemoryForm(form, c.now()); err != nil {
		return nil, err
	}
	date, _ := models.ParseDate(strings.TrimSpace(form.Date))

	description := form.Description
	lat, lng := form.Location.Lat, form.Location.Lng
	memory, err := c.CreateMemory(ctx, models.CreateMemoryRequest{
		Title:       strings.TrimSpace(form.Title),
		Description: &description,
		Lat:         &lat,
		Lng:         &lng,
		CreatedBy:   userID,
		CreatedAt:   models.Date{Time: date},
	})
	if err != nil {
		return nil, fmt.Errorf("creating memory: %w", err)
	}

	result := &CreateResult{Memory: memory}
	memoryID := memory.ID.Hex()
	for _, f := range form.Photos {
		photo, err := c.addPhoto(ctx, memoryID, userID, f)
		if err != nil {
			c.logger.Warn().Err(err).Str("memory_id", memoryID).Str("file", f.Name).Msg("photo not added")
			result.Failures = append(result.Failures, PhotoFailure{Name: f.Name, Err: err})
			continue
		}
		result.Photos = append(result.Photos, *photo)
	}
	return result, nil
}

// addPhoto uses the direct two-phase upload when an uploader is configured and
// the server-side upload otherwise.
func (c *Client) addPhoto(ctx context.Context, memoryID, userID string, f PhotoFile) (*models.Photo, error) {
	if c.uploader != nil {
		return c.AttachPhoto(ctx, memoryID, userID, f.Name, f.Data)
	}
	resp, err := c.UploadPhoto(ctx, memoryID, userID, f.Name, bytes.NewReader(f.Data))
	if err != nil {
		return nil, err
	}
	if resp.Record == nil {
		return nil, errors.New("upload response has no record")
	}
	return resp.Record, nil
}
