package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/trailback/backend/internal/middleware"
	"github.com/trailback/backend/internal/repositories"
	"github.com/trailback/backend/pkg/models"
	"github.com/trailback/backend/pkg/relations"
	"github.com/trailback/backend/pkg/storage"
)

// ErrOwnPhotosOnly is the detail returned when someone deletes a photo they did not upload.
const ErrOwnPhotosOnly = "you can only delete your own photos"

// PhotoHandler handles photo metadata and photo uploads
type PhotoHandler struct {
	photoRepository  repositories.PhotoRepository
	memoryRepository repositories.MemoryRepository
	shareRepository  repositories.ShareRepository
	store            storage.ObjectStore
	bucket           string
	logger           zerolog.Logger
}

func NewPhotoHandler(photoRepo repositories.PhotoRepository, memoryRepo repositories.MemoryRepository, shareRepo repositories.ShareRepository, store storage.ObjectStore, bucket string, logger zerolog.Logger) *PhotoHandler {
	return &PhotoHandler{
		photoRepository:  photoRepo,
		memoryRepository: memoryRepo,
		shareRepository:  shareRepo,
		store:            store,
		bucket:           bucket,
		logger:           logger,
	}
}

// RegisterPhotoRoutes registers photo-related routes
func (h *PhotoHandler) RegisterPhotoRoutes(g *echo.Group) {
	g.GET("/photos", h.ListPhotos)
	g.GET("/photos/:id", h.GetPhoto)
	g.POST("/photos", h.RegisterPhoto)
	g.POST("/photos/:id/upload", h.UploadPhoto)
	g.POST("/memories/:id/upload-photo", h.UploadPhoto)
	g.DELETE("/photos/:id", h.DeletePhoto)
}

func (h *PhotoHandler) ListPhotos(c echo.Context) error {
	memoryID, err := requireParam(c, "memory_id")
	if err != nil {
		return err
	}

	photos, err := h.photoRepository.ListByMemory(c.Request().Context(), memoryID)
	if err != nil {
		return internalError(err)
	}
	if photos == nil {
		photos = []models.Photo{}
	}
	return c.JSON(http.StatusOK, photos)
}

func (h *PhotoHandler) GetPhoto(c echo.Context) error {
	photo, err := h.photoRepository.GetPhotoByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err, "Photo not found")
	}
	return c.JSON(http.StatusOK, photo)
}

// RegisterPhoto stores the metadata of an object the client already uploaded.
func (h *PhotoHandler) RegisterPhoto(c echo.Context) error {
	var req models.CreatePhotoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	if err := middleware.Authorize(c, req.UploadedBy); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.checkContributor(ctx, req.MemoryID, req.UploadedBy); err != nil {
		return err
	}
	if !storage.IsPhotoURL(h.store, h.bucket, req.MemoryID, req.URL) {
		return echo.NewHTTPError(http.StatusBadRequest, "Photo URL does not belong to this memory")
	}

	photo := &models.Photo{MemoryID: req.MemoryID, URL: req.URL, UploadedBy: req.UploadedBy}
	if err := h.photoRepository.CreatePhoto(ctx, photo); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusCreated, photo)
}

// UploadPhoto stores the multipart "file" and then registers it. If the second
// step fails the object stays behind and is logged for the reconcile job.
func (h *PhotoHandler) UploadPhoto(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}

	ctx := c.Request().Context()
	memoryID := c.Param("id")
	if err := h.checkContributor(ctx, memoryID, userID); err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	file, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot read uploaded file")
	}
	defer file.Close()

	key := storage.PhotoKey(memoryID, fh.Filename)
	url, err := h.store.Upload(ctx, h.bucket, key, fh.Header.Get(echo.HeaderContentType), file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not store the photo").SetInternal(err)
	}

	photo := &models.Photo{MemoryID: memoryID, URL: url, UploadedBy: userID}
	if err := h.photoRepository.CreatePhoto(ctx, photo); err != nil {
		h.logger.Error().Err(err).Str("bucket", h.bucket).Str("key", key).Msg("photo stored but not registered, object orphaned")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not register the photo").SetInternal(err)
	}
	return c.JSON(http.StatusCreated, models.UploadPhotoResponse{URL: url, Record: photo})
}

// DeletePhoto removes a photo. Only its uploader may delete it.
func (h *PhotoHandler) DeletePhoto(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}

	ctx := c.Request().Context()
	photo, err := h.photoRepository.GetPhotoByID(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "Photo not found")
	}
	if photo.UploadedBy != userID {
		return echo.NewHTTPError(http.StatusForbidden, ErrOwnPhotosOnly)
	}

	if err := h.photoRepository.DeletePhoto(ctx, photo.ID.Hex()); err != nil {
		return storeError(err, "Photo not found")
	}
	releaseObject(ctx, h.photoRepository, h.store, h.bucket, photo.URL, h.logger)
	return message(c, http.StatusOK, "Photo deleted")
}

// releaseObject deletes the object behind url once no photo row points at it.
// Failures are logged; leftovers are picked up by the reconcile job.
func releaseObject(ctx context.Context, photos repositories.PhotoRepository, store storage.ObjectStore, bucket, url string, logger zerolog.Logger) {
	refs, err := photos.CountByURL(ctx, url)
	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("counting photo references")
		return
	}
	if refs > 0 {
		logger.Info().Str("url", url).Int64("refs", refs).Msg("photo object still referenced, kept")
		return
	}
	if err := store.Delete(ctx, bucket, url); err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("deleting photo object")
	}
}

// checkContributor allows the memory's creator and the users it is shared with.
func (h *PhotoHandler) checkContributor(ctx context.Context, memoryID, userID string) error {
	memory, err := h.memoryRepository.GetMemoryByID(ctx, memoryID)
	if err != nil {
		return storeError(err, "Memory not found")
	}
	shares, err := h.shareRepository.ListByMemory(ctx, memoryID)
	if err != nil {
		return internalError(err)
	}
	if !relations.CanAccess(memory.CreatedBy, shareOuts(shares), userID) {
		return echo.NewHTTPError(http.StatusForbidden, "You cannot add photos to this memory")
	}
	return nil
}

func shareOuts(shares []models.MemoryShare) []models.ShareOut {
	out := make([]models.ShareOut, 0, len(shares))
	for _, s := range shares {
		out = append(out, s.Out())
	}
	return out
}
