package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/trailback/backend/internal/middleware"
	"github.com/trailback/backend/internal/repositories"
	"github.com/trailback/backend/pkg/models"
	"github.com/trailback/backend/pkg/relations"
	"github.com/trailback/backend/pkg/storage"
)

// MemoryHandler handles HTTP requests related to memories
type MemoryHandler struct {
	memoryRepository repositories.MemoryRepository
	photoRepository  repositories.PhotoRepository
	shareRepository  repositories.ShareRepository
	store            storage.ObjectStore
	photosBucket     string
	logger           zerolog.Logger
	now              func() time.Time
}

// NewMemoryHandler creates a new MemoryHandler
func NewMemoryHandler(memoryRepo repositories.MemoryRepository, photoRepo repositories.PhotoRepository, shareRepo repositories.ShareRepository, store storage.ObjectStore, photosBucket string, logger zerolog.Logger) *MemoryHandler {
	return &MemoryHandler{
		memoryRepository: memoryRepo,
		photoRepository:  photoRepo,
		shareRepository:  shareRepo,
		store:            store,
		photosBucket:     photosBucket,
		logger:           logger,
		now:              time.Now,
	}
}

// RegisterMemoryRoutes registers memory-related routes
func (h *MemoryHandler) RegisterMemoryRoutes(g *echo.Group) {
	g.GET("/memories", h.ListMemories)
	g.GET("/memories/shared", h.ListSharedMemories)
	g.GET("/memories/visible", h.ListVisibleMemories)
	g.POST("/memories", h.CreateMemory)
	g.PUT("/memories/:id/edit", h.EditMemory)
	g.DELETE("/memories/:id", h.DeleteMemory)
}

// ListMemories returns the memories created by user_id.
func (h *MemoryHandler) ListMemories(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}

	memories, err := h.memoryRepository.ListByCreator(c.Request().Context(), userID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, nonNil(memories))
}

// ListSharedMemories returns the memories other users shared with user_id.
func (h *MemoryHandler) ListSharedMemories(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}

	memories, err := h.sharedWith(c.Request().Context(), userID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, memories)
}

// ListVisibleMemories returns own and shared memories merged into one list with
// the isShared flag set.
func (h *MemoryHandler) ListVisibleMemories(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}
	ctx := c.Request().Context()

	own, err := h.memoryRepository.ListByCreator(ctx, userID)
	if err != nil {
		return internalError(err)
	}
	shared, err := h.sharedWith(ctx, userID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, relations.MergeVisible(own, shared, userID))
}

func (h *MemoryHandler) sharedWith(ctx context.Context, userID string) ([]models.Memory, error) {
	shares, err := h.shareRepository.ListSharedWith(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(shares))
	seen := map[string]bool{}
	for _, s := range shares {
		if !seen[s.MemoryID] {
			seen[s.MemoryID] = true
			ids = append(ids, s.MemoryID)
		}
	}
	memories, err := h.memoryRepository.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return nonNil(memories), nil
}

// CreateMemory creates a new memory
func (h *MemoryHandler) CreateMemory(c echo.Context) error {
	var req models.CreateMemoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	if req.CreatedAt.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "created_at is required")
	}
	if req.CreatedAt.After(h.now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "Memory date cannot be in the future")
	}
	if err := middleware.Authorize(c, req.CreatedBy); err != nil {
		return err
	}

	memory := &models.Memory{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   req.CreatedAt.UTC(),
	}
	if err := h.memoryRepository.CreateMemory(c.Request().Context(), memory); err != nil {
		return internalError(err)
	}

	h.logger.Info().Str("memory_id", memory.ID.Hex()).Str("user_id", memory.CreatedBy).Msg("memory created")
	return c.JSON(http.StatusCreated, memory)
}

// EditMemory updates title and description. Only the creator may edit.
func (h *MemoryHandler) EditMemory(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}

	var req models.EditMemoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	if req.Title == nil && req.Description == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Nothing to update")
	}

	ctx := c.Request().Context()
	memory, err := h.memoryRepository.GetMemoryByID(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "Memory not found")
	}
	if memory.CreatedBy != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own memories")
	}

	if req.Title != nil {
		memory.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		memory.Description = req.Description
	}
	if err := h.memoryRepository.UpdateMemory(ctx, memory); err != nil {
		return storeError(err, "Memory not found")
	}
	return message(c, http.StatusOK, "Memory updated")
}

// DeleteMemory removes a memory with its photos and shares. Only the creator may delete.
func (h *MemoryHandler) DeleteMemory(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}

	ctx := c.Request().Context()
	memoryID := c.Param("id")
	memory, err := h.memoryRepository.GetMemoryByID(ctx, memoryID)
	if err != nil {
		return storeError(err, "Memory not found")
	}
	if memory.CreatedBy != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own memories")
	}

	photos, err := h.photoRepository.ListByMemory(ctx, memoryID)
	if err != nil {
		return internalError(err)
	}
	if _, err := h.photoRepository.DeleteByMemory(ctx, memoryID); err != nil {
		return internalError(err)
	}
	released := map[string]bool{}
	for _, p := range photos {
		if released[p.URL] {
			continue
		}
		released[p.URL] = true
		releaseObject(ctx, h.photoRepository, h.store, h.photosBucket, p.URL, h.logger)
	}
	if err := h.shareRepository.DeleteByMemory(ctx, memoryID); err != nil {
		return internalError(err)
	}
	if err := h.memoryRepository.DeleteMemory(ctx, memoryID); err != nil {
		return storeError(err, "Memory not found")
	}

	h.logger.Info().Str("memory_id", memoryID).Int("photos", len(photos)).Msg("memory deleted")
	return message(c, http.StatusOK, "Memory deleted")
}

func nonNil(memories []models.Memory) []models.Memory {
	if memories == nil {
		return []models.Memory{}
	}
	return memories
}
