package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/trailback/backend/internal/middleware"
	"github.com/trailback/backend/internal/notify"
	"github.com/trailback/backend/internal/repositories"
	"github.com/trailback/backend/pkg/models"
	"github.com/trailback/backend/pkg/relations"
)

// ShareHandler manages the grants that make a memory visible to friends
type ShareHandler struct {
	shareRepository      repositories.ShareRepository
	memoryRepository     repositories.MemoryRepository
	friendshipRepository repositories.FriendshipRepository
	events               notify.Publisher
	logger               zerolog.Logger
}

func NewShareHandler(shareRepo repositories.ShareRepository, memoryRepo repositories.MemoryRepository, friendshipRepo repositories.FriendshipRepository, events notify.Publisher, logger zerolog.Logger) *ShareHandler {
	return &ShareHandler{
		shareRepository:      shareRepo,
		memoryRepository:     memoryRepo,
		friendshipRepository: friendshipRepo,
		events:               events,
		logger:               logger,
	}
}

// RegisterShareRoutes registers share-related routes
func (h *ShareHandler) RegisterShareRoutes(g *echo.Group) {
	g.GET("/memories/:id/shares", h.ListShares)
	g.POST("/memories/:id/share-user", h.ShareMemory)
	g.DELETE("/memories/:id/share-user/:friendId", h.UnshareMemory)
}

func (h *ShareHandler) ListShares(c echo.Context) error {
	shares, err := h.shareRepository.ListByMemory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, shareOuts(shares))
}

// ShareMemory grants shared_with access on behalf of shared_by. The sharer must
// be the creator or already hold a grant, and must be friends with the recipient.
func (h *ShareHandler) ShareMemory(c echo.Context) error {
	var q models.ShareQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := c.Validate(q); err != nil {
		return err
	}
	if err := middleware.Authorize(c, q.SharedBy); err != nil {
		return err
	}

	ctx := c.Request().Context()
	memoryID := c.Param("id")
	memory, err := h.memoryRepository.GetMemoryByID(ctx, memoryID)
	if err != nil {
		return storeError(err, "Memory not found")
	}
	shares, err := h.shareRepository.ListByMemory(ctx, memoryID)
	if err != nil {
		return internalError(err)
	}
	if !relations.CanAccess(memory.CreatedBy, shareOuts(shares), q.SharedBy) {
		return echo.NewHTTPError(http.StatusForbidden, "You cannot share this memory")
	}
	if q.SharedWith == q.SharedBy || q.SharedWith == memory.CreatedBy {
		return echo.NewHTTPError(http.StatusBadRequest, "Memory is already visible to this user")
	}

	rows, err := h.friendshipRepository.ListBetween(ctx, q.SharedBy, q.SharedWith)
	if err != nil {
		return internalError(err)
	}
	if !relations.AreFriends(rows, q.SharedBy, q.SharedWith) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only share memories with friends")
	}

	share := &models.MemoryShare{MemoryID: memoryID, SharedWith: q.SharedWith, SharedBy: q.SharedBy}
	if err := h.shareRepository.CreateShare(ctx, share); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "Memory already shared with this user")
		}
		return internalError(err)
	}

	h.events.Publish(ctx, models.Event{
		Operation: models.OperationShare,
		Type:      "memory-share",
		UserID:    q.SharedWith,
		Payload:   share,
	})
	return message(c, http.StatusOK, "Memory shared")
}

// UnshareMemory revokes the grant user_id made to friendId. Grants made by other
// users are left alone.
func (h *ShareHandler) UnshareMemory(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}

	ctx := c.Request().Context()
	memoryID, friendID := c.Param("id"), c.Param("friendId")
	err = h.shareRepository.DeleteShare(ctx, memoryID, friendID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		shares, listErr := h.shareRepository.ListByMemory(ctx, memoryID)
		if listErr != nil {
			return internalError(listErr)
		}
		for _, s := range shares {
			if s.SharedWith == friendID {
				return echo.NewHTTPError(http.StatusForbidden, "You can only revoke shares you created")
			}
		}
		return echo.NewHTTPError(http.StatusNotFound, "Share not found")
	}
	if err != nil {
		return internalError(err)
	}

	h.events.Publish(ctx, models.Event{
		Operation: models.OperationUnshare,
		Type:      "memory-share",
		UserID:    friendID,
		Payload:   models.ShareOut{SharedWith: friendID, SharedBy: userID},
	})
	return message(c, http.StatusOK, "Share removed")
}
