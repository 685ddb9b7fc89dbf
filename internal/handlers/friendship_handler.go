package handlers

import (
	"context"
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

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	friendshipRepository repositories.FriendshipRepository
	profileRepository    repositories.ProfileRepository
	events               notify.Publisher
	logger               zerolog.Logger
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendshipRepo repositories.FriendshipRepository, profileRepo repositories.ProfileRepository, events notify.Publisher, logger zerolog.Logger) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipRepository: friendshipRepo,
		profileRepository:    profileRepo,
		events:               events,
		logger:               logger,
	}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.GET("/friends", h.ListFriends)
	g.POST("/friends/request", h.SendFriendRequest)
	g.POST("/friends/accept", h.AcceptFriendRequest)
	g.DELETE("/friends/remove", h.RemoveFriend)
}

// ListFriends returns every pending and accepted row touching the user.
func (h *FriendshipHandler) ListFriends(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}

	rows, err := h.friendshipRepository.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return internalError(err)
	}
	if rows == nil {
		rows = []models.Friendship{}
	}
	return c.JSON(http.StatusOK, rows)
}

// SendFriendRequest creates a pending request from user_id to friend_id, or
// accepts the request friend_id already sent.
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	q, err := h.bindPair(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if q.UserID != q.FriendID {
		if _, err := h.profileRepository.GetProfile(ctx, q.FriendID); err != nil {
			return storeError(err, "User not found")
		}
	}

	decision, err := h.decide(ctx, q, relations.ActionSend)
	if err != nil {
		return err
	}

	switch decision.Op {
	case relations.OpAccept:
		if err := h.accept(ctx, decision.Row); err != nil {
			return err
		}
		h.logger.Info().Str("user_id", q.UserID).Str("friend_id", q.FriendID).Msg("crossing friend requests merged")
		return message(c, http.StatusOK, "Friend request accepted")
	default:
		row := decision.Row
		if err := h.friendshipRepository.CreateRequest(ctx, &row); err != nil {
			if errors.Is(err, repositories.ErrAlreadyExists) {
				return echo.NewHTTPError(http.StatusConflict, relations.ErrRequestExists.Error())
			}
			return internalError(err)
		}
		h.events.Publish(ctx, models.Event{
			Operation: models.OperationRequest,
			Type:      "friend-request",
			UserID:    row.FriendID,
			Payload:   row,
		})
		return message(c, http.StatusCreated, "Friend request sent")
	}
}

// AcceptFriendRequest accepts the pending request friend_id sent to user_id.
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	q, err := h.bindPair(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	decision, err := h.decide(ctx, q, relations.ActionAccept)
	if err != nil {
		return err
	}
	if err := h.accept(ctx, decision.Row); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Friend request accepted")
}

// RemoveFriend deletes the friendship or pending request between the two users,
// whichever side sent it.
func (h *FriendshipHandler) RemoveFriend(c echo.Context) error {
	q, err := h.bindPair(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.decide(ctx, q, relations.ActionRemove); err != nil {
		return err
	}

	removed, err := h.friendshipRepository.DeleteBetween(ctx, q.UserID, q.FriendID)
	if err != nil {
		return internalError(err)
	}
	if removed == 0 {
		return echo.NewHTTPError(http.StatusNotFound, relations.ErrNoFriendship.Error())
	}

	h.events.Publish(ctx, models.Event{
		Operation: models.OperationRemove,
		Type:      "friendship",
		UserID:    q.FriendID,
		Payload:   q,
	})
	return message(c, http.StatusOK, "Friend removed")
}

func (h *FriendshipHandler) bindPair(c echo.Context) (models.FriendPairQuery, error) {
	var q models.FriendPairQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := c.Validate(q); err != nil {
		return q, err
	}
	return q, middleware.Authorize(c, q.UserID)
}

func (h *FriendshipHandler) decide(ctx context.Context, q models.FriendPairQuery, action relations.Action) (relations.Decision, error) {
	rows, err := h.friendshipRepository.ListBetween(ctx, q.UserID, q.FriendID)
	if err != nil {
		return relations.Decision{}, internalError(err)
	}
	decision, err := relations.Decide(rows, q.UserID, q.FriendID, action)
	if err != nil {
		return decision, friendshipError(err)
	}
	return decision, nil
}

func (h *FriendshipHandler) accept(ctx context.Context, row models.Friendship) error {
	if err := h.friendshipRepository.AcceptRequest(ctx, row.UserID, row.FriendID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, relations.ErrNoPendingRequest.Error())
		}
		return internalError(err)
	}
	h.events.Publish(ctx, models.Event{
		Operation: models.OperationAccept,
		Type:      "friend-request",
		UserID:    row.UserID,
		Payload:   models.Friendship{UserID: row.UserID, FriendID: row.FriendID, Status: models.FriendshipAccepted},
	})
	return nil
}

func friendshipError(err error) error {
	switch {
	case errors.Is(err, relations.ErrSelfRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, relations.ErrRequestExists), errors.Is(err, relations.ErrAlreadyFriends):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, relations.ErrNotRecipient):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, relations.ErrNoPendingRequest), errors.Is(err, relations.ErrNoFriendship):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return internalError(err)
}
