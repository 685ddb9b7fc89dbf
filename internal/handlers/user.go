package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/trailback/backend/internal/middleware"
	"github.com/trailback/backend/internal/repositories"
	"github.com/trailback/backend/pkg/models"
	"github.com/trailback/backend/pkg/storage"
)

var avatarExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true}

// UserHandler serves the user directory and the caller's profile
type UserHandler struct {
	profileRepository repositories.ProfileRepository
	store             storage.ObjectStore
	avatarsBucket     string
	logger            zerolog.Logger
}

func NewUserHandler(profileRepo repositories.ProfileRepository, store storage.ObjectStore, avatarsBucket string, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		profileRepository: profileRepo,
		store:             store,
		avatarsBucket:     avatarsBucket,
		logger:            logger,
	}
}

// RegisterProfileRoutes registers the user directory and profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.POST("/profile/avatar", h.UploadAvatar)
}

// ListUsers lists every profile but current_user, optionally filtered by username.
func (h *UserHandler) ListUsers(c echo.Context) error {
	currentUser := c.QueryParam("current_user")
	if currentUser != "" {
		if err := middleware.Authorize(c, currentUser); err != nil {
			return err
		}
	}

	profiles, err := h.profileRepository.ListProfiles(c.Request().Context(), c.QueryParam("search"), currentUser)
	if err != nil {
		return internalError(err)
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return c.JSON(http.StatusOK, profiles)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}

	profile, err := h.profileRepository.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return storeError(err, "Profile not found")
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies the provided fields; an empty update is rejected.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	changes := req.Changes()
	if len(changes) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Nothing to update")
	}
	if err := h.profileRepository.UpdateProfile(c.Request().Context(), userID, changes); err != nil {
		return storeError(err, "Profile not found")
	}
	return message(c, http.StatusOK, "Profile updated")
}

// UploadAvatar stores a JPG/PNG avatar and points the profile at it.
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	userID := c.FormValue("user_id")
	if userID == "" {
		userID = c.QueryParam("user_id")
	}
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if err := middleware.Authorize(c, userID); err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if !avatarExtensions[storage.Extension(fh.Filename)] {
		return echo.NewHTTPError(http.StatusBadRequest, "Only JPG/PNG allowed")
	}

	ctx := c.Request().Context()
	if _, err := h.profileRepository.GetProfile(ctx, userID); err != nil {
		return storeError(err, "Profile not found")
	}

	file, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot read uploaded file")
	}
	defer file.Close()

	url, err := h.store.Upload(ctx, h.avatarsBucket, storage.AvatarKey(userID, fh.Filename), fh.Header.Get(echo.HeaderContentType), file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Upload failed").SetInternal(err)
	}
	if err := h.profileRepository.UpdateProfile(ctx, userID, map[string]interface{}{"avatar_url": url}); err != nil {
		return storeError(err, "Profile not found")
	}

	profile, err := h.profileRepository.GetProfile(ctx, userID)
	if err != nil {
		return storeError(err, "Profile not found")
	}
	return c.JSON(http.StatusOK, profile)
}
