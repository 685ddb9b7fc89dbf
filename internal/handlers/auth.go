package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/trailback/backend/internal/middleware"
	"github.com/trailback/backend/internal/repositories"
	"github.com/trailback/backend/pkg/models"
)

// AuthHandler turns a Firebase session into a TrailBack profile
type AuthHandler struct {
	profileRepository repositories.ProfileRepository
	verifier          middleware.TokenVerifier
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(profileRepo repositories.ProfileRepository, verifier middleware.TokenVerifier) *AuthHandler {
	return &AuthHandler{
		profileRepository: profileRepo,
		verifier:          verifier,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/session", h.Session)
}

// Session verifies the Firebase ID token, creates the caller's profile on first
// sign-in and returns it.
func (h *AuthHandler) Session(c echo.Context) error {
	var req models.SessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.verifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	profile := &models.Profile{ID: token.UID, Email: email}
	if name, ok := token.Claims["name"].(string); ok && name != "" {
		profile.FullName = &name
	}
	if err := h.profileRepository.UpsertProfile(ctx, profile); err != nil {
		return internalError(err)
	}

	stored, err := h.profileRepository.GetProfile(ctx, token.UID)
	if err != nil {
		return storeError(err, "Profile not found")
	}
	return c.JSON(http.StatusOK, stored)
}
