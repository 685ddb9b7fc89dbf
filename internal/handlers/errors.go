package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/trailback/backend/internal/repositories"
	"github.com/trailback/backend/pkg/models"
)

// NewHTTPErrorHandler renders every error as {"detail": "..."} and logs server faults.
func NewHTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		detail := "Unexpected error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			detail = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = he.Internal
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"detail": detail})
		}
		if err != nil {
			logger.Error().Err(err).Msg("writing error response")
		}
	}
}

// storeError maps repository errors to HTTP errors. notFound is the detail used
// for ErrNotFound.
func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	case errors.Is(err, repositories.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, "Record already exists")
	}
	return internalError(err)
}

func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, "Unexpected error").SetInternal(err)
}

func requireParam(c echo.Context, name string) (string, error) {
	value := c.QueryParam(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is required", name))
	}
	return value, nil
}

func message(c echo.Context, code int, text string) error {
	return c.JSON(code, models.MessageResponse{Message: text})
}
