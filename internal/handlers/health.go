package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const apiVersion = "2.0.0"

func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "TrailBack API is running",
		"version": apiVersion,
	})
}

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Favicon keeps browsers hitting the API directly from logging 404s.
func Favicon(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
