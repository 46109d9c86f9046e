package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"features":  []string{"2FA", "email_verification", "quiz_tracking"},
		"version":   "2.1",
	})
}
