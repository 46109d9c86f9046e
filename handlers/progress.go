package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/linguapersonal/backend/middleware/jwtauth"
	"github.com/linguapersonal/backend/services/progress"
)

func (h *Handler) SubmitQuizAttempt(c echo.Context) error {
	user := jwtauth.GetUser(c)

	var req progress.AttemptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.SessionID == 0 || req.QuestionText == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id and question_text are required")
	}

	if _, err := h.progress.SubmitAttempt(user.ID, req); err != nil {
		if errors.Is(err, progress.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Session not found")
		}
		h.logger.Error("quiz attempt submission failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":    "Attempt recorded",
		"is_correct": req.IsCorrect,
	})
}

func (h *Handler) UserProgress(c echo.Context) error {
	user := jwtauth.GetUser(c)

	records, err := h.progress.ListProgress(user.ID)
	if err != nil {
		h.logger.Error("progress lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	return c.JSON(http.StatusOK, records)
}

func (h *Handler) UserMistakes(c echo.Context) error {
	user := jwtauth.GetUser(c)

	mistakes, err := h.progress.ListMistakes(user.ID, c.QueryParam("language"))
	if err != nil {
		h.logger.Error("mistake lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	return c.JSON(http.StatusOK, mistakes)
}
