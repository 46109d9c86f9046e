package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/linguapersonal/backend/middleware/jwtauth"
	"github.com/linguapersonal/backend/services/lesson"
)

func (h *Handler) GenerateLesson(c echo.Context) error {
	user := jwtauth.GetUser(c)

	var req lesson.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.UserPrompt == "" || req.TargetLang == "" || req.NativeLang == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_prompt, target_lang and native_lang are required")
	}

	generated, err := h.lessons.Generate(c.Request().Context(), user.ID, req)
	if err != nil {
		if errors.Is(err, lesson.ErrProviderTimeout) {
			return echo.NewHTTPError(http.StatusGatewayTimeout, "Lesson provider is taking too long. Please try again.")
		}
		h.logger.Error("lesson generation failed", zap.Error(err), zap.Uint("user_id", user.ID))
		return echo.NewHTTPError(http.StatusInternalServerError, "Lesson generation failed.")
	}

	return c.JSON(http.StatusOK, generated)
}
