package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/linguapersonal/backend/middleware/jwtauth"
	"github.com/linguapersonal/backend/services/auth"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resendCodeRequest struct {
	Email string `json:"email"`
}

type loginStep1Response struct {
	Message     string `json:"message"`
	Requires2FA bool   `json:"requires_2fa"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	token, err := h.auth.Register(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
		}
		h.logger.Error("registration failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Registration failed")
	}

	return c.JSON(http.StatusOK, newTokenResponse(token))
}

// LoginStep1 verifies credentials. With 2FA disabled it completes the login
// and returns a token; with 2FA enabled it emails a code and returns no token.
func (h *Handler) LoginStep1(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	result, err := h.auth.LoginStep1(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		h.logger.Error("login step 1 failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}

	if !result.Requires2FA {
		return c.JSON(http.StatusOK, loginStep1Response{
			Message:     "Login successful",
			Requires2FA: false,
			AccessToken: result.Token,
			TokenType:   "bearer",
		})
	}

	return c.JSON(http.StatusOK, loginStep1Response{
		Message:     "Verification code sent to your email",
		Requires2FA: true,
	})
}

func (h *Handler) LoginStep2(c echo.Context) error {
	var req verifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and code are required")
	}

	token, err := h.auth.LoginStep2(req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRequest):
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid request")
		case errors.Is(err, auth.ErrInvalidOrExpiredCode):
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired verification code")
		default:
			h.logger.Error("login step 2 failed", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "Verification failed")
		}
	}

	return c.JSON(http.StatusOK, newTokenResponse(token))
}

func (h *Handler) ResendVerificationCode(c echo.Context) error {
	var req resendCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}

	if err := h.auth.ResendCode(req.Email); err != nil {
		if errors.Is(err, auth.ErrInvalidRequest) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Error("resend verification code failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resend code")
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "New verification code sent"})
}

func (h *Handler) ToggleTwoFactor(c echo.Context) error {
	user := jwtauth.GetUser(c)

	enabled, err := h.auth.ToggleTwoFactor(user)
	if err != nil {
		h.logger.Error("2FA toggle failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update 2FA settings")
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":        "2FA " + state,
		"two_fa_enabled": enabled,
	})
}

func (h *Handler) CleanupExpiredCodes(c echo.Context) error {
	removed, err := h.auth.CleanupExpiredCodes()
	if err != nil {
		h.logger.Error("expired code cleanup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Cleanup failed")
	}

	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Cleaned up %d expired codes", removed),
	})
}
