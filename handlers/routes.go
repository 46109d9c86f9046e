package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/linguapersonal/backend/config"
	"github.com/linguapersonal/backend/middleware/jwtauth"
	"github.com/linguapersonal/backend/middleware/ratelimit"
	"github.com/linguapersonal/backend/services/auth"
	"github.com/linguapersonal/backend/services/jwt"
)

// RegisterRoutes wires the HTTP surface. Credential endpoints are rate
// limited; endpoints touching user data require a bearer token.
func RegisterRoutes(e *echo.Echo, h *Handler, jwtSvc *jwt.Service, authSvc *auth.Service, store ratelimit.Store, cfg *config.Config) {
	requireJWT := jwtauth.RequireJWT(jwtSvc, authSvc)

	var limited []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		limited = append(limited, ratelimit.Middleware(&ratelimit.Config{
			Store:  store,
			Rate:   cfg.RateLimit.Rate,
			Period: cfg.RateLimit.Period,
		}))
	}

	e.GET("/health", h.Health)

	e.POST("/register", h.Register, limited...)
	e.POST("/login-step1", h.LoginStep1, limited...)
	// Pre-2FA clients still post credentials here.
	e.POST("/login", h.LoginStep1, limited...)
	e.POST("/login-step2", h.LoginStep2, limited...)
	e.POST("/resend-verification-code", h.ResendVerificationCode, limited...)
	e.POST("/cleanup-expired-codes", h.CleanupExpiredCodes)

	e.POST("/toggle-2fa", h.ToggleTwoFactor, requireJWT)
	e.POST("/generate-lesson", h.GenerateLesson, requireJWT)
	e.POST("/submit-quiz-attempt", h.SubmitQuizAttempt, requireJWT)
	e.GET("/user-progress", h.UserProgress, requireJWT)
	e.GET("/user-mistakes", h.UserMistakes, requireJWT)
}
