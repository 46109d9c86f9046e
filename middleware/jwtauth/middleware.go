package jwtauth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/linguapersonal/backend/services/auth"
	"github.com/linguapersonal/backend/services/jwt"
)

const (
	UserKey   = "_auth_user"
	ClaimsKey = "_auth_claims"
)

// RequireJWT validates the bearer token and resolves the current user from
// its subject. Missing, malformed, expired and forged tokens all answer 401
// with the same generic message.
func RequireJWT(jwtService *jwt.Service, authService *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return unauthorized()
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" {
				return unauthorized()
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				return unauthorized()
			}

			user, err := authService.GetUserByEmail(claims.Subject)
			if err != nil {
				// A valid signature over a deleted account is still a 401.
				return unauthorized()
			}

			c.Set(UserKey, user)
			c.Set(ClaimsKey, claims)

			return next(c)
		}
	}
}

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
}

func GetUser(c echo.Context) *auth.User {
	if user, ok := c.Get(UserKey).(*auth.User); ok {
		return user
	}
	return nil
}

func GetClaims(c echo.Context) *jwt.Claims {
	if claims, ok := c.Get(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}
