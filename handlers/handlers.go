package handlers

import (
	"github.com/linguapersonal/backend/services/auth"
	"github.com/linguapersonal/backend/services/lesson"
	"github.com/linguapersonal/backend/services/logging"
	"github.com/linguapersonal/backend/services/progress"
)

// Handler carries the services behind the HTTP surface.
type Handler struct {
	auth     *auth.Service
	lessons  *lesson.Service
	progress *progress.Service
	logger   *logging.Service
}

func NewHandler(authSvc *auth.Service, lessonSvc *lesson.Service, progressSvc *progress.Service, logger *logging.Service) *Handler {
	return &Handler{
		auth:     authSvc,
		lessons:  lessonSvc,
		progress: progressSvc,
		logger:   logger,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func newTokenResponse(token string) tokenResponse {
	return tokenResponse{AccessToken: token, TokenType: "bearer"}
}
