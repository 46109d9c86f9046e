package handlers

import (
	"go.uber.org/fx"

	"github.com/linguapersonal/backend/config"
	"github.com/linguapersonal/backend/middleware/ratelimit"
	"github.com/linguapersonal/backend/server"
	"github.com/linguapersonal/backend/services/auth"
	"github.com/linguapersonal/backend/services/jwt"
)

var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(srv *server.Server, h *Handler, jwtSvc *jwt.Service, authSvc *auth.Service, store ratelimit.Store, cfg *config.Config) {
		RegisterRoutes(srv.Echo(), h, jwtSvc, authSvc, store, cfg)
	}),
)
