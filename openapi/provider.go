package openapi

import (
	"go.uber.org/fx"

	"github.com/linguapersonal/backend/server"
)

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(func(srv *server.Server, doc *Document) {
		e := srv.Echo()
		e.GET("/openapi.json", doc.JSONHandler())
		e.GET("/openapi.yaml", doc.YAMLHandler())
		e.GET("/docs", doc.SwaggerUIHandler("/openapi.json"))
	}),
)
