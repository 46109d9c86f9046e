package openapi

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"

	"github.com/linguapersonal/backend/config"
)

// Document describes the HTTP surface for API consumers. It is built once at
// startup; handlers serve the rendered form.
type Document struct {
	spec *openapi3.T
}

func New(cfg *config.Config) *Document {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       cfg.App.Name + " API",
			Description: "Language learning backend: registration, email-code 2FA, lesson generation and quiz progress.",
			Version:     "2.1",
		},
		Servers: openapi3.Servers{
			&openapi3.Server{URL: cfg.App.URL},
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{
				"bearerAuth": &openapi3.SecuritySchemeRef{
					Value: openapi3.NewJWTSecurityScheme(),
				},
			},
		},
	}

	d := &Document{spec: spec}
	d.addPublicRoutes()
	d.addProtectedRoutes()
	return d
}

func (d *Document) addPublicRoutes() {
	d.add(http.MethodGet, "/health", op("Liveness check", false, 200))
	d.add(http.MethodPost, "/register", op("Create a user and return an access token", false, 200, 400))
	d.add(http.MethodPost, "/login-step1", op("Verify credentials; sends a verification code when 2FA is enabled", false, 200, 401))
	d.add(http.MethodPost, "/login", op("Legacy alias of /login-step1", false, 200, 401))
	d.add(http.MethodPost, "/login-step2", op("Verify the emailed code and return an access token", false, 200, 401))
	d.add(http.MethodPost, "/resend-verification-code", op("Invalidate prior codes and email a fresh one", false, 200, 404))
	d.add(http.MethodPost, "/cleanup-expired-codes", op("Delete expired verification codes", false, 200))
}

func (d *Document) addProtectedRoutes() {
	d.add(http.MethodPost, "/toggle-2fa", op("Flip the caller's 2FA flag", true, 200, 401))
	d.add(http.MethodPost, "/generate-lesson", op("Generate a lesson via the configured provider", true, 200, 401, 504))
	d.add(http.MethodPost, "/submit-quiz-attempt", op("Record a quiz answer and update progress", true, 200, 401, 404))
	d.add(http.MethodGet, "/user-progress", op("List per-language progress rows", true, 200, 401))
	d.add(http.MethodGet, "/user-mistakes", op("List recent incorrect attempts", true, 200, 401))
}

func op(summary string, secured bool, statuses ...int) *openapi3.Operation {
	operation := &openapi3.Operation{
		Summary:   summary,
		Responses: openapi3.NewResponses(),
	}
	for _, status := range statuses {
		desc := http.StatusText(status)
		operation.AddResponse(status, &openapi3.Response{Description: &desc})
	}
	if secured {
		operation.Security = openapi3.NewSecurityRequirements().
			With(openapi3.NewSecurityRequirement().Authenticate("bearerAuth"))
	}
	return operation
}

func (d *Document) add(method, path string, operation *openapi3.Operation) {
	item := d.spec.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		d.spec.Paths.Set(path, item)
	}
	item.SetOperation(method, operation)
}

func (d *Document) Spec() *openapi3.T {
	return d.spec
}

func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d.spec, "", "  ")
}

func (d *Document) YAML() ([]byte, error) {
	intermediate, err := d.spec.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(intermediate)
}

func (d *Document) JSONHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := d.JSON()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSONBlob(http.StatusOK, data)
	}
}

func (d *Document) YAMLHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := d.YAML()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.Blob(http.StatusOK, "application/yaml", data)
	}
}

func (d *Document) SwaggerUIHandler(specPath string) echo.HandlerFunc {
	html := `<!DOCTYPE html>
<html>
<head>
    <title>API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: "` + specPath + `",
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
            layout: "BaseLayout"
        });
    </script>
</body>
</html>`
	return func(c echo.Context) error {
		return c.HTML(http.StatusOK, html)
	}
}
