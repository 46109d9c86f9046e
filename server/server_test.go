package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguapersonal/backend/config"
)

func TestNew(t *testing.T) {
	srv := New(&config.Config{}, nil)
	require.NotNil(t, srv.Echo())
	assert.True(t, srv.Echo().HideBanner)
}

func TestServer_RecoversFromPanics(t *testing.T) {
	srv := New(&config.Config{}, nil)
	srv.Echo().GET("/boom", func(c echo.Context) error {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_Shutdown(t *testing.T) {
	srv := New(&config.Config{}, nil)
	require.NoError(t, srv.Shutdown(context.Background()))
}
