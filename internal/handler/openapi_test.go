package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeOpenAPIUI(t *testing.T) {
	t.Chdir("../..")

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), rec)

	require.NoError(t, NewOpenAPIHandler(newTestServer()).ServeOpenAPIUI(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")
}

func TestServeOpenAPIUI_MissingTemplate(t *testing.T) {
	t.Chdir(t.TempDir())

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), httptest.NewRecorder())

	assert.Error(t, NewOpenAPIHandler(newTestServer()).ServeOpenAPIUI(c))
}
