package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/locvowork/enrollment_report/internal/config"
	"github.com/locvowork/enrollment_report/internal/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutePrefix(t *testing.T) {
	tests := map[string]string{
		"":                   "/",
		"/":                  "/",
		"/weekly/":           "/weekly/",
		"weekly":             "/weekly/",
		"/dash/report-app":   "/dash/report-app/",
		"/dash/report-app//": "/dash/report-app/",
	}
	for in, want := range tests {
		assert.Equal(t, want, routePrefix(in), in)
	}
}

func TestNewReportService(t *testing.T) {
	layout, err := config.DefaultLayout()
	require.NoError(t, err)

	svc, err := NewReportService(&config.EnvConfig{DATASTORE_URL: "http://datastore.test/"}, layout)
	require.NoError(t, err)
	assert.Equal(t, layout.TableOrder(), svc.TableOrder())

	_, err = NewReportService(&config.EnvConfig{DATASTORE_URL: "datastore"}, layout)
	assert.Error(t, err)
}

func TestRegisterRoutes(t *testing.T) {
	layout, err := config.DefaultLayout()
	require.NoError(t, err)
	svc, err := NewReportService(&config.EnvConfig{DATASTORE_URL: "http://datastore.test/"}, layout)
	require.NoError(t, err)

	app := NewApp()
	app.RegisterMiddlewares()
	app.RegisterRoutes("/weekly/", handler.NewReportHandler(svc))

	paths := map[string]bool{}
	for _, r := range app.Echo.Routes() {
		paths[r.Method+" "+r.Path] = true
	}
	assert.True(t, paths["GET /weekly/report"])
	assert.True(t, paths["GET /weekly/report/export"])
	assert.True(t, paths["GET /healthz"])
	assert.True(t, paths["GET /metrics"])

	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
