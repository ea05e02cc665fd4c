package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familymeter/internal/config"
	"familymeter/internal/shared/testutil"
)

func newTestApp(t *testing.T, sourcePath string) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Source.Path = sourcePath
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Server.RateLimit.Enabled = false

	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return a
}

func get(a *Application, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestApplication_Routes(t *testing.T) {
	a := newTestApp(t, testutil.WriteMeasurementCSV(t, testutil.SampleMeasurementCSV))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedType   string
		expectedBody   string
	}{
		{"dashboard", "/", http.StatusOK, "text/html", "Rodinný merač"},
		{"groups", "/api/groups", http.StatusOK, "application/json", `"count":8`},
		{"single group", "/api/groups/Elena", http.StatusOK, "application/json", "Anna Nováková"},
		{"unknown group", "/api/groups/cousins", http.StatusNotFound, "application/json", "NOT_FOUND"},
		{"svg chart", "/api/groups/all/chart.svg", http.StatusOK, "image/svg+xml", "<svg"},
		{"png chart", "/api/groups/male/chart.png", http.StatusOK, "image/png", "PNG"},
		{"empty group chart", "/api/groups/Mariena/chart.svg", http.StatusNotFound, "application/json", "GROUP_EMPTY"},
		{"people", "/api/people", http.StatusOK, "application/json", `"count":2`},
		{"table", "/api/table", http.StatusOK, "application/json", "priezvisko"},
		{"stats", "/api/stats", http.StatusOK, "application/json", `"skipped_rows":1`},
		{"csv export", "/api/export/observations.csv", http.StatusOK, "text/csv", "first_name"},
		{"xlsx export", "/api/export/table.xlsx", http.StatusOK, "spreadsheetml", "PK"},
		{"health", "/api/health", http.StatusOK, "application/json", `"status":"ready"`},
		{"liveness", "/api/health/live", http.StatusOK, "application/json", `"status":"alive"`},
		{"version", "/api/version", http.StatusOK, "application/json", `"version":"1.0.0"`},
		{"unknown route", "/nope", http.StatusNotFound, "application/json", "/errors/not-found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(a, tt.path)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.expectedType)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestApplication_MissingSource(t *testing.T) {
	a := newTestApp(t, filepath.Join(t.TempDir(), "missing.csv"))

	tests := []struct {
		path         string
		expectedBody string
	}{
		{"/", "Measurement Table Missing"},
		{"/api/groups", "/errors/source/missing"},
		{"/api/health/ready", `"status":"not_ready"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(a, tt.path)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}

	rec := get(a, "/api/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplication_ReflectsTableEdits(t *testing.T) {
	path := testutil.WriteMeasurementCSV(t, testutil.SampleMeasurementCSV)
	a := newTestApp(t, path)

	rec := get(a, "/api/people")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)

	edited := testutil.SampleMeasurementCSV + "Nová,Eva,žena,01.01.2004,Miro,120,\n"
	require.NoError(t, os.WriteFile(path, []byte(edited), 0644))

	rec = get(a, "/api/people")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":3`)
}

func TestApplication_Metrics(t *testing.T) {
	a := newTestApp(t, testutil.WriteMeasurementCSV(t, testutil.SampleMeasurementCSV))
	require.NotNil(t, a.OTelProviders.PrometheusHTTP)

	require.Equal(t, http.StatusOK, get(a, "/api/groups").Code)

	rec := get(a, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pipeline_runs")
	assert.Contains(t, rec.Body.String(), "http_requests")
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Path = testutil.WriteMeasurementCSV(t, testutil.SampleMeasurementCSV)
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.1, Burst: 1}

	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(a, "/api/health/live").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(a, "/api/health/live").Code)
}

func TestApplication_StartStop(t *testing.T) {
	a := newTestApp(t, testutil.WriteMeasurementCSV(t, testutil.SampleMeasurementCSV))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop after cancellation")
	}
}
