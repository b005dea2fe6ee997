package app

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotebook/quotebook/internal/billing"
	"github.com/quotebook/quotebook/internal/billing/packages"
	"github.com/quotebook/quotebook/internal/observability"
	_ "github.com/quotebook/quotebook/testing"
)

// unsetEnv clears keys for the duration of the test so defaults apply.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetEnv(t, "APP_ENV", "APP_ADDR", "EXPORT_DIR", "EXPORT_STATUS_TTL", "RATE_LIMIT_PER_MINUTE")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "./exports", cfg.ExportDir)
	assert.Equal(t, 24*time.Hour, cfg.ExportStatusTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("SEED_SAMPLE_DATA", "true")
	t.Setenv("WORKER_CONCURRENCY", "2")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis:6380", cfg.RedisAddr)
	assert.True(t, cfg.SeedSampleData)
	assert.Equal(t, 2, cfg.WorkerConcurrency)
}

func TestLoadConfigRejectsNegativeRateLimit(t *testing.T) {
	unsetEnv(t, "EXPORT_DIR")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-1")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestNilConfigIsNotProduction(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.IsProduction())
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{AppEnv: "staging", LogFormat: "json"}, &buf)
	logger.Info("hello")
	assert.Contains(t, buf.String(), `"env":"staging"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestInTestMode(t *testing.T) {
	RefreshTestMode()
	assert.True(t, InTestMode())
}

func newTestRouter(t *testing.T, cfg *Config) (http.Handler, *observability.Metrics) {
	t.Helper()
	catalog, err := packages.Default()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	svc := billing.NewService(billing.NewRepository(catalog, billing.SeedState(true)), logger, billing.WithRecorder(metrics))
	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		BillingHandler: billing.NewHandler(logger, svc),
		Metrics:        metrics,
	}), metrics
}

func TestRouterHealthzAndSecurityHeaders(t *testing.T) {
	r, _ := newTestRouter(t, &Config{RateLimitPerMinute: 100})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouterMountsBillingAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t, &Config{RateLimitPerMinute: 100})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "QT-2024-0001")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quotebook_quotes_saved_total")
}

func TestRouterRateLimit(t *testing.T) {
	r, _ := newTestRouter(t, &Config{RateLimitPerMinute: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Scraped from another address, which has its own budget.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `quotebook_http_requests_total{code="429"`)
	assert.Contains(t, rec.Body.String(), `quotebook_http_requests_total{code="200",route="/healthz"} 2`)
}
