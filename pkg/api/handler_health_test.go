package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(e http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	e, _, _ := newTestServer(t, testSettings())

	rec := get(e, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RootResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "incident-autopilot", resp.Name)
	assert.False(t, resp.DryRun)
}

func TestRoot_DryRunFlag(t *testing.T) {
	cfg := testSettings()
	cfg.DryRun = true
	e, _, _ := newTestServer(t, cfg)

	var resp RootResponse
	rec := get(e, "/")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.DryRun)
}

func TestHealth(t *testing.T) {
	e, _, _ := newTestServer(t, testSettings())

	rec := get(e, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestMetrics(t *testing.T) {
	e, _, _ := newTestServer(t, testSettings())

	// Process one webhook so counters move.
	rec := postWebhook(e, webhookBody("OPS-1", "Service down in prod", "prod"), "test-secret")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(e, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Counters["webhooks_received"])
	assert.Equal(t, int64(1), resp.Counters["webhooks_processed"])
	assert.Equal(t, int64(1), resp.Counters["llm_calls"])
	assert.EqualValues(t, 100, resp.RateLimiter["max_requests"])
}

func TestSecurityHeaders(t *testing.T) {
	e, _, _ := newTestServer(t, testSettings())

	rec := get(e, "/health")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
}
