package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookBody(key, summary string, labels ...string) string {
	payload := map[string]any{
		"issue": map[string]any{
			"key": key,
			"fields": map[string]any{
				"issuetype": map[string]any{"name": "Incident"},
				"summary":   summary,
				"labels":    labels,
			},
		},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func postWebhook(e http.Handler, body, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/jira", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(webhookSecretHeader, secret)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_RequiresSecret(t *testing.T) {
	e, _, _ := newTestServer(t, testSettings())

	rec := postWebhook(e, webhookBody("OPS-1", "prod outage"), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postWebhook(e, webhookBody("OPS-1", "prod outage"), "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhook_ProcessesIncident(t *testing.T) {
	e, _, store := newTestServer(t, testSettings())

	rec := postWebhook(e, webhookBody("OPS-1", "Service down in prod", "prod"), "test-secret")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp WebhookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "processed", resp.Status)
	assert.Contains(t, resp.Message, "Incident triaged as P2")

	assert.Contains(t, store.records, "OPS-1")
	assert.NotEmpty(t, store.events)
}

func TestWebhook_SkipsNonIncident(t *testing.T) {
	e, _, _ := newTestServer(t, testSettings())

	body := `{"issue": {"key": "OPS-2", "fields": {"issuetype": {"name": "Story"}, "summary": "feature work"}}}`
	rec := postWebhook(e, body, "test-secret")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp WebhookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "skipped", resp.Status)
}

func TestWebhook_BadJSON(t *testing.T) {
	e, _, _ := newTestServer(t, testSettings())

	rec := postWebhook(e, "{not json", "test-secret")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_RateLimited(t *testing.T) {
	cfg := testSettings()
	cfg.RateLimitRequests = 2
	e, _, _ := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := postWebhook(e, webhookBody("OPS-1", "prod outage", "prod"), "test-secret")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec := postWebhook(e, webhookBody("OPS-1", "prod outage", "prod"), "test-secret")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestWebhook_RateLimitPerIP(t *testing.T) {
	cfg := testSettings()
	cfg.RateLimitRequests = 1
	e, _, _ := newTestServer(t, cfg)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/webhook/jira", strings.NewReader(webhookBody("OPS-1", "outage", "prod")))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(webhookSecretHeader, "test-secret")
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code, "limits are per client IP")
}

func TestWebhook_RejectionCounted(t *testing.T) {
	cfg := testSettings()
	cfg.RateLimitRequests = 1
	e, srv, _ := newTestServer(t, cfg)

	postWebhook(e, webhookBody("OPS-1", "outage", "prod"), "test-secret")
	postWebhook(e, webhookBody("OPS-1", "outage", "prod"), "test-secret")

	assert.Equal(t, int64(1), srv.counters.WebhooksRejected.Load())
}
