package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"techrobotics-site/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
sessions:
  secure: false
auth:
  seed_users:
    - email: test@example.com
      password: password123
      username: TestUser
`

type apiClient struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newTestServer(t *testing.T) *apiClient {
	t.Helper()

	cfg, err := config.ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	appCtx, err := newAppContext(ctx, cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { closeProviders(appCtx) })

	ts := httptest.NewServer(setupRouter(appCtx))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &apiClient{t: t, client: &http.Client{Jar: jar}, base: ts.URL}
}

func (c *apiClient) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestRouter_Health(t *testing.T) {
	api := newTestServer(t)

	status, body := api.do(http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
}

func TestRouter_UnknownAPIPath(t *testing.T) {
	api := newTestServer(t)

	status, _ := api.do(http.MethodGet, "/api/nope", nil)

	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_LoginFlowRestoresProtectedPage(t *testing.T) {
	api := newTestServer(t)

	status, body := api.do(http.MethodPost, "/api/navigate", map[string]any{"page": "projects", "protected": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "diverted", body["outcome"])
	assert.Equal(t, "home", body["page"])

	status, body = api.do(http.MethodPost, "/api/auth/submit", map[string]any{"email": "test@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "logged_in", body["outcome"])
	assert.Equal(t, "projects", body["page"])

	status, body = api.do(http.MethodGet, "/api/auth/status", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "user", body["role"])

	status, _ = api.do(http.MethodGet, "/api/admin/dashboard", nil)
	assert.Equal(t, http.StatusForbidden, status, "members cannot reach admin routes")

	status, body = api.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "logged_out", body["outcome"])

	status, _ = api.do(http.MethodGet, "/api/auth/status", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_GuestCannotSubscribe(t *testing.T) {
	api := newTestServer(t)

	status, body := api.do(http.MethodPost, "/api/subscriptions", map[string]any{"name": "Ana", "email": "ana@example.com"})

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "rejected", body["outcome"])
	message, ok := body["message"].(map[string]any)
	require.True(t, ok, "guests get the login message, not a bare error")
	assert.Equal(t, "error", message["type"])
	assert.Equal(t, "You must be logged in to subscribe.", message["text"])
}

func TestRouter_ViewReflectsSession(t *testing.T) {
	api := newTestServer(t)

	status, _ := api.do(http.MethodPost, "/api/carousel/next", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := api.do(http.MethodGet, "/api/view", nil)
	require.Equal(t, http.StatusOK, status)

	page, ok := body["page"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), page["carousel_index"])
}

func TestRouter_ExternalLoginDisabled(t *testing.T) {
	api := newTestServer(t)

	status, _ := api.do(http.MethodGet, "/api/auth/oidc/login", nil)

	assert.Equal(t, http.StatusNotFound, status)
}
