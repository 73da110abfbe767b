package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"techrobotics-site/internal/auth"
	"techrobotics-site/internal/config"
	"techrobotics-site/internal/content"
	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/mocks"
	"techrobotics-site/internal/models"
	"techrobotics-site/internal/navigation"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"
)

const (
	AdminEmail    = "admin@techrobotics.com"
	AdminPassword = "admin-secret"
)

// TestContext holds everything needed for testing
type TestContext struct {
	AppContext     *middlewares.AppContext
	Request        *http.Request
	Response       *httptest.ResponseRecorder
	MockController *gomock.Controller
	MockSession    *mocks.MockSessionProvider
	MockStorage    *mocks.MockStorageProvider
	MockPresence   *mocks.MockTracker
	MockNarrator   *mocks.MockNarrator
	MockOIDC       *mocks.MockOIDCProvider
	LogHandler     *TestLogHandler

	// Session is what the mocked session manager loads for this request.
	Session *navigation.Session
}

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.ParseConfig([]byte("{}"))
	if err != nil {
		t.Fatalf("could not build default config: %v", err)
	}
	return cfg
}

func adminList(t *testing.T) *auth.AdminList {
	t.Helper()
	hash, err := auth.HashPassword(AdminPassword)
	if err != nil {
		t.Fatalf("could not hash admin password: %v", err)
	}
	return auth.NewAdminList([]config.AdminAccount{
		{Email: AdminEmail, Name: "Site Admin", PasswordHash: hash},
	})
}

// NewTestContextWithURL creates a complete test setup with sensible defaults.
// The request body is empty; use WithJSONBody to send one.
func NewTestContextWithURL(t *testing.T, method, url string) *TestContext {
	t.Helper()
	cfg := defaultConfig(t)

	logHandler := NewTestLogHandler()
	logger := slog.New(logHandler)

	ctrl := gomock.NewController(t)

	mockSession := mocks.NewMockSessionProvider(ctrl)
	mockStorage := mocks.NewMockStorageProvider(ctrl)
	mockPresence := mocks.NewMockTracker(ctrl)
	mockNarrator := mocks.NewMockNarrator(ctrl)
	mockOIDC := mocks.NewMockOIDCProvider(ctrl)

	catalogue, err := content.Default()
	if err != nil {
		t.Fatalf("could not load catalogue: %v", err)
	}

	req := httptest.NewRequest(method, url, nil)
	rr := httptest.NewRecorder()

	appCtx := middlewares.NewAppContext(req.Context(), cfg, logger, middlewares.Dependencies{
		SessionManager: mockSession,
		OIDCProvider:   mockOIDC,
		Storage:        mockStorage,
		Presence:       mockPresence,
		Gate:           auth.NewGate(mockStorage, adminList(t), mockPresence, cfg.Auth.MinPasswordLength, logger),
		Catalogue:      catalogue,
		Narrator:       mockNarrator,
	})
	appCtx.Request = req
	appCtx.Response = rr

	return &TestContext{
		AppContext:     appCtx,
		Request:        req,
		Response:       rr,
		MockController: ctrl,
		MockSession:    mockSession,
		MockStorage:    mockStorage,
		MockPresence:   mockPresence,
		MockNarrator:   mockNarrator,
		MockOIDC:       mockOIDC,
		LogHandler:     logHandler,
	}
}

// Finish should be called at the end of tests to clean up mocks
func (tc *TestContext) Finish() {
	if tc.MockController != nil {
		tc.MockController.Finish()
	}
}

// WithSession makes the mocked session manager load and save s. The narrator
// is expected to be asked for its completion time on every load.
func (tc *TestContext) WithSession(s *navigation.Session) *TestContext {
	tc.Session = s
	tc.MockSession.EXPECT().Load(tc.AppContext).Return(s).AnyTimes()
	tc.MockSession.EXPECT().Save(tc.AppContext, s).AnyTimes()
	tc.MockNarrator.EXPECT().Duration().Return(config.DefaultNarrationConfig.SimulatedDuration).AnyTimes()
	tc.MockNarrator.EXPECT().Mode().Return("simulated").AnyTimes()
	return tc
}

// WithGuestSession loads a fresh guest session.
func (tc *TestContext) WithGuestSession() *TestContext {
	return tc.WithSession(navigation.New())
}

// WithUserSession loads a session signed in as user and sets the principal the
// auth middleware would have set.
func (tc *TestContext) WithUserSession(t *testing.T, user *models.User) *TestContext {
	t.Helper()
	s := navigation.New()
	if _, err := s.CompleteLogin(navigation.PrincipalFor(user)); err != nil {
		t.Fatalf("could not sign in test session: %v", err)
	}
	tc.AppContext.SetPrincipal(navigation.PrincipalFor(user))
	return tc.WithSession(s)
}

func (tc *TestContext) AssertLogContains(t *testing.T, level slog.Level, message string) {
	t.Helper()
	if !tc.LogHandler.ContainsMessage(level, message) {
		t.Errorf("Expected to find log entry with level %v containing message: %s", level, message)
	}
}

func (tc *TestContext) AssertLogCount(t *testing.T, level slog.Level, expectedCount int) {
	t.Helper()
	count := tc.LogHandler.CountByLevel(level)
	if count != expectedCount {
		t.Errorf("Expected %d log entries at level %v, got %d", expectedCount, level, count)
	}
}

func (tc *TestContext) GetLogRecords() []TestLogRecord {
	return tc.LogHandler.GetRecords()
}

// CallHandler executes a handler with the test context
func (tc *TestContext) CallHandler(handler middlewares.AppHandler) {
	handler(tc.AppContext)
}

// AssertStatus checks the HTTP status code
func (tc *TestContext) AssertStatus(t *testing.T, expectedStatus int) {
	t.Helper()
	if tc.Response.Code != expectedStatus {
		t.Errorf("Expected status %d, got %d (body: %s)", expectedStatus, tc.Response.Code, tc.Response.Body.String())
	}
}

// AssertContentType checks the content type header
func (tc *TestContext) AssertContentType(t *testing.T, expectedType string) {
	t.Helper()
	if ct := tc.Response.Header().Get("Content-Type"); ct != expectedType {
		t.Errorf("Expected content type %s, got %s", expectedType, ct)
	}
}

func (tc *TestContext) AssertLocationHeader(t *testing.T, expected string) {
	t.Helper()
	if location := tc.Response.Header().Get("Location"); location != expected {
		t.Errorf("Expected Location %q, got %q", expected, location)
	}
}

// GetJSONResponse parses the response body as JSON
func (tc *TestContext) GetJSONResponse(t *testing.T) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(tc.Response.Body.Bytes(), &response); err != nil {
		t.Fatalf("Could not parse JSON response: %v", err)
	}
	return response
}

// DecodeJSON parses the response body into v.
func (tc *TestContext) DecodeJSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(tc.Response.Body.Bytes(), v); err != nil {
		t.Fatalf("Could not parse JSON response: %v", err)
	}
}

// AssertJSONField checks a specific field in a JSON response
func (tc *TestContext) AssertJSONField(t *testing.T, field string, expected any) {
	t.Helper()
	response := tc.GetJSONResponse(t)
	if actual, ok := response[field]; !ok || actual != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, response[field])
	}
}

func (tc *TestContext) AssertJSONBool(t *testing.T, field string, expected bool) {
	t.Helper()
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualBool, ok := actual.(bool)
	if !ok {
		t.Errorf("Expected %s to be a boolean, got %T", field, actual)
		return
	}

	if actualBool != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, actualBool)
	}
}

// AssertJSONString checks a specific string field in a JSON response
func (tc *TestContext) AssertJSONString(t *testing.T, field string, expected string) {
	t.Helper()
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualString, ok := actual.(string)
	if !ok {
		t.Errorf("Expected %s to be a string, got %T", field, actual)
		return
	}

	if actualString != expected {
		t.Errorf("Expected %s to be %q, got %q", field, expected, actualString)
	}
}

// AssertJSONObject validates an object field with expected key-value pairs
func (tc *TestContext) AssertJSONObject(t *testing.T, field string, expectedFields map[string]interface{}) {
	t.Helper()
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualObj, ok := actual.(map[string]interface{})
	if !ok {
		t.Errorf("Expected %s to be an object, got %T", field, actual)
		return
	}

	for key, expectedValue := range expectedFields {
		if actualValue, keyExists := actualObj[key]; !keyExists {
			t.Errorf("Expected field %s.%s to exist", field, key)
		} else if actualValue != expectedValue {
			t.Errorf("Expected %s.%s to be %v, got %v", field, key, expectedValue, actualValue)
		}
	}
}

// AssertMessage checks the message object shown with the response.
func (tc *TestContext) AssertMessage(t *testing.T, kind navigation.MessageKind, text string) {
	t.Helper()
	tc.AssertJSONObject(t, "message", map[string]interface{}{
		"type": string(kind),
		"text": text,
	})
}

// WithConfig allows you to override the default config for specific tests
func (tc *TestContext) WithConfig(cfg *config.Config) *TestContext {
	tc.AppContext.Config = cfg
	return tc
}

// Helper to add query parameters to the request
func (tc *TestContext) WithQueryParam(key, value string) *TestContext {
	q := tc.Request.URL.Query()
	q.Add(key, value)
	tc.Request.URL.RawQuery = q.Encode()
	return tc
}

// Helper to add headers
func (tc *TestContext) WithHeader(key, value string) *TestContext {
	tc.Request.Header.Set(key, value)
	return tc
}

// WithJSONBody encodes body as the request payload.
func (tc *TestContext) WithJSONBody(t *testing.T, body any) *TestContext {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("could not encode request body: %v", err)
	}
	tc.Request.Body = io.NopCloser(bytes.NewReader(data))
	tc.Request.ContentLength = int64(len(data))
	tc.Request.Header.Set("Content-Type", "application/json")
	return tc
}

// WithURLParam sets a chi route parameter on the request.
func (tc *TestContext) WithURLParam(key, value string) *TestContext {
	return tc.WithRequest(withURLParam(tc.Request, key, value))
}

// WithRequest allows you to set a custom request (useful for tests that don't use URL constructor)
func (tc *TestContext) WithRequest(req *http.Request) *TestContext {
	tc.Request = req
	tc.AppContext.Request = req
	tc.AppContext.Context = req.Context()
	return tc
}

// WithContext replaces the request context, e.g. to cancel it.
func (tc *TestContext) WithContext(ctx context.Context) *TestContext {
	return tc.WithRequest(tc.Request.WithContext(ctx))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
