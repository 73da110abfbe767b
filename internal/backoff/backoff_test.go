package backoff

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastOptions = Options{MaxRetries: 3, InitialDelay: time.Millisecond}

func newRequest(t *testing.T, method, url, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	return req
}

func TestFetch_Success(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := Fetch(context.Background(), server.Client(), newRequest(t, http.MethodGet, server.URL, ""), fastOptions)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_AlwaysUnavailable(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.Client(), newRequest(t, http.MethodGet, server.URL, ""), fastOptions)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExceeded)
	assert.Equal(t, int32(3), calls.Load(), "exactly MaxRetries attempts")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestFetch_RecoversAfterRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"text":"hello"}`, string(body), "body is replayed on every attempt")

		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := Fetch(context.Background(), server.Client(),
		newRequest(t, http.MethodPost, server.URL, `{"text":"hello"}`),
		Options{MaxRetries: 5, InitialDelay: time.Millisecond})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_ClientErrorFailsImmediately(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedDetail string
	}{
		{
			name:           "api error message",
			body:           `{"error":{"message":"API key not valid"}}`,
			expectedDetail: "API key not valid",
		},
		{
			name:           "plain text body",
			body:           "bad request",
			expectedDetail: "bad request",
		},
		{
			name:           "empty body",
			body:           "",
			expectedDetail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := Fetch(context.Background(), server.Client(), newRequest(t, http.MethodGet, server.URL, ""), fastOptions)
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrRetriesExceeded))
			assert.Equal(t, int32(1), calls.Load())

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
			assert.Equal(t, tt.expectedDetail, statusErr.Detail)
			if tt.expectedDetail == "" {
				assert.Equal(t, "API error: 400 Bad Request", err.Error())
			}
		})
	}
}

func TestFetch_TransportFailureIsRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := Fetch(context.Background(), http.DefaultClient, newRequest(t, http.MethodGet, url, ""), fastOptions)
	assert.ErrorIs(t, err, ErrRetriesExceeded)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestFetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, server.Client(), newRequest(t, http.MethodGet, server.URL, ""), Options{MaxRetries: 5, InitialDelay: time.Hour})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(http.StatusTooManyRequests))
	assert.True(t, Retryable(http.StatusInternalServerError))
	assert.True(t, Retryable(http.StatusGatewayTimeout))
	assert.False(t, Retryable(http.StatusBadRequest))
	assert.False(t, Retryable(http.StatusNotFound))
}

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, 5, opts.MaxRetries)
	assert.Equal(t, time.Second, opts.InitialDelay)
	assert.NotNil(t, opts.Logger)
}
