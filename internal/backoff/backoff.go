package backoff

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"techrobotics-site/internal/metrics"

	"github.com/sethvargo/go-retry"
)

const (
	DefaultMaxRetries   = 5
	DefaultInitialDelay = time.Second

	maxDetailBytes = 4096
)

var ErrRetriesExceeded = errors.New("max retries exceeded")

// StatusError is returned for a non-2xx response that is not worth retrying.
type StatusError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API error: %s", e.Detail)
	}
	return fmt.Sprintf("API error: %s", e.Status)
}

type Options struct {
	MaxRetries   int
	InitialDelay time.Duration
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Retryable reports whether a response status should be attempted again.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Fetch sends req until it succeeds, doubling the delay after each 429, 5xx or
// transport failure. Any other non-2xx status fails immediately with a *StatusError.
// After MaxRetries attempts the error wraps ErrRetriesExceeded.
//
// Requests with a body must set GetBody so the body can be replayed.
func Fetch(ctx context.Context, client *http.Client, req *http.Request, opts Options) (*http.Response, error) {
	opts = opts.withDefaults()
	if client == nil {
		client = http.DefaultClient
	}

	policy := retry.WithMaxRetries(uint64(opts.MaxRetries-1), retry.NewExponential(opts.InitialDelay))

	var (
		attempts int
		resp     *http.Response
	)

	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		attempts++

		attempt, err := cloneRequest(ctx, req)
		if err != nil {
			return err
		}

		res, err := client.Do(attempt)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.BackoffAttempts.WithLabelValues(metrics.BackoffOutcomeRetry).Inc()
			opts.Logger.Debug("request failed, retrying", "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			resp = res
			return nil
		}

		statusErr := readStatusError(res)
		if Retryable(res.StatusCode) {
			metrics.BackoffAttempts.WithLabelValues(metrics.BackoffOutcomeRetry).Inc()
			opts.Logger.Debug("retryable response", "attempt", attempts, "status", res.StatusCode)
			return retry.RetryableError(statusErr)
		}

		metrics.BackoffAttempts.WithLabelValues(metrics.BackoffOutcomeFailed).Inc()
		return statusErr
	})

	if err == nil {
		metrics.BackoffAttempts.WithLabelValues(metrics.BackoffOutcomeSuccess).Inc()
		return resp, nil
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && !Retryable(statusErr.StatusCode) {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	metrics.BackoffAttempts.WithLabelValues(metrics.BackoffOutcomeExhausted).Inc()
	opts.Logger.Warn("giving up after retries", "attempts", attempts, "error", err)
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExceeded, attempts, err)
}

func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	attempt := req.Clone(ctx)
	if req.Body == nil || req.Body == http.NoBody {
		return attempt, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed: GetBody is nil")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to replay request body: %w", err)
	}
	attempt.Body = body
	return attempt, nil
}

// readStatusError drains and closes the response, keeping the API's error
// message when the body carries one.
func readStatusError(res *http.Response) *StatusError {
	defer res.Body.Close()

	statusErr := &StatusError{StatusCode: res.StatusCode, Status: res.Status}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxDetailBytes))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return statusErr
	}

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error.Message != "" {
		statusErr.Detail = body.Error.Message
		return statusErr
	}

	statusErr.Detail = string(bytes.TrimSpace(raw))
	return statusErr
}
