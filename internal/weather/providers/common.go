package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// BackoffConfig controls exponential backoff behaviour.
// MaxRetries of 0 means a single attempt.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
	// Limiter is optional; nil disables client-side rate limiting.
	Limiter *rate.Limiter
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// statusError keeps the upstream status and message so callers can report them.
type statusError struct {
	kind    error
	code    int
	message string
}

func (e *statusError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("%v: %d: %s", e.kind, e.code, e.message)
	}
	return fmt.Sprintf("%v: %d", e.kind, e.code)
}

func (e *statusError) Unwrap() error { return e.kind }

// doRequestWithResilience executes the HTTP request behind the rate limiter and the
// circuit breaker, retrying with exponential backoff when configured to.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || (cfg.Backoff.MaxRetries > 0 && cfg.Backoff.InitialInterval <= 0) {
		return nil, errInvalidConfig
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if cfg.Limiter != nil {
			if err := cfg.Limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait canceled: %w", err)
			}
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, redactURLError(execErr)
			}

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}

			kind := errUnexpected
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				kind = errRateLimited
			case resp.StatusCode >= 500:
				kind = errServerError
			}
			msg := readUpstreamError(resp.Body)
			resp.Body.Close()
			return nil, &statusError{kind: kind, code: resp.StatusCode, message: msg}
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries || !retryable(err) {
			return nil, lastErr
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

// redactURLError drops the query string from transport errors; it carries the
// API key.
func redactURLError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	target := "request"
	if u, perr := url.Parse(ue.URL); perr == nil {
		target = u.Scheme + "://" + u.Host + u.Path
	}
	return fmt.Errorf("%s %q: %w", ue.Op, target, ue.Err)
}

// countsAsSuccess tells the circuit breaker which errors say nothing about the
// upstream's health: client errors other than 429 (unknown location, bad date)
// and requests canceled by the caller.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 400 && se.code < 500 && se.code != http.StatusTooManyRequests
	}
	return false
}

// retryable reports whether another attempt could plausibly succeed. Client errors
// such as an unknown location or a bad key never will.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return errors.Is(se.kind, errRateLimited) || errors.Is(se.kind, errServerError)
	}
	return true
}

// readUpstreamError extracts the message of a WeatherAPI style error body
// ({"error":{"code":1006,"message":"No matching location found."}}).
func readUpstreamError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
