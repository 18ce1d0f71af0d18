package extractor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// ErrorKind classifies an adapter failure. The orchestrator's retry policy is
// driven entirely by this classification.
type ErrorKind string

const (
	KindUnauthorized            ErrorKind = "unauthorized"
	KindRateLimited             ErrorKind = "rate_limited"
	KindTimeout                 ErrorKind = "timeout"
	KindUnreachable             ErrorKind = "unreachable"
	KindUnexpectedResponseShape ErrorKind = "unexpected_response_shape"
)

// AdapterError is the only error type an extractor returns. Raw transport or
// HTTP failures never cross the extractor boundary unclassified.
type AdapterError struct {
	Provider   string
	Kind       ErrorKind
	Err        error
	RetryAfter time.Duration // only set for KindRateLimited
}

func (e *AdapterError) Error() string {
	if e.Kind == KindRateLimited && e.RetryAfter > 0 {
		return fmt.Sprintf("%s: %s (retry after %s): %v", e.Provider, e.Kind, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure class is transient. Unauthorized and
// malformed-shape failures will fail the same way again and are never retried.
func (e *AdapterError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTimeout
}

// ClassifyStatus maps a non-200 provider response to an AdapterError.
func ClassifyStatus(provider string, status int, body []byte, retryAfterHeader string) *AdapterError {
	baseErr := fmt.Errorf("API error (status %d): %s", status, truncate(string(body), 500))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AdapterError{Provider: provider, Kind: KindUnauthorized, Err: baseErr}
	case status == http.StatusTooManyRequests:
		secs := ParseRetryAfterHeader(retryAfterHeader)
		if secs <= 0 {
			secs = 60
		}
		return &AdapterError{
			Provider:   provider,
			Kind:       KindRateLimited,
			Err:        baseErr,
			RetryAfter: time.Duration(secs) * time.Second,
		}
	case status >= 500:
		return &AdapterError{Provider: provider, Kind: KindUnreachable, Err: baseErr}
	default:
		return &AdapterError{Provider: provider, Kind: KindUnexpectedResponseShape, Err: baseErr}
	}
}

// ClassifyTransport maps a transport-level failure (http.Client.Do) to an
// AdapterError.
func ClassifyTransport(provider string, err error) *AdapterError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &AdapterError{Provider: provider, Kind: KindTimeout, Err: err}
	}
	return &AdapterError{Provider: provider, Kind: KindUnreachable, Err: err}
}

// ShapeError builds an AdapterError for a 200 reply whose envelope does not
// contain a usable payload.
func ShapeError(provider string, format string, args ...interface{}) *AdapterError {
	return &AdapterError{
		Provider: provider,
		Kind:     KindUnexpectedResponseShape,
		Err:      fmt.Errorf(format, args...),
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
