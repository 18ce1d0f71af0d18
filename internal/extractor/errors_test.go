package extractor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudit/internal/extractor"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		wantKind   extractor.ErrorKind
	}{
		{"unauthorized_401", 401, "", extractor.KindUnauthorized},
		{"forbidden_403", 403, "", extractor.KindUnauthorized},
		{"rate_limited_429", 429, "30", extractor.KindRateLimited},
		{"server_error_500", 500, "", extractor.KindUnreachable},
		{"service_unavailable_503", 503, "", extractor.KindUnreachable},
		{"bad_request_400", 400, "", extractor.KindUnexpectedResponseShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := extractor.ClassifyStatus("openai", tt.status, []byte(`{"error":"x"}`), tt.retryAfter)
			require.NotNil(t, err)
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, "openai", err.Provider)
		})
	}
}

func TestClassifyStatus_RateLimitRetryAfter(t *testing.T) {
	err := extractor.ClassifyStatus("groq", 429, nil, "30")
	assert.Equal(t, 30*time.Second, err.RetryAfter)

	// missing or invalid header defaults to 60s
	err = extractor.ClassifyStatus("groq", 429, nil, "")
	assert.Equal(t, 60*time.Second, err.RetryAfter)

	err = extractor.ClassifyStatus("groq", 429, nil, "soon")
	assert.Equal(t, 60*time.Second, err.RetryAfter)
}

func TestClassifyTransport(t *testing.T) {
	deadline := fmt.Errorf("calling API: %w", context.DeadlineExceeded)
	err := extractor.ClassifyTransport("gemini", deadline)
	assert.Equal(t, extractor.KindTimeout, err.Kind)

	refused := errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
	err = extractor.ClassifyTransport("gemini", refused)
	assert.Equal(t, extractor.KindUnreachable, err.Kind)
}

func TestAdapterError_Retryable(t *testing.T) {
	retryable := []extractor.ErrorKind{extractor.KindRateLimited, extractor.KindTimeout}
	terminal := []extractor.ErrorKind{
		extractor.KindUnauthorized,
		extractor.KindUnreachable,
		extractor.KindUnexpectedResponseShape,
	}

	for _, k := range retryable {
		e := &extractor.AdapterError{Provider: "p", Kind: k, Err: errors.New("x")}
		assert.True(t, e.Retryable(), "kind %s should be retryable", k)
	}
	for _, k := range terminal {
		e := &extractor.AdapterError{Provider: "p", Kind: k, Err: errors.New("x")}
		assert.False(t, e.Retryable(), "kind %s should not be retryable", k)
	}
}

func TestAdapterError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("boom")
	e := &extractor.AdapterError{
		Provider:   "anthropic",
		Kind:       extractor.KindRateLimited,
		Err:        inner,
		RetryAfter: 10 * time.Second,
	}

	assert.Contains(t, e.Error(), "anthropic")
	assert.Contains(t, e.Error(), "rate_limited")
	assert.Contains(t, e.Error(), "10s")
	assert.ErrorIs(t, e, inner)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, extractor.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, extractor.ParseRetryAfterHeader("not-a-number"))
	assert.Equal(t, 45, extractor.ParseRetryAfterHeader("45"))
}
