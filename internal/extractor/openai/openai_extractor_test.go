package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudit/internal/config"
	"fraudit/internal/extractor"
	"fraudit/internal/extractor/openai"
)

func newTestExtractor(serverURL string) *openai.Extractor {
	cfg := &config.ProviderConfig{DefaultModel: "gpt-4o", TimeoutSecs: 30}
	return openai.NewExtractorWithEndpoint(cfg, serverURL)
}

func successBody(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message":       map[string]string{"content": content},
				"finish_reason": "stop",
			},
		},
	})
	return string(b)
}

func TestExtract_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(successBody(`{"vendor_name":"Acme"}`)))
	}))
	defer server.Close()

	ex := newTestExtractor(server.URL)
	reply, err := ex.Extract(context.Background(), "test-key", "invoice body")

	require.NoError(t, err)
	assert.Equal(t, `{"vendor_name":"Acme"}`, reply)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o", gotBody["model"])

	// JSON output mode must be requested
	rf, ok := gotBody["response_format"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "json_object", rf["type"])

	// system instruction then user document text
	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	second := messages[1].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "user", second["role"])
	assert.Contains(t, second["content"], "invoice body")
}

func TestExtract_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API key"}}`))
	}))
	defer server.Close()

	ex := newTestExtractor(server.URL)
	_, err := ex.Extract(context.Background(), "bad-key", "text")

	var ae *extractor.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, extractor.KindUnauthorized, ae.Kind)
	assert.Equal(t, "openai", ae.Provider)
	assert.False(t, ae.Retryable())
}

func TestExtract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit exceeded"}}`))
	}))
	defer server.Close()

	ex := newTestExtractor(server.URL)
	_, err := ex.Extract(context.Background(), "test-key", "text")

	var ae *extractor.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, extractor.KindRateLimited, ae.Kind)
	assert.Equal(t, 30*time.Second, ae.RetryAfter)
	assert.True(t, ae.Retryable())
}

func TestExtract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ex := newTestExtractor(server.URL)
	_, err := ex.Extract(context.Background(), "test-key", "text")

	var ae *extractor.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, extractor.KindUnreachable, ae.Kind)
}

func TestExtract_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	ex := newTestExtractor(server.URL)
	_, err := ex.Extract(context.Background(), "test-key", "text")

	var ae *extractor.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, extractor.KindUnexpectedResponseShape, ae.Kind)
	assert.Contains(t, err.Error(), "no choices")
}

func TestExtract_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ven"},"finish_reason":"length"}]}`))
	}))
	defer server.Close()

	ex := newTestExtractor(server.URL)
	_, err := ex.Extract(context.Background(), "test-key", "text")

	var ae *extractor.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, extractor.KindUnexpectedResponseShape, ae.Kind)
	assert.Contains(t, err.Error(), "truncated")
}

func TestExtract_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(successBody("{}")))
	}))
	defer server.Close()

	ex := newTestExtractor(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ex.Extract(ctx, "test-key", "text")

	var ae *extractor.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, extractor.KindTimeout, ae.Kind)
}

func TestExtract_Unreachable(t *testing.T) {
	// point at a closed port
	ex := newTestExtractor("http://127.0.0.1:1")
	_, err := ex.Extract(context.Background(), "test-key", "text")

	var ae *extractor.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, extractor.KindUnreachable, ae.Kind)
}

func TestExtract_MalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	ex := newTestExtractor(server.URL)
	_, err := ex.Extract(context.Background(), "test-key", "text")

	var ae *extractor.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, extractor.KindUnexpectedResponseShape, ae.Kind)
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}
