package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fraudit/internal/config"
	"fraudit/internal/extractor"
)

const (
	providerName = "anthropic"
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
)

// Extractor implements port.InvoiceExtractor using the Anthropic Messages
// API. Anthropic has no machine-checked JSON output mode; the instruction
// alone constrains the reply shape, and validation downstream catches
// everything else.
type Extractor struct {
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates an Anthropic-backed invoice extractor from a provider config.
func NewExtractor(cfg *config.ProviderConfig) *Extractor {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return newExtractor(cfg, endpoint)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API
// endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *Extractor) Extract(ctx context.Context, credential, documentText string) (string, error) {
	reqBody := map[string]interface{}{
		"model":      e.model,
		"max_tokens": 4096,
		"system":     extractor.Instruction,
		"messages": []map[string]interface{}{
			{"role": "user", "content": extractor.UserContent(documentText)},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", extractor.ShapeError(providerName, "marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", extractor.ShapeError(providerName, "creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", credential)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", extractor.ClassifyTransport(providerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", extractor.ClassifyTransport(providerName, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", extractor.ClassifyStatus(providerName, resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	return replyPayload(respBody)
}

// apiResponse models the Anthropic Messages API response envelope.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func replyPayload(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", extractor.ShapeError(providerName, "unmarshaling response envelope: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", extractor.ShapeError(providerName, "empty response: no content blocks")
	}

	if resp.StopReason == "max_tokens" {
		return "", extractor.ShapeError(providerName, "output truncated (stop_reason: max_tokens)")
	}

	return resp.Content[0].Text, nil
}
