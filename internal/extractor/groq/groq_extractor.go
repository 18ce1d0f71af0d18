package groq

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
	providerName = "groq"
	apiURL       = "https://api.groq.com/openai/v1/chat/completions"
)

// Extractor implements port.InvoiceExtractor using the Groq API, which
// speaks the OpenAI chat-completions dialect. Open-weight models drift into
// prose more readily, so the instruction gets an explicit JSON-only suffix on
// top of json_object mode.
type Extractor struct {
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Groq-backed invoice extractor from a provider config.
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
		model = "llama3-70b-8192"
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
		"model": e.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": extractor.Instruction + " RETURN ONLY JSON."},
			{"role": "user", "content": extractor.UserContent(documentText)},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
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
	req.Header.Set("Authorization", "Bearer "+credential)

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

// apiResponse models the Groq chat-completions response envelope.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func replyPayload(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", extractor.ShapeError(providerName, "unmarshaling response envelope: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", extractor.ShapeError(providerName, "empty response: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return "", extractor.ShapeError(providerName, "output truncated (finish_reason: length)")
	}

	return resp.Choices[0].Message.Content, nil
}
