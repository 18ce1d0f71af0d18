package domain

import "fmt"

// Provider identifies an LLM backend capable of structured invoice extraction.
// The set is closed; adding a backend means adding a constant here and an
// extractor implementation, nothing else changes.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderGroq      Provider = "groq"
)

// AllProviders returns the supported providers in a stable order.
func AllProviders() []Provider {
	return []Provider{ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderGroq}
}

// ParseProvider validates a caller-supplied provider name.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderGroq:
		return Provider(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}
