package extractor

import (
	"fmt"

	"fraudit/internal/config"
	"fraudit/internal/domain"
	"fraudit/internal/port"
)

// Factory is a function that creates an InvoiceExtractor from a provider config.
type Factory func(cfg *config.ProviderConfig) (port.InvoiceExtractor, error)

// registry of extractor factories, populated explicitly via Register at startup.
var factories = map[domain.Provider]Factory{}

// Register registers an extractor factory for a provider.
func Register(p domain.Provider, f Factory) {
	factories[p] = f
}

// New creates an InvoiceExtractor for the given provider using the registered
// factory.
func New(p domain.Provider, cfg *config.ProviderConfig) (port.InvoiceExtractor, error) {
	f, ok := factories[p]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for provider: %s", p)
	}
	return f(cfg)
}
