package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudit/internal/domain"
)

func TestBandForScore(t *testing.T) {
	tests := []struct {
		score int
		want  domain.RiskBand
	}{
		{0, domain.RiskBandLow},
		{19, domain.RiskBandLow},
		{20, domain.RiskBandMedium},
		{59, domain.RiskBandMedium},
		{60, domain.RiskBandHigh},
		{100, domain.RiskBandHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.BandForScore(tt.score), "score %d", tt.score)
	}
}

func TestParseProvider(t *testing.T) {
	for _, name := range []string{"openai", "gemini", "anthropic", "groq"} {
		p, err := domain.ParseProvider(name)
		require.NoError(t, err)
		assert.Equal(t, domain.Provider(name), p)
	}

	_, err := domain.ParseProvider("mistral")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
	assert.Contains(t, err.Error(), "mistral")

	// case sensitive on purpose
	_, err = domain.ParseProvider("OpenAI")
	assert.Error(t, err)
}

func TestAllProviders(t *testing.T) {
	ps := domain.AllProviders()
	assert.Equal(t, []domain.Provider{
		domain.ProviderOpenAI,
		domain.ProviderGemini,
		domain.ProviderAnthropic,
		domain.ProviderGroq,
	}, ps)
}
