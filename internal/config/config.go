package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. Provider credentials are
// deliberately absent: a credential is scoped to one request and arrives with
// the call, never from process-wide configuration.
type Config struct {
	Server   ServerConfig
	Extract  ExtractConfig
	Pipeline PipelineConfig
	Recon    ReconConfig
	CORS     CORSConfig
	Upload   UploadConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// ProviderConfig holds settings for a single extraction backend. The API key
// is not here: it is supplied per call.
type ProviderConfig struct {
	DefaultModel string `mapstructure:"default_model"`
	Endpoint     string `mapstructure:"endpoint"` // override for testing/proxies; empty = provider default
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractConfig holds per-provider extraction settings.
type ExtractConfig struct {
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Gemini    ProviderConfig `mapstructure:"gemini"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Groq      ProviderConfig `mapstructure:"groq"`
}

// For returns the provider config for the given provider name, or nil if the
// name is not a known provider.
func (e *ExtractConfig) For(provider string) *ProviderConfig {
	switch provider {
	case "openai":
		return &e.OpenAI
	case "gemini":
		return &e.Gemini
	case "anthropic":
		return &e.Anthropic
	case "groq":
		return &e.Groq
	}
	return nil
}

// PipelineConfig holds orchestrator policy settings.
type PipelineConfig struct {
	RequestTimeoutSecs int `mapstructure:"request_timeout_secs"`
	RetryBackoffMs     int `mapstructure:"retry_backoff_ms"`
}

// RequestTimeout returns the overall per-run deadline.
func (p *PipelineConfig) RequestTimeout() time.Duration {
	return time.Duration(p.RequestTimeoutSecs) * time.Second
}

// RetryBackoff returns the delay between sequential attempts of one run.
func (p *PipelineConfig) RetryBackoff() time.Duration {
	return time.Duration(p.RetryBackoffMs) * time.Millisecond
}

// ReconConfig holds arithmetic reconciliation settings.
type ReconConfig struct {
	Epsilon         float64 `mapstructure:"epsilon"`
	FraudScoreFloor int     `mapstructure:"fraud_score_floor"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UploadConfig holds document upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// Load reads configuration from environment variables with the FRAUDIT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FRAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Extraction backend defaults. Endpoints default inside each extractor
	// package; only overrides live here.
	v.SetDefault("extract.openai.default_model", "gpt-4o")
	v.SetDefault("extract.openai.timeout_secs", 120)
	v.SetDefault("extract.gemini.default_model", "gemini-1.5-flash")
	v.SetDefault("extract.gemini.timeout_secs", 120)
	v.SetDefault("extract.anthropic.default_model", "claude-3-5-sonnet-20240620")
	v.SetDefault("extract.anthropic.timeout_secs", 120)
	v.SetDefault("extract.groq.default_model", "llama3-70b-8192")
	v.SetDefault("extract.groq.timeout_secs", 120)

	// Pipeline defaults
	v.SetDefault("pipeline.request_timeout_secs", 180)
	v.SetDefault("pipeline.retry_backoff_ms", 2000)

	// Reconciliation defaults
	v.SetDefault("recon.epsilon", 0.01)
	v.SetDefault("recon.fraud_score_floor", 40)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	})

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 25)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
