package config

import "time"

type ProvidersConfig struct {
	// Providers is keyed by the model identifier clients send (openai, gemini, deepseek).
	Providers map[string]ProviderConfig `yaml:"providers"`
}

type ProviderConfig struct {
	Type          string            `yaml:"type"`
	BaseURL       string            `yaml:"base_url"`
	APIKeyEnv     string            `yaml:"api_key_env"`
	RequireAPIKey *bool             `yaml:"require_api_key,omitempty"`
	DefaultModel  string            `yaml:"default_model"`
	MaxConcurrent int               `yaml:"max_concurrent"`
	Timeout       time.Duration     `yaml:"timeout"`
	Headers       map[string]string `yaml:"headers,omitempty"`
}

// KeyRequired reports whether calls must be refused when the API key is unset.
func (p ProviderConfig) KeyRequired() bool {
	return p.RequireAPIKey == nil || *p.RequireAPIKey
}

// DefaultProviders returns the stock endpoints for the three supported providers.
func DefaultProviders() *ProvidersConfig {
	return &ProvidersConfig{
		Providers: map[string]ProviderConfig{
			"openai": {
				Type:          "openai",
				BaseURL:       "https://api.openai.com/v1",
				APIKeyEnv:     "OPENAI_API_KEY",
				DefaultModel:  "gpt-3.5-turbo",
				MaxConcurrent: 50,
			},
			"gemini": {
				Type:          "gemini",
				BaseURL:       "https://generativelanguage.googleapis.com/v1beta",
				APIKeyEnv:     "GEMINI_API_KEY",
				DefaultModel:  "gemini-1.5-flash",
				MaxConcurrent: 50,
			},
			"deepseek": {
				Type:          "deepseek",
				BaseURL:       "https://api.deepseek.com",
				APIKeyEnv:     "DEEPSEEK_API_KEY",
				DefaultModel:  "deepseek-chat",
				MaxConcurrent: 50,
			},
		},
	}
}
