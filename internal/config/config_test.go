package config

import (
	"testing"
	"time"

	"github.com/genoassist-br/genoassist/internal/analysis"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"https base url", func(c *Config) { c.Server.BaseURL = "https://genoassist.example.com" }, false},
		{"empty base url", func(c *Config) { c.Server.BaseURL = "" }, true},
		{"ftp base url", func(c *Config) { c.Server.BaseURL = "ftp://example.com" }, true},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -time.Second }, true},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }, false},
		{"gemini provider", func(c *Config) { c.Credentials.Provider = "gemini" }, false},
		{"unknown provider", func(c *Config) { c.Credentials.Provider = "anthropic" }, true},
		{"yaml format", func(c *Config) { c.Output.DefaultFormat = "yaml" }, true},
		{"bad color mode", func(c *Config) { c.Output.ColorMode = "sometimes" }, true},
		{"bad theme", func(c *Config) { c.Output.Theme = "neon" }, true},
		{"high-contrast theme", func(c *Config) { c.Output.Theme = "high-contrast" }, false},
		{"negative width", func(c *Config) { c.Output.Width = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClientConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.BaseURL = "https://genoassist.example.com"
	cfg.Server.AnalyzePath = "/v2/analyze"
	cfg.Server.Timeout = 15 * time.Second

	cc := cfg.ClientConfig()
	if cc.BaseURL != "https://genoassist.example.com" || cc.Path != "/v2/analyze" || cc.Timeout != 15*time.Second {
		t.Errorf("ClientConfig() = %+v", cc)
	}
}

func TestProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Credentials.Provider = "openai"
	if cfg.Provider() != analysis.ProviderOpenAI {
		t.Errorf("Expected openai, got %s", cfg.Provider())
	}

	cfg.Credentials.Provider = "bogus"
	if cfg.Provider() != analysis.ProviderAuto {
		t.Errorf("Expected invalid provider to fall back to auto, got %s", cfg.Provider())
	}
}
