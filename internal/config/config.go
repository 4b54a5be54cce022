package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/genoassist-br/genoassist/internal/analysis"
)

// Config holds the complete application configuration
type Config struct {
	Version     string            `yaml:"version" json:"version"`
	Server      ServerConfig      `yaml:"server" json:"server"`
	Credentials CredentialsConfig `yaml:"credentials" json:"credentials"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
}

// ServerConfig points at the analysis service
type ServerConfig struct {
	BaseURL     string        `yaml:"base_url" json:"base_url"`         // e.g. https://genoassist.example.com
	AnalyzePath string        `yaml:"analyze_path" json:"analyze_path"` // defaults to /api/analyze
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`           // transport timeout per request
}

// CredentialsConfig holds the LLM key forwarded to the service. Leave empty
// when the server has its own key configured.
type CredentialsConfig struct {
	Provider string `yaml:"provider" json:"provider"` // auto|openai|google
	APIKey   string `yaml:"api_key" json:"api_key"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Width         int    `yaml:"width" json:"width"`                   // wrap width for the report
	Theme         string `yaml:"theme" json:"theme"`                   // default|high-contrast|minimal
	ShowSpinner   bool   `yaml:"show_spinner" json:"show_spinner"`
}

// LoggingConfig configures where log lines go while the TUI owns the screen
type LoggingConfig struct {
	File string `yaml:"file" json:"file"`
}

// Themes lists the accepted output.theme values
var Themes = []string{"default", "high-contrast", "minimal"}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			BaseURL:     analysis.DefaultBaseURL,
			AnalyzePath: analysis.DefaultPath,
			Timeout:     analysis.DefaultTimeout,
		},
		Credentials: CredentialsConfig{
			Provider: string(analysis.ProviderAuto),
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Width:         100,
			Theme:         "default",
			ShowSpinner:   true,
		},
	}
}

// ClientConfig converts the server section for the analysis client
func (c *Config) ClientConfig() analysis.ClientConfig {
	return analysis.ClientConfig{
		BaseURL: c.Server.BaseURL,
		Path:    c.Server.AnalyzePath,
		Timeout: c.Server.Timeout,
	}
}

// Provider returns the parsed credentials provider
func (c *Config) Provider() analysis.Provider {
	p, err := analysis.ParseProvider(c.Credentials.Provider)
	if err != nil {
		return analysis.ProviderAuto
	}
	return p
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if _, err := analysis.ParseProvider(c.Credentials.Provider); err != nil {
		return err
	}
	return c.validateOutputConfig()
}

// validateServerConfig validates the analysis endpoint
func (c *Config) validateServerConfig() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid server.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server.base_url: %s (scheme must be http or https)", c.Server.BaseURL)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.Theme != "" && !slices.Contains(Themes, c.Output.Theme) {
		return fmt.Errorf("invalid theme: %s (must be one of: %s)", c.Output.Theme, strings.Join(Themes, ", "))
	}
	if c.Output.Width < 0 {
		return fmt.Errorf("output.width must be non-negative")
	}
	return nil
}
