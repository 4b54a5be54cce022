package analysis

import (
	"fmt"
	"strings"
)

// Provider names the LLM vendor whose key the user pasted
type Provider string

const (
	ProviderAuto   Provider = "auto"
	ProviderOpenAI Provider = "openai"
	ProviderGoogle Provider = "google"
)

// Conventional key names understood by the analysis service
const (
	OpenAIKeyName = "OPENAI_API_KEY"
	GoogleKeyName = "GOOGLE_API_KEY"
)

// ParseProvider accepts the values allowed in config and flags
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ProviderAuto, nil
	case "openai":
		return ProviderOpenAI, nil
	case "google", "gemini":
		return ProviderGoogle, nil
	default:
		return "", fmt.Errorf("invalid provider: %s (must be one of: auto, openai, google)", s)
	}
}

// KeyName returns the conventional key name for the provider
func (p Provider) KeyName() string {
	if p == ProviderGoogle {
		return GoogleKeyName
	}
	return OpenAIKeyName
}

// DetectProvider guesses the vendor from the key format. Unknown formats fall
// back to OpenAI.
func DetectProvider(apiKey string) Provider {
	key := strings.TrimSpace(apiKey)
	switch {
	case strings.HasPrefix(key, "AIza"):
		return ProviderGoogle
	default:
		return ProviderOpenAI
	}
}

// Resolve turns auto into a concrete provider for the given key
func (p Provider) Resolve(apiKey string) Provider {
	if p == ProviderAuto || p == "" {
		return DetectProvider(apiKey)
	}
	return p
}

// NewRequest builds a request. An empty key yields an empty key map so the
// service uses its own configured credentials.
func NewRequest(variant, apiKey string, provider Provider) Request {
	keys := make(map[string]string, 1)
	if key := strings.TrimSpace(apiKey); key != "" {
		keys[provider.Resolve(key).KeyName()] = key
	}
	return Request{
		Variant: variant,
		APIKeys: keys,
	}
}
