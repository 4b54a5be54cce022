package analysis

import "testing"

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		key  string
		want Provider
	}{
		{"sk-proj-abc", ProviderOpenAI},
		{"AIzaSyD-abc", ProviderGoogle},
		{"  AIzaSyD-abc  ", ProviderGoogle},
		{"something-else", ProviderOpenAI},
		{"", ProviderOpenAI},
	}
	for _, tt := range tests {
		if got := DetectProvider(tt.key); got != tt.want {
			t.Errorf("DetectProvider(%q) = %s, want %s", tt.key, got, tt.want)
		}
	}
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{"", ProviderAuto, false},
		{"auto", ProviderAuto, false},
		{"OpenAI", ProviderOpenAI, false},
		{"gemini", ProviderGoogle, false},
		{"google", ProviderGoogle, false},
		{"anthropic", "", true},
	}
	for _, tt := range tests {
		got, err := ParseProvider(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseProvider(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProvider(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewRequest(t *testing.T) {
	req := NewRequest("BRCA1 c.68_69del", "AIzaKey", ProviderAuto)
	if req.APIKeys[GoogleKeyName] != "AIzaKey" {
		t.Errorf("Expected key under %s, got %v", GoogleKeyName, req.APIKeys)
	}

	req = NewRequest("BRCA1 c.68_69del", "AIzaKey", ProviderOpenAI)
	if req.APIKeys[OpenAIKeyName] != "AIzaKey" {
		t.Errorf("Explicit provider must win over detection, got %v", req.APIKeys)
	}

	req = NewRequest("BRCA1 c.68_69del", "   ", ProviderAuto)
	if req.APIKeys == nil || len(req.APIKeys) != 0 {
		t.Errorf("Expected empty non-nil key map, got %v", req.APIKeys)
	}
}

func TestRequestValid(t *testing.T) {
	for _, v := range []string{"", "   ", "\t\n"} {
		if (Request{Variant: v}).Valid() {
			t.Errorf("Variant %q should be invalid", v)
		}
	}
	if !(Request{Variant: "TP53 R175H"}).Valid() {
		t.Error("Expected non-empty variant to be valid")
	}
}
