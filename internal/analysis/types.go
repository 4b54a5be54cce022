package analysis

import (
	"context"
	"strings"
)

// Analyzer performs one analysis round trip
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Report, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface
type AnalyzerFunc func(ctx context.Context, req Request) (*Report, error)

// Analyze calls f
func (f AnalyzerFunc) Analyze(ctx context.Context, req Request) (*Report, error) {
	return f(ctx, req)
}

// Request is what the user submits
type Request struct {
	// Variant is an HGVS expression or "GENE alteration", e.g. "BRCA1 c.68_69del"
	Variant string `json:"variant"`

	// APIKeys maps a conventional provider key name to its credential
	APIKeys map[string]string `json:"api_keys"`
}

// Normalized returns the request with surrounding whitespace removed from the
// variant and a non-nil key map.
func (r Request) Normalized() Request {
	keys := make(map[string]string, len(r.APIKeys))
	for name, value := range r.APIKeys {
		keys[name] = value
	}
	return Request{
		Variant: strings.TrimSpace(r.Variant),
		APIKeys: keys,
	}
}

// Valid reports whether the request may be issued
func (r Request) Valid() bool {
	return strings.TrimSpace(r.Variant) != ""
}

// Report is a successful analysis result
type Report struct {
	RequestID   string      `json:"request_id,omitempty"`
	Variant     string      `json:"variant,omitempty"`
	Markdown    string      `json:"report"`
	PubMedCount int         `json:"pubmed_count"`
	ClinVar     ClinVarData `json:"clinvar_data"`

	// Incomplete lists wire fields that were missing or invalid in the
	// service payload. Views fall back to neutral labels for them.
	Incomplete []string `json:"incomplete,omitempty"`
}

// IsComplete reports whether every expected field was present
func (r *Report) IsComplete() bool {
	return len(r.Incomplete) == 0
}

// ClinVarData summarizes the ClinVar lookup done by the service
type ClinVarData struct {
	Found                bool    `json:"found"`
	ClinicalSignificance *string `json:"clinical_significance"`

	UID           string   `json:"uid,omitempty"`
	Title         string   `json:"title,omitempty"`
	ReviewStatus  string   `json:"review_status,omitempty"`
	LastEvaluated string   `json:"last_evaluated,omitempty"`
	Accession     string   `json:"accession,omitempty"`
	Traits        []string `json:"traits,omitempty"`
}

// Significance returns the clinical significance or "" when absent
func (c ClinVarData) Significance() string {
	if c.ClinicalSignificance == nil {
		return ""
	}
	return *c.ClinicalSignificance
}
