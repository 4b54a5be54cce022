package formatter

import (
	"encoding/json"

	"github.com/genoassist-br/genoassist/internal/analysis"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(state analysis.State) ([]byte, error) {
	output := &StateOutput{
		Phase:   state.Phase.String(),
		Variant: state.Variant,
	}

	if r := state.Report; r != nil {
		clinvar := r.ClinVar
		output.RequestID = r.RequestID
		output.Report = &r.Markdown
		output.PubMedCount = &r.PubMedCount
		output.ClinVar = &clinvar
		output.Incomplete = r.Incomplete
		output.Cards = &CardsOutput{
			ClinVar:        ClinVarStatus(r),
			Literature:     LiteratureLabel(r),
			Classification: ClassificationLabel(r),
		}
	}

	if e := state.Err; e != nil {
		output.RequestID = e.RequestID
		output.Error = &ErrorOutput{
			Kind:       string(e.Kind),
			Message:    ErrorMessage(e),
			StatusCode: e.StatusCode,
		}
	}

	return json.MarshalIndent(output, "", "  ")
}

// StateOutput is the JSON shape of a settled analysis
type StateOutput struct {
	Phase       string                `json:"phase"`
	Variant     string                `json:"variant,omitempty"`
	RequestID   string                `json:"request_id,omitempty"`
	Report      *string               `json:"report,omitempty"`
	PubMedCount *int                  `json:"pubmed_count,omitempty"`
	ClinVar     *analysis.ClinVarData `json:"clinvar_data,omitempty"`
	Cards       *CardsOutput          `json:"cards,omitempty"`
	Incomplete  []string              `json:"incomplete,omitempty"`
	Error       *ErrorOutput          `json:"error,omitempty"`
}

// CardsOutput holds the rendered card values
type CardsOutput struct {
	ClinVar        string `json:"clinvar"`
	Literature     string `json:"literature"`
	Classification string `json:"classification"`
}

// ErrorOutput describes a failure
type ErrorOutput struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}
