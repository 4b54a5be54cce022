package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/genoassist-br/genoassist/internal/analysis"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	now func() time.Time
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{now: time.Now}
}

func (f *markdownFormatter) Format(state analysis.State) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# " + ReportTitle + "\n\n")
	if state.Variant != "" {
		fmt.Fprintf(&b, "Variante: `%s`\n\n", state.Variant)
	}
	fmt.Fprintf(&b, "Gerado em: %s\n\n", f.now().Format("2006-01-02 15:04:05"))

	switch state.Phase {
	case analysis.PhaseSuccess:
		if state.Report == nil {
			return nil, fmt.Errorf("success state without report")
		}
		f.writeCardsTable(&b, state.Report)
		f.writeClinVarDetails(&b, state.Report.ClinVar)
		f.writeIncomplete(&b, state.Report)
		f.writeReport(&b, state.Report)
		b.WriteString("---\n\n")
		b.WriteString("> **" + strings.Replace(Disclaimer, ":", ":**", 1) + "\n")
	case analysis.PhaseFailure:
		fmt.Fprintf(&b, "> **%s:** %s\n", ErrorTitle(state.Err), ErrorMessage(state.Err))
	default:
		fmt.Fprintf(&b, "_Estado: %s_\n", state.Phase)
	}

	return []byte(b.String()), nil
}

// writeCardsTable writes the status cards as a table
func (f *markdownFormatter) writeCardsTable(b *strings.Builder, r *analysis.Report) {
	b.WriteString("| " + ClinVarTitle + " | " + LiteratureTitle + " | " + ClassificationTitle + " |\n")
	b.WriteString("|---|---|---|\n")
	fmt.Fprintf(b, "| %s | %s | %s |\n\n",
		escapeCell(ClinVarStatus(r)), escapeCell(LiteratureLabel(r)), escapeCell(ClassificationLabel(r)))
}

// writeClinVarDetails lists the optional ClinVar fields
func (f *markdownFormatter) writeClinVarDetails(b *strings.Builder, c analysis.ClinVarData) {
	details := clinVarDetails(c)
	if len(details) == 0 {
		return
	}
	for _, d := range details {
		fmt.Fprintf(b, "- **%s:** %s\n", d.Label, d.Value)
	}
	b.WriteString("\n")
}

// writeIncomplete notes fields the service left out
func (f *markdownFormatter) writeIncomplete(b *strings.Builder, r *analysis.Report) {
	if r.IsComplete() {
		return
	}
	fmt.Fprintf(b, "> Resposta incompleta do serviço: %s\n\n", strings.Join(r.Incomplete, ", "))
}

// writeReport writes the service report verbatim
func (f *markdownFormatter) writeReport(b *strings.Builder, r *analysis.Report) {
	text := strings.TrimSpace(r.Markdown)
	if text == "" {
		return
	}
	b.WriteString(text + "\n\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
