package formatter

import (
	"fmt"
	"strings"

	"github.com/genoassist-br/genoassist/internal/analysis"
	"github.com/genoassist-br/genoassist/internal/emoji"
	"github.com/muesli/reflow/wordwrap"
	"github.com/yildizm/go-termfmt"
)

const defaultWidth = 100

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts  *termfmt.TerminalOptions
	width int
}

// NewTerminal creates a new terminal formatter. width <= 0 uses the default
// wrap width.
func NewTerminal(color bool, width int) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	if width <= 0 {
		width = defaultWidth
	}
	return &terminalFormatter{opts: opts, width: width}
}

func (f *terminalFormatter) Format(state analysis.State) ([]byte, error) {
	var b strings.Builder

	switch state.Phase {
	case analysis.PhaseSuccess:
		if state.Report == nil {
			return nil, fmt.Errorf("success state without report")
		}
		f.writeHeader(&b, state.Report.Variant)
		f.writeCards(&b, state.Report)
		f.writeIncomplete(&b, state.Report)
		f.writeReport(&b, state.Report)
		f.writeDisclaimer(&b)
	case analysis.PhaseFailure:
		f.writeFailure(&b, state)
	case analysis.PhaseLoading:
		fmt.Fprintf(&b, "%s Analisando bases de dados... (%s)\n", emoji.GetEmoji("search"), state.Variant)
	default:
		fmt.Fprintf(&b, "%s Nenhuma análise realizada.\n", emoji.GetEmoji("info"))
	}

	return []byte(b.String()), nil
}

// writeHeader writes a box header with the analyzed variant
func (f *terminalFormatter) writeHeader(b *strings.Builder, variant string) {
	header := "GenoAssist BR"
	if variant != "" {
		header += " · " + variant
	}
	headerLen := len([]rune(header))

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeCards writes the three status cards as a tree
func (f *terminalFormatter) writeCards(b *strings.Builder, r *analysis.Report) {
	b.WriteString(emoji.GetEmoji("dna") + " Resumo\n")

	clinvar := termfmt.TreeItem{
		Label:    emoji.GetEmoji("clinvar") + " " + ClinVarTitle,
		Value:    ClinVarStatus(r),
		Children: clinVarDetails(r.ClinVar),
	}

	items := []termfmt.TreeItem{
		clinvar,
		{Label: emoji.GetEmoji("literature") + " " + LiteratureTitle, Value: LiteratureLabel(r)},
		{Label: emoji.GetEmoji("scale") + " " + ClassificationTitle, Value: ClassificationLabel(r), Last: true},
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// clinVarDetails lists the optional ClinVar fields the service returned
func clinVarDetails(c analysis.ClinVarData) []termfmt.TreeItem {
	if !c.Found {
		return nil
	}

	var details []termfmt.TreeItem
	if c.Title != "" {
		details = append(details, termfmt.TreeItem{Label: "Registro", Value: c.Title})
	}
	if c.Accession != "" {
		details = append(details, termfmt.TreeItem{Label: "Acesso", Value: c.Accession})
	}
	if c.ReviewStatus != "" {
		details = append(details, termfmt.TreeItem{Label: "Revisão", Value: c.ReviewStatus})
	}
	if c.LastEvaluated != "" {
		details = append(details, termfmt.TreeItem{Label: "Última avaliação", Value: c.LastEvaluated})
	}
	if len(c.Traits) > 0 {
		details = append(details, termfmt.TreeItem{Label: "Condições", Value: strings.Join(c.Traits, "; ")})
	}
	if len(details) > 0 {
		details[len(details)-1].Last = true
	}
	return details
}

// writeIncomplete warns about fields the service left out
func (f *terminalFormatter) writeIncomplete(b *strings.Builder, r *analysis.Report) {
	if r.IsComplete() {
		return
	}
	fmt.Fprintf(b, "%s Resposta incompleta do serviço: %s\n\n",
		termfmt.GetEmoji("warning", f.opts), strings.Join(r.Incomplete, ", "))
}

// writeReport writes the markdown report wrapped to the configured width
func (f *terminalFormatter) writeReport(b *strings.Builder, r *analysis.Report) {
	b.WriteString(emoji.GetEmoji("report") + " " + ReportTitle + "\n")
	b.WriteString(strings.Repeat("─", min(f.width, len([]rune(ReportTitle))+3)) + "\n")

	text := strings.TrimSpace(r.Markdown)
	if text == "" {
		b.WriteString("(laudo vazio)\n\n")
		return
	}
	b.WriteString(wordwrap.String(text, f.width) + "\n\n")
}

// writeDisclaimer writes the legal notice
func (f *terminalFormatter) writeDisclaimer(b *strings.Builder) {
	b.WriteString(wordwrap.String(emoji.GetEmoji("warning")+" "+Disclaimer, f.width) + "\n")
}

// writeFailure writes the error banner, labelled by failure class
func (f *terminalFormatter) writeFailure(b *strings.Builder, state analysis.State) {
	symbol := termfmt.GetEmoji("error", f.opts)
	fmt.Fprintf(b, "%s %s: %s\n", symbol, ErrorTitle(state.Err), ErrorMessage(state.Err))

	if state.Err == nil {
		return
	}
	if state.Err.StatusCode > 0 {
		fmt.Fprintf(b, "   status HTTP %d\n", state.Err.StatusCode)
	}
	if state.Err.RequestID != "" {
		fmt.Fprintf(b, "   request id %s\n", state.Err.RequestID)
	}
}
