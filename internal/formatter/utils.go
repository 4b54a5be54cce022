package formatter

import (
	"fmt"
	"strings"

	"github.com/genoassist-br/genoassist/internal/analysis"
)

// Card and section titles
const (
	ClinVarTitle        = "ClinVar"
	LiteratureTitle     = "Literatura"
	ClassificationTitle = "Classificação"
	ReportTitle         = "Laudo Genético Preliminar"
)

// Card values
const (
	ClinVarFound    = "Encontrado"
	ClinVarNotFound = "Não listado"
	PendingLabel    = "Em análise"
)

// Disclaimer is shown under every report
const Disclaimer = "Aviso Legal: Este relatório é gerado por Inteligência Artificial (GenoAssist BR) " +
	"e serve apenas como suporte à decisão. A validação final deve ser realizada por um geneticista " +
	"certificado. Não utilize para diagnóstico direto sem revisão humana."

// ClinVarStatus is the ClinVar card value
func ClinVarStatus(r *analysis.Report) string {
	if r != nil && r.ClinVar.Found {
		return ClinVarFound
	}
	return ClinVarNotFound
}

// LiteratureLabel is the literature card value
func LiteratureLabel(r *analysis.Report) string {
	count := 0
	if r != nil {
		count = r.PubMedCount
	}
	return fmt.Sprintf("%d artigos recentes", count)
}

// ClassificationLabel is the clinical significance, or a neutral label when
// the service did not provide one.
func ClassificationLabel(r *analysis.Report) string {
	if r == nil {
		return PendingLabel
	}
	if s := strings.TrimSpace(r.ClinVar.Significance()); s != "" {
		return s
	}
	return PendingLabel
}

// ErrorTitle names the failure class for headings
func ErrorTitle(err *analysis.AnalysisError) string {
	if err != nil && err.IsService() {
		return "Erro do serviço"
	}
	return "Erro de conexão"
}

// ErrorMessage is what the user sees for a failure
func ErrorMessage(err *analysis.AnalysisError) string {
	if err == nil || err.Message == "" {
		return analysis.FallbackMessage
	}
	return err.Message
}
