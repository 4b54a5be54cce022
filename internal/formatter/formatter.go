package formatter

import (
	"fmt"

	"github.com/genoassist-br/genoassist/internal/analysis"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(state analysis.State) ([]byte, error)
}

// New returns the formatter for an output format name
func New(format string, color bool, width int) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color, width), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use text, json or markdown)", format)
	}
}
