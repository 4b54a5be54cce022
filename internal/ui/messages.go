package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/genoassist-br/genoassist/internal/analysis"
	"github.com/genoassist-br/genoassist/internal/config"
)

// analysisSettledMsg carries the outcome of a submission
type analysisSettledMsg struct {
	state analysis.State
}

// ConfigReloadedMsg is sent when the configuration file changes on disk
type ConfigReloadedMsg struct {
	Config *config.Config
}

// runSubmission returns a command that performs the network call of sub
func runSubmission(ctx context.Context, sub *analysis.Submission) tea.Cmd {
	return func() tea.Msg {
		return analysisSettledMsg{state: sub.Run(ctx)}
	}
}
