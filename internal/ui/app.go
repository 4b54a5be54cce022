package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/genoassist-br/genoassist/internal/analysis"
	"github.com/genoassist-br/genoassist/internal/config"
	"github.com/genoassist-br/genoassist/internal/emoji"
	"github.com/genoassist-br/genoassist/internal/formatter"
	"github.com/genoassist-br/genoassist/internal/logger"
	"github.com/muesli/reflow/wordwrap"
)

// Button captions
const (
	SubmitLabel  = "Gerar Laudo Clínico"
	LoadingLabel = "Analisando bases de dados..."
)

const (
	defaultWidth   = 80
	defaultHeight  = 30
	maxFormWidth   = 96
	minReportLines = 5
)

// focusTarget is the form control that receives keys
type focusTarget int

const (
	focusVariant focusTarget = iota
	focusAPIKey
	focusSubmit
	focusCount
)

// Options configures a Model
type Options struct {
	// Controller owns the analysis state. Built from Client when nil.
	Controller *analysis.Controller

	// Client is reconfigured when the configuration file changes
	Client *analysis.Client

	Provider analysis.Provider
	APIKey   string
	Log      *logger.Logger
}

// Model is the analysis form
type Model struct {
	controller *analysis.Controller
	client     *analysis.Client
	provider   analysis.Provider
	log        *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	variant textinput.Model
	apiKey  textinput.Model
	spinner spinner.Model
	report  viewport.Model

	focus  focusTarget
	state  analysis.State
	notice string

	width    int
	height   int
	quitting bool
}

// NewModel creates the form with the variant field focused
func NewModel(opts Options) *Model {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	controller := opts.Controller
	if controller == nil {
		controller = analysis.NewController(opts.Client, log)
	}

	variant := textinput.New()
	variant.Placeholder = "Ex: BRCA1 c.68_69del ou TP53 R175H"
	variant.Prompt = emoji.GetEmoji("search") + " "
	variant.CharLimit = 200
	variant.Focus()

	apiKey := textinput.New()
	apiKey.Placeholder = "sk-..."
	apiKey.Prompt = emoji.GetEmoji("key") + " "
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '•'
	apiKey.CharLimit = 256
	apiKey.SetValue(opts.APIKey)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		controller: controller,
		client:     opts.Client,
		provider:   opts.Provider,
		log:        log.WithComponent("ui"),
		ctx:        ctx,
		cancel:     cancel,
		variant:    variant,
		apiKey:     apiKey,
		spinner:    spin,
		report:     viewport.New(defaultWidth-4, minReportLines),
		state:      controller.State(),
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// State returns the state currently displayed
func (m *Model) State() analysis.State {
	return m.state
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		if !m.state.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case analysisSettledMsg:
		m.state = msg.state
		m.refreshReport()
		return m, nil

	case ConfigReloadedMsg:
		m.applyConfig(msg.Config)
		return m, nil
	}

	return m.updateFocused(msg)
}

// handleKeyPress handles form navigation and actions
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.cancel()
		return m, tea.Quit

	case "tab", "down":
		return m, m.setFocus((m.focus + 1) % focusCount)

	case "shift+tab", "up":
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)

	case "enter":
		return m, m.submit()

	case "ctrl+r":
		m.reset()
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.report, cmd = m.report.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

// updateFocused forwards a message to the focused text input
func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusVariant:
		m.variant, cmd = m.variant.Update(msg)
	case focusAPIKey:
		m.apiKey, cmd = m.apiKey.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(target focusTarget) tea.Cmd {
	m.focus = target
	m.variant.Blur()
	m.apiKey.Blur()

	switch target {
	case focusVariant:
		return m.variant.Focus()
	case focusAPIKey:
		return m.apiKey.Focus()
	}
	return nil
}

// canSubmit mirrors the enabled state of the submit button
func (m *Model) canSubmit() bool {
	return m.controller.CanSubmit(m.variant.Value())
}

// submit starts an analysis. Rejected submissions change nothing.
func (m *Model) submit() tea.Cmd {
	req := analysis.NewRequest(m.variant.Value(), m.apiKey.Value(), m.provider)

	sub, err := m.controller.Begin(req)
	if err != nil {
		m.log.Debug("submit ignored: %v", err)
		return nil
	}

	m.state = m.controller.State()
	m.notice = ""
	m.refreshReport()

	return tea.Batch(m.spinner.Tick, runSubmission(m.ctx, sub))
}

// reset returns a settled form to Idle
func (m *Model) reset() {
	if err := m.controller.Reset(); err != nil {
		if !errors.Is(err, analysis.ErrNotSettled) {
			m.log.Warn("reset failed: %v", err)
		}
		return
	}
	m.state = m.controller.State()
	m.refreshReport()
}

// applyConfig adopts a reloaded configuration
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	if m.client != nil {
		if err := m.client.Reconfigure(cfg.ClientConfig()); err != nil {
			m.log.Warn("keeping previous endpoint: %v", err)
			m.notice = fmt.Sprintf("%s Configuração inválida: %v", emoji.GetEmoji("warning"), err)
			return
		}
	}

	m.provider = cfg.Provider()
	if m.apiKey.Value() == "" && cfg.Credentials.APIKey != "" {
		m.apiKey.SetValue(cfg.Credentials.APIKey)
	}
	m.notice = emoji.GetEmoji("reload") + " Configuração recarregada"
	m.log.Info("configuration applied")
}

func (m *Model) resize(width, height int) {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	m.width = width
	m.height = height

	inner := m.formWidth() - 6
	m.variant.Width = inner
	m.apiKey.Width = inner

	m.report.Width = m.formWidth() - 4
	m.report.Height = max(minReportLines, height-26)
	m.refreshReport()
}

func (m *Model) formWidth() int {
	return min(m.width, maxFormWidth)
}

// refreshReport rebuilds the viewport content from the current state
func (m *Model) refreshReport() {
	if m.state.Phase != analysis.PhaseSuccess || m.state.Report == nil {
		m.report.SetContent("")
		m.report.GotoTop()
		return
	}

	r := m.state.Report
	width := max(20, m.report.Width-2)

	var b strings.Builder
	text := strings.TrimSpace(r.Markdown)
	if text == "" {
		text = "(laudo vazio)"
	}
	b.WriteString(wordwrap.String(text, width))
	b.WriteString("\n\n")
	b.WriteString(wordwrap.String(formatter.Disclaimer, width))

	m.report.SetContent(b.String())
	m.report.GotoTop()
}

// View renders the form and, when settled, its outcome
func (m *Model) View() string {
	if m.quitting {
		return "Até logo! " + emoji.GetEmoji("door") + "\n"
	}

	styles := GetStyles()
	sections := []string{
		m.renderHeader(styles),
		m.renderForm(styles),
	}

	switch m.state.Phase {
	case analysis.PhaseFailure:
		sections = append(sections, m.renderError(styles))
	case analysis.PhaseSuccess:
		sections = append(sections, m.renderResults(styles))
	}

	if m.notice != "" {
		sections = append(sections, styles.Muted.Render(m.notice))
	}
	sections = append(sections, m.renderHelp(styles))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader(styles *Styles) string {
	title := styles.Title.Render(emoji.GetEmoji("dna") + " GenoAssist BR")
	subtitle := styles.Subtitle.Render("Assistente de Genética Clínica")
	return title + "  " + subtitle + "\n"
}

func (m *Model) renderForm(styles *Styles) string {
	inputStyle := func(target focusTarget) lipgloss.Style {
		if m.focus == target {
			return styles.InputFocused.Width(m.formWidth() - 2)
		}
		return styles.Input.Width(m.formWidth() - 2)
	}

	variantLabel := styles.Label.Render("Variante (HGVS ou Gene + Alteração)")
	keyLabel := styles.Label.Render("API Key (OpenAI ou Gemini)") + " " +
		styles.Muted.Render("(Opcional se configurado no servidor)")

	return lipgloss.JoinVertical(lipgloss.Left,
		variantLabel,
		inputStyle(focusVariant).Render(m.variant.View()),
		keyLabel,
		inputStyle(focusAPIKey).Render(m.apiKey.View()),
		"",
		m.renderButton(styles),
		"",
	)
}

func (m *Model) renderButton(styles *Styles) string {
	width := m.formWidth() - 2

	if m.state.Loading() {
		return styles.ButtonDisabled.Width(width).Align(lipgloss.Center).
			Render(m.spinner.View() + " " + LoadingLabel)
	}

	label := emoji.GetEmoji("report") + " " + SubmitLabel
	switch {
	case !m.canSubmit():
		return styles.ButtonDisabled.Width(width).Align(lipgloss.Center).Render(label)
	case m.focus == focusSubmit:
		return styles.ButtonFocused.Width(width).Align(lipgloss.Center).Render(label)
	default:
		return styles.Button.Width(width).Align(lipgloss.Center).Render(label)
	}
}

func (m *Model) renderError(styles *Styles) string {
	msg := formatter.ErrorMessage(m.state.Err)
	return styles.ErrorBanner.Width(m.formWidth() - 2).
		Render(emoji.GetEmoji("error") + " " + msg)
}

func (m *Model) renderResults(styles *Styles) string {
	r := m.state.Report
	cardWidth := (m.formWidth() - 6) / 3

	clinvarValue := styles.Warning.Render(emoji.GetEmoji("warning") + " " + formatter.ClinVarStatus(r))
	if r.ClinVar.Found {
		clinvarValue = styles.Success.Render(emoji.GetEmoji("success") + " " + formatter.ClinVarStatus(r))
	}

	card := func(title, value string) string {
		return styles.Card.Width(cardWidth).Render(
			styles.CardTitle.Render(strings.ToUpper(title)) + "\n" + value)
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card(formatter.ClinVarTitle, clinvarValue),
		card(formatter.LiteratureTitle, styles.Label.Render(formatter.LiteratureLabel(r))),
		card(formatter.ClassificationTitle, styles.Label.Render(
			truncate(formatter.ClassificationLabel(r), cardWidth-4))),
	)

	parts := []string{cards}
	if !r.IsComplete() {
		parts = append(parts, styles.Warning.Render(fmt.Sprintf("%s Resposta incompleta do serviço: %s",
			emoji.GetEmoji("warning"), strings.Join(r.Incomplete, ", "))))
	}

	heading := styles.Title.Render(emoji.GetEmoji("report") + " " + formatter.ReportTitle)
	body := styles.Report.Width(m.formWidth() - 2).Render(m.report.View())
	parts = append(parts, heading, body)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderHelp(styles *Styles) string {
	help := "tab: próximo campo • enter: gerar laudo • esc: sair"
	if m.state.Settled() {
		help = "tab: próximo campo • enter: gerar laudo • ctrl+r: limpar • pgup/pgdn: rolar • esc: sair"
	}
	return styles.Muted.Render(help)
}

// truncate shortens s to width runes with an ellipsis
func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 1 || len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

// Run starts the program. Configurations received on reloads are applied
// while it runs.
func Run(ctx context.Context, m *Model, reloads <-chan *config.Config) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if reloads != nil {
		go func() {
			for {
				select {
				case cfg, ok := <-reloads:
					if !ok {
						return
					}
					p.Send(ConfigReloadedMsg{Config: cfg})
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	_, err := p.Run()
	m.cancel()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
