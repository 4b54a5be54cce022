package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/genoassist-br/genoassist/internal/analysis"
	"github.com/genoassist-br/genoassist/internal/config"
)

func strPtr(s string) *string { return &s }

// fakeAnalyzer counts calls and returns a fixed outcome
type fakeAnalyzer struct {
	calls  atomic.Int32
	report *analysis.Report
	err    error
	last   atomic.Value
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error) {
	f.calls.Add(1)
	f.last.Store(req)
	return f.report, f.err
}

func newTestModel(a analysis.Analyzer) *Model {
	return NewModel(Options{Controller: analysis.NewController(a, nil)})
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func press(m *Model, key tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: key})
	return cmd
}

// drain runs cmd and feeds every analysis outcome back into the model
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drain(t, m, c)
		}
		return
	}
	if settled, ok := msg.(analysisSettledMsg); ok {
		m.Update(settled)
	}
}

func sampleReport() *analysis.Report {
	return &analysis.Report{
		Variant:     "BRCA1 c.68_69del",
		Markdown:    "## Interpretação\n\nVariante patogênica.",
		PubMedCount: 12,
		ClinVar: analysis.ClinVarData{
			Found:                true,
			ClinicalSignificance: strPtr("Pathogenic"),
		},
	}
}

func TestInitialView(t *testing.T) {
	m := newTestModel(&fakeAnalyzer{})

	if m.State().Phase != analysis.PhaseIdle {
		t.Errorf("expected idle, got %s", m.State().Phase)
	}
	if m.canSubmit() {
		t.Error("submit should be disabled with an empty variant")
	}

	view := m.View()
	for _, want := range []string{"GenoAssist BR", "Variante (HGVS ou Gene + Alteração)", SubmitLabel} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestEnterWithEmptyVariantDoesNothing(t *testing.T) {
	fake := &fakeAnalyzer{report: sampleReport()}
	m := newTestModel(fake)

	typeText(m, "   ")
	if cmd := press(m, tea.KeyEnter); cmd != nil {
		t.Error("expected no command for an empty variant")
	}
	if m.State().Phase != analysis.PhaseIdle {
		t.Errorf("expected idle, got %s", m.State().Phase)
	}
	if fake.calls.Load() != 0 {
		t.Errorf("expected no analyzer calls, got %d", fake.calls.Load())
	}
}

func TestSubmitSuccess(t *testing.T) {
	fake := &fakeAnalyzer{report: sampleReport()}
	m := newTestModel(fake)

	typeText(m, "BRCA1 c.68_69del")
	cmd := press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("expected a submission command")
	}

	if !m.State().Loading() {
		t.Fatalf("expected loading, got %s", m.State().Phase)
	}
	if !strings.Contains(m.View(), LoadingLabel) {
		t.Error("loading view should show the loading caption")
	}

	// A second Enter while loading is ignored
	if again := press(m, tea.KeyEnter); again != nil {
		t.Error("expected no command while loading")
	}

	drain(t, m, cmd)

	if m.State().Phase != analysis.PhaseSuccess {
		t.Fatalf("expected success, got %s", m.State().Phase)
	}
	if fake.calls.Load() != 1 {
		t.Errorf("expected exactly one analyzer call, got %d", fake.calls.Load())
	}

	view := m.View()
	for _, want := range []string{"Encontrado", "12 artigos recentes", "Pathogenic", "Variante patogênica", SubmitLabel} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, LoadingLabel) {
		t.Error("settled view should not show the loading caption")
	}
}

func TestSubmitSendsAPIKey(t *testing.T) {
	fake := &fakeAnalyzer{report: sampleReport()}
	m := NewModel(Options{
		Controller: analysis.NewController(fake, nil),
		Provider:   analysis.ProviderAuto,
	})

	typeText(m, "TP53 R175H")
	press(m, tea.KeyTab)
	typeText(m, "AIzaSyTest")

	if strings.Contains(m.View(), "AIzaSyTest") {
		t.Error("api key should be masked in the view")
	}

	drain(t, m, press(m, tea.KeyEnter))

	req, ok := fake.last.Load().(analysis.Request)
	if !ok {
		t.Fatal("analyzer was not called")
	}
	if req.Variant != "TP53 R175H" {
		t.Errorf("variant = %q", req.Variant)
	}
	if req.APIKeys[analysis.GoogleKeyName] != "AIzaSyTest" {
		t.Errorf("api_keys = %v", req.APIKeys)
	}
}

func TestSubmitServiceError(t *testing.T) {
	fake := &fakeAnalyzer{err: analysis.NewServiceError("Variante não reconhecida", 400)}
	m := newTestModel(fake)

	typeText(m, "XYZ")
	drain(t, m, press(m, tea.KeyEnter))

	if m.State().Phase != analysis.PhaseFailure {
		t.Fatalf("expected failure, got %s", m.State().Phase)
	}
	if !strings.Contains(m.View(), "Variante não reconhecida") {
		t.Error("view should show the service message")
	}
}

func TestSubmitAgainstUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := analysis.NewClient(analysis.ClientConfig{BaseURL: url}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	m := NewModel(Options{Client: client})

	typeText(m, "BRCA1 c.68_69del")
	drain(t, m, press(m, tea.KeyEnter))

	if m.State().Phase != analysis.PhaseFailure {
		t.Fatalf("expected failure, got %s", m.State().Phase)
	}
	if !strings.Contains(m.View(), analysis.FallbackMessage) {
		t.Error("view should show the fallback message")
	}
}

func TestResubmitClearsPreviousResult(t *testing.T) {
	fake := &fakeAnalyzer{err: analysis.NewServiceError("falhou", 500)}
	m := newTestModel(fake)

	typeText(m, "BRCA1")
	drain(t, m, press(m, tea.KeyEnter))
	if m.State().Phase != analysis.PhaseFailure {
		t.Fatalf("expected failure, got %s", m.State().Phase)
	}

	fake.err = nil
	fake.report = sampleReport()
	cmd := press(m, tea.KeyEnter)
	if !m.State().Loading() || m.State().Err != nil {
		t.Fatalf("resubmit should clear the failure and enter loading, got %+v", m.State())
	}
	if strings.Contains(m.View(), "falhou") {
		t.Error("previous error should not be shown while loading")
	}
	drain(t, m, cmd)

	if m.State().Phase != analysis.PhaseSuccess {
		t.Errorf("expected success, got %s", m.State().Phase)
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	m := newTestModel(&fakeAnalyzer{report: sampleReport()})

	typeText(m, "BRCA1")
	drain(t, m, press(m, tea.KeyEnter))

	press(m, tea.KeyCtrlR)
	if m.State().Phase != analysis.PhaseIdle {
		t.Errorf("expected idle after reset, got %s", m.State().Phase)
	}
	if strings.Contains(m.View(), "Encontrado") {
		t.Error("reset view should not show the cards")
	}
	if m.variant.Value() != "BRCA1" {
		t.Error("reset should keep the form values")
	}
}

func TestFocusCycles(t *testing.T) {
	m := newTestModel(&fakeAnalyzer{})

	if m.focus != focusVariant {
		t.Fatalf("expected variant focused initially")
	}
	press(m, tea.KeyTab)
	if m.focus != focusAPIKey || !m.apiKey.Focused() || m.variant.Focused() {
		t.Error("tab should move focus to the api key")
	}
	press(m, tea.KeyTab)
	if m.focus != focusSubmit {
		t.Error("tab should move focus to the submit button")
	}
	press(m, tea.KeyTab)
	if m.focus != focusVariant {
		t.Error("tab should wrap around to the variant")
	}
	press(m, tea.KeyShiftTab)
	if m.focus != focusSubmit {
		t.Error("shift+tab should move focus backwards")
	}

	// Typing with the button focused changes nothing
	typeText(m, "abc")
	if m.variant.Value() != "" || m.apiKey.Value() != "" {
		t.Error("typing on the button should not edit inputs")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(&fakeAnalyzer{})

	cmd := press(m, tea.KeyEsc)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should quit")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting should cancel in-flight work")
	}
}

func TestConfigReload(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"report":       "ok",
			"pubmed_count": 1,
			"clinvar_data": map[string]interface{}{"found": false},
		})
	}))
	defer srv.Close()

	client, err := analysis.NewClient(analysis.ClientConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	m := NewModel(Options{Client: client})

	cfg := config.DefaultConfig()
	cfg.Server.BaseURL = srv.URL
	cfg.Credentials.APIKey = "sk-reloaded"
	m.Update(ConfigReloadedMsg{Config: cfg})

	if m.apiKey.Value() != "sk-reloaded" {
		t.Errorf("empty api key should be pre-filled, got %q", m.apiKey.Value())
	}
	if !strings.HasPrefix(client.Endpoint(), srv.URL) {
		t.Errorf("client endpoint = %s, want %s prefix", client.Endpoint(), srv.URL)
	}

	typeText(m, "BRCA1")
	drain(t, m, press(m, tea.KeyEnter))
	if hits.Load() != 1 {
		t.Errorf("expected request to reloaded server, got %d hits", hits.Load())
	}

	// A typed key is never overwritten
	cfg2 := config.DefaultConfig()
	cfg2.Server.BaseURL = srv.URL
	cfg2.Credentials.APIKey = "sk-other"
	m.Update(ConfigReloadedMsg{Config: cfg2})
	if m.apiKey.Value() != "sk-reloaded" {
		t.Errorf("existing api key should be kept, got %q", m.apiKey.Value())
	}
}

func TestSetThemeByName(t *testing.T) {
	defer SetThemeByName("default")

	for _, name := range GetAvailableThemes() {
		if !SetThemeByName(name) {
			t.Errorf("theme %s should be available", name)
		}
		if GetTheme().Name != name {
			t.Errorf("active theme = %s, want %s", GetTheme().Name, name)
		}
	}
	if SetThemeByName("neon") {
		t.Error("unknown theme should be rejected")
	}
}

func TestSetColorEnabled(t *testing.T) {
	defer SetColorEnabled(true)

	SetColorEnabled(false)
	if !IsColorDisabled() {
		t.Fatal("colors should be disabled")
	}
	if got := GetStyles().Title.Render("Laudo"); got != "Laudo" {
		t.Errorf("styled text should carry no escape codes, got %q", got)
	}

	SetColorEnabled(false)
	SetColorEnabled(true)
	if detectedProfile != nil {
		t.Error("detected profile should be restored")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Pathogenic", 20); got != "Pathogenic" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("Conflicting interpretations", 8); got != "Conflic…" {
		t.Errorf("truncate long = %q", got)
	}
}
