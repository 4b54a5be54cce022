package analysis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func stringPtr(s string) *string { return &s }

func sampleReport() *Report {
	return &Report{
		Markdown:    "# Laudo\n...",
		PubMedCount: 12,
		ClinVar:     ClinVarData{Found: true, ClinicalSignificance: stringPtr("Pathogenic")},
	}
}

// countingAnalyzer records calls and returns a canned result
type countingAnalyzer struct {
	calls  atomic.Int32
	report *Report
	err    error
}

func (a *countingAnalyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	a.calls.Add(1)
	return a.report, a.err
}

func TestControllerStartsIdle(t *testing.T) {
	c := NewController(&countingAnalyzer{}, nil)
	state := c.State()
	if state.Phase != PhaseIdle {
		t.Errorf("Expected idle, got %s", state.Phase)
	}
	if state.Report != nil || state.Err != nil || state.Loading() {
		t.Errorf("Expected empty idle state, got %+v", state)
	}
}

func TestControllerEmptyVariantIsSkipped(t *testing.T) {
	analyzer := &countingAnalyzer{report: sampleReport()}
	c := NewController(analyzer, nil)

	for _, variant := range []string{"", "   "} {
		state, err := c.Submit(context.Background(), Request{Variant: variant})
		if !errors.Is(err, ErrEmptyVariant) {
			t.Errorf("Submit(%q) error = %v, want ErrEmptyVariant", variant, err)
		}
		if state.Phase != PhaseIdle {
			t.Errorf("Submit(%q) changed state to %s", variant, state.Phase)
		}
	}
	if n := analyzer.calls.Load(); n != 0 {
		t.Errorf("Expected no network call, got %d", n)
	}
	if c.CanSubmit("") {
		t.Error("CanSubmit must be false for an empty variant")
	}
}

func TestControllerEmptyVariantKeepsSettledState(t *testing.T) {
	analyzer := &countingAnalyzer{report: sampleReport()}
	c := NewController(analyzer, nil)

	if _, err := c.Submit(context.Background(), Request{Variant: "BRCA1 c.68_69del"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := c.Submit(context.Background(), Request{Variant: ""}); !errors.Is(err, ErrEmptyVariant) {
		t.Fatalf("Expected ErrEmptyVariant, got %v", err)
	}
	if c.State().Phase != PhaseSuccess {
		t.Errorf("Skipped submission must not clear the previous result, got %s", c.State().Phase)
	}
}

func TestControllerLoadingBeforeSettlement(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	analyzer := AnalyzerFunc(func(ctx context.Context, req Request) (*Report, error) {
		close(entered)
		<-release
		return sampleReport(), nil
	})
	c := NewController(analyzer, nil)

	sub, err := c.Begin(Request{Variant: "BRCA1 c.68_69del"})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if state := c.State(); state.Phase != PhaseLoading || state.Variant != "BRCA1 c.68_69del" {
		t.Fatalf("Expected loading right after Begin, got %+v", state)
	}

	done := make(chan State, 1)
	go func() { done <- sub.Run(context.Background()) }()

	<-entered
	if !c.State().Loading() {
		t.Error("Expected loading while the request is in flight")
	}
	if c.CanSubmit("TP53 R175H") {
		t.Error("CanSubmit must be false while loading")
	}

	close(release)
	state := <-done
	if state.Phase != PhaseSuccess || state.Loading() {
		t.Errorf("Expected success after settlement, got %s", state.Phase)
	}
}

func TestControllerRejectsOverlappingSubmit(t *testing.T) {
	release := make(chan struct{})
	analyzer := &countingAnalyzer{report: sampleReport()}
	blocking := AnalyzerFunc(func(ctx context.Context, req Request) (*Report, error) {
		<-release
		return analyzer.Analyze(ctx, req)
	})
	c := NewController(blocking, nil)

	sub, err := c.Begin(Request{Variant: "BRCA1 c.68_69del"})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	if _, err := c.Begin(Request{Variant: "TP53 R175H"}); !errors.Is(err, ErrRequestInFlight) {
		t.Errorf("Expected ErrRequestInFlight, got %v", err)
	}
	if c.State().Variant != "BRCA1 c.68_69del" {
		t.Errorf("Rejected submission must not replace the in-flight variant, got %q", c.State().Variant)
	}
	if err := c.Reset(); !errors.Is(err, ErrNotSettled) {
		t.Errorf("Expected ErrNotSettled from Reset while loading, got %v", err)
	}

	close(release)
	state := sub.Run(context.Background())
	if n := analyzer.calls.Load(); n != 1 {
		t.Errorf("Expected exactly one analysis call, got %d", n)
	}
	if state.Phase != PhaseSuccess || state.Variant != "BRCA1 c.68_69del" {
		t.Errorf("Expected the in-flight submission to settle, got %s %q", state.Phase, state.Variant)
	}
	if got := c.State(); got.Phase != PhaseSuccess || got.Report == nil {
		t.Errorf("Controller state = %+v, want settled success", got)
	}
}

func TestControllerServiceError(t *testing.T) {
	c := NewController(&countingAnalyzer{err: NewServiceError("X", http.StatusOK)}, nil)

	state, err := c.Submit(context.Background(), Request{Variant: "BRCA1 c.68_69del"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if state.Phase != PhaseFailure {
		t.Fatalf("Expected failure, got %s", state.Phase)
	}
	if state.Err.Message != "X" || !state.Err.IsService() {
		t.Errorf("Expected service error X, got %+v", state.Err)
	}
	if state.Loading() || state.Report != nil {
		t.Errorf("Failure must not be loading or carry a report: %+v", state)
	}
}

func TestControllerTransportError(t *testing.T) {
	c := NewController(&countingAnalyzer{err: errors.New("dial tcp: connection refused")}, nil)

	state, _ := c.Submit(context.Background(), Request{Variant: "BRCA1 c.68_69del"})
	if state.Phase != PhaseFailure {
		t.Fatalf("Expected failure, got %s", state.Phase)
	}
	if !state.Err.IsTransport() {
		t.Errorf("Expected transport error, got %s", state.Err.Kind)
	}
	if state.Err.Message != FallbackMessage {
		t.Errorf("Expected fallback message, got %q", state.Err.Message)
	}
	if state.Loading() {
		t.Error("Loading must be cleared after a transport failure")
	}
}

func TestControllerNilReportIsTransportFailure(t *testing.T) {
	c := NewController(&countingAnalyzer{}, nil)
	state, _ := c.Submit(context.Background(), Request{Variant: "X"})
	if state.Phase != PhaseFailure || !state.Err.IsTransport() {
		t.Errorf("Expected transport failure for a nil report, got %+v", state)
	}
}

func TestControllerSuccessRoundTrip(t *testing.T) {
	report := sampleReport()
	c := NewController(&countingAnalyzer{report: report}, nil)

	state, err := c.Submit(context.Background(), Request{Variant: "BRCA1 c.68_69del"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if state.Phase != PhaseSuccess || state.Err != nil {
		t.Fatalf("Expected success, got %+v", state)
	}
	if state.Report.Markdown != report.Markdown ||
		state.Report.PubMedCount != report.PubMedCount ||
		state.Report.ClinVar.Found != report.ClinVar.Found {
		t.Errorf("Report was transformed: %+v", state.Report)
	}
}

func TestControllerNewSubmitClearsPreviousResult(t *testing.T) {
	release := make(chan struct{})
	var fail atomic.Bool
	fail.Store(true)
	analyzer := AnalyzerFunc(func(ctx context.Context, req Request) (*Report, error) {
		if fail.Load() {
			return nil, NewServiceError("first", http.StatusBadRequest)
		}
		<-release
		return sampleReport(), nil
	})
	c := NewController(analyzer, nil)

	if state, _ := c.Submit(context.Background(), Request{Variant: "A"}); state.Phase != PhaseFailure {
		t.Fatalf("Expected failure, got %s", state.Phase)
	}

	fail.Store(false)
	sub, err := c.Begin(Request{Variant: "B"})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	state := c.State()
	if state.Phase != PhaseLoading || state.Err != nil || state.Report != nil {
		t.Errorf("Expected previous failure cleared, got %+v", state)
	}
	close(release)
	sub.Run(context.Background())
}

func TestControllerPanicStillSettles(t *testing.T) {
	c := NewController(AnalyzerFunc(func(ctx context.Context, req Request) (*Report, error) {
		panic("decoder exploded")
	}), nil)

	sub, err := c.Begin(Request{Variant: "X"})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Expected panic to propagate")
			}
		}()
		sub.Run(context.Background())
	}()

	state := c.State()
	if state.Loading() {
		t.Fatal("Loading must be cleared even when the analyzer panics")
	}
	if state.Phase != PhaseFailure || !state.Err.IsTransport() {
		t.Errorf("Expected transport failure, got %+v", state)
	}
}

func TestSubmissionRunIsSingleShot(t *testing.T) {
	analyzer := &countingAnalyzer{report: sampleReport()}
	c := NewController(analyzer, nil)

	sub, err := c.Begin(Request{Variant: "X"})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	first := sub.Run(context.Background())
	second := sub.Run(context.Background())
	if first.Phase != second.Phase || analyzer.calls.Load() != 1 {
		t.Errorf("Expected one call and a stable result, got %d calls", analyzer.calls.Load())
	}
}

func TestControllerReset(t *testing.T) {
	c := NewController(&countingAnalyzer{report: sampleReport()}, nil)
	if _, err := c.Submit(context.Background(), Request{Variant: "X"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if c.State().Phase != PhaseIdle {
		t.Errorf("Expected idle after reset, got %s", c.State().Phase)
	}
}

func TestControllerWithClient_EndToEnd(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantPhase Phase
		wantKind  ErrorKind
		wantMsg   string
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"report":"# Laudo\n...","pubmed_count":12,"clinvar_data":{"found":true,"clinical_significance":"Pathogenic"}}`)
			},
			wantPhase: PhaseSuccess,
		},
		{
			name: "service error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"error":"X"}`)
			},
			wantPhase: PhaseFailure,
			wantKind:  KindService,
			wantMsg:   "X",
		},
		{
			name: "non json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "Internal Server Error")
			},
			wantPhase: PhaseFailure,
			wantKind:  KindTransport,
			wantMsg:   FallbackMessage,
		},
		{
			name: "transport timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
			},
			wantPhase: PhaseFailure,
			wantKind:  KindTransport,
			wantMsg:   FallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, err := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 100 * time.Millisecond}, nil)
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			c := NewController(client, nil)

			state, err := c.Submit(context.Background(), Request{Variant: "BRCA1 c.68_69del"})
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if state.Loading() {
				t.Fatal("Loading must be false after settlement")
			}
			if state.Phase != tt.wantPhase {
				t.Fatalf("Phase = %s, want %s", state.Phase, tt.wantPhase)
			}
			if tt.wantPhase == PhaseFailure {
				if state.Err.Kind != tt.wantKind || state.Err.Message != tt.wantMsg {
					t.Errorf("Err = %+v, want kind %s message %q", state.Err, tt.wantKind, tt.wantMsg)
				}
			}
		})
	}
}
