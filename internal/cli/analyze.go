package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/genoassist-br/genoassist/internal/analysis"
	"github.com/genoassist-br/genoassist/internal/config"
	"github.com/genoassist-br/genoassist/internal/emoji"
	"github.com/genoassist-br/genoassist/internal/formatter"
	"github.com/spf13/cobra"
)

// ErrAnalysisFailed is returned when a submission settles in Failure
var ErrAnalysisFailed = errors.New("analysis failed")

// analyzeOptions holds the analyze command flags
type analyzeOptions struct {
	apiKey     string
	provider   string
	server     string
	timeout    time.Duration
	outputFile string
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <variant...>",
		Short: "Analyze a genetic variant",
		Long: `Submit one variant to the analysis service and print the preliminary report.

The variant may be an HGVS expression or a gene followed by the alteration.
Multiple arguments are joined with spaces, so quoting is optional.

Examples:
  genoassist analyze "BRCA1 c.68_69del"
  genoassist analyze TP53 R175H --output markdown --output-file laudo.md
  genoassist analyze BRCA2 c.5946del --api-key sk-... --server https://genoassist.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "LLM API key forwarded to the service (default: credentials.api_key)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "API key provider (auto, openai, google)")
	cmd.Flags().StringVar(&opts.server, "server", "", "analysis service base URL (default: server.base_url)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "transport timeout (default: server.timeout)")
	cmd.Flags().StringVar(&opts.outputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := newLogger("analyze")

	// Use config values if flags weren't explicitly set
	clientCfg := cfg.ClientConfig()
	if cmd.Flags().Changed("server") {
		clientCfg.BaseURL = opts.server
	}
	if cmd.Flags().Changed("timeout") {
		clientCfg.Timeout = opts.timeout
	}
	apiKey := cfg.Credentials.APIKey
	if cmd.Flags().Changed("api-key") {
		apiKey = opts.apiKey
	}
	provider := cfg.Provider()
	if cmd.Flags().Changed("provider") {
		if provider, err = analysis.ParseProvider(opts.provider); err != nil {
			return err
		}
	}

	format := getOutputFormat(cfg)
	out, closeOut, err := openOutput(cmd, opts.outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	f, err := formatter.New(format, outputColor(cfg, opts.outputFile, format), cfg.Output.Width)
	if err != nil {
		return err
	}

	client, err := analysis.NewClient(clientCfg, log)
	if err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}
	controller := analysis.NewController(client, log)

	req := analysis.NewRequest(strings.Join(args, " "), apiKey, provider)
	sub, err := controller.Begin(req)
	if err != nil {
		if errors.Is(err, analysis.ErrEmptyVariant) {
			return fmt.Errorf("nothing to analyze: %w (usage: genoassist analyze <variant>)", err)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopSpinner := startSpinner(cfg, format, sub.Request().Variant)
	state := sub.Run(ctx)
	stopSpinner()

	rendered, err := f.Format(state)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if _, err := out.Write(rendered); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if opts.outputFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Output saved to: %s\n", emoji.GetEmoji("success"), opts.outputFile)
	}

	if state.Phase == analysis.PhaseFailure {
		return fmt.Errorf("%w: %s", ErrAnalysisFailed, formatter.ErrorMessage(state.Err))
	}
	return nil
}

// openOutput returns the destination for rendered output
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// #nosec G304 - path is provided by the user on the command line
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() {
		if err := file.Close(); err != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", err)
		}
	}, nil
}

// outputColor enables ANSI colors only for text written to a terminal
func outputColor(cfg *config.Config, outputFile, format string) bool {
	if outputFile != "" || (format != "" && format != "text") {
		return false
	}
	return colorEnabled(cfg, os.Stdout)
}

// startSpinner shows a loading indicator on stderr while the request runs
func startSpinner(cfg *config.Config, format, variant string) func() {
	if !cfg.Output.ShowSpinner || format != "text" || isVerbose() || !isTerminal(os.Stderr) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" Analisando bases de dados... (%s)", variant)
	s.Start()
	return s.Stop
}
