package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/genoassist-br/genoassist/internal/analysis"
	"github.com/genoassist-br/genoassist/internal/config"
	"github.com/genoassist-br/genoassist/internal/logger"
	"github.com/genoassist-br/genoassist/internal/ui"
	"github.com/spf13/cobra"
)

func newUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive analysis form",
		Long: `Open the interactive form: type a variant, optionally paste an API key,
and press Enter to generate the clinical report.

Keys:
  tab / shift+tab   move between fields
  enter             generate the report
  ctrl+r            clear the result
  pgup / pgdown     scroll the report
  esc / ctrl+c      quit

Every configuration file in the search path (or the --config file) is
watched while the form is open. Edits to the server section or the API
key take effect without restarting.`,
		Args: cobra.NoArgs,
		RunE: runUI,
	}
}

func runUI(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unknown command %q (did you mean: genoassist analyze %s?)", args[0], args[0])
	}

	cfg, err := GetGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := newLogger("ui")
	closeLog, err := redirectLogs(log, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()

	if !ui.SetThemeByName(cfg.Output.Theme) {
		log.Warn("unknown theme %q, using default (available: %s)", cfg.Output.Theme, strings.Join(ui.GetAvailableThemes(), ", "))
	}
	ui.SetColorEnabled(colorEnabled(cfg, os.Stdout))

	client, err := analysis.NewClient(cfg.ClientConfig(), log)
	if err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model := ui.NewModel(ui.Options{
		Client:   client,
		Provider: cfg.Provider(),
		APIKey:   cfg.Credentials.APIKey,
		Log:      log,
	})

	reloads := watchConfig(ctx, log)
	return ui.Run(ctx, model, reloads)
}

// redirectLogs keeps log lines off the alternate screen
func redirectLogs(log *logger.Logger, path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}

	// #nosec G304 - path comes from the user's configuration
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(file)
	return func() { _ = file.Close() }, nil
}

// watchConfig streams reloaded configurations until ctx is done. It returns
// nil when there is no configuration file to watch.
func watchConfig(ctx context.Context, log *logger.Logger) <-chan *config.Config {
	watcher, err := config.NewWatcher(config.NewLoader(), cfgFile, log)
	if err != nil {
		if !errors.Is(err, config.ErrNoConfigFile) {
			log.Warn("configuration hot reload disabled: %v", err)
		}
		return nil
	}

	reloads := make(chan *config.Config, 1)
	go func() {
		defer func() { _ = watcher.Close() }()
		err := watcher.Run(ctx, func(cfg *config.Config) {
			select {
			case reloads <- cfg:
			case <-ctx.Done():
			}
		})
		if err != nil {
			log.Warn("configuration watcher stopped: %v", err)
		}
	}()
	return reloads
}
