package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/genoassist-br/genoassist/internal/logger"
)

// ErrNoConfigFile is returned by NewWatcher when there is no file to watch
var ErrNoConfigFile = errors.New("no configuration file found")

const defaultReloadDelay = 150 * time.Millisecond

// Watcher reloads the configuration when any file it is merged from changes
// on disk
type Watcher struct {
	loader     *Loader
	customPath string
	paths      []string
	watched    map[string]bool
	delay      time.Duration
	log        *logger.Logger
	fs         *fsnotify.Watcher
}

// NewWatcher watches every file LoadConfig(customPath) merges, including
// search paths that do not exist yet but whose directory does. Parent
// directories are watched so that editors replacing a file are still seen.
func NewWatcher(loader *Loader, customPath string, log *logger.Logger) (*Watcher, error) {
	if loader == nil {
		loader = NewLoader()
	}
	if log == nil {
		log = logger.Discard()
	}

	if _, ok := loader.ActivePath(customPath); !ok {
		return nil, ErrNoConfigFile
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		loader:     loader,
		customPath: customPath,
		watched:    make(map[string]bool),
		delay:      defaultReloadDelay,
		log:        log.WithComponent("config-watcher"),
		fs:         fsw,
	}

	dirs := make(map[string]bool)
	for _, path := range loader.CandidatePaths(customPath) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		dir := filepath.Dir(absPath)
		if !dirs[dir] {
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				continue
			}
			if err := fsw.Add(dir); err != nil {
				_ = fsw.Close()
				return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
		w.paths = append(w.paths, absPath)
		w.watched[absPath] = true
	}

	return w, nil
}

// Paths returns the absolute paths of the watched files, highest priority
// first
func (w *Watcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// Run blocks until ctx is done, calling onChange with every configuration
// that loads and validates after a change. Invalid edits are logged and
// the previous configuration stays in effect.
func (w *Watcher) Run(ctx context.Context, onChange func(*Config)) error {
	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.log.Debug("watching %s", strings.Join(w.paths, ", "))
	var changed string

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			// Editors emit bursts of events; reload once they settle
			changed = filepath.Clean(event.Name)
			timer.Reset(w.delay)

		case <-timer.C:
			cfg, err := w.loader.LoadConfig(w.customPath)
			if err != nil {
				w.log.WarnWithFields("ignoring invalid configuration", []logger.Field{logger.Error(err)})
				continue
			}
			w.log.Info("configuration reloaded after change to %s", changed)
			onChange(cfg)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Warn("watcher error: %v", err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !w.watched[filepath.Clean(event.Name)] {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
