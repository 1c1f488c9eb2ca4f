package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/five82/kimaideck/internal/config"
)

const reloadDebounce = 250 * time.Millisecond

// configWatcher reloads the configuration file when it changes on disk.
// The parent directory is watched since editors often replace the file.
type configWatcher struct {
	path     string
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	onReload func(config.Config)
}

func newConfigWatcher(path string, logger *slog.Logger, onReload func(config.Config)) (*configWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &configWatcher{path: path, logger: logger, watcher: w, onReload: onReload}, nil
}

// Run delivers valid reloads until ctx ends. Invalid files are logged and
// skipped; the previous configuration stays in effect.
func (w *configWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
			} else {
				debounce.Reset(reloadDebounce)
			}
			fire = debounce.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				w.logger.Error("config watcher error", "error", err)
			}
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *configWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *configWatcher) reload() {
	cfg, err := config.Load(w.path)
	if err != nil {
		w.logger.Warn("ignoring invalid configuration change", "path", w.path, "error", err)
		return
	}
	w.logger.Info("configuration changed", "path", w.path)
	w.onReload(cfg)
}
