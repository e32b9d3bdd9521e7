package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration whenever the file at path is written and
// passes the result to onChange. Invalid reloads are logged and skipped. It
// blocks until ctx is done.
//
// The parent directory is watched rather than the file so editors that
// replace the file on save are still seen.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Config)) error {
	if path == "" {
		path = DefaultPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	logger.Info("watching config file for changes", slog.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				logger.Error("failed to reload config",
					slog.String("error", err.Error()),
					slog.String("path", abs))
				continue
			}
			logger.Info("config file changed, reloaded", slog.String("path", abs))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watch error", slog.String("error", err.Error()))
		}
	}
}
