package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DebounceDelay collapses the burst of events editors emit on save
const DebounceDelay = 100 * time.Millisecond

// Watch reloads path whenever it changes and passes each valid config to
// onChange. Invalid configs are logged and skipped. The parent directory is
// watched so that atomic renames are seen. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, log *zap.Logger, onChange func(*Config)) error {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	debounce := time.NewTimer(0)
	<-debounce.C
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(DebounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Config watcher error", zap.Error(err))

		case <-debounce.C:
			cfg, err := Load(abs)
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				log.Warn("Ignoring invalid config", zap.String("path", abs), zap.Error(err))
				continue
			}
			log.Info("Config reloaded", zap.String("path", abs))
			onChange(cfg)
		}
	}
}
