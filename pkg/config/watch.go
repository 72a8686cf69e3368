package config

import (
	"context"
	"path/filepath"

	"github.com/chazu/caliper/pkg/logging"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it is written or recreated and passes each
// valid configuration to onChange. Invalid files are logged and skipped.
// It blocks until ctx is done.
//
// The parent directory is watched rather than the file, so editors that
// replace the file on save keep triggering reloads.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != abs {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cfg, err := Load(abs)
			if err != nil {
				logging.Warn("config reload failed", "path", abs, "err", err)
				continue
			}
			logging.Info("config reloaded", "path", abs)
			onChange(cfg)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Error("config watcher", "err", err)
		}
	}
}
