package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of fsnotify events editors emit for a
// single save.
const watchDebounce = 500 * time.Millisecond

// Watch reloads the config file whenever it changes and calls onReload with
// the new config. The parent directory is watched rather than the file
// itself so atomic rename saves keep working. Watch returns after spawning
// its goroutine; cancel ctx to stop it.
func Watch(ctx context.Context, path string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	base := filepath.Base(path)

	go func() {
		defer watcher.Close()

		var pending *time.Timer
		fire := make(chan struct{}, 1)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(watchDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})

			case <-fire:
				cfg, err := Load(path)
				if err != nil {
					slog.Warn("config reload failed, keeping previous settings",
						"path", path,
						"error", err,
					)
					continue
				}
				slog.Info("config reloaded", "path", path)
				onReload(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "error", err)
			}
		}
	}()

	return nil
}
