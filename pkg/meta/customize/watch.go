package customize

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/marmos91/appfx/internal/logger"
)

// debounce coalesces bursts of editor writes into one reload.
const debounce = 200 * time.Millisecond

// Watch reloads overlays whenever an overlay file in the directory changes.
// It blocks until ctx is done. Reload failures are logged and the previous
// overlays stay active.
func (m *Manager) Watch(ctx context.Context) error {
	dir := m.Dir()
	if dir == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Debug("Watching customization overlays", logger.KeyPath, dir)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isOverlayFile(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Customization watcher error", logger.Err(err))

		case <-timer.C:
			if err := m.Load(); err != nil {
				logger.Warn("Failed to reload customization overlays", logger.KeyPath, dir, logger.Err(err))
				continue
			}
			logger.Info("Customization overlays reloaded", logger.KeyPath, dir, logger.KeyCount, m.Len())
		}
	}
}
