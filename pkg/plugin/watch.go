package plugin

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/marmos91/appfx/internal/logger"
)

const watchDebounce = 200 * time.Millisecond

// WatchDir loads plugin directories that appear under root after startup.
//
// Every new subdirectory is watched as well, so a plugin whose manifest is
// written after its directory was created is still picked up. Directories
// whose plugin id is already loaded are ignored. Load failures, including
// refused contributions, are logged and do not stop the watcher.
//
// WatchDir blocks until ctx is done.
func (d *Directory) WatchDir(ctx context.Context, root string, host Host) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	logger.Debug("Watching plugins directory", logger.KeyPath, root)

	timer := time.NewTimer(watchDebounce)
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
			if ev.Op.Has(fsnotify.Create) && filepath.Dir(ev.Name) == filepath.Clean(root) {
				// Best effort: the entry may be a file or already gone.
				_ = w.Add(ev.Name)
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(watchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Plugins watcher error", logger.Err(err))

		case <-timer.C:
			d.loadNewDirs(ctx, root, host)
		}
	}
}

func (d *Directory) loadNewDirs(ctx context.Context, root string, host Host) {
	dirs, err := pluginDirs(root)
	if err != nil {
		logger.Warn("Failed to scan plugins directory", logger.KeyPath, root, logger.Err(err))
		return
	}
	for _, dir := range dirs {
		p, err := OpenDir(dir)
		if err != nil {
			logger.Warn("Failed to open plugin", logger.KeyPath, dir, logger.Err(err))
			continue
		}
		if _, loaded := d.Get(p.ID()); loaded {
			continue
		}
		if err := d.LoadRuntimePlugin(ctx, p, host); err != nil {
			logger.Warn("Runtime plugin load reported errors", logger.Plugin(p.ID()), logger.Err(err))
		}
	}
}
