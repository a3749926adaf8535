package api

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/pable/go-gps-metrics/internal/model"
)

// Reloader builds a fresh dataset from the watched files.
type Reloader func(ctx context.Context) (*model.Dataset, error)

// Watch reloads the dataset whenever one of paths changes, waiting for debounce
// of quiet before reloading. A failed reload is logged and the current dataset
// stays published. Watch blocks until ctx is cancelled.
func (s *Server) Watch(ctx context.Context, paths []string, debounce time.Duration, reload Reloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files instead of writing them, so watch the directories.
	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(ev.Name)
			if !watched[abs] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("source changed")
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("file watcher error")
		case <-timer.C:
			ds, err := reload(ctx)
			if err != nil {
				datasetReloads.WithLabelValues("error").Inc()
				log.Error().Err(err).Msg("reload failed, keeping current dataset")
				continue
			}
			datasetReloads.WithLabelValues("ok").Inc()
			s.Swap(ds)
		}
	}
}
