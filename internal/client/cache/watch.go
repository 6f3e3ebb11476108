package cache

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/inkwell/internal/models"
)

const settle = 100 * time.Millisecond

// Watch calls fn with the new snapshot each time the file at path changes
// content, until ctx is cancelled. The parent directory is watched because
// Save replaces the file by rename.
func Watch(ctx context.Context, path string, logger *slog.Logger, fn func([]models.Post)) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}

	var last [sha256.Size]byte
	if data, err := os.ReadFile(path); err == nil {
		last = sha256.Sum256(data)
	}

	logger.Info("cache watcher: started", slog.String("path", path))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("cache watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settle)
				fire = timer.C
			} else {
				timer.Reset(settle)
			}

		case <-fire:
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Debug("cache watcher: read failed", slog.String("error", err.Error()))
				continue
			}
			sum := sha256.Sum256(data)
			if sum == last {
				continue
			}
			last = sum
			posts, err := decode(data)
			if err != nil {
				logger.Warn("cache watcher: bad snapshot", slog.String("error", err.Error()))
				continue
			}
			fn(posts)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("cache watcher: error", slog.String("error", err.Error()))
		}
	}
}
