package room

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kazz187/housekeeping/pkg/panicerr"
)

// Handler receives the full feed every time it changes.
type Handler func(ctx context.Context, rooms []Descriptor) error

// Watcher reloads a room feed file and hands it to a Handler.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
}

func NewWatcher(path string, handler Handler) *Watcher {
	return &Watcher{
		path:     path,
		handler:  handler,
		debounce: 500 * time.Millisecond,
	}
}

// Run processes the feed once, then on every change until ctx is cancelled.
// The parent directory is watched so editors that replace the file are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.reload(ctx)

	target := filepath.Clean(w.path)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "room feed watcher error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	panicerr.Run(ctx, "room-feed", func(ctx context.Context) error {
		rooms, err := LoadFeed(w.path)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "room feed loaded", "path", w.path, "rooms", len(rooms))
		return w.handler(ctx, rooms)
	})
}
