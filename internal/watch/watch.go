// Package watch follows the display's storage directory and reports external
// changes to its file list.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/notify"
)

// DefaultDebounce collapses bursts of events into one notification.
const DefaultDebounce = 200 * time.Millisecond

// Watcher publishes filesChanged for the directory it follows. Only one
// directory is followed at a time, non-recursively.
type Watcher struct {
	pub      notify.Publisher
	debounce time.Duration
	logger   *slog.Logger
	followCh chan string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a notification is sent.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New creates a watcher publishing on pub. Call Run to start it.
func New(pub notify.Publisher, opts ...Option) *Watcher {
	w := &Watcher{
		pub:      pub,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		followCh: make(chan string, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Follow re-targets the watcher. Only the latest pending target is kept.
func (w *Watcher) Follow(dir string) {
	for {
		select {
		case w.followCh <- dir:
			return
		default:
			select {
			case <-w.followCh:
			default:
			}
		}
	}
}

// Run processes file system events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: new watcher: %w", err)
	}
	defer fw.Close()

	var dir string
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	w.logger.Info("watcher: started")
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case next := <-w.followCh:
			if next == dir {
				continue
			}
			if dir != "" {
				_ = fw.Remove(dir)
			}
			if timer != nil {
				timer.Stop()
			}
			if err := fw.Add(next); err != nil {
				w.logger.Warn("watcher: follow failed",
					slog.String("dir", next),
					slog.String("error", err.Error()))
				dir = ""
				continue
			}
			dir = next
			w.logger.Debug("watcher: following", slog.String("dir", dir))

		case <-timerCh:
			if dir != "" {
				w.pub.Publish(models.Notification{Kind: models.NotifyFilesChanged, Directory: dir})
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if dir == "" || filepath.Dir(ev.Name) != dir {
				continue
			}
			// Content writes do not change the list.
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("watcher: list changed",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
