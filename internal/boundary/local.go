package boundary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/menu"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/notify"
	"github.com/starford/jotter/internal/picker"
	"github.com/starford/jotter/internal/storage"
)

// DefaultMenuTimeout bounds how long a presented menu waits for an answer.
const DefaultMenuTimeout = 5 * time.Minute

// DirWatcher follows the directory most recently listed by the display.
type DirWatcher interface {
	Follow(dir string)
}

// Local is the privileged side running in the same process as the display.
type Local struct {
	store    *lockedStore
	broker   *notify.Broker
	picker   picker.Picker
	watcher  DirWatcher
	sessions *menu.Sessions
	menus    *menu.Controller

	menuOpts    []menu.Option
	menuTimeout time.Duration
	logger      *slog.Logger

	subscribed atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

var _ Bridge = (*Local)(nil)

// Option configures a Local.
type Option func(*Local)

// WithPicker sets the directory picker behind ShowDialog.
func WithPicker(p picker.Picker) Option {
	return func(l *Local) {
		l.picker = p
	}
}

// WithWatcher sets the watcher re-targeted by ListFiles.
func WithWatcher(w DirWatcher) Option {
	return func(l *Local) {
		l.watcher = w
	}
}

// WithMenuTimeout bounds a context menu interaction.
func WithMenuTimeout(d time.Duration) Option {
	return func(l *Local) {
		if d > 0 {
			l.menuTimeout = d
		}
	}
}

// WithMenuOptions passes options to the context menu controller.
func WithMenuOptions(opts ...menu.Option) Option {
	return func(l *Local) {
		l.menuOpts = append(l.menuOpts, opts...)
	}
}

// WithExtension sets the note extension, used to lock rename targets.
func WithExtension(ext string) Option {
	return func(l *Local) {
		l.store.ext = ext
		l.menuOpts = append(l.menuOpts, menu.WithExtension(ext))
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Local) {
		l.logger = logger
		l.store.logger = logger
	}
}

// NewLocal wires store and broker into a Bridge. Close releases it.
func NewLocal(store storage.Provider, broker *notify.Broker, opts ...Option) *Local {
	l := &Local{
		store: &lockedStore{
			next:   store,
			locks:  newKeyLock(),
			ext:    models.DefaultExtension,
			logger: slog.Default(),
		},
		broker:      broker,
		menuTimeout: DefaultMenuTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.sessions = menu.NewSessions(broker)
	menuOpts := append([]menu.Option{menu.WithLogger(l.logger)}, l.menuOpts...)
	l.menus = menu.NewController(l.store, broker, l.sessions, menuOpts...)
	l.ctx, l.cancel = context.WithCancel(context.Background())
	return l
}

// Store returns the sequenced store used by every Bridge request.
func (l *Local) Store() storage.Provider {
	return l.store
}

// ShowDialog implements Bridge.
func (l *Local) ShowDialog(ctx context.Context) (string, error) {
	if l.picker == nil {
		return "", fmt.Errorf("boundary: no directory picker configured: %w", apperr.ErrInvalid)
	}
	dir, err := l.picker.Pick(ctx)
	if err != nil {
		if !errors.Is(err, apperr.ErrCancelled) {
			l.logger.Warn("boundary: directory picker failed", slog.String("error", err.Error()))
		}
		return "", err
	}
	return dir, nil
}

// ListFiles implements Bridge.
func (l *Local) ListFiles(ctx context.Context, dir string) ([]string, error) {
	names, err := l.store.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	if l.watcher != nil {
		l.watcher.Follow(dir)
	}
	return names, nil
}

// ReadFile implements Bridge.
func (l *Local) ReadFile(ctx context.Context, name, dir string) (string, error) {
	return l.store.Read(ctx, name, dir)
}

// RenameFile implements Bridge.
func (l *Local) RenameFile(ctx context.Context, current, newName, dir string) (string, error) {
	return l.store.Rename(ctx, current, newName, dir)
}

// OverwriteFile implements Bridge.
func (l *Local) OverwriteFile(ctx context.Context, content, name, dir string) error {
	return l.store.Write(ctx, content, name, dir)
}

// ShowContextMenu implements Bridge. The interaction runs in the background
// until the menu is answered, dismissed, times out or Local is closed.
func (l *Local) ShowContextMenu(dir, filename string) {
	if l.ctx.Err() != nil {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(l.ctx, l.menuTimeout)
		defer cancel()
		if err := l.menus.Show(ctx, dir, filename); err != nil {
			l.logger.Warn("boundary: context menu failed",
				slog.String("dir", dir),
				slog.String("file", filename),
				slog.String("error", err.Error()))
		}
	}()
}

// ChooseMenuEntry implements Bridge. models.ActionNone dismisses the menu.
func (l *Local) ChooseMenuEntry(_ context.Context, menuID string, action models.Action) error {
	return l.sessions.Choose(menuID, action)
}

// Subscribe implements Bridge. The channel closes when ctx ends or the
// broker shuts down.
func (l *Local) Subscribe(ctx context.Context) (<-chan models.Notification, error) {
	if !l.subscribed.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("boundary: subscribe: %w", apperr.ErrAlreadySubscribed)
	}
	ch := l.broker.Subscribe()
	go func() {
		<-ctx.Done()
		l.broker.Unsubscribe(ch)
	}()
	return ch, nil
}

// Close abandons open menus and waits for their goroutines.
func (l *Local) Close() {
	l.cancel()
	l.wg.Wait()
}
