// Package display holds the state machine of a display surface. It owns the
// selection, rename, filter, sidebar and edit buffer state, and reaches the
// privileged side only through a boundary.Bridge.
package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/boundary"
	"github.com/starford/jotter/internal/clientstate"
	"github.com/starford/jotter/internal/models"
)

// Sidebar defaults.
const (
	DefaultSidebarWidth    = 30
	DefaultMinSidebarWidth = 12
	DefaultResizeBand      = 5
)

// Session drives one display. All Bridge requests it issues run on a single
// worker in the order the operations were called.
type Session struct {
	bridge boundary.Bridge
	store  clientstate.Store
	ext    string
	minW   int
	band   int
	logger *slog.Logger

	mu sync.Mutex
	st AppState
	// reverted maps the optimistic name of a failed rename back to the file
	// that still exists, for writes queued before the failure was known.
	reverted map[string]string

	q       *queue
	changes chan struct{}
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

// WithExtension sets the note extension appended on rename.
func WithExtension(ext string) Option {
	return func(s *Session) {
		s.ext = ext
	}
}

// WithSidebar sets the initial width, the minimum width and the width of the
// drag band at the sidebar's right edge.
func WithSidebar(width, minWidth, band int) Option {
	return func(s *Session) {
		if width > 0 {
			s.st.SidebarWidth = width
		}
		if minWidth > 0 {
			s.minW = minWidth
		}
		if band > 0 {
			s.band = band
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession creates a session. store keeps the chosen directory across runs.
func NewSession(bridge boundary.Bridge, store clientstate.Store, opts ...Option) *Session {
	s := &Session{
		bridge:   bridge,
		store:    store,
		ext:      models.DefaultExtension,
		minW:     DefaultMinSidebarWidth,
		band:     DefaultResizeBand,
		logger:   slog.Default(),
		st:       AppState{SidebarWidth: DefaultSidebarWidth},
		q:        newQueue(),
		changes:  make(chan struct{}, 1),
		reverted: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to notifications, starts the worker and restores the
// persisted directory. It must be called once; ctx bounds the session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("display: session already started: %w", apperr.ErrInvalid)
	}
	s.started = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	notes, err := s.bridge.Subscribe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("display: subscribe: %w", err)
	}
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.q.run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.listen(ctx, notes)
	}()

	s.q.push(func(ctx context.Context) {
		dir, err := clientstate.Directory(ctx, s.store)
		if err != nil {
			s.fail("restore directory", err)
			return
		}
		if dir == "" {
			return
		}
		s.load(ctx, dir, true)
	})
	return nil
}

// Close stops the session and waits for its goroutines.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Changes signals after every state change. Signals coalesce.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.clone()
}

// Flush waits until every operation called so far has finished.
func (s *Session) Flush(ctx context.Context) error {
	done := make(chan struct{})
	s.q.push(func(context.Context) { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// update runs fn under the state lock and signals a change.
func (s *Session) update(fn func(st *AppState)) {
	s.mu.Lock()
	fn(&s.st)
	s.mu.Unlock()
	s.notify()
}

// fail records err for the status line. Failures are never shown as dialogs.
func (s *Session) fail(op string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Warn("display: operation failed", slog.String("op", op), slog.String("error", err.Error()))
	s.update(func(st *AppState) {
		st.LastError = fmt.Sprintf("%s: %s", op, err)
	})
}

// load lists dir and rebuilds the snapshot. A fresh load resets the
// selection; a reload keeps whatever still exists.
func (s *Session) load(ctx context.Context, dir string, fresh bool) {
	names, err := s.bridge.ListFiles(ctx, dir)
	s.update(func(st *AppState) {
		if !fresh && (st.Directory != dir || st.Renaming != "") {
			return
		}
		st.Directory = dir
		if fresh {
			st.Focused = ""
			st.Renaming = ""
			st.clearActive()
		}
		if fresh {
			st.setItems(names)
		} else if err == nil {
			st.mergeItems(names)
		}
		if st.Active != "" && !st.Has(st.Active) {
			st.clearActive()
		}
		if st.Focused != "" && !st.Has(st.Focused) {
			st.Focused = ""
		}
		if err == nil {
			st.LastError = ""
		}
	})
	if err != nil {
		s.fail("list files", err)
	}
}

func fileKey(dir, name string) string {
	return dir + "\x00" + name
}

// OpenDirectory asks the user for a directory, persists it and lists it.
// A cancelled dialog changes nothing.
func (s *Session) OpenDirectory() {
	s.q.push(func(ctx context.Context) {
		dir, err := s.bridge.ShowDialog(ctx)
		if err != nil {
			if !errors.Is(err, apperr.ErrCancelled) {
				s.fail("choose directory", err)
			}
			return
		}
		if dir == "" {
			return
		}
		if err := clientstate.SetDirectory(ctx, s.store, dir); err != nil {
			s.fail("save directory", err)
		}
		s.load(ctx, dir, true)
	})
}

// Reload lists the current directory again, keeping the selection.
func (s *Session) Reload() {
	s.mu.Lock()
	dir := s.st.Directory
	s.mu.Unlock()
	if dir == "" {
		return
	}
	s.q.push(func(ctx context.Context) {
		s.load(ctx, dir, false)
	})
}

// Select makes filename active and loads it into the buffer. An item that
// is being renamed cannot be selected. A failed read leaves nothing active
// and the editor blank.
func (s *Session) Select(filename string) {
	s.mu.Lock()
	if filename == "" || s.st.Renaming == filename || !s.st.Has(filename) {
		s.mu.Unlock()
		return
	}
	dir := s.st.Directory
	s.st.Active = filename
	s.st.Loading = true
	s.mu.Unlock()
	s.notify()

	s.q.push(func(ctx context.Context) {
		content, err := s.bridge.ReadFile(ctx, filename, dir)
		s.update(func(st *AppState) {
			if st.Active != filename || st.Directory != dir {
				return
			}
			if err != nil {
				st.clearActive()
				return
			}
			st.Loading = false
			st.replaceBuffer(content)
		})
		if err != nil {
			s.fail("read file", err)
		}
	})
}

// BeginRename puts filename into inline rename. It is ignored while another
// rename is in progress.
func (s *Session) BeginRename(filename string) {
	s.update(func(st *AppState) {
		if st.Renaming != "" || !st.Has(filename) {
			return
		}
		st.Renaming = filename
		st.RenameDraft = models.DisplayName(filename, s.ext)
	})
}

// CommitRename finishes the rename in progress with text as the new display
// name. Without a rename in progress it does nothing, so a commit by Enter
// followed by one from focus loss sends a single request.
func (s *Session) CommitRename(text string) {
	s.mu.Lock()
	from := s.st.Renaming
	if from == "" {
		s.mu.Unlock()
		return
	}
	dir := s.st.Directory
	to := text + s.ext
	s.st.Renaming = ""
	s.st.RenameDraft = ""
	s.st.rename(from, to)
	s.mu.Unlock()
	s.notify()

	s.q.push(func(ctx context.Context) {
		renamed, err := s.bridge.RenameFile(ctx, from, text, dir)
		if err != nil {
			s.update(func(st *AppState) {
				s.reverted[fileKey(dir, to)] = from
				if st.Directory == dir {
					st.rename(to, from)
				}
			})
			s.fail("rename file", err)
			return
		}
		s.mu.Lock()
		delete(s.reverted, fileKey(dir, renamed))
		s.mu.Unlock()
		if renamed != to {
			s.update(func(st *AppState) {
				if st.Directory == dir {
					st.rename(to, renamed)
				}
			})
		}
	})
}

// CancelRename leaves the rename without renaming anything.
func (s *Session) CancelRename() {
	s.update(func(st *AppState) {
		st.Renaming = ""
		st.RenameDraft = ""
	})
}

// Edit replaces the buffer and writes it through to the active file.
func (s *Session) Edit(content string) {
	s.mu.Lock()
	name, dir := s.st.Active, s.st.Directory
	if name == "" || s.st.Loading {
		s.mu.Unlock()
		return
	}
	s.st.Buffer = content
	s.mu.Unlock()
	s.notify()

	s.q.push(func(ctx context.Context) {
		s.mu.Lock()
		if from, ok := s.reverted[fileKey(dir, name)]; ok {
			name = from
		}
		s.mu.Unlock()
		if err := s.bridge.OverwriteFile(ctx, content, name, dir); err != nil {
			s.fail("write file", err)
		}
	})
}

// SetFilter hides every item whose filename does not contain q, ignoring case.
func (s *Session) SetFilter(q string) {
	s.update(func(st *AppState) {
		st.applyFilter(q)
	})
}

// ContextMenu focuses filename (empty for the sidebar background) and asks
// for the context menu. The menu arrives as a notification.
func (s *Session) ContextMenu(filename string) {
	s.mu.Lock()
	if filename != "" && !s.st.Has(filename) {
		filename = ""
	}
	dir := s.st.Directory
	s.st.Focused = filename
	s.mu.Unlock()
	s.notify()

	s.q.push(func(context.Context) {
		s.bridge.ShowContextMenu(dir, filename)
	})
}

// ChooseMenu answers the open menu with action.
func (s *Session) ChooseMenu(action models.Action) {
	s.mu.Lock()
	m := s.st.Menu
	s.st.Menu = nil
	s.mu.Unlock()
	if m == nil {
		return
	}
	s.notify()

	s.q.push(func(ctx context.Context) {
		if err := s.bridge.ChooseMenuEntry(ctx, m.ID, action); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			s.fail("menu", err)
		}
	})
}

// DismissMenu closes the open menu without an action.
func (s *Session) DismissMenu() {
	s.ChooseMenu(models.ActionNone)
}

// PointerDown starts a sidebar drag when the primary button goes down within
// the resize band at the sidebar's right edge.
func (s *Session) PointerDown(x int, primary bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.st.SidebarWidth
	if !primary || x < w-s.band || x > w {
		return false
	}
	s.st.Dragging = true
	return true
}

// PointerMove sets the sidebar width to x while dragging.
func (s *Session) PointerMove(x int) {
	s.mu.Lock()
	if !s.st.Dragging {
		s.mu.Unlock()
		return
	}
	s.st.SidebarWidth = max(x, s.minW)
	s.mu.Unlock()
	s.notify()
}

// PointerUp ends a drag.
func (s *Session) PointerUp() {
	s.update(func(st *AppState) {
		st.Dragging = false
	})
}

func (s *Session) listen(ctx context.Context, notes <-chan models.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notes:
			if !ok {
				return
			}
			s.handle(n)
		}
	}
}

func (s *Session) handle(n models.Notification) {
	s.mu.Lock()
	foreign := n.Directory != "" && n.Directory != s.st.Directory
	s.mu.Unlock()

	switch n.Kind {
	case models.NotifyCloseContextMenu:
		s.update(func(st *AppState) {
			st.Focused = ""
			st.Menu = nil
		})

	case models.NotifyOpenContextMenu:
		if n.Menu == nil || foreign {
			return
		}
		s.update(func(st *AppState) {
			st.Menu = n.Menu
		})

	case models.NotifyCreateNewFile:
		if foreign {
			return
		}
		s.update(func(st *AppState) {
			st.prepend(n.Filename)
		})

	case models.NotifyRemoveFile:
		if foreign {
			return
		}
		s.update(func(st *AppState) {
			st.remove(n.Filename)
			if st.Active == n.Filename {
				st.clearActive()
			}
			if st.Focused == n.Filename {
				st.Focused = ""
			}
			if st.Renaming == n.Filename {
				st.Renaming = ""
				st.RenameDraft = ""
			}
		})

	case models.NotifyRenameFile:
		if foreign {
			return
		}
		s.BeginRename(n.Filename)

	case models.NotifyFilesChanged:
		if foreign {
			return
		}
		s.Reload()

	default:
		s.logger.Debug("display: unknown notification", slog.String("kind", string(n.Kind)))
	}
}

// Extension returns the note extension, for deriving display names.
func (s *Session) Extension() string {
	return s.ext
}
