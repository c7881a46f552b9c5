package menu

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/notify"
)

// Sessions presents menus on the display surface: Popup publishes an
// openContextMenu notification and waits until the display answers through
// Choose or Dismiss, or ctx expires.
type Sessions struct {
	pub notify.Publisher

	mu      sync.Mutex
	pending map[string]chan models.Action
}

// NewSessions creates a presenter publishing on pub.
func NewSessions(pub notify.Publisher) *Sessions {
	return &Sessions{
		pub:     pub,
		pending: make(map[string]chan models.Action),
	}
}

// Popup implements Presenter.
func (s *Sessions) Popup(ctx context.Context, m models.Menu) (models.Action, error) {
	m.ID = uuid.NewString()
	ch := make(chan models.Action, 1)

	s.mu.Lock()
	s.pending[m.ID] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, m.ID)
		s.mu.Unlock()
	}()

	s.pub.Publish(models.Notification{
		Kind:      models.NotifyOpenContextMenu,
		Filename:  m.Target.Filename,
		Directory: m.Target.Directory,
		Menu:      &m,
	})

	select {
	case action := <-ch:
		return action, nil
	case <-ctx.Done():
		return models.ActionNone, ctx.Err()
	}
}

// Choose answers the open menu id. Each menu accepts one answer.
func (s *Sessions) Choose(id string, action models.Action) error {
	s.mu.Lock()
	ch, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("menu: no open menu %q: %w", id, apperr.ErrNotFound)
	}
	ch <- action
	return nil
}

// Dismiss closes the open menu id without an action.
func (s *Sessions) Dismiss(id string) error {
	return s.Choose(id, models.ActionNone)
}

// Open returns the number of menus awaiting an answer.
func (s *Sessions) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
