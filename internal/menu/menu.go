// Package menu implements the context-menu controller: it builds the menu for
// a right-click target, has it presented, and dispatches the chosen action.
package menu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/notify"
	"github.com/starford/jotter/internal/storage"
)

// Presenter shows a menu and reports the chosen action. Closing the menu
// without choosing yields models.ActionNone.
type Presenter interface {
	Popup(ctx context.Context, m models.Menu) (models.Action, error)
}

// TargetFor derives the menu target from a right-click. An empty directory
// means nothing has been opened yet.
func TargetFor(dir, filename string) models.Target {
	switch {
	case dir == "":
		return models.Target{Kind: models.TargetNone}
	case filename != "":
		return models.Target{Kind: models.TargetFile, Directory: dir, Filename: filename}
	default:
		return models.Target{Kind: models.TargetDirectory, Directory: dir}
	}
}

// Build returns the static menu template with entries enabled for target.
func Build(target models.Target) models.Menu {
	isFile := target.Kind == models.TargetFile
	hasDir := target.Kind != models.TargetNone
	return models.Menu{
		Target: target,
		Entries: []models.MenuEntry{
			{Action: models.ActionRename, Label: "Rename", Enabled: isFile},
			{Action: models.ActionDelete, Label: "Delete", Enabled: isFile},
			{Action: models.ActionNew, Label: "New...", Enabled: hasDir},
			{Separator: true},
			{Action: models.ActionCopyTitle, Label: "Copy Title", Enabled: isFile},
			{Action: models.ActionCopyLink, Label: "Copy Link", Enabled: isFile},
			{Separator: true},
			{Action: models.ActionReveal, Label: "Reveal in Finder", Enabled: isFile},
			{Action: models.ActionOpenExternal, Label: "Open with External Editor", Enabled: isFile},
		},
	}
}

// Controller runs one context-menu interaction per Show call.
type Controller struct {
	store     storage.Provider
	pub       notify.Publisher
	presenter Presenter
	ext       string
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the clock used to name new notes.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithExtension sets the extension of new notes.
func WithExtension(ext string) Option {
	return func(c *Controller) {
		c.ext = ext
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates a controller.
func NewController(store storage.Provider, pub notify.Publisher, presenter Presenter, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		pub:       pub,
		presenter: presenter,
		ext:       models.DefaultExtension,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Show builds the menu for the right-click target, presents it, announces
// closeContextMenu once the menu is gone and then dispatches the choice.
func (c *Controller) Show(ctx context.Context, dir, filename string) error {
	m := Build(TargetFor(dir, filename))

	action, err := c.presenter.Popup(ctx, m)
	c.pub.Publish(models.Notification{Kind: models.NotifyCloseContextMenu})
	if err != nil {
		return fmt.Errorf("menu: popup: %w", err)
	}
	return c.Dispatch(ctx, m, action)
}

// Dispatch runs action against the menu's target. Disabled or unknown
// actions are rejected; the declared-only actions do nothing.
func (c *Controller) Dispatch(ctx context.Context, m models.Menu, action models.Action) error {
	if action == models.ActionNone {
		return nil
	}
	entry, ok := m.Entry(action)
	if !ok || !entry.Enabled {
		return fmt.Errorf("menu: action %q not available for %s target: %w", action, m.Target.Kind, apperr.ErrInvalid)
	}

	target := m.Target
	switch action {
	case models.ActionRename:
		c.pub.Publish(models.Notification{Kind: models.NotifyRenameFile, Filename: target.Filename, Directory: target.Directory})

	case models.ActionDelete:
		if err := c.store.Remove(ctx, target.Filename, target.Directory); err != nil {
			return fmt.Errorf("menu: delete: %w", err)
		}
		c.pub.Publish(models.Notification{Kind: models.NotifyRemoveFile, Filename: target.Filename, Directory: target.Directory})

	case models.ActionNew:
		name := models.TimestampFilename(c.now(), c.ext)
		// Same-minute names collide; the second write simply empties the first.
		if err := c.store.Write(ctx, "", name, target.Directory); err != nil {
			return fmt.Errorf("menu: new: %w", err)
		}
		c.pub.Publish(models.Notification{Kind: models.NotifyCreateNewFile, Filename: name, Directory: target.Directory})

	default:
		c.logger.Debug("menu: action has no effect", slog.String("action", string(action)))
	}
	return nil
}
