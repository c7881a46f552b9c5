// Package boundary defines the request catalogue between the display and the
// privileged side, and its in-process privileged implementation.
package boundary

import (
	"context"

	"github.com/starford/jotter/internal/models"
)

// Bridge is everything the display may ask of the privileged side. The
// display only ever sends and receives filenames, directory paths and
// content strings.
type Bridge interface {
	// ShowDialog asks the user for a storage directory. A cancelled dialog
	// returns apperr.ErrCancelled.
	ShowDialog(ctx context.Context) (string, error)
	ListFiles(ctx context.Context, dir string) ([]string, error)
	ReadFile(ctx context.Context, name, dir string) (string, error)
	// RenameFile returns the resulting filename (newName plus extension).
	RenameFile(ctx context.Context, current, newName, dir string) (string, error)
	OverwriteFile(ctx context.Context, content, name, dir string) error
	// ShowContextMenu returns immediately; results arrive as notifications.
	ShowContextMenu(dir, filename string)
	ChooseMenuEntry(ctx context.Context, menuID string, action models.Action) error
	// Subscribe opens the push channel. It succeeds once per Bridge.
	Subscribe(ctx context.Context) (<-chan models.Notification, error)
}
