// Package picker provides directory pickers, the external collaborator that
// returns the user's chosen storage directory.
package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/starford/jotter/internal/apperr"
)

// ErrCancelled is returned when the user dismisses the picker.
var ErrCancelled = fmt.Errorf("picker: %w", apperr.ErrCancelled)

// Picker asks the user for a directory.
type Picker interface {
	Pick(ctx context.Context) (string, error)
}

// Func adapts a function to Picker.
type Func func(ctx context.Context) (string, error)

// Pick calls f.
func (f Func) Pick(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static always returns the same directory. An empty path means cancel.
type Static string

// Pick returns the configured path.
func (s Static) Pick(_ context.Context) (string, error) {
	if s == "" {
		return "", ErrCancelled
	}
	return filepath.Abs(string(s))
}

// Exec runs an external dialog command and reads the chosen path from its
// stdout. Exit status 1 or empty output counts as cancel, which matches
// zenity, kdialog and osascript-based pickers.
type Exec struct {
	Command []string
}

// Pick runs the command.
func (e Exec) Pick(ctx context.Context) (string, error) {
	if len(e.Command) == 0 {
		return "", fmt.Errorf("picker: no command configured: %w", apperr.ErrInvalid)
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Command[0], e.Command[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("picker: run %s: %w: %s", e.Command[0], err, strings.TrimSpace(stderr.String()))
	}
	path := strings.TrimSpace(stdout.String())
	if path == "" {
		return "", ErrCancelled
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("picker: %q is not an absolute path: %w", path, apperr.ErrInvalid)
	}
	return filepath.Clean(path), nil
}
