package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/picker"
)

type pickResult struct {
	dir string
	err error
}

// pickRequestMsg asks the model to show the directory picker overlay.
type pickRequestMsg struct {
	start string
	reply chan<- pickResult
}

// pickAbortMsg withdraws a pending request whose caller gave up.
type pickAbortMsg struct{}

// DirPicker is a picker.Picker that shows a directory browser inside the
// running program.
type DirPicker struct {
	start string

	mu   sync.Mutex
	send func(tea.Msg)
}

var _ picker.Picker = (*DirPicker)(nil)

// NewDirPicker creates a picker that starts browsing at start.
func NewDirPicker(start string) *DirPicker {
	return &DirPicker{start: start}
}

func (d *DirPicker) attach(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	d.mu.Unlock()
}

// Pick blocks until the user chooses a directory or cancels.
func (d *DirPicker) Pick(ctx context.Context) (string, error) {
	d.mu.Lock()
	send := d.send
	d.mu.Unlock()
	if send == nil {
		return "", fmt.Errorf("tui: picker not attached to a program: %w", apperr.ErrInvalid)
	}

	reply := make(chan pickResult, 1)
	send(pickRequestMsg{start: d.start, reply: reply})

	select {
	case r := <-reply:
		if r.err != nil {
			return "", r.err
		}
		return filepath.Abs(r.dir)
	case <-ctx.Done():
		send(pickAbortMsg{})
		return "", ctx.Err()
	}
}

// pickCancelled is the reply for a dismissed overlay.
var pickCancelled = pickResult{err: picker.ErrCancelled}
