package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/jotter/internal/display"
)

// Run shows the notes screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, session *display.Session, dp *DirPicker) error {
	p := tea.NewProgram(New(session, dp),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if dp != nil {
		dp.attach(p.Send)
	}

	fwdCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			select {
			case <-fwdCtx.Done():
				return
			case <-session.Changes():
				p.Send(stateChangedMsg{})
			}
		}
	}()

	_, err := p.Run()
	if dp != nil {
		dp.attach(nil)
	}
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
