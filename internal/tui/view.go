package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/jotter/internal/models"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.browsing {
		return m.browserView()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), m.mainView())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusView())
}

func (m Model) sidebarView() string {
	w := m.st.SidebarWidth
	h := max(m.height-1, 1)
	ext := m.session.Extension()

	lines := make([]string, 0, h)
	lines = append(lines, m.search.View())

	dir := "no directory (C-o)"
	if m.st.Directory != "" {
		dir = filepath.Base(m.st.Directory)
	}
	lines = append(lines, dirStyle.Render(truncate(dir, w)))

	for i, it := range m.st.Visible() {
		if len(lines) >= h {
			break
		}
		if it.Filename == m.st.Renaming {
			lines = append(lines, m.rename.View())
			continue
		}
		label := truncate(models.DisplayName(it.Filename, ext), w)
		style := itemStyle
		switch {
		case it.Filename == m.st.Active:
			style = activeStyle
		case it.Filename == m.st.Focused:
			style = focusedStyle
		}
		if i == m.cursor && m.focus == focusList {
			style = style.Inherit(cursorStyle)
		}
		lines = append(lines, style.Render(label))
	}

	return sidebarStyle.
		Width(w).
		Height(h).
		MaxHeight(h).
		Render(strings.Join(lines, "\n"))
}

func (m Model) mainView() string {
	if m.st.Menu != nil {
		return m.menuView()
	}
	return m.editor.View()
}

func (m Model) menuView() string {
	menu := m.st.Menu
	width := 0
	for _, e := range menu.Entries {
		width = max(width, lipgloss.Width(e.Label))
	}
	width += 2

	rows := make([]string, len(menu.Entries))
	for i, e := range menu.Entries {
		if e.Separator {
			rows[i] = menuDisabledStyle.Render(strings.Repeat("─", width))
			continue
		}
		label := " " + e.Label + strings.Repeat(" ", width-lipgloss.Width(e.Label)-1)
		switch {
		case !e.Enabled:
			rows[i] = menuDisabledStyle.Render(label)
		case i == m.menuCursor:
			rows[i] = menuCursorStyle.Render(label)
		default:
			rows[i] = label
		}
	}
	return menuStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) statusView() string {
	if m.st.LastError != "" {
		return errorStyle.Render(truncate(m.st.LastError, m.width))
	}
	hint := "C-o open · C-f search · C-n new · C-r rename · C-x menu · tab switch · C-c quit"
	if m.st.Active != "" {
		hint = fmt.Sprintf("%s · %s", m.st.Active, hint)
	}
	return statusStyle.Render(truncate(hint, m.width))
}

func (m Model) browserView() string {
	header := fmt.Sprintf("Choose a notes directory: %s", m.browser.CurrentDirectory)
	footer := "s use this directory · enter open · esc up · q cancel"
	return lipgloss.JoinVertical(lipgloss.Left,
		activeStyle.Render(truncate(header, m.width)),
		m.browser.View(),
		statusStyle.Render(footer),
	)
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}
