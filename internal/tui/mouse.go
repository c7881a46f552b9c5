package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.st.Menu != nil {
		return m.menuMouse(msg)
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		m.session.PointerMove(msg.X)
		return m, nil
	case tea.MouseActionRelease:
		m.session.PointerUp()
		return m, nil
	case tea.MouseActionPress:
	default:
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonLeft:
		if m.session.PointerDown(msg.X, true) {
			return m, nil
		}
		return m.leftClick(msg.X, msg.Y)
	case tea.MouseButtonRight:
		if msg.X >= m.st.SidebarWidth {
			return m, nil
		}
		name := ""
		if row := msg.Y - listTop; row >= 0 && row < len(m.st.Visible()) {
			name = m.st.Visible()[row].Filename
			m.cursor = row
		}
		m.session.ContextMenu(name)
		return m, nil
	}
	return m, nil
}

func (m Model) leftClick(x, y int) (tea.Model, tea.Cmd) {
	if x > m.st.SidebarWidth {
		return m, m.setFocus(focusEditor)
	}
	if y == rowSearch {
		return m, m.setFocus(focusSearch)
	}

	row := y - listTop
	vis := m.st.Visible()
	if row < 0 || row >= len(vis) {
		return m, m.setFocus(focusList)
	}
	name := vis[row].Filename
	if name == m.st.Renaming {
		return m, nil
	}

	now := m.now()
	double := row == m.lastClickRow && now.Sub(m.lastClickAt) <= doubleClickWindow
	m.lastClickRow, m.lastClickAt = row, now
	m.cursor = row

	cmd := m.setFocus(focusList)
	if double {
		m.lastClickRow = -1
		m.session.BeginRename(name)
		return m, cmd
	}
	m.session.Select(name)
	return m, cmd
}

// menuMouse handles clicks while the context menu is open. The menu box is
// drawn at the top of the editor pane.
func (m Model) menuMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	left := m.st.SidebarWidth + 1
	box := lipgloss.Width(m.menuView())
	i := msg.Y - 1
	if msg.X > left && msg.X < left+box-1 && i >= 0 && i < len(m.st.Menu.Entries) {
		if e := m.st.Menu.Entries[i]; !e.Separator && e.Enabled {
			m.session.ChooseMenu(e.Action)
		}
		return m, nil
	}
	m.session.DismissMenu()
	return m, nil
}
