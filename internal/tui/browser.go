package tui

import (
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) openBrowser(req pickRequestMsg) (tea.Model, tea.Cmd) {
	if m.browsing {
		req.reply <- pickCancelled
		return m, nil
	}
	start := req.start
	if start == "" {
		start = m.st.Directory
	}
	if start == "" {
		start, _ = os.UserHomeDir()
	}

	fp := filepicker.New()
	fp.CurrentDirectory = start
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowPermissions = false
	fp.AutoHeight = false
	fp.SetHeight(max(m.height-3, 3))

	m.browser = fp
	m.browsing = true
	m.pickTo = req.reply
	return m, fp.Init()
}

// closeBrowser answers the pending request, if any.
func (m *Model) closeBrowser(r pickResult) {
	if m.pickTo != nil {
		m.pickTo <- r
	}
	m.pickTo = nil
	m.browsing = false
}

func (m Model) updateBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PickerChoose):
		m.closeBrowser(pickResult{dir: m.browser.CurrentDirectory})
		return m, nil
	case key.Matches(msg, m.keys.PickerCancel):
		m.closeBrowser(pickCancelled)
		return m, nil
	}
	var cmd tea.Cmd
	m.browser, cmd = m.browser.Update(msg)
	return m, cmd
}
