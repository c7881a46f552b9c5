// Package tui renders a display session in the terminal with Bubble Tea.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/jotter/internal/display"
	"github.com/starford/jotter/internal/models"
)

// Layout rows of the sidebar above the file list.
const (
	rowSearch    = 0
	rowDirectory = 1
	listTop      = 2
)

const doubleClickWindow = 400 * time.Millisecond

type focusArea int

const (
	focusList focusArea = iota
	focusEditor
	focusSearch
	focusRename
)

// stateChangedMsg tells the model to take a new snapshot.
type stateChangedMsg struct{}

// Model is the Bubble Tea model of the notes screen.
type Model struct {
	session *display.Session
	picker  *DirPicker
	keys    KeyMap
	now     func() time.Time

	st     display.AppState
	width  int
	height int
	focus  focusArea
	cursor int

	editor        textarea.Model
	bufferVersion int
	search        textinput.Model
	rename        textinput.Model
	renamingFor   string

	menuID     string
	menuCursor int
	// pendingAction is chosen automatically when the next menu arrives.
	pendingAction models.Action

	browsing bool
	browser  filepicker.Model
	pickTo   chan<- pickResult

	lastClickRow int
	lastClickAt  time.Time
}

// New creates the model for session. dp may be nil when directories are
// picked by some other means.
func New(session *display.Session, dp *DirPicker) Model {
	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.Prompt = ""
	editor.MaxHeight = 0
	editor.CharLimit = 0
	editor.Placeholder = "Select a note"

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"

	rename := textinput.New()
	rename.Prompt = ""

	return Model{
		session:      session,
		picker:       dp,
		keys:         DefaultKeyMap,
		now:          time.Now,
		st:           session.Snapshot(),
		editor:       editor,
		search:       search,
		rename:       rename,
		lastClickRow: -1,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		if m.browsing {
			m.browser.SetHeight(m.height - 3)
		}
		return m, nil

	case stateChangedMsg:
		return m.refresh()

	case pickRequestMsg:
		return m.openBrowser(msg)

	case pickAbortMsg:
		m.browsing = false
		m.pickTo = nil
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.closeBrowser(pickCancelled)
			return m, tea.Quit
		}
		if m.browsing {
			return m.updateBrowser(msg)
		}
		if m.st.Menu != nil {
			return m.updateMenuKeys(msg)
		}
		return m.updateKeys(msg)

	case tea.MouseMsg:
		if m.browsing {
			return m, nil
		}
		return m.updateMouse(msg)
	}

	if m.browsing {
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}
	return m.forward(msg)
}

// forward hands msg to the focused input.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusEditor:
		if m.st.Active == "" || m.st.Loading {
			return m, nil
		}
		before := m.editor.Value()
		m.editor, cmd = m.editor.Update(msg)
		if after := m.editor.Value(); after != before {
			m.session.Edit(after)
		}
	case focusSearch:
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if after := m.search.Value(); after != before {
			m.session.SetFilter(after)
			m.cursor = 0
		}
	case focusRename:
		m.rename, cmd = m.rename.Update(msg)
	}
	return m, cmd
}

// refresh takes a snapshot and reconciles the inputs with it.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	m.st = m.session.Snapshot()
	var cmds []tea.Cmd

	if m.st.BufferVersion != m.bufferVersion {
		m.bufferVersion = m.st.BufferVersion
		m.editor.SetValue(m.st.Buffer)
	}

	switch {
	case m.st.Renaming != "" && m.st.Renaming != m.renamingFor:
		m.renamingFor = m.st.Renaming
		m.rename.SetValue(m.st.RenameDraft)
		m.rename.CursorEnd()
		cmds = append(cmds, m.setFocus(focusRename))
	case m.st.Renaming == "" && m.renamingFor != "":
		m.renamingFor = ""
		m.rename.SetValue("")
		if m.focus == focusRename {
			cmds = append(cmds, m.setFocus(focusList))
		}
	}

	if m.st.Menu != nil && m.st.Menu.ID != m.menuID {
		m.menuID = m.st.Menu.ID
		m.menuCursor = firstEnabled(m.st.Menu)
		if m.pendingAction != models.ActionNone {
			action := m.pendingAction
			m.pendingAction = models.ActionNone
			m.session.ChooseMenu(action)
		}
	}
	if m.st.Menu == nil {
		m.menuID = ""
	}

	if n := len(m.st.Visible()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.layout()
	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(f focusArea) tea.Cmd {
	if m.focus == focusRename && f != focusRename && m.st.Renaming != "" {
		// Leaving the inline editor commits it, like losing focus.
		m.session.CommitRename(m.rename.Value())
	}
	m.focus = f
	m.editor.Blur()
	m.search.Blur()
	m.rename.Blur()
	switch f {
	case focusEditor:
		return m.editor.Focus()
	case focusSearch:
		return m.search.Focus()
	case focusRename:
		return m.rename.Focus()
	}
	return nil
}

func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	side := m.st.SidebarWidth
	m.search.Width = max(side-len(m.search.Prompt)-1, 1)
	m.rename.Width = max(side-1, 1)
	m.editor.SetWidth(max(m.width-side-1, 1))
	m.editor.SetHeight(max(m.height-1, 1))
}

func (m Model) current() string {
	vis := m.st.Visible()
	if m.cursor < 0 || m.cursor >= len(vis) {
		return ""
	}
	return vis[m.cursor].Filename
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == focusRename {
		switch {
		case key.Matches(msg, m.keys.Select):
			m.session.CommitRename(m.rename.Value())
			m.rename.SetCursor(0)
			return m, m.setFocus(focusList)
		case key.Matches(msg, m.keys.Cancel):
			m.session.CancelRename()
			return m, m.setFocus(focusList)
		case key.Matches(msg, m.keys.FocusToggle):
			return m, m.setFocus(focusEditor)
		}
		return m.forward(msg)
	}

	switch {
	case key.Matches(msg, m.keys.OpenDirectory):
		m.session.OpenDirectory()
		return m, nil
	case key.Matches(msg, m.keys.Search):
		return m, m.setFocus(focusSearch)
	case key.Matches(msg, m.keys.Rename):
		m.session.BeginRename(m.current())
		return m, nil
	case key.Matches(msg, m.keys.New):
		m.pendingAction = models.ActionNew
		m.session.ContextMenu("")
		return m, nil
	case key.Matches(msg, m.keys.Menu):
		m.session.ContextMenu(m.current())
		return m, nil
	case key.Matches(msg, m.keys.FocusToggle):
		if m.focus == focusEditor {
			return m, m.setFocus(focusList)
		}
		return m, m.setFocus(focusEditor)
	}

	switch m.focus {
	case focusSearch:
		if key.Matches(msg, m.keys.Select) || key.Matches(msg, m.keys.Cancel) {
			return m, m.setFocus(focusList)
		}
	case focusList:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.cursor = max(m.cursor-1, 0)
		case key.Matches(msg, m.keys.Down):
			m.cursor = min(m.cursor+1, max(len(m.st.Visible())-1, 0))
		case key.Matches(msg, m.keys.Select):
			if name := m.current(); name != "" {
				m.session.Select(name)
				return m, m.setFocus(focusEditor)
			}
		}
		return m, nil
	}
	return m.forward(msg)
}

func (m Model) updateMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	menu := m.st.Menu
	switch {
	case key.Matches(msg, m.keys.Up):
		m.menuCursor = stepEnabled(menu, m.menuCursor, -1)
	case key.Matches(msg, m.keys.Down):
		m.menuCursor = stepEnabled(menu, m.menuCursor, 1)
	case key.Matches(msg, m.keys.Select):
		if e, ok := entryAt(menu, m.menuCursor); ok && e.Enabled {
			m.session.ChooseMenu(e.Action)
		}
	case key.Matches(msg, m.keys.Cancel):
		m.session.DismissMenu()
	}
	return m, nil
}

func entryAt(menu *models.Menu, i int) (models.MenuEntry, bool) {
	if menu == nil || i < 0 || i >= len(menu.Entries) {
		return models.MenuEntry{}, false
	}
	return menu.Entries[i], true
}

func firstEnabled(menu *models.Menu) int {
	for i, e := range menu.Entries {
		if !e.Separator && e.Enabled {
			return i
		}
	}
	return -1
}

// stepEnabled moves from i in direction dir to the next enabled entry,
// staying put when there is none.
func stepEnabled(menu *models.Menu, i, dir int) int {
	for j := i + dir; j >= 0 && j < len(menu.Entries); j += dir {
		if e := menu.Entries[j]; !e.Separator && e.Enabled {
			return j
		}
	}
	return i
}
