package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#7D56F4")
	colorMuted  = lipgloss.Color("241")
	colorError  = lipgloss.Color("#FF5F87")

	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(colorMuted)

	itemStyle    = lipgloss.NewStyle()
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	focusedStyle = lipgloss.NewStyle().Underline(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	dirStyle     = lipgloss.NewStyle().Foreground(colorMuted)

	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent)
	menuDisabledStyle = lipgloss.NewStyle().Foreground(colorMuted)
	menuCursorStyle   = lipgloss.NewStyle().Reverse(true)

	statusStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
)
