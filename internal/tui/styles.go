package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("62")).
			PaddingRight(1)

	paneStyle = lipgloss.NewStyle().Padding(0, 1)

	categoryStyle = lipgloss.NewStyle().Bold(true)
	itemStyle     = lipgloss.NewStyle()
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	crumbStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	navStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)
