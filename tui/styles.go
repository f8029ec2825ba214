package tui

import "github.com/charmbracelet/lipgloss"

const (
	cyan     = lipgloss.Color("#79c3ee")
	black    = lipgloss.Color("#101419")
	green    = lipgloss.Color("#78dba9")
	hotPink  = lipgloss.Color("#FF06B7")
	darkGray = lipgloss.Color("#767676")
	red      = lipgloss.Color("#e05f65")
)

var (
	selectedStyle = lipgloss.NewStyle().
			Background(cyan).
			Foreground(black)

	unSelectedStyle = lipgloss.NewStyle().UnsetBackground().UnsetForeground()
	inputStyle      = lipgloss.NewStyle().Foreground(cyan)
	titleStyle      = lipgloss.NewStyle().Foreground(hotPink).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(hotPink).
			Padding(1, 2, 1, 2).
			Align(lipgloss.Left)

	listStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(darkGray).
			Padding(0, 1).
			MarginRight(1)

	successStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(red).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(darkGray)
)
