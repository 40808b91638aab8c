package screen

import "github.com/charmbracelet/lipgloss"

var (
	welcomeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")) // cyan
	menuStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // green
	goldStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")) // yellow
	itemStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")) // white
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))  // red
	quitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	balanceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)
