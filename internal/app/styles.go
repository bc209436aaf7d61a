package app

import "github.com/charmbracelet/lipgloss"

var (
	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	stepCompleteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	stepActiveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	stepPendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	modeStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	panelTitleStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	candidateStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	pendingItemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	confirmedItemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	expiredItemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Strikethrough(true)
)
