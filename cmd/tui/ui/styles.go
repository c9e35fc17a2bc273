package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Modesta palette
	Primary   = lipgloss.Color("#B76E79") // Rose gold
	Secondary = lipgloss.Color("#D8A7B1") // Dusty pink
	Accent    = lipgloss.Color("#8E4162") // Plum
	Success   = lipgloss.Color("#7FB685") // Sage
	Warning   = lipgloss.Color("#E9B872") // Sand
	Error     = lipgloss.Color("#E06C75") // Coral
	Muted     = lipgloss.Color("#8C7B80") // Taupe
	Text      = lipgloss.Color("#F6EEE9") // Ivory
	BgDark    = lipgloss.Color("#2B1D22") // Espresso
	BgLight   = lipgloss.Color("#3D2A31") // Mocha

	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Padding(0, 1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2).
			MarginTop(1)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(Accent).
				Bold(true).
				PaddingLeft(2)

	ItemStyle = lipgloss.NewStyle().
			Foreground(Text).
			PaddingLeft(2)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	InputStyle = lipgloss.NewStyle().
			Foreground(Text).
			Border(lipgloss.NormalBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(Text).
				Border(lipgloss.NormalBorder()).
				BorderForeground(Accent).
				Padding(0, 1)

	StatsStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true).
			PaddingRight(2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Width(20)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)
)
