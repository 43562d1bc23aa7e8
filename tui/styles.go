package tui

import "github.com/charmbracelet/lipgloss"

// Color palette matching the fatih/color usage of the command line.
var (
	ColorGreen  = lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#00D700"}
	ColorCyan   = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}
	ColorWhite  = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}
	ColorGray   = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}
	ColorRed    = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
)

var (
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	StyleHelp = lipgloss.NewStyle().Foreground(ColorGray)

	StyleOK    = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleWarn  = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleError = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)

	StyleBorderFocused = StyleBorder.BorderForeground(ColorCyan)

	formLabel = lipgloss.NewStyle().
			Foreground(ColorGray).
			Width(10).
			Align(lipgloss.Right).
			PaddingRight(1)

	formLabelActive = formLabel.
			Foreground(ColorYellow).
			Bold(true)
)
