package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/qaca/surakshapath/internal/safety"
)

// Catppuccin Mocha, trimmed to the shades the form uses.
const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"
	colorMauve    lipgloss.Color = "#cba6f7"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
	colorCrust    lipgloss.Color = "#11111b"
)

const (
	colorBrand   = colorBlue
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorCrust).
			Background(colorBrand).
			Bold(true).
			Padding(0, 1)

	headerBadgeStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorSurface1).
				Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(colorMauve).
			Bold(true).
			MarginTop(1)

	labelStyle        = lipgloss.NewStyle().Foreground(colorSubtext0).Width(20)
	focusedLabelStyle = labelStyle.Foreground(colorFocus).Bold(true)
	valueStyle        = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle        = lipgloss.NewStyle().Foreground(colorOverlay1)
	cursorStyle       = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)

	chipStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorSurface0).
			Padding(0, 1)
	chipOnStyle = chipStyle.
			Foreground(colorBase).
			Background(colorInfo).
			Bold(true)
	chipCursorStyle = lipgloss.NewStyle().Underline(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface1).
			Padding(0, 2)
	buttonFocusStyle = buttonStyle.
				Foreground(colorCrust).
				Background(colorBrand).
				Bold(true)

	okStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)

	bannerErrorStyle = lipgloss.NewStyle().
				Foreground(colorError).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorError).
				Padding(0, 1)

	emergencyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Border(lipgloss.ThickBorder()).
			BorderForeground(colorError).
			Padding(0, 1)

	resultBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)
)

func outcomeColor(o safety.Outcome) lipgloss.Color {
	switch o {
	case safety.OutcomeSafe:
		return colorSuccess
	case safety.OutcomeUnsafe:
		return colorError
	default:
		return colorPeach
	}
}

func outcomeBannerStyle(o safety.Outcome) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colorCrust).
		Background(outcomeColor(o)).
		Bold(true).
		Padding(0, 2)
}
