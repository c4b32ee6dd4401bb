// Package output provides styled terminal rendering helpers for timewise.
package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for applied suggestions and healthy scores.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for critical risk and failures.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for elevated risk and pending decisions.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	// StyleHeader is used for section headers.
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	// StyleSuccess is used for positive values.
	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// StyleError is used for critical values.
	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	// StyleWarning is used for cautionary values.
	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// StyleMuted is used for de-emphasized text.
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleBold is used for emphasized text.
	StyleBold = lipgloss.NewStyle().
			Bold(true)

	// StyleLabel is used for metric labels.
	StyleLabel = lipgloss.NewStyle().
			Width(24)

	// StyleValue is used for metric values.
	StyleValue = lipgloss.NewStyle().
			Bold(true).
			Width(12)
)

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or enables color output globally.
// When disabled, all package-level styles are reassigned to unstyled renderers.
func SetNoColor(disabled bool) {
	noColor = disabled
	if disabled {
		plain := lipgloss.NewStyle()
		StyleHeader = plain
		StyleSuccess = plain
		StyleError = plain
		StyleWarning = plain
		StyleMuted = plain
		StyleBold = plain
		StyleLabel = plain.Width(24)
		StyleValue = plain.Width(12)
	}
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// RiskStyle picks the style for a 0-10 risk score: green below 6, yellow in
// the elevated band, red at critical.
func RiskStyle(score float64) lipgloss.Style {
	switch {
	case score >= 8:
		return StyleError
	case score >= 6:
		return StyleWarning
	default:
		return StyleSuccess
	}
}

// FormatScore renders a 0-10 score with its risk color.
func FormatScore(score float64) string {
	return RiskStyle(score).Render(fmt.Sprintf("%.1f/10", score))
}

// FormatConfidence renders a 0-1 confidence as a percentage, highlighting
// values at or above the auto-approve bar.
func FormatConfidence(c float64) string {
	s := fmt.Sprintf("%.0f%%", c*100)
	if c >= 0.8 {
		return StyleSuccess.Render(s)
	}
	return s
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
