package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme holds all the styled components for the UI.
type Theme struct {
	// Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Success   lipgloss.Color

	// Backgrounds
	BgDark   lipgloss.Color
	BgMedium lipgloss.Color
	BgLight  lipgloss.Color

	// Text
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	// Gradient colors for the clean progress bar
	GradientStart lipgloss.Color
	GradientEnd   lipgloss.Color

	// Styles
	HeaderStyle      lipgloss.Style
	TabActiveStyle   lipgloss.Style
	TabInactiveStyle lipgloss.Style
	StatusBarStyle   lipgloss.Style
	ColumnTitle      lipgloss.Style
	SelectedRow      lipgloss.Style
	CursorIndicator  lipgloss.Style
	CheckMark        lipgloss.Style
	FolderPath       lipgloss.Style
	FilePath         lipgloss.Style
	SizeText         lipgloss.Style
	AgeText          lipgloss.Style
	ErrorText        lipgloss.Style
	HelpKey          lipgloss.Style
	HelpDesc         lipgloss.Style
	ModalStyle       lipgloss.Style
	ModalTitle       lipgloss.Style
}

// DefaultTheme returns the default dark theme.
func DefaultTheme() Theme {
	t := Theme{
		Primary:   lipgloss.Color("#7B2FBE"),
		Secondary: lipgloss.Color("#00D4AA"),
		Accent:    lipgloss.Color("#61AFEF"),
		Muted:     lipgloss.Color("#5C6370"),
		Error:     lipgloss.Color("#E06C75"),
		Warning:   lipgloss.Color("#E5C07B"),
		Success:   lipgloss.Color("#98C379"),

		BgDark:   lipgloss.Color("#1E1E2E"),
		BgMedium: lipgloss.Color("#282A36"),
		BgLight:  lipgloss.Color("#313244"),

		TextPrimary:   lipgloss.Color("#CDD6F4"),
		TextSecondary: lipgloss.Color("#BAC2DE"),
		TextMuted:     lipgloss.Color("#6C7086"),

		GradientStart: lipgloss.Color("#7B2FBE"),
		GradientEnd:   lipgloss.Color("#00D4AA"),
	}

	// Header: no padding, spacing is handled inside the line
	t.HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.TextPrimary).
		Background(t.BgMedium)

	t.TabActiveStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.TextPrimary).
		Background(t.Primary).
		Padding(0, 1)

	t.TabInactiveStyle = lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Padding(0, 1)

	t.StatusBarStyle = lipgloss.NewStyle().
		Foreground(t.TextSecondary).
		Background(t.BgMedium)

	t.ColumnTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	t.SelectedRow = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#4A4A6A"))

	t.CursorIndicator = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.CheckMark = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	t.FolderPath = lipgloss.NewStyle().
		Foreground(t.Accent)

	t.FilePath = lipgloss.NewStyle().
		Foreground(t.TextSecondary)

	t.SizeText = lipgloss.NewStyle().
		Foreground(t.Success).
		Width(SizeWidth).
		Align(lipgloss.Right)

	t.AgeText = lipgloss.NewStyle().
		Foreground(t.Warning).
		Width(AgeWidth).
		Align(lipgloss.Right)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(t.Error)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(t.TextMuted)

	t.ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Background(t.BgMedium)

	t.ModalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.TextPrimary).
		Padding(0, 0, 1, 0)

	return t
}

// GradientColor returns a color interpolated between gradient start and end.
func (t Theme) GradientColor(ratio float64) lipgloss.Color {
	if ratio <= 0 {
		return t.GradientStart
	}
	if ratio >= 1 {
		return t.GradientEnd
	}

	c1, _ := colorful.Hex(string(t.GradientStart))
	c2, _ := colorful.Hex(string(t.GradientEnd))
	return lipgloss.Color(c1.BlendLab(c2, ratio).Hex())
}

// BarGradient renders a per-character gradient progress bar.
func (t Theme) BarGradient(width int, ratio float64) string {
	if width <= 0 {
		return ""
	}
	filled := int(ratio * float64(width))
	filled = min(max(filled, 0), width)

	var buf strings.Builder
	buf.Grow(width * 20) // rough estimate with ANSI codes

	for i := 0; i < filled; i++ {
		pos := float64(i) / float64(max(width-1, 1))
		buf.WriteString(lipgloss.NewStyle().Foreground(t.GradientColor(pos)).Render("━"))
	}

	if filled < width {
		dim := lipgloss.NewStyle().Foreground(t.TextMuted)
		buf.WriteString(dim.Render(strings.Repeat("─", width-filled)))
	}

	return buf.String()
}
