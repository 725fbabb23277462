package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/junkclean/internal/ui/style"
	"github.com/sadopc/junkclean/internal/util"
)

// StatusInfo holds the current state for the status bar.
type StatusInfo struct {
	Shown         int
	Total         int
	SelectedCount int
	SelectedSize  int64
	Message       string
	IsError       bool
}

// RenderStatusBar renders the bottom status bar. A message replaces the
// counters until the next key press.
func RenderStatusBar(theme style.Theme, info StatusInfo, width int) string {
	if info.Message != "" {
		color := theme.Success
		if info.IsError {
			color = theme.Warning
		}
		msg := " " + lipgloss.NewStyle().Foreground(color).Bold(true).Render(info.Message)
		return theme.StatusBarStyle.Width(width).Render(msg)
	}

	var parts []string
	if info.Shown == info.Total {
		parts = append(parts, fmt.Sprintf("%d items", info.Total))
	} else {
		parts = append(parts, fmt.Sprintf("%d of %d items", info.Shown, info.Total))
	}

	if info.SelectedCount > 0 {
		selected := lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true).
			Render(fmt.Sprintf("✓ %d selected (%s)", info.SelectedCount, util.FormatSize(info.SelectedSize)))
		parts = append(parts, selected)
	}

	left := " " + strings.Join(parts, " | ")

	hints := []struct{ key, desc string }{
		{"?", "help"},
		{"c", "clean"},
		{"q", "quit"},
	}

	var rightParts []string
	for _, h := range hints {
		k := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(h.key)
		d := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" " + h.desc)
		rightParts = append(rightParts, k+d)
	}
	right := strings.Join(rightParts, "  ") + " "

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	line := left + strings.Repeat(" ", gap) + right
	return theme.StatusBarStyle.Width(width).Render(line)
}
