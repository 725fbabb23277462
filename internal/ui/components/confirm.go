package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/junkclean/internal/ui/style"
	"github.com/sadopc/junkclean/internal/util"
)

// ConfirmItem represents an item pending removal.
type ConfirmItem struct {
	Path  string
	Size  int64
	IsDir bool
}

// RenderConfirmDialog renders the clean confirmation modal.
func RenderConfirmDialog(theme style.Theme, items []ConfirmItem, width, height int) string {
	boxWidth := min(70, width-4)

	var lines []string

	lines = append(lines, theme.ModalTitle.Render("  Clean Confirmation"))

	warning := lipgloss.NewStyle().
		Foreground(theme.Warning).
		Render(fmt.Sprintf("  Do you want to delete %d selected item(s)?", len(items)))
	lines = append(lines, warning)
	lines = append(lines, "")

	maxShow := min(10, len(items))

	var totalSize int64
	for _, item := range items {
		totalSize += item.Size
	}

	for i := 0; i < maxShow; i++ {
		item := items[i]
		path := util.TruncatePath(item.Path, max(boxWidth-22, 1))
		line := lipgloss.NewStyle().Foreground(theme.Error).Render("  "+util.Icon(item.IsDir)+" "+path) +
			lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  "+util.FormatSize(item.Size))
		lines = append(lines, line)
	}

	if len(items) > maxShow {
		more := fmt.Sprintf("  ... and %d more", len(items)-maxShow)
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render(more))
	}

	lines = append(lines, "")
	totalLine := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.TextPrimary).
		Render(fmt.Sprintf("  Total: %s", util.FormatSize(totalSize)))
	lines = append(lines, totalLine)
	lines = append(lines, "")

	prompt := lipgloss.NewStyle().
		Foreground(theme.TextPrimary).
		Render("  Press ") +
		lipgloss.NewStyle().Bold(true).Foreground(theme.Success).Render("y") +
		lipgloss.NewStyle().Foreground(theme.TextPrimary).Render(" to clean, ") +
		lipgloss.NewStyle().Bold(true).Foreground(theme.Error).Render("n/esc") +
		lipgloss.NewStyle().Foreground(theme.TextPrimary).Render(" to cancel")
	lines = append(lines, prompt)

	box := theme.ModalStyle.
		Width(max(boxWidth, 1)).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
