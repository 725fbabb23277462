package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/junkclean/internal/ui/style"
	"github.com/sadopc/junkclean/internal/util"
)

// RenderHeader renders the top header bar: title, scanned roots and the
// running totals.
func RenderHeader(theme style.Theme, roots []string, count int, total int64, width int) string {
	if width < 10 {
		return ""
	}

	titleStyled := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(" junkclean")

	stats := fmt.Sprintf("%s items  %s ", util.FormatCount(int64(count)), util.FormatSize(total))
	statsStyled := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(stats)

	titleW := lipgloss.Width(titleStyled)
	statsW := lipgloss.Width(statsStyled)

	// Roots get whatever space remains
	rootsMaxW := width - titleW - statsW - 3
	rootsStr := ""
	if rootsMaxW > 5 {
		rootsStr = util.TruncatePath(strings.Join(roots, ", "), rootsMaxW)
	}

	rootsStyled := lipgloss.NewStyle().Foreground(theme.TextPrimary).Render("  " + rootsStr)
	gap := max(width-titleW-lipgloss.Width(rootsStyled)-statsW, 1)

	line := titleStyled + rootsStyled + strings.Repeat(" ", gap) + statsStyled
	return theme.HeaderStyle.Width(width).Render(line)
}

// RenderTabBar renders the view tabs, the active filter and the sort label.
func RenderTabBar(theme style.Theme, activeView int, sortLabel, filter string, width int) string {
	tabs := []string{"Items", "Breakdown"}

	var tabLine []string
	for i, tab := range tabs {
		label := fmt.Sprintf(" %d %s ", i+1, tab)
		if i == activeView {
			tabLine = append(tabLine, theme.TabActiveStyle.Render(label))
		} else {
			tabLine = append(tabLine, theme.TabInactiveStyle.Render(label))
		}
	}

	left := " " + strings.Join(tabLine, " ")
	if filter != "" {
		left += lipgloss.NewStyle().Foreground(theme.Warning).Render("  filter: " + filter)
	}

	right := lipgloss.NewStyle().
		Foreground(theme.TextMuted).
		Render("Sort: " + sortLabel + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	line := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Foreground(theme.TextSecondary).
		Background(theme.BgLight).
		Width(width).
		Render(line)
}
