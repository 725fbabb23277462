package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/junkclean/internal/model"
	"github.com/sadopc/junkclean/internal/ui/style"
	"github.com/sadopc/junkclean/internal/util"
)

// RenderBreakdown renders found items grouped by category. The result is
// exactly height lines.
func RenderBreakdown(theme style.Theme, stats []model.CategoryStat, width, height int) string {
	if height < 1 {
		height = 1
	}

	var totalSize int64
	for _, s := range stats {
		totalSize += s.Size
	}

	var lines []string
	if len(stats) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.TextMuted).
			Render("  (no junk found)"))
	} else {
		lines = breakdownLines(theme, stats, totalSize, width)
	}

	for len(lines) < height {
		lines = append(lines, "")
	}

	bgStyle := lipgloss.NewStyle().
		Background(theme.BgDark).
		Width(max(width, 1))
	for i := range lines[:height] {
		lines[i] = bgStyle.Render(lines[i])
	}

	return strings.Join(lines[:height], "\n")
}

func breakdownLines(theme style.Theme, stats []model.CategoryStat, totalSize int64, width int) []string {
	catW := 14
	countW := 10
	sizeW := 12
	barW := min(max(width-catW-countW-sizeW-10, 10), 30)

	var lines []string

	hdrStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.TextPrimary)
	header := fmt.Sprintf("  %-*s %*s %*s  %s",
		catW, "Category",
		countW, "Items",
		sizeW, "Size",
		"Share",
	)
	lines = append(lines, hdrStyle.Render(header))

	sep := lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  " + strings.Repeat("-", max(width-4, 0)))
	lines = append(lines, sep)

	for _, s := range stats {
		pct := util.Percent(s.Size, totalSize)

		catColor := lipgloss.Color(model.CategoryColor(s.Category))
		catName := lipgloss.NewStyle().Foreground(catColor).Bold(true).Width(catW).Render(model.CategoryName(s.Category))
		count := lipgloss.NewStyle().Foreground(theme.TextSecondary).Width(countW).Align(lipgloss.Right).Render(util.FormatCount(int64(s.Count)))
		size := lipgloss.NewStyle().Foreground(theme.TextSecondary).Width(sizeW).Align(lipgloss.Right).Render(util.FormatSize(s.Size))

		bar := renderCategoryBar(barW, pct/100, catColor, theme.TextMuted)
		pctStr := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(fmt.Sprintf(" %5.1f%%", pct))

		lines = append(lines, fmt.Sprintf("  %s %s %s  %s%s", catName, count, size, bar, pctStr))
	}

	lines = append(lines, sep)

	totalLine := fmt.Sprintf("  %-*s %*s %*s",
		catW, "Total",
		countW, "",
		sizeW, util.FormatSize(totalSize),
	)
	return append(lines, hdrStyle.Render(totalLine))
}

func renderCategoryBar(width int, ratio float64, color, dimColor lipgloss.Color) string {
	filled := min(int(ratio*float64(width)), width)

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("=", filled)) +
		lipgloss.NewStyle().Foreground(dimColor).Render(strings.Repeat("-", width-filled))
}
