package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sadopc/junkclean/internal/model"
	"github.com/sadopc/junkclean/internal/ui/style"
	"github.com/sadopc/junkclean/internal/util"
)

// ItemList renders found items as a scrolling table.
type ItemList struct {
	Theme    style.Theme
	Layout   style.Layout
	Items    []model.FoundItem
	Cursor   int
	Offset   int
	Selected map[string]bool
	Now      time.Time
}

// Render renders the column titles followed by the visible rows.
func (il *ItemList) Render() string {
	width := il.Layout.ContentWidth()
	titles := il.renderTitles(width)

	contentHeight := il.Layout.ContentHeight()
	if len(il.Items) == 0 {
		empty := lipgloss.NewStyle().Foreground(il.Theme.TextMuted).Render("  (no junk found)")
		lines := []string{titles, style.FullWidth(empty, width)}
		for len(lines) < contentHeight+1 {
			lines = append(lines, strings.Repeat(" ", width))
		}
		return strings.Join(lines, "\n")
	}

	pathWidth := il.Layout.PathWidth()
	start := il.Offset
	end := min(start+contentHeight, len(il.Items))

	lines := []string{titles}
	for i := start; i < end; i++ {
		item := il.Items[i]
		lines = append(lines, il.renderRow(item, i == il.Cursor, il.Selected[item.Path], pathWidth, width))
	}

	for len(lines) < contentHeight+1 {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

func (il *ItemList) renderTitles(width int) string {
	pathWidth := il.Layout.PathWidth()
	row := fmt.Sprintf("  ✓    %-*s %*s %*s",
		pathWidth, "Path",
		style.SizeWidth, "Size",
		style.AgeWidth, "Modified",
	)
	return il.Theme.ColumnTitle.Render(style.FullWidth(row, width))
}

func (il *ItemList) renderRow(item model.FoundItem, current, selected bool, pathWidth, totalWidth int) string {
	indicator := "  "
	if current {
		indicator = il.Theme.CursorIndicator.Render(" >")
	}

	check := il.Theme.CheckMark.Render(util.Check(selected)) + " "
	icon := util.Icon(item.Kind == model.KindFolder) + " "

	path := style.FullWidth(util.TruncatePath(item.Path, pathWidth), pathWidth)
	var pathStyled string
	if item.Kind == model.KindFolder {
		pathStyled = il.Theme.FolderPath.Render(path)
	} else {
		pathStyled = il.Theme.FilePath.Render(path)
	}

	sizeStyled := il.Theme.SizeText.Render(ansi.Truncate(util.FormatSize(item.Size), style.SizeWidth, ""))
	ageStyled := il.Theme.AgeText.Render(ansi.Truncate(util.FormatAge(item.ModTime, il.Now), style.AgeWidth, ""))

	row := indicator + check + icon + pathStyled + " " + sizeStyled + " " + ageStyled
	row = style.FullWidth(row, totalWidth)

	if current {
		return il.Theme.SelectedRow.Width(totalWidth).Render(row)
	}
	return row
}

// EnsureVisible adjusts offset to keep cursor visible.
func (il *ItemList) EnsureVisible() {
	contentHeight := il.Layout.ContentHeight()
	if il.Cursor < il.Offset {
		il.Offset = il.Cursor
	}
	if il.Cursor >= il.Offset+contentHeight {
		il.Offset = il.Cursor - contentHeight + 1
	}
	if il.Offset < 0 {
		il.Offset = 0
	}
}
