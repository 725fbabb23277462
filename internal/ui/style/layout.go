package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column widths of an item row.
const (
	SizeWidth = 10
	AgeWidth  = 15
)

// Layout manages the arrangement of UI components within terminal dimensions.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentHeight returns the height available for the main content area.
func (l Layout) ContentHeight() int {
	h := l.Height - 4 // header + tabbar + column titles + statusbar
	if h < 1 {
		h = 1
	}
	return h
}

// ContentWidth returns the width available for the main content area.
func (l Layout) ContentWidth() int {
	if l.Width < 20 {
		return 20
	}
	return l.Width
}

// PathWidth returns the width left for the path column.
func (l Layout) PathWidth() int {
	w := l.ContentWidth() - l.rowOverhead()
	if w < 8 {
		w = 8
	}
	return w
}

// BarWidth returns the width of the clean progress bar.
func (l Layout) BarWidth() int {
	bar := l.ContentWidth() - 20
	if bar < 10 {
		bar = 10
	}
	if bar > 50 {
		bar = 50
	}
	return bar
}

// rowOverhead returns the fixed-width portion of each item row.
//
// Layout: cursor(2) + check(2) + icon(3) + path + " " + size(10) + " " + age(15)
func (l Layout) rowOverhead() int {
	return 2 + 2 + 3 + 1 + SizeWidth + 1 + AgeWidth
}

// Center centers content in the available width.
func (l Layout) Center(content string) string {
	return lipgloss.PlaceHorizontal(l.Width, lipgloss.Center, content)
}

// FullWidth pads a string with spaces to reach exactly the target visual width.
// If the string is already wider, it is returned as-is (no truncation).
func FullWidth(s string, width int) string {
	visLen := lipgloss.Width(s)
	if visLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visLen)
}
