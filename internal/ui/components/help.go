package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/junkclean/internal/ui/style"
)

// HelpSection is a titled group of key bindings.
type HelpSection struct {
	Name     string
	Bindings []key.Binding
}

// RenderHelp renders the help overlay.
func RenderHelp(theme style.Theme, sections []HelpSection, width, height int) string {
	boxWidth := min(60, width-4)

	var lines []string
	lines = append(lines, theme.ModalTitle.Render("  junkclean - Keyboard Shortcuts"))
	lines = append(lines, "")

	for _, sec := range sections {
		secTitle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent).
			Render("  " + sec.Name)
		lines = append(lines, secTitle)

		for _, b := range sec.Bindings {
			h := b.Help()
			k := theme.HelpKey.
				Width(16).
				Render("    " + h.Key)
			desc := lipgloss.NewStyle().
				Foreground(theme.TextSecondary).
				Render(h.Desc)
			lines = append(lines, fmt.Sprintf("%s %s", k, desc))
		}
		lines = append(lines, "")
	}

	lines = append(lines, theme.HelpDesc.Render("  Press ? or Esc to close"))

	box := theme.ModalStyle.
		Width(max(boxWidth, 1)).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
