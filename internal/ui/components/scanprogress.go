package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/junkclean/internal/model"
	"github.com/sadopc/junkclean/internal/ui/style"
	"github.com/sadopc/junkclean/internal/util"
)

// ScanStatus is what the scanning overlay shows.
type ScanStatus struct {
	Spinner  string
	Progress model.ScanProgress
	Found    int
	Size     int64
	Elapsed  time.Duration
	Stopping bool
}

// RenderScanProgress renders the scanning progress overlay.
func RenderScanProgress(theme style.Theme, st ScanStatus, width, height int) string {
	boxWidth := min(60, width-4)

	var lines []string

	label := "Scanning..."
	if st.Stopping {
		label = "Stopping..."
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		Render("  " + st.Spinner + label)

	lines = append(lines, title)
	lines = append(lines, "")

	statStyle := lipgloss.NewStyle().Foreground(theme.TextSecondary)
	lines = append(lines, statStyle.Render(fmt.Sprintf("  Visited: %s", util.FormatCount(st.Progress.Visited))))
	lines = append(lines, statStyle.Render(fmt.Sprintf("  Found:   %s", util.FormatCount(int64(st.Found)))))
	lines = append(lines, statStyle.Render(fmt.Sprintf("  Size:    %s", util.FormatSize(st.Size))))

	if st.Progress.Current != "" && boxWidth > 16 {
		current := util.TruncatePath(st.Progress.Current, boxWidth-12)
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  In:      "+current))
	}

	lines = append(lines, "")

	elapsed := fmt.Sprintf("  Elapsed: %.1fs   esc to stop", st.Elapsed.Seconds())
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render(elapsed))

	box := theme.ModalStyle.
		Width(max(boxWidth, 1)).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// RenderCleanProgress renders the clean progress overlay with a gradient bar.
func RenderCleanProgress(theme style.Theme, p model.CleanProgress, failed int, barWidth, width, height int) string {
	boxWidth := min(barWidth+12, width-4)

	ratio := 0.0
	if p.Total > 0 {
		ratio = float64(p.Processed) / float64(p.Total)
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		Render(fmt.Sprintf("  %s Cleaning... %d%%", util.IconClean, int(ratio*100))))
	lines = append(lines, "")
	lines = append(lines, "  "+theme.BarGradient(min(barWidth, max(boxWidth-8, 0)), ratio))
	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextSecondary).
		Render(fmt.Sprintf("  %d / %d items", p.Processed, p.Total)))
	if failed > 0 {
		lines = append(lines, theme.ErrorText.Render(fmt.Sprintf("  %d failed", failed)))
	}
	if p.Path != "" && boxWidth > 16 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).
			Render("  "+util.TruncatePath(p.Path, boxWidth-8)))
	}
	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  esc to stop"))

	box := theme.ModalStyle.
		Width(max(boxWidth, 1)).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
