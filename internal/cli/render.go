package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sadopc/junkclean/internal/model"
	"github.com/sadopc/junkclean/internal/util"
)

// timeLayout matches the "Modified" column of the results table.
const timeLayout = "2006-01-02 15:04:05"

type renderer struct {
	out   io.Writer
	width int
	now   func() time.Time

	title     lipgloss.Style
	header    lipgloss.Style
	border    lipgloss.Style
	kind      lipgloss.Style
	size      lipgloss.Style
	modified  lipgloss.Style
	panel     lipgloss.Style
	panelHead lipgloss.Style
	stamp     lipgloss.Style
	message   lipgloss.Style
}

func newRenderer(out io.Writer, width int) *renderer {
	lg := lipgloss.NewRenderer(out)
	blue := lipgloss.Color("#61AFEF")
	return &renderer{
		out:       out,
		width:     width,
		now:       time.Now,
		title:     lg.NewStyle().Bold(true).Italic(true).Foreground(lipgloss.Color("#E5C07B")).Background(lipgloss.Color("#1E3A5F")),
		header:    lg.NewStyle().Bold(true).Foreground(blue).Padding(0, 1),
		border:    lg.NewStyle().Foreground(blue),
		kind:      lg.NewStyle().Foreground(lipgloss.Color("#E06C75")).Padding(0, 1).Align(lipgloss.Center),
		size:      lg.NewStyle().Foreground(lipgloss.Color("#98C379")).Padding(0, 1).Align(lipgloss.Right),
		modified:  lg.NewStyle().Foreground(lipgloss.Color("#E5C07B")).Padding(0, 1),
		panel:     lg.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(blue).Padding(0, 1),
		panelHead: lg.NewStyle().Bold(true).Foreground(blue),
		stamp:     lg.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		message:   lg.NewStyle().Foreground(lipgloss.Color("#98C379")),
	}
}

// Table prints the found items.
func (r *renderer) Table(title string, items []model.FoundItem, now time.Time) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.border).
		Width(r.width).
		Headers("📄 Kind", "📂 Path", "📊 Size", "🕒 Modified").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.header
			}
			switch col {
			case 0:
				return r.kind
			case 2:
				return r.size
			case 3:
				return r.modified
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, it := range items {
		modified := "-"
		if !it.ModTime.IsZero() {
			modified = it.ModTime.Local().Format(timeLayout)
		}
		t.Row(it.Kind.String(), it.Path, util.FormatSize(it.Size), modified)
	}

	fmt.Fprintln(r.out, lipgloss.PlaceHorizontal(r.width, lipgloss.Center, r.title.Render(" "+title+" ")))
	fmt.Fprintln(r.out, t.String())
}

// Panel prints a bordered message box. The first line carries the time.
func (r *renderer) Panel(title string, lines ...string) {
	var b strings.Builder
	b.WriteString(r.panelHead.Render(title))
	b.WriteString("\n\n")
	stamp := fmt.Sprintf("[%s] ", r.now().Format("15:04:05"))
	indent := strings.Repeat(" ", len(stamp))
	for i, line := range lines {
		if i == 0 {
			b.WriteString(r.stamp.Render(stamp))
		} else {
			b.WriteString("\n" + indent)
		}
		b.WriteString(r.message.Render(line))
	}
	fmt.Fprintln(r.out, r.panel.Width(max(r.width-2, 20)).Render(b.String()))
}

func (r *renderer) Prompt(p string) { fmt.Fprint(r.out, p) }

func (r *renderer) Line(s string) { fmt.Fprintln(r.out, s) }

func (r *renderer) Newline() { fmt.Fprintln(r.out) }
