package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds all key bindings for the application.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	Select    key.Binding
	SelectAll key.Binding
	Clean     key.Binding
	Abort     key.Binding
	Filter    key.Binding
	Export    key.Binding
	Rescan    key.Binding
	Open      key.Binding
	Reveal    key.Binding
	CopyPath  key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding

	// View switching
	ViewItems     key.Binding
	ViewBreakdown key.Binding

	// Sort
	SortSize  key.Binding
	SortPath  key.Binding
	SortMtime key.Binding
	SortKind  key.Binding

	// Confirm dialog
	ConfirmYes key.Binding
	ConfirmNo  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g/home", "first item"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G/end", "last item"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select/unselect"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all/none"),
		),
		Clean: key.NewBinding(
			key.WithKeys("c", "d"),
			key.WithHelp("c", "clean selected"),
		),
		Abort: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop scan/clean"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter by path"),
		),
		Export: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export JSON report"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open item"),
		),
		Reveal: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reveal in file manager"),
		),
		CopyPath: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy path"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		ViewItems: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "item list"),
		),
		ViewBreakdown: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "category breakdown"),
		),
		SortSize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort: size"),
		),
		SortPath: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "sort: path"),
		),
		SortMtime: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "sort: modified"),
		),
		SortKind: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "sort: kind"),
		),
		ConfirmYes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		ConfirmNo: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "no"),
		),
	}
}

// helpSections groups the bindings for the help overlay.
func (k KeyMap) helpSections() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.ViewItems, k.ViewBreakdown, k.SortSize, k.SortPath, k.SortMtime, k.SortKind},
		{k.Select, k.SelectAll, k.Clean, k.Filter, k.Export, k.Rescan, k.Abort},
		{k.Open, k.Reveal, k.CopyPath, k.Help, k.Quit},
	}
}
