package ui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/junkclean/internal/desktop"
	"github.com/sadopc/junkclean/internal/engine"
	"github.com/sadopc/junkclean/internal/fsys"
	"github.com/sadopc/junkclean/internal/model"
	"github.com/sadopc/junkclean/internal/report"
	"github.com/sadopc/junkclean/internal/ui/components"
	"github.com/sadopc/junkclean/internal/ui/style"
	"github.com/sadopc/junkclean/internal/util"
)

// PollInterval is how often the app drains engine events while a worker runs.
const PollInterval = 60 * time.Millisecond

// DefaultExportPath is where E writes the report when no path is configured.
const DefaultExportPath = "junkclean-report.json"

// ViewMode represents the current view.
type ViewMode int

const (
	ViewItems ViewMode = iota
	ViewBreakdown
)

// AppState represents the application state.
type AppState int

const (
	StateScanning AppState = iota
	StateBrowsing
	StateFiltering
	StateConfirmClean
	StateCleaning
	StateHelp
)

// ScanStartedMsg is sent once the engine accepted or rejected a scan.
type ScanStartedMsg struct {
	Roots []string
	Err   error
}

// CleanStartedMsg is sent once the engine accepted or rejected a clean.
type CleanStartedMsg struct {
	Err error
}

// ExportDoneMsg is sent when export completes.
type ExportDoneMsg struct {
	Path string
	Err  error
}

type desktopDoneMsg struct {
	action string
	err    error
}

type tickMsg time.Time

// App is the root Bubble Tea model.
type App struct {
	ScanPath   string
	ExportPath string
	Version    string
	// Notify sends a desktop notification when a scan or clean completes.
	Notify bool
	Logger *slog.Logger
	// Clipboard receives the OSC 52 sequence when copying a path.
	Clipboard io.Writer

	engine *engine.Engine
	local  bool

	state    AppState
	viewMode ViewMode
	width    int
	height   int

	roots    []string
	items    []model.FoundItem
	foundSz  int64
	selected map[string]bool
	rows     []model.FoundItem

	sortConfig model.SortConfig
	filter     string
	input      textinput.Model

	cursor int
	offset int

	startedAt     time.Time
	stopping      bool
	scanned       bool
	scanProgress  model.ScanProgress
	summary       *model.ScanSummary
	confirmItems  []components.ConfirmItem
	processed     []string
	cleanProgress model.CleanProgress
	cleanErrors   []model.CleanError
	lastClean     *model.CleanSummary

	spinner spinner.Model
	theme   style.Theme
	keys    KeyMap
	layout  style.Layout

	statusMsg   string
	statusError bool
	fatalErr    error
}

// NewApp creates a new App model that scans scanPath through eng.
func NewApp(eng *engine.Engine, scanPath string) *App {
	theme := style.DefaultTheme()
	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "type to filter paths"

	_, local := eng.FS().(fsys.OS)
	return &App{
		ScanPath:   scanPath,
		Logger:     slog.New(slog.DiscardHandler),
		Clipboard:  os.Stderr,
		engine:     eng,
		local:      local,
		state:      StateScanning,
		viewMode:   ViewItems,
		selected:   make(map[string]bool),
		sortConfig: model.DefaultSort(),
		input:      input,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
		theme: theme,
		keys:  DefaultKeyMap(),
	}
}

func (a *App) Init() tea.Cmd {
	return a.scanCmd()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = style.NewLayout(msg.Width, msg.Height)
		return a, nil

	case ScanStartedMsg:
		if msg.Err != nil {
			if !a.scanned {
				a.fatalErr = msg.Err
				return a, tea.Quit
			}
			a.state = StateBrowsing
			a.setStatus(fmt.Sprintf("%s %v", util.IconError, msg.Err), true)
			return a, nil
		}
		a.roots = msg.Roots
		a.startedAt = time.Now()
		return a, tea.Batch(a.tickCmd(), a.spinner.Tick)

	case CleanStartedMsg:
		if msg.Err != nil {
			a.state = StateBrowsing
			a.setStatus(fmt.Sprintf("%s %v", util.IconError, msg.Err), true)
			return a, nil
		}
		a.startedAt = time.Now()
		return a, a.tickCmd()

	case tickMsg:
		cmd := a.poll()
		if a.state == StateScanning || a.state == StateCleaning {
			return a, tea.Batch(cmd, a.tickCmd())
		}
		return a, cmd

	case spinner.TickMsg:
		if a.state != StateScanning {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ExportDoneMsg:
		if msg.Err != nil {
			a.setStatus(fmt.Sprintf("Export failed: %v", msg.Err), true)
		} else {
			a.setStatus(fmt.Sprintf("Exported to %s", msg.Path), false)
		}
		return a, nil

	case desktopDoneMsg:
		if msg.err != nil {
			a.Logger.Debug("desktop action failed", "action", msg.action, "err", msg.err)
			a.setStatus(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

// poll drains pending engine events and applies them in order.
func (a *App) poll() tea.Cmd {
	// Running is read before draining: once it reports false every event
	// of the finished worker is already queued.
	running := a.engine.Running()

	var cmds []tea.Cmd
	found := false
	for _, ev := range a.engine.Drain() {
		if _, ok := ev.(model.FoundItem); ok {
			found = true
		}
		cmds = append(cmds, a.applyEvent(ev))
	}
	if found {
		a.refreshRows()
	}

	if a.stopping && !running && (a.state == StateScanning || a.state == StateCleaning) {
		a.finishAbort()
	}
	return tea.Batch(cmds...)
}

func (a *App) applyEvent(ev model.Event) tea.Cmd {
	switch e := ev.(type) {
	case model.FoundItem:
		a.items = append(a.items, e)
		a.selected[e.Path] = true
		a.foundSz += e.Size

	case model.ScanProgress:
		a.scanProgress = e

	case model.ScanSummary:
		a.summary = &e
		a.scanned = true
		a.stopping = false
		a.state = StateBrowsing
		a.refreshRows()
		title := fmt.Sprintf("%s Scan completed in %s", util.IconScan, util.FormatElapsed(e.Elapsed))
		body := fmt.Sprintf("Found %d items, total size: %s", e.ItemCount, util.FormatSize(e.TotalSize))
		a.setStatus(title+". "+body, false)
		return a.notifyCmd(title, body)

	case model.CleanProgress:
		a.cleanProgress = e
		a.processed = append(a.processed, e.Path)

	case model.CleanError:
		a.cleanErrors = append(a.cleanErrors, e)
		a.Logger.Debug("clean error", "path", e.Path, "err", e.Err)

	case model.CleanSummary:
		a.lastClean = &e
		a.dropProcessed()
		a.stopping = false
		a.state = StateBrowsing
		a.setStatus(fmt.Sprintf("%s Cleanup completed. Success: %d, Failed: %d. Freed disk space: %s",
			util.IconDone, e.Succeeded, e.Total-e.Succeeded, util.FormatSize(e.Freed)), e.Succeeded < e.Total)
		return a.notifyCmd(util.IconDone+" Cleanup completed",
			fmt.Sprintf("Successfully freed %s of disk space", util.FormatSize(e.Freed)))
	}
	return nil
}

func (a *App) finishAbort() {
	a.stopping = false
	if a.state == StateCleaning {
		a.dropProcessed()
		a.setStatus(util.IconWarning+" Clean cancelled", true)
	} else {
		a.scanned = true
		a.setStatus(util.IconWarning+" Scan cancelled", true)
	}
	a.state = StateBrowsing
	a.refreshRows()
}

// dropProcessed removes cleaned items from the list. Items that failed stay.
func (a *App) dropProcessed() {
	failed := make(map[string]bool, len(a.cleanErrors))
	for _, e := range a.cleanErrors {
		failed[e.Path] = true
	}
	gone := make(map[string]bool, len(a.processed))
	for _, p := range a.processed {
		if !failed[p] {
			gone[p] = true
		}
	}

	kept := a.items[:0]
	a.foundSz = 0
	for _, it := range a.items {
		if gone[it.Path] {
			delete(a.selected, it.Path)
			continue
		}
		kept = append(kept, it)
		a.foundSz += it.Size
	}
	a.items = kept
	a.refreshRows()
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		a.engine.Abort()
		return a, tea.Quit
	}

	switch a.state {
	case StateScanning, StateCleaning:
		switch {
		case key.Matches(msg, a.keys.Quit):
			a.engine.Abort()
			return a, tea.Quit
		case key.Matches(msg, a.keys.Abort):
			a.engine.Abort()
			a.stopping = true
		}
		return a, nil

	case StateHelp:
		if key.Matches(msg, a.keys.Help) || msg.String() == "esc" {
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateConfirmClean:
		if key.Matches(msg, a.keys.ConfirmYes) {
			return a, a.cleanCmd()
		}
		if key.Matches(msg, a.keys.ConfirmNo) {
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateFiltering:
		return a.handleFilterKey(msg)

	case StateBrowsing:
		return a.handleBrowsingKey(msg)
	}

	return a, nil
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.input.Blur()
		a.state = StateBrowsing
		return a, nil
	case "esc":
		a.input.Blur()
		a.input.Reset()
		a.filter = ""
		a.state = StateBrowsing
		a.refreshRows()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if v := a.input.Value(); v != a.filter {
		a.filter = v
		a.cursor = 0
		a.offset = 0
		a.refreshRows()
	}
	return a, cmd
}

func (a *App) handleBrowsingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.statusMsg = ""
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.state = StateHelp
		return a, tea.ClearScreen

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.PageUp):
		a.moveCursor(-a.layout.ContentHeight())
	case key.Matches(msg, a.keys.PageDown):
		a.moveCursor(a.layout.ContentHeight())
	case key.Matches(msg, a.keys.Top):
		a.moveCursor(-len(a.rows))
	case key.Matches(msg, a.keys.Bottom):
		a.moveCursor(len(a.rows))

	case key.Matches(msg, a.keys.ViewItems):
		a.viewMode = ViewItems
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.ViewBreakdown):
		a.viewMode = ViewBreakdown
		return a, tea.ClearScreen

	case key.Matches(msg, a.keys.SortSize):
		a.toggleSort(model.SortBySize)
	case key.Matches(msg, a.keys.SortPath):
		a.toggleSort(model.SortByPath)
	case key.Matches(msg, a.keys.SortMtime):
		a.toggleSort(model.SortByMtime)
	case key.Matches(msg, a.keys.SortKind):
		a.toggleSort(model.SortByKind)

	case key.Matches(msg, a.keys.Select):
		a.toggleSelect()
	case key.Matches(msg, a.keys.SelectAll):
		a.toggleSelectAll()

	case key.Matches(msg, a.keys.Filter):
		a.state = StateFiltering
		a.input.SetValue(a.filter)
		a.input.CursorEnd()
		return a, a.input.Focus()

	case key.Matches(msg, a.keys.Abort):
		if a.filter != "" {
			a.filter = ""
			a.input.Reset()
			a.refreshRows()
		}

	case key.Matches(msg, a.keys.Clean):
		a.prepareClean()
		if a.state == StateConfirmClean {
			return a, tea.ClearScreen
		}

	case key.Matches(msg, a.keys.Export):
		return a, a.exportCmd()

	case key.Matches(msg, a.keys.Rescan):
		a.resetResults()
		a.state = StateScanning
		return a, tea.Batch(tea.ClearScreen, a.scanCmd())

	case key.Matches(msg, a.keys.Open):
		return a, a.desktopCmd("open", desktop.Open)
	case key.Matches(msg, a.keys.Reveal):
		return a, a.desktopCmd("reveal", desktop.Reveal)
	case key.Matches(msg, a.keys.CopyPath):
		return a, a.copyPath()
	}

	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	switch a.state {
	case StateScanning:
		st := components.ScanStatus{
			Spinner:  a.spinner.View(),
			Progress: a.scanProgress,
			Found:    len(a.items),
			Size:     a.foundSz,
			Elapsed:  time.Since(a.startedAt),
			Stopping: a.stopping,
		}
		return components.RenderScanProgress(a.theme, st, a.width, a.height)

	case StateCleaning:
		return components.RenderCleanProgress(a.theme, a.cleanProgress, len(a.cleanErrors),
			a.layout.BarWidth(), a.width, a.height)

	case StateHelp:
		return components.RenderHelp(a.theme, a.helpSections(), a.width, a.height)

	case StateConfirmClean:
		return components.RenderConfirmDialog(a.theme, a.confirmItems, a.width, a.height)

	case StateBrowsing, StateFiltering:
		return a.renderBrowsing()
	}

	return ""
}

func (a *App) renderBrowsing() string {
	header := components.RenderHeader(a.theme, a.roots, len(a.items), a.foundSz, a.width)
	tabBar := components.RenderTabBar(a.theme, int(a.viewMode), a.sortLabel(), a.filter, a.width)

	var content string
	switch a.viewMode {
	case ViewItems:
		il := &components.ItemList{
			Theme:    a.theme,
			Layout:   a.layout,
			Items:    a.rows,
			Cursor:   a.cursor,
			Offset:   a.offset,
			Selected: a.selected,
			Now:      time.Now(),
		}
		il.EnsureVisible()
		a.offset = il.Offset
		content = il.Render()

	case ViewBreakdown:
		content = components.RenderBreakdown(a.theme, model.Breakdown(a.rows),
			a.layout.ContentWidth(), a.layout.ContentHeight()+1)
	}

	var bottom string
	if a.state == StateFiltering {
		bottom = a.theme.StatusBarStyle.Width(a.width).Render(" " + a.input.View())
	} else {
		count, size := a.selectedStats()
		bottom = components.RenderStatusBar(a.theme, components.StatusInfo{
			Shown:         len(a.rows),
			Total:         len(a.items),
			SelectedCount: count,
			SelectedSize:  size,
			Message:       a.statusMsg,
			IsError:       a.statusError,
		}, a.width)
	}

	return header + "\n" + tabBar + "\n" + content + "\n" + bottom
}

func (a *App) helpSections() []components.HelpSection {
	names := []string{"Navigation", "Views & Sorting", "Actions", "General"}
	groups := a.keys.helpSections()
	sections := make([]components.HelpSection, len(groups))
	for i, g := range groups {
		sections[i] = components.HelpSection{Name: names[i], Bindings: g}
	}
	return sections
}

func (a *App) sortLabel() string {
	arrow := "↓"
	if a.sortConfig.Order == model.SortAsc {
		arrow = "↑"
	}
	return a.sortConfig.Field.String() + " " + arrow
}

func (a *App) setStatus(msg string, isErr bool) {
	a.statusMsg = msg
	a.statusError = isErr
}

func (a *App) moveCursor(delta int) {
	a.cursor += delta
	if a.cursor >= len(a.rows) {
		a.cursor = len(a.rows) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) toggleSort(field model.SortField) {
	if a.sortConfig.Field == field {
		if a.sortConfig.Order == model.SortDesc {
			a.sortConfig.Order = model.SortAsc
		} else {
			a.sortConfig.Order = model.SortDesc
		}
	} else {
		a.sortConfig.Field = field
		a.sortConfig.Order = model.SortDesc
	}
	a.refreshRows()
}

func (a *App) toggleSelect() {
	if a.cursor >= len(a.rows) {
		return
	}
	p := a.rows[a.cursor].Path
	a.selected[p] = !a.selected[p]
	a.moveCursor(1)
}

// toggleSelectAll selects every shown row, or clears them when all are
// already selected.
func (a *App) toggleSelectAll() {
	all := true
	for _, r := range a.rows {
		if !a.selected[r.Path] {
			all = false
			break
		}
	}
	for _, r := range a.rows {
		a.selected[r.Path] = !all
	}
}

func (a *App) selectedStats() (int, int64) {
	var count int
	var size int64
	for _, r := range a.rows {
		if a.selected[r.Path] {
			count++
			size += r.Size
		}
	}
	return count, size
}

// refreshRows rebuilds the shown rows from the found items, the filter and
// the sort order.
func (a *App) refreshRows() {
	needle := strings.ToLower(a.filter)
	rows := make([]model.FoundItem, 0, len(a.items))
	for _, it := range a.items {
		if needle == "" || strings.Contains(strings.ToLower(it.Path), needle) {
			rows = append(rows, it)
		}
	}
	model.SortItems(rows, a.sortConfig)
	a.rows = rows
	a.moveCursor(0)
}

func (a *App) resetResults() {
	a.items = nil
	a.rows = nil
	a.foundSz = 0
	a.selected = make(map[string]bool)
	a.summary = nil
	a.scanProgress = model.ScanProgress{}
	a.lastClean = nil
	a.cleanErrors = nil
	a.cursor = 0
	a.offset = 0
}

func (a *App) prepareClean() {
	var items []components.ConfirmItem
	for _, r := range a.rows {
		if a.selected[r.Path] {
			items = append(items, components.ConfirmItem{
				Path:  r.Path,
				Size:  r.Size,
				IsDir: r.Kind == model.KindFolder,
			})
		}
	}
	if len(items) == 0 {
		a.setStatus("Nothing selected", true)
		return
	}
	a.confirmItems = items
	a.state = StateConfirmClean
}

func (a *App) scanCmd() tea.Cmd {
	eng := a.engine
	root := a.ScanPath
	return func() tea.Msg {
		roots, err := eng.StartScan(root)
		return ScanStartedMsg{Roots: roots, Err: err}
	}
}

func (a *App) cleanCmd() tea.Cmd {
	paths := make([]string, len(a.confirmItems))
	for i, it := range a.confirmItems {
		paths[i] = it.Path
	}
	a.processed = nil
	a.cleanErrors = nil
	a.cleanProgress = model.CleanProgress{Total: len(paths)}
	a.state = StateCleaning

	eng := a.engine
	return tea.Batch(tea.ClearScreen, func() tea.Msg {
		return CleanStartedMsg{Err: eng.StartClean(paths, true)}
	})
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) notifyCmd(title, body string) tea.Cmd {
	if !a.Notify {
		return nil
	}
	logger := a.Logger
	return func() tea.Msg {
		if err := desktop.Notify(title, body); err != nil {
			logger.Debug("notification failed", "err", err)
		}
		return nil
	}
}

func (a *App) currentPath() (string, bool) {
	if a.viewMode != ViewItems || a.cursor >= len(a.rows) {
		return "", false
	}
	return a.rows[a.cursor].Path, true
}

func (a *App) desktopCmd(action string, fn func(string) error) tea.Cmd {
	p, ok := a.currentPath()
	if !ok {
		return nil
	}
	if !a.local {
		a.setStatus(action+" is not available for remote scans", true)
		return nil
	}
	return func() tea.Msg {
		return desktopDoneMsg{action: action, err: fn(p)}
	}
}

func (a *App) copyPath() tea.Cmd {
	p, ok := a.currentPath()
	if !ok {
		return nil
	}
	if err := desktop.Copy(a.Clipboard, p); err != nil {
		a.setStatus(fmt.Sprintf("copy failed: %v", err), true)
		return nil
	}
	a.setStatus("Copied "+p, false)
	return nil
}

// FatalError returns the error that ended the app, if any.
func (a *App) FatalError() error { return a.fatalErr }

func (a *App) exportCmd() tea.Cmd {
	if !a.scanned {
		return nil
	}

	exportPath := a.ExportPath
	if exportPath == "" {
		exportPath = DefaultExportPath
	}

	summary := model.ScanSummary{TotalSize: a.foundSz, ItemCount: len(a.items)}
	if a.summary != nil {
		summary.Elapsed = a.summary.Elapsed
	}
	r := report.Report{
		Version: a.Version,
		Roots:   append([]string(nil), a.roots...),
		Items:   append([]model.FoundItem(nil), a.items...),
		Summary: summary,
		Clean:   a.lastClean,
		Errors:  append([]model.CleanError(nil), a.cleanErrors...),
	}
	return func() tea.Msg {
		return ExportDoneMsg{Path: exportPath, Err: report.Export(exportPath, r)}
	}
}
