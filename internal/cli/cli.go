// Package cli is the line-oriented front end: it scans, prints the results
// table, asks before cleaning and reports what was freed.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sadopc/junkclean/internal/engine"
	"github.com/sadopc/junkclean/internal/fsys"
	"github.com/sadopc/junkclean/internal/model"
	"github.com/sadopc/junkclean/internal/report"
	"github.com/sadopc/junkclean/internal/util"
)

// ErrInterrupted is returned when the context is cancelled while a scan or
// clean is in progress.
var ErrInterrupted = errors.New("operation interrupted")

// Options configures a Runner.
type Options struct {
	// Root is the user root to scan.
	Root string
	// Auto cleans without asking and without pacing.
	Auto bool
	// ExportPath, when set, receives a JSON report after the run ("-" is
	// stdout).
	ExportPath string
	Version    string

	In  io.Reader
	Out io.Writer
	// Animate redraws the status line in place. Leave it off when Out is
	// not a terminal.
	Animate bool
	// Width is the table width (0 = 100).
	Width  int
	Logger *slog.Logger
}

// Runner drives one scan and, when confirmed, one clean.
type Runner struct {
	eng  *engine.Engine
	opts Options
	ui   *renderer

	status *status
	lines  chan lineResult
	quit   chan struct{}

	roots   []string
	items   []model.FoundItem
	summary model.ScanSummary
	errs    []model.CleanError
	clean   *model.CleanSummary
	start   time.Time
}

type lineResult struct {
	text string
	err  error
}

// New creates a Runner over eng.
func New(eng *engine.Engine, opts Options) *Runner {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Width <= 0 {
		opts.Width = 100
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		eng:    eng,
		opts:   opts,
		ui:     newRenderer(opts.Out, opts.Width),
		status: newStatus(opts.Out, opts.Animate),
		quit:   make(chan struct{}),
	}
}

// Run scans opts.Root and handles events until the run is over. Declining
// the confirmation is not an error. Cancelling ctx aborts the worker and
// returns ErrInterrupted.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.quit)
	roots, err := r.eng.StartScan(r.opts.Root)
	if err != nil {
		return err
	}
	r.roots = roots
	r.start = time.Now()
	r.status.Start(fmt.Sprintf("Scanning %s...", strings.Join(roots, ", ")))

	for {
		ev, err := r.eng.Next(ctx)
		if err != nil {
			return r.interrupt()
		}
		done, err := r.handle(ctx, ev)
		if err != nil || done {
			return err
		}
	}
}

func (r *Runner) handle(ctx context.Context, ev model.Event) (bool, error) {
	switch e := ev.(type) {
	case model.FoundItem:
		r.items = append(r.items, e)
	case model.ScanProgress:
		r.status.Update(fmt.Sprintf("Scanning %s... %d items found", e.Current, e.Found))
	case model.ScanSummary:
		r.summary = e
		return r.scanDone(ctx, e)
	case model.CleanProgress:
		if e.Total > 0 {
			r.status.Update(fmt.Sprintf("Cleaning... %d%%", e.Processed*100/e.Total))
		}
	case model.CleanError:
		r.opts.Logger.Debug("clean error", "path", e.Path, "err", e.Err)
		r.errs = append(r.errs, e)
	case model.CleanSummary:
		r.clean = &e
		r.cleanDone(e)
		return true, r.export()
	}
	return false, nil
}

func (r *Runner) scanDone(ctx context.Context, s model.ScanSummary) (bool, error) {
	r.status.Stop()

	if len(r.items) == 0 {
		r.ui.Panel("Scan completed",
			fmt.Sprintf("Scan completed in %s. No junk files found.", util.FormatElapsed(s.Elapsed)))
		return true, r.export()
	}

	r.ui.Table(fmt.Sprintf("junkclean - Scan result of %s", r.opts.Root), r.items, time.Now())
	message := fmt.Sprintf("Scan completed in %s. Found %s items, total size: %s",
		util.FormatElapsed(s.Elapsed), util.FormatCount(int64(s.ItemCount)), util.FormatSize(s.TotalSize))

	if !r.opts.Auto {
		r.ui.Panel("Scan completed", message, "", "Do you want to delete these files? [y/n]")
		ok, err := r.confirm(ctx)
		if err != nil {
			return true, err
		}
		if !ok {
			r.ui.Panel("Exiting", "Cleanup skipped, nothing was deleted.")
			return true, r.export()
		}
	} else {
		r.ui.Panel("Scan completed", message)
	}

	paths := make([]string, len(r.items))
	for i, it := range r.items {
		paths[i] = it.Path
	}
	if err := r.eng.StartClean(paths, !r.opts.Auto); err != nil {
		return true, err
	}
	r.status.Start("Cleaning...")
	return false, nil
}

func (r *Runner) cleanDone(s model.CleanSummary) {
	r.status.Stop()

	lines := []string{fmt.Sprintf("Successfully cleaned %d items, freed disk space: %s",
		s.Succeeded, util.FormatSize(s.Freed))}
	if free, ok := r.freeSpace(); ok {
		lines = append(lines, fmt.Sprintf("Free space on %s: %s", r.roots[0], util.FormatSize(int64(free))))
	}
	if len(r.errs) > 0 {
		lines = append(lines, "",
			fmt.Sprintf("The following %d items failed to be cleared, try re-running with root.", len(r.errs)))
		for _, e := range r.errs {
			lines = append(lines, " • "+e.Message())
		}
	}
	r.ui.Panel("Cleanup completed", lines...)
}

func (r *Runner) freeSpace() (uint64, bool) {
	sr, ok := r.eng.FS().(fsys.SpaceReporter)
	if !ok || len(r.roots) == 0 {
		return 0, false
	}
	free, err := sr.FreeSpace(r.roots[0])
	if err != nil {
		r.opts.Logger.Debug("free space unavailable", "root", r.roots[0], "err", err)
		return 0, false
	}
	return free, true
}

// confirm reads lines until the answer is yes or no. End of input counts as
// no.
func (r *Runner) confirm(ctx context.Context) (bool, error) {
	if r.lines == nil {
		r.lines = make(chan lineResult)
		go r.readLines()
	}
	for {
		r.ui.Prompt(">> ")
		select {
		case <-ctx.Done():
			return false, r.interrupt()
		case line := <-r.lines:
			if line.err != nil {
				r.ui.Newline()
				return false, nil
			}
			switch strings.ToLower(strings.TrimSpace(line.text)) {
			case "y", "yes":
				return true, nil
			case "n", "no":
				return false, nil
			}
			r.ui.Line("Please enter y or n.")
		}
	}
}

// readLines feeds confirm until input ends or the run is over.
func (r *Runner) readLines() {
	br := bufio.NewReader(r.opts.In)
	for {
		text, err := br.ReadString('\n')
		res := lineResult{text: text}
		if err != nil && text == "" {
			res = lineResult{err: err}
		}
		select {
		case r.lines <- res:
		case <-r.quit:
			return
		}
		if res.err != nil {
			return
		}
	}
}

func (r *Runner) interrupt() error {
	r.eng.Abort()
	r.eng.Wait()
	r.status.Stop()
	r.ui.Newline()
	r.ui.Panel("Exiting", "The operation has been canceled, program exited.")
	return ErrInterrupted
}

func (r *Runner) export() error {
	if r.opts.ExportPath == "" {
		return nil
	}
	rep := report.Report{
		Version: r.opts.Version,
		Roots:   r.roots,
		Items:   r.items,
		Summary: r.summary,
		Clean:   r.clean,
		Errors:  r.errs,
	}
	if err := report.Export(r.opts.ExportPath, rep); err != nil {
		return fmt.Errorf("export error: %w", err)
	}
	if r.opts.ExportPath != "-" {
		r.ui.Line("Exported to " + r.opts.ExportPath)
	}
	return nil
}
