// Package engine runs scans and cleans on a background worker and hands
// their events to a front end in emission order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sadopc/junkclean/internal/cleaner"
	"github.com/sadopc/junkclean/internal/fsys"
	"github.com/sadopc/junkclean/internal/model"
	"github.com/sadopc/junkclean/internal/pattern"
	"github.com/sadopc/junkclean/internal/scanner"
)

var (
	ErrRootNotFound   = errors.New("scan root does not exist")
	ErrNotDirectory   = errors.New("scan root is not a directory")
	ErrNothingToClean = errors.New("nothing selected to clean")
)

// Config is the fixed configuration of an Engine.
type Config struct {
	// Patterns classifies entries (nil = pattern.Default()).
	Patterns *pattern.Set
	// SystemDirs are scanned alongside the user root when they exist.
	SystemDirs []string
	// PaceTotal is the total delay spread over a paced clean
	// (0 = cleaner.DefaultPaceTotal).
	PaceTotal time.Duration
	// SizeConcurrency bounds folder sizing goroutines (0 = GOMAXPROCS).
	SizeConcurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithFS sets the filesystem the engine works on. The default is the local
// disk.
func WithFS(f fsys.FS) Option {
	return func(e *Engine) {
		e.fs = f
	}
}

// WithLogger sets a custom logger for the engine and its workers.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine owns one cancellation flag, one event queue and at most one worker.
// Starting a job while another runs is not prevented; callers start a new
// job only once Running reports false.
type Engine struct {
	cfg    Config
	fs     fsys.FS
	logger *slog.Logger

	abort   atomic.Bool
	running atomic.Bool
	wg      sync.WaitGroup
	events  *queue

	mu    sync.Mutex
	roots []string
}

// New creates an Engine.
func New(cfg Config, opts ...Option) *Engine {
	if cfg.Patterns == nil {
		cfg.Patterns = pattern.Default()
	}
	if cfg.SizeConcurrency <= 0 {
		cfg.SizeConcurrency = runtime.GOMAXPROCS(0)
	}
	e := &Engine{
		cfg:    cfg,
		fs:     fsys.OS{},
		logger: slog.New(slog.DiscardHandler),
		events: newQueue(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FS returns the filesystem the engine works on.
func (e *Engine) FS() fsys.FS { return e.fs }

// StartScan validates root, resolves the effective roots and starts a scan
// in the background. It returns the roots being scanned. Events arrive via
// Next or Drain and end with a ScanSummary unless the scan is aborted.
func (e *Engine) StartScan(root string) ([]string, error) {
	if err := e.checkRoot(root); err != nil {
		return nil, err
	}
	e.warnIfRunning("scan")

	roots := scanner.Roots(e.fs, root, e.cfg.SystemDirs)
	e.mu.Lock()
	e.roots = append([]string(nil), roots...)
	e.mu.Unlock()

	w := &scanner.Walker{
		Patterns:        e.cfg.Patterns,
		FS:              e.fs,
		Abort:           &e.abort,
		SizeConcurrency: e.cfg.SizeConcurrency,
		Logger:          e.logger.With("worker", "scan"),
	}
	e.logger.Debug("scan started", "roots", roots)
	e.launch(func() { w.Scan(roots, e.events.push) })
	return roots, nil
}

// StartClean removes paths in the background. Paths outside the roots of the
// last scan are refused. Events arrive via Next or Drain and end with a
// CleanSummary unless the clean is aborted.
func (e *Engine) StartClean(paths []string, paced bool) error {
	if len(paths) == 0 {
		return ErrNothingToClean
	}
	e.warnIfRunning("clean")

	e.mu.Lock()
	allowed := append([]string(nil), e.roots...)
	e.mu.Unlock()

	r := &cleaner.Remover{
		FS:              e.fs,
		Abort:           &e.abort,
		PaceTotal:       e.cfg.PaceTotal,
		AllowedRoots:    allowed,
		SizeConcurrency: e.cfg.SizeConcurrency,
		Logger:          e.logger.With("worker", "clean"),
	}
	batch := append([]string(nil), paths...)
	e.logger.Debug("clean started", "items", len(batch), "paced", paced)
	e.launch(func() { r.Clean(batch, paced, e.events.push) })
	return nil
}

// Abort asks the running worker to stop before its next item.
func (e *Engine) Abort() {
	e.abort.Store(true)
}

// Running reports whether a worker is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Wait blocks until the current worker exits.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Roots returns the roots of the last scan.
func (e *Engine) Roots() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.roots...)
}

// Next blocks until an event is available or ctx is done.
func (e *Engine) Next(ctx context.Context) (model.Event, error) {
	return e.events.next(ctx)
}

// Drain returns every pending event without blocking.
func (e *Engine) Drain() []model.Event {
	return e.events.drain()
}

func (e *Engine) launch(job func()) {
	e.abort.Store(false)
	e.running.Store(true)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.running.Store(false)
		job()
	}()
}

func (e *Engine) warnIfRunning(job string) {
	if e.running.Load() {
		e.logger.Warn("starting a job while another is running", "job", job)
	}
}

func (e *Engine) checkRoot(root string) error {
	info, err := e.fs.Lstat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", root, err)
	}
	if info.IsDir() {
		return nil
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		// A symlinked root is accepted when it leads to a directory.
		if _, err := e.fs.ReadDir(root); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotDirectory, root)
}
