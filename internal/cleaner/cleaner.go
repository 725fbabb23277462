// Package cleaner removes the items a scan found.
package cleaner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sadopc/junkclean/internal/fsys"
	"github.com/sadopc/junkclean/internal/model"
	"github.com/sadopc/junkclean/internal/scanner"
)

// DefaultPaceTotal spreads a paced clean over roughly half a second.
const DefaultPaceTotal = 500 * time.Millisecond

// ErrOutsideRoots is reported for paths that are not strictly below one of
// the allowed roots.
var ErrOutsideRoots = errors.New("refusing to delete outside the scanned roots")

// Remover deletes files and folder subtrees. A Remover is used by one clean
// at a time.
type Remover struct {
	FS fsys.FS
	// Abort is polled before every item. Nil means the clean cannot be
	// cancelled.
	Abort *atomic.Bool
	// PaceTotal is divided evenly across items when pacing (0 = default).
	PaceTotal time.Duration
	// AllowedRoots, when set, confines deletion to their descendants.
	AllowedRoots    []string
	SizeConcurrency int
	Logger          *slog.Logger

	sleep func(time.Duration)
}

type outcome int

const (
	removed outcome = iota
	failed
	missing
)

// Clean removes paths in order. A CleanProgress follows every item,
// including paths that no longer exist, which are neither successes nor
// failures. Failures are reported as CleanError and do not stop the batch.
// When paced, Clean sleeps PaceTotal/len(paths) after each item.
//
// A CleanSummary follows the last item unless the clean was aborted.
func (r *Remover) Clean(paths []string, paced bool, emit func(model.Event)) {
	start := time.Now()
	log := r.logger()
	total := len(paths)

	var pause time.Duration
	if paced && total > 0 {
		pace := r.PaceTotal
		if pace <= 0 {
			pace = DefaultPaceTotal
		}
		pause = pace / time.Duration(total)
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var freed int64
	var succeeded int
	for i, path := range paths {
		if r.Abort != nil && r.Abort.Load() {
			log.Debug("clean aborted", "processed", i, "total", total)
			return
		}

		size, res, err := r.remove(path)
		switch res {
		case removed:
			freed += size
			succeeded++
		case failed:
			log.Debug("remove failed", "path", path, "err", err)
			emit(model.CleanError{Path: path, Err: err})
		case missing:
			log.Debug("already gone", "path", path)
		}

		emit(model.CleanProgress{Processed: i + 1, Total: total, Path: path})
		if pause > 0 {
			sleep(pause)
		}
	}
	if r.Abort != nil && r.Abort.Load() {
		log.Debug("clean aborted", "processed", total, "total", total)
		return
	}

	emit(model.CleanSummary{
		Freed:     freed,
		Succeeded: succeeded,
		Total:     total,
		Elapsed:   time.Since(start),
	})
}

func (r *Remover) remove(path string) (int64, outcome, error) {
	if !r.allowed(path) {
		return 0, failed, ErrOutsideRoots
	}

	info, err := r.FS.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, missing, nil
	}
	if err != nil {
		return 0, failed, fmt.Errorf("stat: %w", err)
	}

	if !info.IsDir() {
		if err := r.FS.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return 0, missing, nil
			}
			return 0, failed, err
		}
		return info.Size(), removed, nil
	}

	size := scanner.DirSize(r.FS, path, r.SizeConcurrency, nil)
	if err := fsys.RemoveTree(r.FS, path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, missing, nil
		}
		return 0, failed, err
	}
	return size, removed, nil
}

func (r *Remover) allowed(path string) bool {
	if len(r.AllowedRoots) == 0 {
		return true
	}
	for _, root := range r.AllowedRoots {
		if fsys.IsStrictlyWithin(root, path) {
			return true
		}
	}
	return false
}

func (r *Remover) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}
