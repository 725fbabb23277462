// Package scanner walks directory trees and reports junk entries.
package scanner

import (
	"io/fs"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sadopc/junkclean/internal/fsys"
	"github.com/sadopc/junkclean/internal/model"
	"github.com/sadopc/junkclean/internal/pattern"
)

// DefaultProgressInterval is the minimum gap between ScanProgress events.
const DefaultProgressInterval = 100 * time.Millisecond

// Walker finds junk below a set of roots. A Walker is used by one scan at a
// time.
type Walker struct {
	Patterns *pattern.Set
	FS       fsys.FS
	// Abort is polled before every entry. Nil means the scan cannot be
	// cancelled.
	Abort *atomic.Bool
	// SizeConcurrency bounds the goroutines summing a claimed folder
	// (0 = serial).
	SizeConcurrency int
	// ProgressInterval throttles ScanProgress (0 = default, <0 = never).
	ProgressInterval time.Duration
	Logger           *slog.Logger
}

type walk struct {
	*Walker
	emit     func(model.Event)
	log      *slog.Logger
	progress throttle

	visited   int64
	found     int
	totalSize int64
}

// Scan walks every root depth-first in name order and emits a FoundItem for
// each junk file and each claimed folder. Roots themselves are never
// classified. Symlinks are skipped and never followed. A matched folder is
// reported once and not descended. Unreadable entries are skipped.
//
// A ScanSummary follows the last item unless the scan was aborted, in which
// case Scan returns without one.
func (w *Walker) Scan(roots []string, emit func(model.Event)) {
	start := time.Now()
	s := &walk{
		Walker:   w,
		emit:     emit,
		log:      w.logger(),
		progress: newThrottle(w.ProgressInterval, start),
	}

	for _, root := range roots {
		if s.aborted() {
			s.log.Debug("scan aborted", "visited", s.visited, "found", s.found)
			return
		}
		s.log.Debug("scanning root", "root", root)
		if !s.dir(root) {
			s.log.Debug("scan aborted", "visited", s.visited, "found", s.found)
			return
		}
	}
	if s.aborted() {
		s.log.Debug("scan aborted", "visited", s.visited, "found", s.found)
		return
	}

	emit(model.ScanSummary{
		TotalSize: s.totalSize,
		ItemCount: s.found,
		Elapsed:   time.Since(start),
	})
}

// dir visits the children of path. It returns false once the scan has been
// aborted.
func (s *walk) dir(path string) bool {
	entries, err := s.FS.ReadDir(path)
	if err != nil {
		s.log.Debug("skipping unreadable directory", "path", path, "err", err)
		return !s.aborted()
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, info := range entries {
		if s.aborted() {
			return false
		}
		s.visited++

		name := info.Name()
		full := s.FS.Join(path, name)
		s.reportProgress(full)

		mode := info.Mode()
		switch {
		case mode&fs.ModeSymlink != 0:
			continue

		case mode.IsDir():
			rule, ok := s.Patterns.MatchFolder(name)
			if !ok {
				if !s.dir(full) {
					return false
				}
				continue
			}
			size := DirSize(s.FS, full, s.SizeConcurrency, s.Abort)
			if s.aborted() {
				return false
			}
			s.record(model.FoundItem{
				Path:    full,
				Kind:    model.KindFolder,
				Size:    size,
				ModTime: info.ModTime(),
				Rule:    rule,
			})

		case mode.IsRegular():
			rule, ok := s.Patterns.MatchFile(name)
			if !ok {
				continue
			}
			s.record(model.FoundItem{
				Path:    full,
				Kind:    model.KindFile,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				Rule:    rule,
			})
		}
	}
	return true
}

func (s *walk) record(item model.FoundItem) {
	s.found++
	s.totalSize += item.Size
	s.emit(item)
}

func (s *walk) reportProgress(current string) {
	if !s.progress.ready(time.Now()) {
		return
	}
	s.emit(model.ScanProgress{Visited: s.visited, Found: s.found, Current: current})
}

func (s *walk) aborted() bool {
	return s.Abort != nil && s.Abort.Load()
}

func (w *Walker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.New(slog.DiscardHandler)
}
