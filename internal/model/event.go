// Package model holds the events the engine emits and the found-item model
// the front ends render.
package model

import (
	"time"

	"github.com/sadopc/junkclean/internal/pattern"
)

// Kind tells files and folders apart.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "Folder"
	}
	return "File"
}

// Event is emitted by a scan or clean worker. The set of cases is closed;
// consumers switch on the concrete type.
type Event interface {
	isEvent()
}

// FoundItem is one junk file or claimed folder. Size is the file size or
// the recursive size of the folder.
type FoundItem struct {
	Path    string
	Kind    Kind
	Size    int64
	ModTime time.Time
	Rule    pattern.Rule
}

func (FoundItem) isEvent() {}

// ScanProgress reports walker position. It is throttled and never affects
// totals.
type ScanProgress struct {
	Visited int64
	Found   int
	Current string
}

func (ScanProgress) isEvent() {}

// ScanSummary is emitted once when a scan completes without being aborted.
type ScanSummary struct {
	TotalSize int64
	ItemCount int
	Elapsed   time.Duration
}

func (ScanSummary) isEvent() {}

// CleanProgress is emitted after every processed item.
type CleanProgress struct {
	Processed int
	Total     int
	Path      string
}

func (CleanProgress) isEvent() {}

// CleanError reports a path that could not be removed.
type CleanError struct {
	Path string
	Err  error
}

func (CleanError) isEvent() {}

// Message is the human-readable failure text.
func (e CleanError) Message() string {
	if e.Err == nil {
		return e.Path
	}
	return e.Path + ": " + e.Err.Error()
}

// CleanSummary is emitted once when a clean completes without being aborted.
type CleanSummary struct {
	Freed     int64
	Succeeded int
	Total     int
	Elapsed   time.Duration
}

func (CleanSummary) isEvent() {}
