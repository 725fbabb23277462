// Package report writes scan results as JSON.
package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sadopc/junkclean/internal/model"
)

// Output shape:
// {"progname":"junkclean","progver":"1.0","timestamp":1234567890,
//  "roots":["/home"],
//  "items":[
//   {"path":"/home/a/x.log","kind":"file","size":10,"mtime":...,"rule":"ext:.log","category":"Logs"},
//   ...
//  ],
//  "summary":{"total_size":10,"items":1,"elapsed_ms":12},
//  "clean":{"freed":10,"succeeded":1,"total":1,"errors":[]}}
//
// "clean" is present only when the items were cleaned.

// Report is everything a run found and, optionally, what cleaning did.
type Report struct {
	Version string
	Roots   []string
	Items   []model.FoundItem
	Summary model.ScanSummary
	// Clean and Errors are set after a clean.
	Clean  *model.CleanSummary
	Errors []model.CleanError
}

type header struct {
	Progname  string   `json:"progname"`
	Progver   string   `json:"progver"`
	Timestamp int64    `json:"timestamp"`
	Roots     []string `json:"roots"`
}

type itemEntry struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Size     int64  `json:"size"`
	Mtime    int64  `json:"mtime,omitempty"`
	Rule     string `json:"rule"`
	Category string `json:"category"`
}

type summaryEntry struct {
	TotalSize int64 `json:"total_size"`
	Items     int   `json:"items"`
	ElapsedMS int64 `json:"elapsed_ms"`
}

type cleanEntry struct {
	Freed     int64        `json:"freed"`
	Succeeded int          `json:"succeeded"`
	Total     int          `json:"total"`
	Errors    []errorEntry `json:"errors"`
}

type errorEntry struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

// writeJSON marshals v and writes it, recording any error.
func (ew *errWriter) writeJSON(v any) {
	if ew.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		ew.err = err
		return
	}
	_, ew.err = ew.w.Write(data)
}

// Export writes r to path, or to stdout when path is "-". Files are written
// to a temp file first and renamed on success, so a partial report is never
// left behind.
func Export(path string, r Report) (retErr error) {
	if path == "-" {
		return Write(os.Stdout, r)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".junkclean-report-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create report file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := Write(tmp, r); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// On Windows, Rename cannot replace an existing destination.
		if runtime.GOOS != "windows" {
			return err
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("cannot replace report file %s: %w", path, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			return err
		}
	}
	return nil
}

// Write streams r as JSON to out, one item per line.
func Write(out io.Writer, r Report) error {
	bw := bufio.NewWriterSize(out, 64*1024)
	ew := &errWriter{w: bw}

	version := r.Version
	if version == "" {
		version = "dev"
	}
	roots := r.Roots
	if roots == nil {
		roots = []string{}
	}

	// The header fields open the top-level object.
	ew.WriteString(`{"progname":"junkclean","progver":`)
	ew.writeJSON(version)
	ew.WriteString(`,"timestamp":`)
	ew.writeJSON(time.Now().Unix())
	ew.WriteString(`,"roots":`)
	ew.writeJSON(roots)

	ew.WriteString(",\n\"items\":[")
	for i, it := range r.Items {
		if i > 0 {
			ew.WriteString(",")
		}
		ew.WriteString("\n")
		ew.writeJSON(toItemEntry(it))
	}
	ew.WriteString("\n],\n\"summary\":")
	ew.writeJSON(summaryEntry{
		TotalSize: r.Summary.TotalSize,
		Items:     r.Summary.ItemCount,
		ElapsedMS: r.Summary.Elapsed.Milliseconds(),
	})

	if r.Clean != nil {
		ce := cleanEntry{
			Freed:     r.Clean.Freed,
			Succeeded: r.Clean.Succeeded,
			Total:     r.Clean.Total,
			Errors:    make([]errorEntry, 0, len(r.Errors)),
		}
		for _, e := range r.Errors {
			msg := ""
			if e.Err != nil {
				msg = e.Err.Error()
			}
			ce.Errors = append(ce.Errors, errorEntry{Path: e.Path, Error: msg})
		}
		ew.WriteString(",\n\"clean\":")
		ew.writeJSON(ce)
	}
	ew.WriteString("}\n")

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

func toItemEntry(it model.FoundItem) itemEntry {
	e := itemEntry{
		Path:     it.Path,
		Kind:     "file",
		Size:     it.Size,
		Rule:     it.Rule.String(),
		Category: model.CategoryName(model.Classify(it.Rule)),
	}
	if it.Kind == model.KindFolder {
		e.Kind = "folder"
	}
	if !it.ModTime.IsZero() {
		e.Mtime = it.ModTime.Unix()
	}
	return e
}
