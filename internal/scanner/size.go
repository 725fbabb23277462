package scanner

import (
	"io/fs"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sadopc/junkclean/internal/fsys"
)

// DirSize returns the total size of the regular files below dir. Symlinks
// are not followed and unreadable entries count as zero. The immediate
// subdirectories of dir are summed by up to limit goroutines; limit <= 1
// sums serially. A set abort flag stops the walk early with a partial sum.
func DirSize(vfs fsys.FS, dir string, limit int, abort *atomic.Bool) int64 {
	entries, err := vfs.ReadDir(dir)
	if err != nil {
		return 0
	}
	if limit <= 1 {
		return sumEntries(vfs, dir, entries, abort)
	}

	var total atomic.Int64
	var g errgroup.Group
	g.SetLimit(limit)
	for _, info := range entries {
		if abort != nil && abort.Load() {
			break
		}
		mode := info.Mode()
		switch {
		case mode&fs.ModeSymlink != 0:
		case mode.IsDir():
			sub := vfs.Join(dir, info.Name())
			g.Go(func() error {
				total.Add(serialSize(vfs, sub, abort))
				return nil
			})
		case mode.IsRegular():
			total.Add(info.Size())
		}
	}
	_ = g.Wait()
	return total.Load()
}

func serialSize(vfs fsys.FS, dir string, abort *atomic.Bool) int64 {
	entries, err := vfs.ReadDir(dir)
	if err != nil {
		return 0
	}
	return sumEntries(vfs, dir, entries, abort)
}

func sumEntries(vfs fsys.FS, dir string, entries []fs.FileInfo, abort *atomic.Bool) int64 {
	var total int64
	for _, info := range entries {
		if abort != nil && abort.Load() {
			return total
		}
		mode := info.Mode()
		switch {
		case mode&fs.ModeSymlink != 0:
		case mode.IsDir():
			total += serialSize(vfs, vfs.Join(dir, info.Name()), abort)
		case mode.IsRegular():
			total += info.Size()
		}
	}
	return total
}
