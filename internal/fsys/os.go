package fsys

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/disk"
)

// OS is the local filesystem.
type OS struct{}

func (OS) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }

// ReadDir returns the entries of name sorted by file name. Entries that
// vanish between listing and stat are dropped.
func (OS) ReadDir(name string) ([]fs.FileInfo, error) {
	entries, err := os.ReadDir(name)
	if err != nil {
		return nil, err
	}
	infos := make([]fs.FileInfo, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (OS) Remove(name string) error { return os.Remove(name) }

func (OS) Join(elem ...string) string { return filepath.Join(elem...) }

// RemoveTree deletes name without following symlinks anywhere below it.
func (OS) RemoveTree(name string) error {
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	return removeResolved(filepath.Dir(abs), filepath.Base(abs))
}

// FreeSpace returns the bytes available on the volume holding path.
func (OS) FreeSpace(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
