// Package fsys is the small filesystem surface the scanner and cleaner need.
// The local disk, an SFTP client and go-billy filesystems all satisfy FS.
package fsys

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// FS is the read/remove surface used by the walker and the remover.
// Lstat must not follow symlinks. Remove deletes a file, a symlink or an
// empty directory.
type FS interface {
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.FileInfo, error)
	Remove(name string) error
	Join(elem ...string) string
}

// TreeRemover is implemented by filesystems with a native recursive delete.
// RemoveTree must never follow symlinks and keeps going past failed entries.
type TreeRemover interface {
	RemoveTree(name string) error
}

// SpaceReporter reports the free bytes on the volume holding path.
type SpaceReporter interface {
	FreeSpace(path string) (uint64, error)
}

// Exists reports whether name can be lstat'ed.
func Exists(fsys FS, name string) bool {
	_, err := fsys.Lstat(name)
	return err == nil
}

// RemoveTree deletes name and everything below it. Filesystems that
// implement TreeRemover handle it natively; otherwise the tree is walked
// through FS. Failures are collected and the walk continues.
func RemoveTree(fsys FS, name string) error {
	if tr, ok := fsys.(TreeRemover); ok {
		return tr.RemoveTree(name)
	}
	return removeWalk(fsys, name)
}

func removeWalk(fsys FS, name string) error {
	info, err := fsys.Lstat(name)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fsys.Remove(name)
	}

	children, err := fsys.ReadDir(name)
	if err != nil {
		return err
	}
	var errs []error
	for _, child := range children {
		if err := removeWalk(fsys, fsys.Join(name, child.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return fsys.Remove(name)
}

// IsWithin reports whether target is root or lies below it, comparing
// whole path components.
func IsWithin(root, target string) bool {
	_, ok := relative(root, target)
	return ok
}

// IsStrictlyWithin reports whether target lies below root and is not root
// itself.
func IsStrictlyWithin(root, target string) bool {
	rel, ok := relative(root, target)
	return ok && rel != "."
}

func relative(root, target string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
