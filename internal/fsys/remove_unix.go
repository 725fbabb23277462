//go:build !windows

package fsys

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

func removeResolved(parentPath, baseName string) error {
	parentFD, err := unix.Open(parentPath, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer unix.Close(parentFD)

	return removeAt(parentFD, baseName, filepath.Join(parentPath, baseName))
}

// removeAt deletes name relative to parentFD. Symlinks are unlinked, never
// followed. A failing child does not stop its siblings from being removed.
// display is the full path used in returned errors.
func removeAt(parentFD int, name, display string) error {
	if err := unix.Unlinkat(parentFD, name, 0); err == nil {
		return nil
	} else if !errors.Is(err, unix.EISDIR) && !errors.Is(err, unix.EPERM) {
		return pathErr(display, err)
	}

	childFD, err := unix.Openat(parentFD, name, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
	if err != nil {
		// Type may have changed under us.
		if errors.Is(err, unix.ENOTDIR) {
			return pathErr(display, unix.Unlinkat(parentFD, name, 0))
		}
		return pathErr(display, err)
	}

	dir := os.NewFile(uintptr(childFD), display)
	entries, err := dir.ReadDir(-1)
	if err != nil {
		_ = dir.Close()
		return err
	}

	var errs []error
	for _, entry := range entries {
		err := removeAt(childFD, entry.Name(), filepath.Join(display, entry.Name()))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := dir.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return pathErr(display, unix.Unlinkat(parentFD, name, unix.AT_REMOVEDIR))
}

func pathErr(path string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOENT):
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	default:
		return &fs.PathError{Op: "remove", Path: path, Err: err}
	}
}
