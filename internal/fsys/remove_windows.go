//go:build windows

package fsys

import (
	"os"
	"path/filepath"
)

func removeResolved(parentPath, baseName string) error {
	return os.RemoveAll(filepath.Join(parentPath, baseName))
}
