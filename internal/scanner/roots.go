package scanner

import (
	"path/filepath"

	"github.com/sadopc/junkclean/internal/fsys"
)

// SystemDirs returns the per-OS log and temp directories scanned alongside
// the user root.
func SystemDirs(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"/var/log", "/var/logs", "/private/var/log", "/private/var/logs", "/Library/Logs"}
	case "windows":
		return []string{`C:\Windows\Temp`, `C:\Windows\Logs`}
	case "linux":
		return []string{"/var/log"}
	default:
		return nil
	}
}

// DefaultRoot returns the directory holding user home folders.
func DefaultRoot(goos string) string {
	switch goos {
	case "darwin":
		return "/Users"
	case "windows":
		return `C:\Users`
	default:
		return "/home"
	}
}

// Roots returns the effective scan roots: userRoot first, then every
// system directory that exists and neither contains nor lies inside a root
// already chosen. Containment compares whole path components; on the local
// disk symlinked spellings of the same directory are treated as equal.
func Roots(vfs fsys.FS, userRoot string, systemDirs []string) []string {
	roots := []string{userRoot}
	seen := []string{canonical(vfs, userRoot)}

	for _, dir := range systemDirs {
		if !fsys.Exists(vfs, dir) {
			continue
		}
		c := canonical(vfs, dir)
		overlaps := false
		for _, r := range seen {
			if fsys.IsWithin(r, c) || fsys.IsWithin(c, r) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		roots = append(roots, dir)
		seen = append(seen, c)
	}
	return roots
}

func canonical(vfs fsys.FS, path string) string {
	if _, ok := vfs.(fsys.OS); !ok {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
