package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/junkclean/internal/fsys"
	"github.com/sadopc/junkclean/internal/model"
	"github.com/sadopc/junkclean/internal/pattern"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func memFile(t *testing.T, mem billy.Filesystem, path string, size int) {
	t.Helper()
	require.NoError(t, mem.MkdirAll(filepath.Dir(path), 0o755))
	f, err := mem.Create(path)
	require.NoError(t, err)
	_, err = f.Write(make([]byte, size))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func newWalker(vfs fsys.FS) *Walker {
	return &Walker{
		Patterns:         pattern.Default(),
		FS:               vfs,
		Abort:            new(atomic.Bool),
		ProgressInterval: -1,
	}
}

func collect(w *Walker, roots ...string) []model.Event {
	var events []model.Event
	w.Scan(roots, func(ev model.Event) { events = append(events, ev) })
	return events
}

func foundItems(events []model.Event) []model.FoundItem {
	var items []model.FoundItem
	for _, ev := range events {
		if it, ok := ev.(model.FoundItem); ok {
			items = append(items, it)
		}
	}
	return items
}

func summaries(events []model.Event) []model.ScanSummary {
	var out []model.ScanSummary
	for _, ev := range events {
		if s, ok := ev.(model.ScanSummary); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestScan_ClassifiesFilesAndFolders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.log"), 10)
	writeFile(t, filepath.Join(root, "notes.tmp"), 5)
	writeFile(t, filepath.Join(root, "keep.txt"), 5)
	writeFile(t, filepath.Join(root, "Cache", "blob.bin"), 20)

	events := collect(newWalker(fsys.OS{}), root)

	items := foundItems(events)
	require.Len(t, items, 3)
	assert.Equal(t, filepath.Join(root, "Cache"), items[0].Path)
	assert.Equal(t, model.KindFolder, items[0].Kind)
	assert.Equal(t, int64(20), items[0].Size)
	assert.Equal(t, "folder:(?i)Cache", items[0].Rule.String())
	assert.Equal(t, filepath.Join(root, "a.log"), items[1].Path)
	assert.Equal(t, int64(10), items[1].Size)
	assert.Equal(t, filepath.Join(root, "notes.tmp"), items[2].Path)
	assert.Equal(t, int64(5), items[2].Size)

	sums := summaries(events)
	require.Len(t, sums, 1)
	assert.Equal(t, int64(35), sums[0].TotalSize)
	assert.Equal(t, 3, sums[0].ItemCount)
	assert.IsType(t, model.ScanSummary{}, events[len(events)-1], "summary must be last")
}

func TestScan_ExtensionsIgnoreCase(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "DEBUG.LOG"), 1)
	writeFile(t, filepath.Join(root, "sub", "Session.Tmp"), 1)

	items := foundItems(collect(newWalker(fsys.OS{}), root))
	assert.Len(t, items, 2)
}

func TestScan_ClaimedFolderReportedOnce(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/u/logs/app.log", 7)
	memFile(t, mem, "/home/u/logs/tmp/x.tmp", 3)
	memFile(t, mem, "/home/u/logs/Cache/y.cache", 2)
	memFile(t, mem, "/home/u/logs/plain.dat", 1)

	items := foundItems(collect(newWalker(mem), "/home"))
	require.Len(t, items, 1)
	assert.Equal(t, "/home/u/logs", items[0].Path)
	assert.Equal(t, int64(13), items[0].Size)
}

func TestScan_RootIsNotClassified(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/logs/keep.txt", 1)
	memFile(t, mem, "/logs/a.log", 1)

	items := foundItems(collect(newWalker(mem), "/logs"))
	require.Len(t, items, 1)
	assert.Equal(t, "/logs/a.log", items[0].Path)
}

func TestScan_SymlinksSkipped(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "inner.log"), 4)
	writeFile(t, filepath.Join(outside, "target.log"), 4)
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "Cache")))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "docs")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "target.log"), filepath.Join(root, "link.log")))

	events := collect(newWalker(fsys.OS{}), root)
	assert.Empty(t, foundItems(events))
	sums := summaries(events)
	require.Len(t, sums, 1)
	assert.Zero(t, sums[0].TotalSize)
	assert.Zero(t, sums[0].ItemCount)
}

func TestScan_SymlinksInsideClaimedFolderNotCounted(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/big/huge.bin", 1000)
	memFile(t, mem, "/home/tmp/small.bin", 3)
	require.NoError(t, mem.Symlink("/big", "/home/tmp/escape"))

	items := foundItems(collect(newWalker(mem), "/home"))
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].Size)
}

func TestScan_AbortBeforeStart(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/a.log", 1)

	w := newWalker(mem)
	w.Abort.Store(true)
	assert.Empty(t, collect(w, "/home"))
}

func TestScan_AbortMidScanEmitsNoSummary(t *testing.T) {
	mem := memfs.New()
	for _, name := range []string{"a.log", "b.log", "c.log", "d.log"} {
		memFile(t, mem, "/home/"+name, 1)
	}

	w := newWalker(mem)
	var events []model.Event
	w.Scan([]string{"/home"}, func(ev model.Event) {
		events = append(events, ev)
		if _, ok := ev.(model.FoundItem); ok {
			w.Abort.Store(true)
		}
	})

	assert.Len(t, foundItems(events), 1)
	assert.Empty(t, summaries(events))
}

func TestScan_AbortOnLastItemEmitsNoSummary(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/a.log", 1)

	w := newWalker(mem)
	var events []model.Event
	w.Scan([]string{"/home"}, func(ev model.Event) {
		events = append(events, ev)
		if _, ok := ev.(model.FoundItem); ok {
			w.Abort.Store(true)
		}
	})

	assert.Len(t, foundItems(events), 1)
	assert.Empty(t, summaries(events))
}

func TestScan_MultipleRootsAccumulate(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/a.log", 2)
	memFile(t, mem, "/var/log/syslog.log", 3)

	events := collect(newWalker(mem), "/home", "/var/log")
	items := foundItems(events)
	require.Len(t, items, 2)
	assert.Equal(t, "/home/a.log", items[0].Path)
	assert.Equal(t, "/var/log/syslog.log", items[1].Path)
	assert.Equal(t, int64(5), summaries(events)[0].TotalSize)
}

// faultyFS fails ReadDir for selected directories and can inject entries.
type faultyFS struct {
	fsys.FS
	broken map[string]bool
	extra  map[string][]fs.FileInfo
}

func (f faultyFS) ReadDir(name string) ([]fs.FileInfo, error) {
	if f.broken[name] {
		return nil, fs.ErrPermission
	}
	infos, err := f.FS.ReadDir(name)
	return append(infos, f.extra[name]...), err
}

type fakeInfo struct {
	name string
	mode fs.FileMode
	size int64
}

func (i fakeInfo) Name() string       { return i.name }
func (i fakeInfo) Size() int64        { return i.size }
func (i fakeInfo) Mode() fs.FileMode  { return i.mode }
func (i fakeInfo) ModTime() time.Time { return time.Time{} }
func (i fakeInfo) IsDir() bool        { return i.mode.IsDir() }
func (i fakeInfo) Sys() any           { return nil }

func TestScan_UnreadableDirectorySkipped(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/private/secret.log", 1)
	memFile(t, mem, "/home/public/ok.log", 1)

	w := newWalker(faultyFS{FS: mem, broken: map[string]bool{"/home/private": true}})
	events := collect(w, "/home")

	items := foundItems(events)
	require.Len(t, items, 1)
	assert.Equal(t, "/home/public/ok.log", items[0].Path)
	assert.Len(t, summaries(events), 1)
}

func TestScan_NonRegularFilesIgnored(t *testing.T) {
	mem := memfs.New()
	require.NoError(t, mem.MkdirAll("/home", 0o755))

	w := newWalker(faultyFS{FS: mem, extra: map[string][]fs.FileInfo{
		"/home": {
			fakeInfo{name: "pipe.log", mode: fs.ModeNamedPipe},
			fakeInfo{name: "sock.tmp", mode: fs.ModeSocket},
			fakeInfo{name: "dev.log", mode: fs.ModeDevice},
		},
	}})
	events := collect(w, "/home")
	assert.Empty(t, foundItems(events))
	assert.Len(t, summaries(events), 1)
}

func TestScan_MissingRootEndsWithEmptySummary(t *testing.T) {
	events := collect(newWalker(memfs.New()), "/nowhere")
	require.Len(t, events, 1)
	sum, ok := events[0].(model.ScanSummary)
	require.True(t, ok)
	assert.Zero(t, sum.TotalSize)
	assert.Zero(t, sum.ItemCount)
}

func TestScan_ProgressDoesNotAffectTotals(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/a.log", 4)
	memFile(t, mem, "/home/b/c.tmp", 6)

	w := newWalker(mem)
	w.ProgressInterval = time.Nanosecond
	events := collect(w, "/home")

	var progress []model.ScanProgress
	for _, ev := range events {
		if p, ok := ev.(model.ScanProgress); ok {
			progress = append(progress, p)
		}
	}
	assert.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i].Visited, progress[i-1].Visited)
	}
	sums := summaries(events)
	require.Len(t, sums, 1)
	assert.Equal(t, int64(10), sums[0].TotalSize)
	assert.Equal(t, 2, sums[0].ItemCount)
}

func TestScan_SummaryMatchesFoundItems(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/x/.DS_Store", 9)
	memFile(t, mem, "/home/x/y/old.swp", 11)
	memFile(t, mem, "/home/x/temp/t", 13)
	memFile(t, mem, "/home/x/z.txt", 100)

	events := collect(newWalker(mem), "/home")
	var size int64
	items := foundItems(events)
	for _, it := range items {
		size += it.Size
	}
	sums := summaries(events)
	require.Len(t, sums, 1)
	assert.Equal(t, size, sums[0].TotalSize)
	assert.Equal(t, len(items), sums[0].ItemCount)
	assert.Equal(t, int64(33), size)
}

func TestDirSize(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/c/a.bin", 1)
	memFile(t, mem, "/c/d1/b.bin", 2)
	memFile(t, mem, "/c/d1/d2/c.bin", 4)
	memFile(t, mem, "/c/d3/d.bin", 8)
	memFile(t, mem, "/outside/e.bin", 100)
	require.NoError(t, mem.Symlink("/outside", "/c/d3/link"))

	for _, limit := range []int{0, 1, 4} {
		assert.Equal(t, int64(15), DirSize(mem, "/c", limit, nil), "limit %d", limit)
	}
	assert.Zero(t, DirSize(mem, "/missing", 4, nil))

	aborted := new(atomic.Bool)
	aborted.Store(true)
	assert.Less(t, DirSize(mem, "/c", 4, aborted), int64(15))
}

func TestDirSize_UnreadableSubtreeCountsZero(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/c/a.bin", 1)
	memFile(t, mem, "/c/locked/b.bin", 2)

	vfs := faultyFS{FS: mem, broken: map[string]bool{"/c/locked": true}}
	assert.Equal(t, int64(1), DirSize(vfs, "/c", 2, nil))
}

func TestRoots(t *testing.T) {
	mem := memfs.New()
	for _, dir := range []string{"/home/u", "/var/log", "/var/logs", "/srv/log"} {
		require.NoError(t, mem.MkdirAll(dir, 0o755))
	}

	got := Roots(mem, "/home", []string{"/var/log", "/missing", "/home/u", "/var/log", "/var/logs"})
	assert.Equal(t, []string{"/home", "/var/log", "/var/logs"}, got)

	got = Roots(mem, "/var/log/sub", []string{"/var/log", "/srv/log"})
	assert.Equal(t, []string{"/var/log/sub", "/srv/log"}, got, "ancestor of the user root is dropped")

	got = Roots(mem, "/var", []string{"/var/logs", "/varx"})
	assert.Equal(t, []string{"/var"}, got)
}

func TestRoots_ResolvesLocalSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	base := t.TempDir()
	target := filepath.Join(base, "private", "log")
	require.NoError(t, os.MkdirAll(target, 0o755))
	alias := filepath.Join(base, "log")
	require.NoError(t, os.Symlink(target, alias))
	user := filepath.Join(base, "home")
	require.NoError(t, os.Mkdir(user, 0o755))

	got := Roots(fsys.OS{}, user, []string{alias, target})
	assert.Equal(t, []string{user, alias}, got)
}

func TestSystemDirsAndDefaultRoot(t *testing.T) {
	assert.Contains(t, SystemDirs("darwin"), "/Library/Logs")
	assert.Equal(t, []string{"/var/log"}, SystemDirs("linux"))
	assert.Len(t, SystemDirs("windows"), 2)
	assert.Empty(t, SystemDirs("plan9"))

	assert.Equal(t, "/Users", DefaultRoot("darwin"))
	assert.Equal(t, `C:\Users`, DefaultRoot("windows"))
	assert.Equal(t, "/home", DefaultRoot("linux"))
}
