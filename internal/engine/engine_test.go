package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/junkclean/internal/cleaner"
	"github.com/sadopc/junkclean/internal/fsys"
	"github.com/sadopc/junkclean/internal/model"
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

// until reads events until stop returns true for one of them.
func until(t *testing.T, e *Engine, stop func(model.Event) bool) []model.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var events []model.Event
	for {
		ev, err := e.Next(ctx)
		require.NoError(t, err)
		events = append(events, ev)
		if stop(ev) {
			return events
		}
	}
}

func isScanSummary(ev model.Event) bool {
	_, ok := ev.(model.ScanSummary)
	return ok
}

func isCleanSummary(ev model.Event) bool {
	_, ok := ev.(model.CleanSummary)
	return ok
}

func TestEngine_ScanThenClean(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.log"), 10)
	writeFile(t, filepath.Join(root, "notes.tmp"), 5)
	writeFile(t, filepath.Join(root, "keep.txt"), 5)
	writeFile(t, filepath.Join(root, "Cache", "data.bin"), 20)

	e := New(Config{})
	roots, err := e.StartScan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, roots)

	var items []model.FoundItem
	var summary model.ScanSummary
	for _, ev := range until(t, e, isScanSummary) {
		switch ev := ev.(type) {
		case model.FoundItem:
			items = append(items, ev)
		case model.ScanSummary:
			summary = ev
		case model.ScanProgress:
		default:
			t.Fatalf("unexpected event %T during scan", ev)
		}
	}
	e.Wait()
	assert.False(t, e.Running())

	require.Len(t, items, 3)
	assert.Equal(t, int64(35), summary.TotalSize)
	assert.Equal(t, 3, summary.ItemCount)

	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.Path
	}
	require.NoError(t, e.StartClean(paths, false))

	var progress [][2]int
	var cs model.CleanSummary
	for _, ev := range until(t, e, isCleanSummary) {
		switch ev := ev.(type) {
		case model.CleanProgress:
			progress = append(progress, [2]int{ev.Processed, ev.Total})
		case model.CleanSummary:
			cs = ev
		case model.CleanError:
			t.Fatalf("unexpected clean error: %s", ev.Message())
		}
	}
	e.Wait()

	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
	assert.Equal(t, int64(35), cs.Freed)
	assert.Equal(t, 3, cs.Succeeded)
	assert.Equal(t, 3, cs.Total)

	assert.FileExists(t, filepath.Join(root, "keep.txt"))
	assert.NoFileExists(t, filepath.Join(root, "a.log"))
	assert.NoDirExists(t, filepath.Join(root, "Cache"))
	assert.Empty(t, e.Drain())
}

func TestEngine_StartScanValidatesRoot(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/file.txt", 1)
	e := New(Config{}, WithFS(mem))

	_, err := e.StartScan("/missing")
	assert.ErrorIs(t, err, ErrRootNotFound)

	_, err = e.StartScan("/home/file.txt")
	assert.ErrorIs(t, err, ErrNotDirectory)

	assert.False(t, e.Running(), "no worker starts on configuration errors")
	assert.Empty(t, e.Drain())
}

func TestEngine_StartScanAcceptsSymlinkedRoot(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/real/a.log", 2)
	require.NoError(t, mem.Symlink("/real", "/home"))

	e := New(Config{}, WithFS(mem))
	_, err := e.StartScan("/home")
	require.NoError(t, err)

	events := until(t, e, isScanSummary)
	assert.Equal(t, 1, events[len(events)-1].(model.ScanSummary).ItemCount)
}

func TestEngine_SystemDirsJoinRoots(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/a.log", 1)
	memFile(t, mem, "/var/log/b.log", 2)

	e := New(Config{SystemDirs: []string{"/var/log", "/nonexistent", "/home/sub"}}, WithFS(mem))
	roots, err := e.StartScan("/home")
	require.NoError(t, err)
	assert.Equal(t, []string{"/home", "/var/log"}, roots)

	events := until(t, e, isScanSummary)
	sum := events[len(events)-1].(model.ScanSummary)
	assert.Equal(t, int64(3), sum.TotalSize)
	assert.Equal(t, []string{"/home", "/var/log"}, e.Roots())
}

func TestEngine_StartCleanEmpty(t *testing.T) {
	e := New(Config{}, WithFS(memfs.New()))
	assert.ErrorIs(t, e.StartClean(nil, true), ErrNothingToClean)
	assert.False(t, e.Running())
}

func TestEngine_CleanRefusesPathsOutsideLastScan(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/a.log", 1)
	memFile(t, mem, "/etc/b.log", 1)

	e := New(Config{}, WithFS(mem))
	_, err := e.StartScan("/home")
	require.NoError(t, err)
	until(t, e, isScanSummary)

	require.NoError(t, e.StartClean([]string{"/etc/b.log", "/home/a.log"}, false))
	var errs []model.CleanError
	for _, ev := range until(t, e, isCleanSummary) {
		if ce, ok := ev.(model.CleanError); ok {
			errs = append(errs, ce)
		}
	}
	require.Len(t, errs, 1)
	assert.Equal(t, "/etc/b.log", errs[0].Path)
	assert.ErrorIs(t, errs[0].Err, cleaner.ErrOutsideRoots)
	assert.True(t, fsys.Exists(mem, "/etc/b.log"))
}

// gateFS blocks the first ReadDir or Remove until released.
type gateFS struct {
	fsys.FS
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate(inner fsys.FS) *gateFS {
	return &gateFS{FS: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gateFS) wait() {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
}

func (g *gateFS) ReadDir(name string) ([]fs.FileInfo, error) {
	g.wait()
	return g.FS.ReadDir(name)
}

func (g *gateFS) Remove(name string) error {
	g.wait()
	return g.FS.Remove(name)
}

func TestEngine_AbortScanEmitsNoSummary(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/a.log", 1)
	memFile(t, mem, "/home/b.log", 1)
	gate := newGate(mem)

	e := New(Config{}, WithFS(gate))
	_, err := e.StartScan("/home")
	require.NoError(t, err)

	<-gate.entered
	assert.True(t, e.Running())
	e.Abort()
	close(gate.release)
	e.Wait()

	assert.False(t, e.Running())
	for _, ev := range e.Drain() {
		_, isItem := ev.(model.FoundItem)
		assert.False(t, isItem)
		assert.False(t, isScanSummary(ev))
	}
}

func TestEngine_AbortCleanEmitsNoSummary(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/a.log", 1)
	memFile(t, mem, "/home/b.log", 1)
	memFile(t, mem, "/home/c.log", 1)
	gate := newGate(mem)

	e := New(Config{}, WithFS(gate))
	require.NoError(t, e.StartClean([]string{"/home/a.log", "/home/b.log", "/home/c.log"}, false))

	<-gate.entered
	e.Abort()
	close(gate.release)
	e.Wait()

	events := e.Drain()
	require.Len(t, events, 1, "only the in-flight item completes")
	assert.Equal(t, model.CleanProgress{Processed: 1, Total: 3, Path: "/home/a.log"}, events[0])
	assert.True(t, fsys.Exists(mem, "/home/b.log"))
}

func TestEngine_RestartClearsAbort(t *testing.T) {
	mem := memfs.New()
	memFile(t, mem, "/home/a.log", 1)

	e := New(Config{}, WithFS(mem))
	e.Abort()
	_, err := e.StartScan("/home")
	require.NoError(t, err)
	events := until(t, e, isScanSummary)
	assert.Equal(t, 1, events[len(events)-1].(model.ScanSummary).ItemCount)
}

func TestEngine_NextHonorsContext(t *testing.T) {
	e := New(Config{}, WithFS(memfs.New()))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := e.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_FIFOAcrossNextAndDrain(t *testing.T) {
	q := newQueue()
	for i := 1; i <= 5; i++ {
		q.push(model.CleanProgress{Processed: i, Total: 5})
	}

	ev, err := q.next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ev.(model.CleanProgress).Processed)

	rest := q.drain()
	require.Len(t, rest, 4)
	for i, ev := range rest {
		assert.Equal(t, i+2, ev.(model.CleanProgress).Processed)
	}
	assert.Nil(t, q.drain())
}

func TestQueue_ConcurrentProducer(t *testing.T) {
	q := newQueue()
	const n = 1000
	go func() {
		for i := 0; i < n; i++ {
			q.push(model.CleanProgress{Processed: i})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := 0; i < n; i++ {
		ev, err := q.next(ctx)
		require.NoError(t, err)
		require.Equal(t, i, ev.(model.CleanProgress).Processed)
	}
}
