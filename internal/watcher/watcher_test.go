package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects handled paths.
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(_ context.Context, path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *recorder) has(suffix string) bool {
	for _, p := range r.snapshot() {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

func startWatcher(t *testing.T, roots, exts []string, rec *recorder) *Watcher {
	t.Helper()
	w := New(roots, exts, true, rec.handle, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestWatcher_DebounceAndExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, []string{dir}, []string{".txt"}, rec)

	path := filepath.Join(dir, "f.txt")
	for i := 0; i < 3; i++ {
		writeFile(t, path, strings.Repeat("x", i+1))
	}
	writeFile(t, filepath.Join(dir, "skip.bin"), "x")

	require.Eventually(t, func() bool { return rec.has("f.txt") }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{path}, rec.snapshot(), "rapid writes collapse into one call")
}

func TestWatcher_NewDirectoryIsWatchedAndScanned(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, []string{dir}, []string{".txt", ".md"}, rec)

	nested := filepath.Join(dir, "level1", "level2")
	writeFile(t, filepath.Join(nested, "deep.txt"), "deep content")
	writeFile(t, filepath.Join(dir, "level1", "doc.md"), "world")
	writeFile(t, filepath.Join(dir, "level1", "ignore.xyz"), "skip")

	require.Eventually(t, func() bool { return rec.has("deep.txt") && rec.has("doc.md") }, 3*time.Second, 20*time.Millisecond)
	assert.False(t, rec.has("ignore.xyz"))
}

func TestWatcher_RemoveCancelsPending(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New([]string{dir}, nil, true, rec.handle, WithDebounce(300*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	path := filepath.Join(dir, "gone.txt")
	writeFile(t, path, "x")
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.Remove(path))
	time.Sleep(500 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestWatcher_SyncHandlesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hello")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "hello")
	writeFile(t, filepath.Join(dir, "ignore.xyz"), "x")

	rec := &recorder{}
	w := New([]string{dir}, []string{"txt"}, true, rec.handle)
	w.Sync(context.Background())
	got := rec.snapshot()
	assert.Len(t, got, 2)
	assert.True(t, rec.has("a.txt"))
	assert.True(t, rec.has(filepath.Join("sub", "b.txt")))
}

func TestWatcher_SyncNonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hello")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "hello")

	rec := &recorder{}
	New([]string{dir}, nil, false, rec.handle).Sync(context.Background())
	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, rec.snapshot())
}

func TestWatcher_WaitBlocksUntilRunningHandlerReturns(t *testing.T) {
	dir := t.TempDir()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	w := New([]string{dir}, nil, true, func(context.Context, string) {
		once.Do(func() { close(started) })
		<-release
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, w.Start(context.Background()))

	writeFile(t, filepath.Join(dir, "slow.txt"), "x")
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}

	w.Stop()
	waited := make(chan struct{})
	go func() {
		w.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		t.Fatal("Wait returned while a handler was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the handler finished")
	}
}

func TestWatcher_SyncAfterStopDoesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hello")

	rec := &recorder{}
	w := New([]string{dir}, nil, true, rec.handle)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Sync(context.Background())
	w.Wait()
	assert.Empty(t, rec.snapshot())
}

func TestWatcher_StartCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "watch", "me")
	w := New([]string{root}, nil, true, func(context.Context, string) {})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, []string{root}, w.Directories())
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.txt", []string{".txt"}, true},
		{"/a/b.TXT", []string{"txt"}, true},
		{"/a/b.md", []string{".txt"}, false},
		{"/a/b", nil, true},
		{"/a/b", []string{}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchExtension(tt.path, tt.extensions), "matchExtension(%q, %v)", tt.path, tt.extensions)
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.txt", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inDir(tt.dir, tt.path), "inDir(%q, %q)", tt.dir, tt.path)
	}
}
