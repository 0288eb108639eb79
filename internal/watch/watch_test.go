package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string, calls *atomic.Int32) *Watcher {
	t.Helper()
	w, err := New(root,
		WithDebounce(20*time.Millisecond),
		WithOnChange(func() { calls.Add(1) }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.running
	}, time.Second, 5*time.Millisecond)
	// Give fsnotify a moment to register the tree.
	time.Sleep(50 * time.Millisecond)
	return w
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, root, &calls)

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte{byte('a' + i)}, 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, root, &calls)

	sub := filepath.Join(root, "guide")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(sub, "install.md"), []byte("# Install"), 0o644))
	require.Eventually(t, func() bool { return calls.Load() > before }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_RunTwice(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	w := startWatcher(t, root, &calls)
	assert.ErrorIs(t, w.Run(context.Background()), ErrAlreadyRunning)
}

func TestWatcher_MissingRoot(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background()))
}

func TestHidden(t *testing.T) {
	assert.True(t, hidden(".git"))
	assert.False(t, hidden("guide"))
}
