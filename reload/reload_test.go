package reload

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inlinePoster runs posted functions immediately.
type inlinePoster struct {
	mu    sync.Mutex
	calls []string
}

func (p *inlinePoster) Post(fn func()) { fn() }

func (p *inlinePoster) record(path string) {
	p.mu.Lock()
	p.calls = append(p.calls, path)
	p.mu.Unlock()
}

func (p *inlinePoster) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	mesh := filepath.Join(dir, "head.obj")
	require.NoError(t, os.WriteFile(mesh, []byte("v 0 0 0\n"), 0o644))

	p := &inlinePoster{}
	w, err := New(mesh, 50*time.Millisecond, p, p.record)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(mesh, []byte("v 1 1 1\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return p.count() >= 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, p.count())

	abs, _ := filepath.Abs(mesh)
	p.mu.Lock()
	assert.Equal(t, abs, p.calls[0])
	p.mu.Unlock()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "head.obj"), time.Millisecond, &inlinePoster{}, func(string) {})
	assert.Error(t, err)
}
