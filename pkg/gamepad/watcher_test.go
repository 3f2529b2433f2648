package gamepad

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/padnav/pkg/nav/input"
)

type pipeOpener struct {
	mu      sync.Mutex
	writers map[string]*io.PipeWriter
}

func (p *pipeOpener) open(path string) (*Device, error) {
	r, w := io.Pipe()
	p.mu.Lock()
	p.writers[path] = w
	p.mu.Unlock()
	return NewDevice("Test Pad "+filepath.Base(path), path, r), nil
}

func (p *pipeOpener) writer(path string) *io.PipeWriter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writers[path]
}

func TestWatcher_Hotplug(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js0"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event3"), nil, 0o600))

	opener := &pipeOpener{writers: map[string]*io.PipeWriter{}}
	w := NewWatcher(WithDir(dir), WithOpener(opener.open))

	connected := make(chan input.Gamepad, 4)
	unsub := w.OnConnect(func(p input.Gamepad) { connected <- p })
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Close()

	pads := w.Gamepads()
	require.Len(t, pads, 1)
	assert.Equal(t, "Test Pad js0", pads[0].Name())
	firstID := pads[0].ID()
	<-connected

	js1 := filepath.Join(dir, "js1")
	require.NoError(t, os.WriteFile(js1, nil, 0o600))
	select {
	case p := <-connected:
		assert.Equal(t, "Test Pad js1", p.Name())
		assert.NotEqual(t, firstID, p.ID())
	case <-time.After(2 * time.Second):
		t.Fatal("no connect notification")
	}
	assert.Len(t, w.Gamepads(), 2)

	require.NoError(t, os.Remove(js1))
	require.Eventually(t, func() bool { return len(w.Gamepads()) == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, opener.writer(filepath.Join(dir, "js0")).Close())
	require.Eventually(t, func() bool { return len(w.Gamepads()) == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestWatcher_StartMissingDir(t *testing.T) {
	w := NewWatcher(WithDir(filepath.Join(t.TempDir(), "missing")))
	err := w.Start(context.Background())
	require.Error(t, err)
	assert.NoError(t, w.Close())
}
