package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/padnav/pkg/bus"
	"github.com/odvcencio/padnav/pkg/config"
	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/remote"
	"github.com/odvcencio/padnav/pkg/telemetry"
	"github.com/odvcencio/padnav/pkg/ui/backend/sim"
	"github.com/odvcencio/padnav/pkg/ui/runtime"
	"github.com/odvcencio/padnav/pkg/ui/terminal"
)

const waitFor = 2 * time.Second

type hostFixture struct {
	h       *host
	backend *sim.Backend
	bus     *bus.MemoryBus
	errc    chan error
	cancel  context.CancelFunc
}

func startHost(t *testing.T, mutate func(*config.Config)) *hostFixture {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Input.Gamepads = false
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	b := bus.NewMemoryBus()
	t.Cleanup(func() { _ = b.Close() })
	backend := sim.New(80, 24)

	h, err := newHost(hostDeps{cfg: cfg, backend: backend, bus: b})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	f := &hostFixture{h: h, backend: backend, bus: b, errc: make(chan error, 1), cancel: cancel}
	go func() { f.errc <- h.run(ctx, "") }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-f.errc:
		case <-time.After(waitFor):
			t.Error("host did not stop")
		}
	})

	f.waitSelected(t, "#library")
	return f
}

func (f *hostFixture) waitSelected(t *testing.T, want string) {
	t.Helper()
	require.Eventually(t, func() bool { return f.h.state.Get().Selected == want },
		waitFor, 5*time.Millisecond, "selection never became %s (last %q)", want, f.h.state.Get().Selected)
}

func (f *hostFixture) key(k terminal.Key) { f.backend.InjectKey(k, 0) }

func mouseClick(x, y int) runtime.MouseMsg {
	return runtime.MouseMsg{X: x, Y: y, Button: terminal.MouseLeft, Action: terminal.MousePress}
}

func (f *hostFixture) runes(s string) {
	for _, r := range s {
		f.backend.InjectKey(terminal.KeyRune, r)
	}
}

func TestHost_StartsOnDefaultFocus(t *testing.T) {
	f := startHost(t, nil)

	snap := f.h.state.Get()
	assert.Equal(t, 0, snap.TrapDepth)
	assert.False(t, snap.Updated.IsZero())
	require.Eventually(t, func() bool { return f.backend.ContainsText("Library") }, waitFor, 5*time.Millisecond)

	x, y := f.backend.FindText("Library")
	require.Eventually(t, func() bool { return f.backend.Reversed(x, y) }, waitFor, 5*time.Millisecond)
}

func TestHost_KeyboardMovesFocus(t *testing.T) {
	f := startHost(t, nil)

	f.key(terminal.KeyDown)
	f.waitSelected(t, "#store")

	f.key(terminal.KeyRight)
	f.waitSelected(t, "#game1")

	f.key(terminal.KeyRight)
	f.waitSelected(t, "#game2")

	f.key(terminal.KeyDown)
	f.waitSelected(t, "#game6")

	f.key(terminal.KeyLeft)
	f.waitSelected(t, "#game5")
}

func TestHost_DialogTrapsAndRestores(t *testing.T) {
	f := startHost(t, nil)

	f.key(terminal.KeyRight)
	f.waitSelected(t, "#game1")

	f.key(terminal.KeyEnter)
	f.waitSelected(t, "#play")
	assert.Equal(t, 1, f.h.state.Get().TrapDepth)
	require.Eventually(t, func() bool { return f.backend.ContainsText("Launch Game 1?") }, waitFor, 5*time.Millisecond)

	f.key(terminal.KeyDown)
	f.waitSelected(t, "#cancel")
	f.key(terminal.KeyDown)
	time.Sleep(20 * time.Millisecond)
	f.waitSelected(t, "#cancel")

	f.key(terminal.KeyEscape)
	f.waitSelected(t, "#game1")
	assert.Equal(t, 0, f.h.state.Get().TrapDepth)
	require.Eventually(t, func() bool { return f.backend.ContainsText("canceled") }, waitFor, 5*time.Millisecond)
}

func TestHost_OverrideAndTextField(t *testing.T) {
	f := startHost(t, nil)

	f.key(terminal.KeyDown)
	f.key(terminal.KeyDown)
	f.key(terminal.KeyDown)
	f.waitSelected(t, "#settings")

	f.key(terminal.KeyDown)
	f.waitSelected(t, "#name")

	// q and digits type into the field instead of quitting or firing
	// numpad directions.
	f.runes("q4")
	require.Eventually(t, func() bool { return f.backend.ContainsText("Name: q4") }, waitFor, 5*time.Millisecond)
	assert.Equal(t, "#name", f.h.state.Get().Selected)

	f.key(terminal.KeyEnter)
	require.Eventually(t, func() bool { return f.backend.ContainsText("saved q4") }, waitFor, 5*time.Millisecond)
}

func TestHost_QuitKey(t *testing.T) {
	f := startHost(t, nil)

	f.runes("q")
	select {
	case err := <-f.errc:
		assert.NoError(t, err)
		f.errc <- err
	case <-time.After(waitFor):
		t.Fatal("q did not quit")
	}
}

func TestHost_RemoteBusSteersAndMirrors(t *testing.T) {
	f := startHost(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan telemetry.Event, 16)
	_, err := f.bus.Subscribe(ctx, remote.SubjectFocus, func(msg *bus.Message) []byte {
		var ev telemetry.Event
		if json.Unmarshal(msg.Data, &ev) == nil && ev.Type == telemetry.EventFocusChanged {
			events <- ev
		}
		return nil
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return f.h.hub.Subscribers() > 0 }, waitFor, 5*time.Millisecond)

	require.NoError(t, remote.Publish(ctx, f.bus, "test", nav.Right))
	f.waitSelected(t, "#game1")

	select {
	case ev := <-events:
		assert.Equal(t, "#library", ev.From)
		assert.Equal(t, "#game1", ev.To)
	case <-time.After(waitFor):
		t.Fatal("focus change not mirrored onto the bus")
	}

	snap, err := remote.QueryFocus(ctx, f.bus)
	require.NoError(t, err)
	assert.Equal(t, "#game1", snap.Selected)
}

func TestHost_HTTPInjection(t *testing.T) {
	f := startHost(t, func(cfg *config.Config) {
		cfg.Remote.HTTP.Enabled = true
		cfg.Remote.HTTP.Addr = "127.0.0.1:0"
	})
	require.NotNil(t, f.h.server)

	srv := httptest.NewServer(f.h.server.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/direction/down", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	f.waitSelected(t, "#store")

	resp, err = http.Get(srv.URL + "/focus")
	require.NoError(t, err)
	defer resp.Body.Close()
	var snap remote.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "#store", snap.Selected)
}

func TestHost_MouseSelectsThenActivates(t *testing.T) {
	f := startHost(t, nil)

	var x, y int
	require.Eventually(t, func() bool {
		x, y = f.backend.FindText("Friends")
		return x >= 0
	}, waitFor, 5*time.Millisecond)

	f.h.app.Post(mouseClick(x, y))
	f.waitSelected(t, "#friends")

	f.h.app.Post(mouseClick(x, y))
	require.Eventually(t, func() bool { return f.backend.ContainsText("opened Friends") }, waitFor, 5*time.Millisecond)
}
