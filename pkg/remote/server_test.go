package remote

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/telemetry"
)

type serverFixture struct {
	srv   *Server
	http  *httptest.Server
	hub   *telemetry.Hub
	state *State
	dirs  chan nav.Direction
}

func newServerFixture(t *testing.T, cfg ServerConfig) *serverFixture {
	t.Helper()
	f := &serverFixture{
		hub:   telemetry.NewHub(),
		state: &State{},
		dirs:  make(chan nav.Direction, 8),
	}
	f.srv = NewServer(cfg, f.state, f.hub)
	unsubscribe := f.srv.Source().Subscribe(func(d nav.Direction) { f.dirs <- d })
	f.http = httptest.NewServer(f.srv.Handler())
	t.Cleanup(func() {
		unsubscribe()
		f.http.Close()
		f.hub.Close()
	})
	return f
}

func (f *serverFixture) post(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.http.URL+path, "application/json", nil)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Direction(t *testing.T) {
	f := newServerFixture(t, ServerConfig{})
	assert.Equal(t, "http", f.srv.Source().Name())

	resp := f.post(t, "/direction/LEFT")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	var cmd Command
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cmd))
	assert.Equal(t, nav.Left, cmd.Direction)
	assert.Equal(t, nav.Left, <-f.dirs)

	resp = f.post(t, "/direction/sideways")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.dirs)
}

func TestServer_RateLimit(t *testing.T) {
	f := newServerFixture(t, ServerConfig{RateLimit: 0.001, Burst: 1})

	assert.Equal(t, http.StatusAccepted, f.post(t, "/direction/down").StatusCode)
	resp := f.post(t, "/direction/down")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	assert.Len(t, f.dirs, 1)
}

func TestServer_FocusHealthAndMetrics(t *testing.T) {
	f := newServerFixture(t, ServerConfig{})
	f.state.Set(Snapshot{Selected: "#play", TrapDepth: 2})

	resp, err := http.Get(f.http.URL + "/focus")
	require.NoError(t, err)
	defer resp.Body.Close()
	var snap Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "#play", snap.Selected)
	assert.Equal(t, 2, snap.TrapDepth)

	resp, err = http.Get(f.http.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	telemetry.TrapDepth.Set(0)
	resp, err = http.Get(f.http.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "padnav_nav_trap_depth")
}

func TestServer_WebSocket(t *testing.T) {
	f := newServerFixture(t, ServerConfig{})
	f.state.Set(Snapshot{Selected: "#play"})

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg streamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, "#play", msg.Snapshot.Selected)

	require.Eventually(t, func() bool { return f.hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	f.hub.Publish(telemetry.Event{Type: telemetry.EventFocusChanged, To: "#quit"})
	msg = streamMessage{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "event", msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, "#quit", msg.Event.To)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"direction":"up"}`)))
	select {
	case d := <-f.dirs:
		assert.Equal(t, nav.Up, d)
	case <-time.After(time.Second):
		t.Fatal("websocket command not injected")
	}

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`nope`)))
	msg = streamMessage{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.NotEmpty(t, msg.Error)
}
