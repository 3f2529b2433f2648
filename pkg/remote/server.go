package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/odvcencio/padnav/pkg/errors"
	"github.com/odvcencio/padnav/pkg/logging"
	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/nav/input"
	"github.com/odvcencio/padnav/pkg/telemetry"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 54 * time.Second
)

// ServerConfig configures the HTTP control surface.
type ServerConfig struct {
	Addr string
	// RateLimit caps injected directions per second across all clients.
	RateLimit rate.Limit
	Burst     int
	Logger    *logging.Logger
}

// DefaultServerConfig listens on localhost only.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{Addr: "127.0.0.1:7788", RateLimit: 20, Burst: 5}
}

// Server exposes focus state, metrics and direction injection over HTTP,
// plus a websocket that streams hub events and accepts commands.
type Server struct {
	cfg      ServerConfig
	source   *input.Injector
	state    *State
	hub      *telemetry.Hub
	limiter  *rate.Limiter
	upgrader websocket.Upgrader
	logger   *logging.Logger
	router   *chi.Mux
}

// NewServer creates a server reading state and hub.
func NewServer(cfg ServerConfig, state *State, hub *telemetry.Hub) *Server {
	def := DefaultServerConfig()
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	s := &Server{
		cfg:     cfg,
		source:  input.NewInjector("http"),
		state:   state,
		hub:     hub,
		limiter: rate.NewLimiter(cfg.RateLimit, cfg.Burst),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: cfg.Logger,
	}
	s.router = s.routes()
	return s
}

// Source is the direction stream fed by HTTP and websocket clients.
func (s *Server) Source() input.Source { return s.source }

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/focus", s.handleFocus)
	r.Post("/direction/{direction}", s.handleDirection)
	r.Get("/ws", s.handleWebSocket)
	return r
}

// ListenAndServe serves until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeTransport, "listen").WithContext("addr", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("control server listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeTransport, "serve")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleFocus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Get())
}

func (s *Server) handleDirection(w http.ResponseWriter, r *http.Request) {
	dir, err := nav.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		telemetry.RemoteCommandsTotal.WithLabelValues(TransportHTTP, "rejected").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if !s.inject(TransportHTTP, dir) {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
		return
	}
	writeJSON(w, http.StatusAccepted, Command{Direction: dir})
}

// inject applies the shared rate limit and reports whether dir was sent.
func (s *Server) inject(transport string, dir nav.Direction) bool {
	if !s.limiter.Allow() {
		telemetry.RemoteCommandsTotal.WithLabelValues(transport, "limited").Inc()
		return false
	}
	telemetry.RemoteCommandsTotal.WithLabelValues(transport, "accepted").Inc()
	s.source.Inject(dir)
	return true
}

// streamMessage is one websocket frame sent to clients.
type streamMessage struct {
	Type     string           `json:"type"`
	Snapshot *Snapshot        `json:"snapshot,omitempty"`
	Event    *telemetry.Event `json:"event,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()
	s.logger.Debug("websocket connected", slog.String("remote_addr", r.RemoteAddr))

	events, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	var writeMu sync.Mutex
	write := func(msg streamMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(msg)
	}

	snap := s.state.Get()
	if err := write(streamMessage{Type: "snapshot", Snapshot: &snap}); err != nil {
		return
	}

	done := make(chan struct{})
	go s.readCommands(conn, write, done)

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := write(streamMessage{Type: "event", Event: &ev}); err != nil {
				return
			}
		case <-ping.C:
			writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *Server) readCommands(conn *websocket.Conn, write func(streamMessage) error, done chan<- struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))

		cmd, err := DecodeCommand(data)
		if err != nil {
			telemetry.RemoteCommandsTotal.WithLabelValues(TransportWebsocket, "rejected").Inc()
			if write(streamMessage{Type: "error", Error: err.Error()}) != nil {
				return
			}
			continue
		}
		if !s.inject(TransportWebsocket, cmd.Direction) {
			if write(streamMessage{Type: "error", Error: "rate limited"}) != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
