package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/padnav/pkg/bus"
	"github.com/odvcencio/padnav/pkg/config"
	"github.com/odvcencio/padnav/pkg/logging"
	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/nav/input"
	"github.com/odvcencio/padnav/pkg/remote"
	"github.com/odvcencio/padnav/pkg/telemetry"
	"github.com/odvcencio/padnav/pkg/ui/backend"
	"github.com/odvcencio/padnav/pkg/ui/runtime"
	"github.com/odvcencio/padnav/pkg/ui/terminal"
)

// hostDeps are the collaborators run builds from config. Tests swap in a
// simulated backend and an in-memory bus.
type hostDeps struct {
	cfg     *config.Config
	logger  *logging.Logger
	backend backend.Backend
	bus     bus.MessageBus
	// pads is nil when gamepads are disabled.
	pads input.GamepadSource
}

// host wires the demo scene to the focus controller and every input.
type host struct {
	cfg    *config.Config
	logger *logging.Logger

	app        *runtime.App
	screen     *runtime.Screen
	demo       *demo
	controller *nav.Controller
	service    *input.Service

	hub       *telemetry.Hub
	state     *remote.State
	bus       bus.MessageBus
	source    *remote.BusSource
	server    *remote.Server
	publisher *remote.Publisher
}

func newHost(deps hostDeps) (*host, error) {
	cfg := deps.cfg
	logger := deps.logger
	if logger == nil {
		logger = logging.Discard()
	}

	h := &host{
		cfg:    cfg,
		logger: logger,
		screen: runtime.NewScreen(80, 24),
		hub:    telemetry.NewHub(),
		state:  &remote.State{},
		bus:    deps.bus,
	}
	h.demo = newDemo(h.screen)
	h.screen.SetRoot(h.demo.root)

	tree := h.screen.Tree()
	h.controller = nav.New(tree, nil, tree,
		nav.WithLogger(logger.Component("nav")),
		nav.WithNavigator(h.demo),
		nav.WithEpsilon(cfg.Navigation.Epsilon),
		nav.WithRaycast(cfg.Navigation.RaycastOptions()),
	)
	if err := h.demo.records(h.controller.Registry()); err != nil {
		return nil, fmt.Errorf("register demo records: %w", err)
	}
	h.screen.SetTrapper(&trapNotifier{Trapper: h.controller, hub: h.hub, depth: h.controller.TrapDepth})
	h.controller.OnDirection(h.onDirection)
	h.controller.OnFocusChanged(h.onFocusChanged)

	h.app = runtime.NewApp(runtime.AppConfig{
		Backend: deps.backend,
		Screen:  h.screen,
		Update:  h.update,
		OnStart: h.start,
	})

	opts := []input.Option{
		input.WithPost(h.app.PostFunc),
		input.WithFormInspector(tree),
		input.WithTiming(cfg.Input.Timing()),
		input.WithLogger(logger.Component("input")),
	}
	if deps.pads != nil {
		frames := input.NewTimerFrames(cfg.Input.FrameInterval, h.app.PostFunc)
		opts = append(opts, input.WithGamepads(deps.pads, frames))
		deps.pads.OnConnect(func(pad input.Gamepad) {
			h.hub.Publish(telemetry.Event{
				Type:   telemetry.EventGamepadAttached,
				Source: pad.ID(),
				Data:   map[string]any{"name": pad.Name()},
			})
		})
	}
	if h.bus != nil {
		h.source = remote.NewBusSource(h.bus,
			remote.WithQueueGroup(cfg.Remote.QueueGroup),
			remote.WithSourceLogger(logger.Component("remote")),
		)
		opts = append(opts, input.WithSource(h.source))
		h.publisher = remote.NewPublisher(h.bus, h.hub, h.state, logger.Component("publisher"))
	}
	if cfg.Remote.HTTP.Enabled {
		h.server = remote.NewServer(remote.ServerConfig{
			Addr:      cfg.Remote.HTTP.Addr,
			RateLimit: cfg.Remote.HTTP.Limit(),
			Burst:     cfg.Remote.HTTP.Burst,
			Logger:    logger.Component("http"),
		}, h.state, h.hub)
		opts = append(opts, input.WithSource(h.server.Source()))
	}
	h.service = input.NewService(h.controller, opts...)
	return h, nil
}

// run drives the UI loop alongside the remote transports until ctx is
// done or the user quits.
func (h *host) run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer h.hub.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		err := h.app.Run(gctx)
		h.service.Teardown()
		h.controller.Teardown()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if h.publisher != nil {
		g.Go(func() error { return h.publisher.Run(gctx) })
	}
	if h.server != nil {
		g.Go(func() error {
			// The engine keeps working without its control surface.
			if err := h.server.ListenAndServe(gctx); err != nil {
				h.logger.Warn("control server stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}
	if configPath != "" {
		err := config.Watch(gctx, configPath, h.logger.Component("config"), func(cfg *config.Config) {
			h.app.PostFunc(func() { h.service.SetTiming(cfg.Input.Timing()) })
		})
		if err != nil {
			h.logger.Warn("config hot reload disabled", slog.String("error", err.Error()))
		}
	}

	err := g.Wait()
	if h.source != nil {
		h.source.Close()
	}
	return err
}

// start runs on the loop once the screen is sized. Sources subscribe
// before the first snapshot so a client that sees it can already steer.
func (h *host) start(*runtime.App) {
	h.service.Start()
	h.controller.Bootstrap(nil)
	h.publishState()
}

func (h *host) update(app *runtime.App, msg runtime.Message) bool {
	tree := h.screen.Tree()
	switch m := msg.(type) {
	case runtime.KeyMsg:
		if m.Key == terminal.KeyCtrlC {
			app.Quit()
			return false
		}
		// Printable keys belong to a focused text field before they can
		// double as numpad codes.
		if focused := tree.FocusedNode(); m.Key == terminal.KeyRune && focused != nil && focused.Field != nil {
			return tree.HandleKey(m)
		}
		if m.Key == terminal.KeyRune && m.Rune == 'q' {
			app.Quit()
			return false
		}
		if code, ok := runtime.KeyCode(m); ok && h.service.HandleKey(code, false) {
			return true
		}
		return tree.HandleKey(m)
	case runtime.MouseMsg:
		if m.Button != terminal.MouseLeft || m.Action != terminal.MousePress {
			return false
		}
		n := tree.FocusableAt(m.X, m.Y)
		if n == nil {
			return false
		}
		if h.controller.Selected() == nav.Element(n) {
			return tree.Activate(n)
		}
		return h.controller.SelectNode(n)
	}
	return runtime.DefaultUpdate(app, msg)
}

func (h *host) onDirection(ev *nav.Event) {
	h.hub.Publish(telemetry.Event{
		Type:      telemetry.EventDirectionFired,
		Direction: ev.Direction.String(),
		From:      label(ev.Target),
		To:        label(ev.Next),
	})
}

func (h *host) onFocusChanged(fc *nav.FocusChange) {
	h.hub.Publish(telemetry.Event{
		Type: telemetry.EventFocusChanged,
		From: label(fc.From),
		To:   label(fc.To),
	})
	h.publishState()
}

func (h *host) publishState() {
	h.state.Set(remote.Snapshot{
		Selected:  label(h.controller.Selected()),
		Root:      label(h.controller.Root()),
		TrapDepth: h.controller.TrapDepth(),
	})
}

func label(el nav.Element) string {
	if s, ok := el.(fmt.Stringer); ok && el != nil {
		return s.String()
	}
	return ""
}

// trapNotifier publishes trap changes as the screen opens and closes modal
// layers.
type trapNotifier struct {
	runtime.Trapper
	hub   *telemetry.Hub
	depth func() int
}

func (t *trapNotifier) TrapFocus(root nav.Element) {
	t.Trapper.TrapFocus(root)
	t.hub.Publish(telemetry.Event{
		Type: telemetry.EventTrapPushed,
		To:   label(root),
		Data: map[string]any{"depth": t.depth()},
	})
}

func (t *trapNotifier) ReleaseFocus() {
	t.Trapper.ReleaseFocus()
	t.hub.Publish(telemetry.Event{
		Type: telemetry.EventTrapReleased,
		Data: map[string]any{"depth": t.depth()},
	})
}
