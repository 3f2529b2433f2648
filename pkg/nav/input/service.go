package input

import (
	"log/slog"
	"sync"
	"time"

	"github.com/odvcencio/padnav/pkg/logging"
	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/telemetry"
)

// Source labels used in metrics and logs.
const (
	SourceKeyboard = "keyboard"
	SourceGamepad  = "gamepad"
)

// Target receives normalized directions. *nav.Controller satisfies it.
type Target interface {
	Fire(dir nav.Direction) (bool, error)
	Selected() nav.Element
}

// Source is an injected direction stream, such as a test driver or a
// remote control. Callbacks may arrive on any goroutine.
type Source interface {
	Name() string
	Subscribe(fn func(nav.Direction)) (unsubscribe func())
}

// Timing holds the repeat delays and stick threshold.
type Timing struct {
	InitialDebounce   time.Duration
	FastDebounce      time.Duration
	JoystickThreshold float64
}

// DefaultTiming returns the built-in timings.
func DefaultTiming() Timing {
	return Timing{
		InitialDebounce:   DefaultInitialDebounce,
		FastDebounce:      DefaultFastDebounce,
		JoystickThreshold: DefaultJoystickThreshold,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.InitialDebounce <= 0 {
		t.InitialDebounce = d.InitialDebounce
	}
	if t.FastDebounce <= 0 {
		t.FastDebounce = d.FastDebounce
	}
	if t.JoystickThreshold <= 0 || t.JoystickThreshold >= 1 {
		t.JoystickThreshold = d.JoystickThreshold
	}
	return t
}

// Option configures a Service.
type Option func(*Service)

// WithKeymap replaces the key table.
func WithKeymap(k Keymap) Option {
	return func(s *Service) { s.keymap = k }
}

// WithFormInspector enables form suppression.
func WithFormInspector(f FormInspector) Option {
	return func(s *Service) { s.forms = f }
}

// WithGamepads enables gamepad polling on frames from the scheduler.
func WithGamepads(src GamepadSource, frames FrameScheduler) Option {
	return func(s *Service) {
		s.pads = src
		s.frames = frames
	}
}

// WithSource merges an injected direction stream.
func WithSource(src Source) Option {
	return func(s *Service) { s.sources = append(s.sources, src) }
}

// WithPost sets how callbacks from other goroutines reach the owning loop.
func WithPost(post func(func())) Option {
	return func(s *Service) { s.post = post }
}

// WithTiming sets the repeat timings.
func WithTiming(t Timing) Option {
	return func(s *Service) { s.timing = t.withDefaults() }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service normalizes keyboard, gamepad and injected input into directions.
// All methods except the source callbacks must run on the owning loop.
type Service struct {
	target  Target
	keymap  Keymap
	forms   FormInspector
	pads    GamepadSource
	frames  FrameScheduler
	sources []Source
	post    func(func())
	timing  Timing
	logger  *logging.Logger

	states      map[Gamepad]*padState
	cancelFrame func()
	unsubscribe []func()
	started     bool
	closed      bool
}

// NewService creates a Service feeding target.
func NewService(target Target, opts ...Option) *Service {
	s := &Service{
		target: target,
		keymap: DefaultKeymap(),
		post:   func(fn func()) { fn() },
		timing: DefaultTiming(),
		logger: logging.Discard(),
		states: make(map[Gamepad]*padState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to sources and begins polling if a pad is present.
func (s *Service) Start() {
	if s.started || s.closed {
		return
	}
	s.started = true

	for _, src := range s.sources {
		name := src.Name()
		unsub := src.Subscribe(func(dir nav.Direction) {
			s.post(func() {
				if !s.closed {
					s.Handle(dir, name)
				}
			})
		})
		s.unsubscribe = append(s.unsubscribe, unsub)
	}

	if s.pads == nil || s.frames == nil {
		return
	}
	s.unsubscribe = append(s.unsubscribe, s.pads.OnConnect(func(pad Gamepad) {
		s.post(func() {
			if !s.closed {
				s.startPolling()
			}
		})
	}))
	if len(connected(s.pads.Gamepads())) > 0 {
		s.startPolling()
	}
}

// Teardown stops polling and drops subscriptions. Safe to call twice.
func (s *Service) Teardown() {
	if s.closed {
		return
	}
	s.closed = true
	if s.cancelFrame != nil {
		s.cancelFrame()
		s.cancelFrame = nil
	}
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
	clear(s.states)
	telemetry.GamepadsConnected.Set(0)
}

// Polling reports whether a frame is pending.
func (s *Service) Polling() bool { return s.cancelFrame != nil }

// Timing returns the active timings.
func (s *Service) Timing() Timing { return s.timing }

// SetTiming applies new timings to live pads without resetting their stage.
func (s *Service) SetTiming(t Timing) {
	s.timing = t.withDefaults()
	for _, st := range s.states {
		st.setTiming(s.timing)
	}
	s.logger.Info("input timing updated",
		slog.Duration("initial", s.timing.InitialDebounce),
		slog.Duration("fast", s.timing.FastDebounce),
		slog.Float64("threshold", s.timing.JoystickThreshold),
	)
}

// HandleKey maps a key press and reports whether the host should prevent
// its default action. Presses already prevented by the host are ignored.
func (s *Service) HandleKey(code KeyCode, defaultPrevented bool) bool {
	if defaultPrevented {
		return false
	}
	dir, ok := s.keymap.Lookup(code)
	if !ok {
		return false
	}
	if s.forKeyboardControl(dir) {
		telemetry.KeysSuppressedTotal.Inc()
		return false
	}
	return s.Handle(dir, SourceKeyboard)
}

func (s *Service) forKeyboardControl(dir nav.Direction) bool {
	if s.forms == nil {
		return false
	}
	sel := s.target.Selected()
	if sel == nil {
		return false
	}
	state, ok := s.forms.FormState(sel)
	return ok && IsForForm(dir, state)
}

// Handle fires dir on the target.
func (s *Service) Handle(dir nav.Direction, source string) bool {
	telemetry.DirectionsTotal.WithLabelValues(dir.String(), source).Inc()
	handled, err := s.target.Fire(dir)
	if err != nil {
		s.logger.Warn("direction rejected",
			slog.String("direction", dir.String()),
			slog.String("source", source),
			slog.String("error", err.Error()),
		)
		return false
	}
	s.logger.DirectionFired(dir.String(), source, handled)
	return handled
}

func (s *Service) startPolling() {
	if s.cancelFrame != nil || s.frames == nil {
		return
	}
	s.cancelFrame = s.frames.RequestFrame(s.frame)
}

func (s *Service) frame(now time.Time) {
	s.cancelFrame = nil
	if s.closed {
		return
	}

	pads := connected(s.pads.Gamepads())
	s.syncPads(pads)
	if len(pads) == 0 {
		s.logger.Debug("gamepad polling stopped")
		return
	}

	for _, pad := range pads {
		st := s.states[pad]
		for _, dir := range st.poll(now) {
			s.Handle(dir, SourceGamepad)
			if s.closed {
				return
			}
		}
	}
	s.startPolling()
}

func (s *Service) syncPads(pads []Gamepad) {
	seen := make(map[Gamepad]bool, len(pads))
	for _, pad := range pads {
		seen[pad] = true
		if _, ok := s.states[pad]; ok {
			continue
		}
		mapping := MappingFor(pad.Name())
		s.states[pad] = newPadState(pad, mapping, s.timing)
		s.logger.GamepadConnected(pad.ID(), pad.Name(), mapping.Name)
	}
	for pad := range s.states {
		if !seen[pad] {
			delete(s.states, pad)
			s.logger.GamepadDisconnected(pad.ID())
		}
	}
	telemetry.GamepadsConnected.Set(float64(len(s.states)))
}

func connected(pads []Gamepad) []Gamepad {
	out := pads[:0:0]
	for _, p := range pads {
		if p != nil && p.Connected() {
			out = append(out, p)
		}
	}
	return out
}

// Injector is a Source driven by hand, for tests and scripted input.
type Injector struct {
	name string

	mu   sync.Mutex
	next int
	subs map[int]func(nav.Direction)
}

// NewInjector returns an injector labeled name.
func NewInjector(name string) *Injector {
	return &Injector{name: name, subs: make(map[int]func(nav.Direction))}
}

// Name implements Source.
func (i *Injector) Name() string { return i.name }

// Subscribe implements Source.
func (i *Injector) Subscribe(fn func(nav.Direction)) func() {
	i.mu.Lock()
	defer i.mu.Unlock()
	id := i.next
	i.next++
	i.subs[id] = fn
	return func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		delete(i.subs, id)
	}
}

// Inject delivers dir to every subscriber.
func (i *Injector) Inject(dir nav.Direction) {
	i.mu.Lock()
	fns := make([]func(nav.Direction), 0, len(i.subs))
	for _, fn := range i.subs {
		fns = append(fns, fn)
	}
	i.mu.Unlock()
	for _, fn := range fns {
		fn(dir)
	}
}
