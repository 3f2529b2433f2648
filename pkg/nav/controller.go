package nav

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/odvcencio/padnav/pkg/logging"
	"github.com/odvcencio/padnav/pkg/telemetry"
)

// searchContext is the state a candidate search reads.
type searchContext struct {
	scene     Scene
	registry  *Registry
	root      Element
	selected  Element
	reference Rect
	history   Rect
	epsilon   float64
}

type trap struct {
	root     Element
	selected Element
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNavigator sets the hook invoked on an uncancelled BACK.
func WithNavigator(navigator Navigator) Option {
	return func(c *Controller) {
		c.navigator = navigator
	}
}

// WithEpsilon sets the primary-axis rounding tolerance used in scoring.
func WithEpsilon(epsilon float64) Option {
	return func(c *Controller) {
		c.epsilon = epsilon
	}
}

// WithRaycast overrides the raycast sampling configuration.
func WithRaycast(cfg RaycastConfig) Option {
	return func(c *Controller) {
		c.raycast = cfg
	}
}

// Controller owns the focus state and is its only writer. All methods
// must be called from the host UI loop.
type Controller struct {
	scene     Scene
	registry  *Registry
	scroller  Scroller
	navigator Navigator
	logger    *logging.Logger
	epsilon   float64
	raycast   RaycastConfig

	root      Element
	selected  Element
	reference Rect
	history   Rect
	traps     []trap

	// generation increases on every selection attempt so that a select
	// issued from inside another's handlers supersedes it.
	generation uint64

	directions   listeners[*Event]
	selecting    listeners[*SelectEvent]
	focusChanged listeners[*FocusChange]

	unsubscribeRequests func()
}

// New creates a controller over scene. The scroller may be nil.
func New(scene Scene, registry *Registry, scroller Scroller, opts ...Option) *Controller {
	if registry == nil {
		registry = NewRegistry()
	}
	c := &Controller{
		scene:    scene,
		registry: registry,
		scroller: scroller,
		logger:   logging.Discard(),
		epsilon:  DefaultEpsilon,
		raycast:  DefaultRaycast,
		history:  noHistory,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.root = scene.Root()
	return c
}

// Registry returns the controller's registry.
func (c *Controller) Registry() *Registry { return c.registry }

// Bootstrap starts the controller on root, or on the scene root when nil.
func (c *Controller) Bootstrap(root Element) {
	if root == nil {
		root = c.scene.Root()
	}
	c.SetRoot(root)
}

// Teardown stops listening for focus requests. It is safe to call more
// than once.
func (c *Controller) Teardown() {
	if c.unsubscribeRequests != nil {
		c.unsubscribeRequests()
		c.unsubscribeRequests = nil
	}
}

// Root returns the active focus root.
func (c *Controller) Root() Element { return c.root }

// Selected returns the current selection, which may have left the tree.
func (c *Controller) Selected() Element { return c.selected }

// History returns the remembered navigation corridor.
func (c *Controller) History() Rect { return c.history }

// TrapDepth returns the number of active focus traps.
func (c *Controller) TrapDepth() int { return len(c.traps) }

// SetRoot narrows navigation to root. Pending focus requests are
// replayed, and if an existing selection is not under the new root the
// first focusable element is selected instead.
func (c *Controller) SetRoot(root Element) {
	c.swapRoot(root)
	c.reselectUnderRoot()
}

// swapRoot replaces the root and resubscribes to focus requests without
// touching the selection.
func (c *Controller) swapRoot(root Element) {
	c.root = root

	if c.unsubscribeRequests != nil {
		c.unsubscribeRequests()
	}
	c.unsubscribeRequests = c.registry.OnFocusRequest(func(el Element) {
		if c.SelectNode(el) || c.selected == el {
			c.registry.consumeRequest(el)
			telemetry.MovesTotal.WithLabelValues(telemetry.StrategyRequest).Inc()
		}
	})
}

func (c *Controller) reselectUnderRoot() {
	if c.selected == nil || c.scene.Contains(c.root, c.selected) {
		return
	}
	if !c.SelectDefault() && c.scene.Attached(c.selected) {
		// Nothing to select under the new root; drop the stale selection.
		c.selected = nil
		c.history = noHistory
	}
}

// TrapFocus pushes a modal scope rooted at root.
func (c *Controller) TrapFocus(root Element) {
	c.traps = append(c.traps, trap{root: c.root, selected: c.selected})
	telemetry.TrapDepth.Set(float64(len(c.traps)))
	c.logger.TrapPushed(len(c.traps))
	c.SetRoot(root)
}

// ReleaseFocus pops the innermost trap, restoring its root and selection.
// An unbalanced release logs a warning and resets to the scene root.
func (c *Controller) ReleaseFocus() {
	if len(c.traps) == 0 {
		c.logger.UnbalancedRelease()
		c.traps = nil
		telemetry.TrapDepth.Set(0)
		c.SetRoot(c.scene.Root())
		return
	}

	last := c.traps[len(c.traps)-1]
	c.traps = c.traps[:len(c.traps)-1]
	telemetry.TrapDepth.Set(float64(len(c.traps)))

	// Restore the saved selection directly so a detached trap root does
	// not pass through a default selection first.
	c.swapRoot(last.root)
	if last.selected != nil && (c.selected == last.selected || c.SelectNode(last.selected)) {
		return
	}
	c.reselectUnderRoot()
}

// OnDirection subscribes to navigation events before they bubble.
// Listeners may change Next or prevent the default action.
func (c *Controller) OnDirection(fn func(*Event)) (unsubscribe func()) {
	return c.directions.add(fn)
}

// OnSelecting subscribes to the cancelable pre-commit notification.
func (c *Controller) OnSelecting(fn func(*SelectEvent)) (unsubscribe func()) {
	return c.selecting.add(fn)
}

// OnFocusChanged subscribes to the post-commit notification.
func (c *Controller) OnFocusChanged(fn func(*FocusChange)) (unsubscribe func()) {
	return c.focusChanged.add(fn)
}

// Fire runs dir through the full pipeline and reports whether the engine
// handled it. A directional code with nothing selected selects the
// default element instead.
func (c *Controller) Fire(dir Direction) (bool, error) {
	if !dir.Valid() {
		return false, unknownDirection(int(dir))
	}

	_, span := telemetry.StartSpan(context.Background(), "nav.fire",
		trace.WithAttributes(telemetry.AttrDirection.String(dir.String())))
	defer span.End()

	if dir.IsDirectional() && c.selected == nil {
		handled := c.SelectDefault()
		span.SetAttributes(telemetry.AttrHandled.Bool(handled), telemetry.AttrStrategy.String(telemetry.StrategyDefault))
		return handled, nil
	}

	ev, err := c.CreateEvent(dir)
	if err != nil {
		return false, err
	}
	c.directions.emit(ev)

	handled := c.Bubble(ev)
	if handled {
		telemetry.EventsPreventedTotal.WithLabelValues(dir.String()).Inc()
	}
	if c.DefaultAction(ev) {
		handled = true
	}

	span.SetAttributes(
		telemetry.AttrHandled.Bool(handled),
		telemetry.AttrStrategy.String(ev.strategy),
		telemetry.AttrSource.String(describe(ev.Target)),
		telemetry.AttrTarget.String(describe(ev.Next)),
	)
	return handled, nil
}

// CreateEvent builds the event for dir. Directional codes carry the
// candidate found by override, raycast and boundary search, in that order.
func (c *Controller) CreateEvent(dir Direction) (*Event, error) {
	if !dir.Valid() {
		return nil, unknownDirection(int(dir))
	}

	ev := &Event{
		Direction: dir,
		Target:    c.selected,
		Record:    c.registry.Find(c.selected),
	}
	if dir.IsDirectional() && c.selected != nil {
		ev.Next, ev.strategy, ev.corridor = c.findNext(dir)
		ev.candidate = ev.Next
		if ev.Next == nil {
			telemetry.SearchMissesTotal.WithLabelValues(dir.String()).Inc()
			c.logger.SearchMiss(dir.String())
		}
	}
	return ev, nil
}

// findNext searches for the candidate and the corridor a move to it
// would leave behind. Controller history is untouched until the move
// commits.
func (c *Controller) findNext(dir Direction) (Element, string, Rect) {
	if c.scene.Attached(c.selected) {
		c.reference = c.scene.Bounds(c.selected)
	}
	sc := &searchContext{
		scene:     c.scene,
		registry:  c.registry,
		root:      c.root,
		selected:  c.selected,
		reference: c.reference,
		history:   c.history,
		epsilon:   c.epsilon,
	}

	strategies := []struct {
		name   string
		search func() Element
	}{
		{telemetry.StrategyOverride, func() Element { return sc.override(dir) }},
		{telemetry.StrategyRaycast, func() Element { return sc.raycast(dir, c.raycast) }},
		{telemetry.StrategyBoundary, func() Element { return sc.boundary(dir) }},
	}
	for _, s := range strategies {
		start := time.Now()
		next := s.search()
		telemetry.SearchDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
		if next != nil {
			return next, s.name, UpdateHistory(dir, c.history, c.reference, c.scene.Bounds(next))
		}
	}
	return nil, "", noHistory
}

// Bubble dispatches ev through the hierarchy and reports whether a
// handler prevented the default action.
func (c *Controller) Bubble(ev *Event) bool {
	return dispatch(c.scene, c.registry, c.root, ev)
}

// DefaultAction performs the engine's action for an unprevented event
// and reports whether anything happened.
func (c *Controller) DefaultAction(ev *Event) bool {
	if ev.defaultPrevented {
		return false
	}

	switch {
	case ev.Direction.IsDirectional():
		if ev.Next == nil {
			return false
		}
		// A handler that redirected Next invalidates the searched corridor.
		searched := ev.Next == ev.candidate
		var corridor *Rect
		if searched {
			corridor = &ev.corridor
		}
		if !c.selectNode(ev.Next, corridor) {
			return false
		}
		strategy := ev.strategy
		if !searched {
			strategy = telemetry.StrategyCapture
		}
		telemetry.MovesTotal.WithLabelValues(strategy).Inc()
		return true
	case ev.Direction == Submit:
		if c.selected == nil {
			return false
		}
		return c.scene.Activate(c.selected)
	case ev.Direction == Back:
		if c.navigator == nil {
			return false
		}
		return c.navigator.GoBack()
	}
	return false
}

// SelectDefault selects the first focusable, visible, non-empty element
// under the root in document order.
func (c *Controller) SelectDefault() bool {
	for _, el := range c.scene.Focusables(c.root) {
		if el == c.root || !c.registry.IsFocusable(c.scene, el) {
			continue
		}
		if c.scene.Bounds(el).Empty() || !c.scene.Visible(el) {
			continue
		}
		if c.SelectNode(el) {
			telemetry.MovesTotal.WithLabelValues(telemetry.StrategyDefault).Inc()
			return true
		}
		return c.selected == el
	}
	return false
}

// SelectNode makes next the selection. It does nothing when next is
// already selected or lies outside the root, and reports whether the
// selection changed.
func (c *Controller) SelectNode(next Element) bool {
	return c.selectNode(next, nil)
}

// selectNode commits next. corridor is the searched history for a
// directional move; nil resets history.
func (c *Controller) selectNode(next Element, corridor *Rect) bool {
	if next == nil || next == c.selected {
		return false
	}
	if !c.scene.Contains(c.root, next) {
		return false
	}

	c.generation++
	gen := c.generation
	prev := c.selected

	pending := &SelectEvent{From: prev, To: next}
	c.selecting.emit(pending)
	if pending.canceled || gen != c.generation {
		return false
	}

	c.notifyFocus(prev, next)
	if gen != c.generation {
		return false
	}

	c.selected = next
	c.reference = c.scene.Bounds(next)
	if corridor != nil {
		c.history = *corridor
	} else {
		c.history = noHistory
	}
	if c.scroller != nil {
		c.scroller.ScrollIntoView(next, c.reference)
	}
	c.logger.SelectionChanged(describe(prev), describe(next))

	change := &FocusChange{From: prev, To: next}
	c.focusChanged.emit(change)
	if !change.focusPrevented && gen == c.generation {
		c.scene.Focus(next)
	}
	return true
}

// notifyFocus calls OnFocus on the records between the old selection and
// the common ancestor, then between next and that ancestor. A detached
// old selection walks next all the way to the root.
func (c *Controller) notifyFocus(prev, next Element) {
	call := func(el Element) {
		if rec := c.registry.Find(el); rec != nil {
			rec.OnFocus(next)
		}
	}

	if prev == nil || !c.scene.Attached(prev) {
		for el := next; el != nil && el != c.root; el = c.scene.Parent(el) {
			call(el)
		}
		return
	}

	for el := prev; el != nil && !c.scene.Contains(el, next); el = c.scene.Parent(el) {
		call(el)
	}
	for el := next; el != nil && !c.scene.Contains(el, prev); el = c.scene.Parent(el) {
		call(el)
	}
}

func describe(el Element) string {
	switch v := el.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprintf("%T", el)
	}
}
