package nav

// Event is a navigation event bubbled through the focus hierarchy. Only
// Next and the two flags change during dispatch.
type Event struct {
	Direction Direction
	// Target is the selection the event was fired from. It may be nil for
	// action codes fired with nothing selected.
	Target Element
	// Next is the element that will be selected on a directional move.
	// Handlers may replace it.
	Next Element
	// Record is the Target's registry record, nil for plain controls.
	Record Focusable

	defaultPrevented   bool
	propagationStopped bool
	strategy           string
	candidate          Element
	// corridor is the history that applies if the move to candidate
	// commits.
	corridor Rect
}

// PreventDefault suppresses the engine's default action. Remaining
// handlers still run unless StopPropagation is also called.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// StopPropagation stops the event reaching further ancestors.
func (e *Event) StopPropagation() { e.propagationStopped = true }

// DefaultPrevented reports whether a handler called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// PropagationStopped reports whether a handler called StopPropagation.
func (e *Event) PropagationStopped() bool { return e.propagationStopped }

// Strategy names how Next was resolved: override, raycast, boundary, or
// empty when no candidate was found.
func (e *Event) Strategy() string { return e.strategy }

// dispatch runs the outgoing phase from the event target, then, unless
// prevented, the incoming phase from Next. Both walks stop below root.
// A stop in the outgoing phase also skips the incoming phase.
func dispatch(scene Scene, registry *Registry, root Element, ev *Event) bool {
	bubble(scene, registry, root, ev, ev.Target, func(rec Focusable) { rec.OnOutgoing(ev) })

	if !ev.defaultPrevented && ev.Next != nil {
		bubble(scene, registry, root, ev, ev.Next, func(rec Focusable) { rec.OnIncoming(ev) })
	}

	return ev.defaultPrevented
}

func bubble(scene Scene, registry *Registry, root Element, ev *Event, from Element, call func(Focusable)) {
	for el := from; el != nil && el != root && !ev.propagationStopped; el = scene.Parent(el) {
		if rec := registry.Find(el); rec != nil {
			call(rec)
		}
	}
}
