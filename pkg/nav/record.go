package nav

import (
	"github.com/odvcencio/padnav/pkg/errors"
)

// Focusable is the capability record attached to a focusable element.
type Focusable interface {
	Element() Element
	// ExcludeThis reports that the element itself cannot be selected.
	ExcludeThis() bool
	// Exclude reports that the element and its whole subtree cannot be
	// selected.
	Exclude() bool
	// Override returns an explicit target for dir, or a zero Target.
	Override(dir Direction) Target
	// OnFocus is called on the record's element and its ancestors when the
	// selection moves to next.
	OnFocus(next Element)
	// OnOutgoing is called while an event bubbles away from the selection.
	OnOutgoing(ev *Event)
	// OnIncoming is called while an event bubbles towards its candidate.
	OnIncoming(ev *Event)
}

// Target is an override destination: a live element or a selector
// resolved each time it is consulted.
type Target struct {
	Element  Element
	Selector string
}

// ElementTarget targets a specific element.
func ElementTarget(el Element) Target { return Target{Element: el} }

// SelectorTarget targets whatever matches selector when consulted.
func SelectorTarget(selector string) Target { return Target{Selector: selector} }

// IsZero reports whether the target is unset.
func (t Target) IsZero() bool { return t.Element == nil && t.Selector == "" }

func (t Target) resolve(scene Scene) Element {
	if t.Element != nil {
		return t.Element
	}
	if t.Selector != "" {
		return scene.Query(t.Selector)
	}
	return nil
}

// Record is the stock Focusable, configured with RecordOptions.
type Record struct {
	el           Element
	exclude      bool
	excludeThis  bool
	defaultFocus bool

	overrides map[Direction]Target
	captures  map[Direction]Element

	onFocus    []func(Element)
	onOutgoing []func(*Event)
	onIncoming []func(*Event)
	onSubmit   []func(*Event)
	onBack     []func(*Event)
}

// RecordOption configures a Record.
type RecordOption func(*Record) error

// NewRecord builds a record for el.
func NewRecord(el Element, opts ...RecordOption) (*Record, error) {
	if el == nil {
		return nil, errors.New(errors.ErrCodeInvalidBinding, "record element is nil")
	}
	r := &Record{
		el:        el,
		overrides: make(map[Direction]Target),
		captures:  make(map[Direction]Element),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithExclude removes the element and its subtree from navigation.
func WithExclude(exclude bool) RecordOption {
	return func(r *Record) error {
		r.exclude = exclude
		return nil
	}
}

// WithExcludeThis removes only the element itself from navigation.
func WithExcludeThis(exclude bool) RecordOption {
	return func(r *Record) error {
		r.excludeThis = exclude
		return nil
	}
}

// WithDefaultFocus asks for the element to be selected once registered.
func WithDefaultFocus() RecordOption {
	return func(r *Record) error {
		r.defaultFocus = true
		return nil
	}
}

// WithOverride sets an explicit target for a directional move away from
// this element. It is consulted before any geometric search.
func WithOverride(dir Direction, target Target) RecordOption {
	return func(r *Record) error {
		if !dir.IsDirectional() {
			return invalidBinding(dir, "override", "direction is not an arrow")
		}
		if target.IsZero() {
			return invalidBinding(dir, "override", "target is undefined")
		}
		r.overrides[dir] = target
		return nil
	}
}

// WithCapture makes a move in dir that bubbles through this element land on
// target, unless an earlier handler prevented it.
func WithCapture(dir Direction, target Element) RecordOption {
	return func(r *Record) error {
		if !dir.IsDirectional() {
			return invalidBinding(dir, "capture", "direction is not an arrow")
		}
		if target == nil {
			return invalidBinding(dir, "capture", "target is undefined")
		}
		r.captures[dir] = target
		return nil
	}
}

// OnFocusFunc adds a focus handler.
func OnFocusFunc(fn func(next Element)) RecordOption {
	return func(r *Record) error {
		r.onFocus = append(r.onFocus, fn)
		return nil
	}
}

// OnOutgoingFunc adds an outgoing-phase handler.
func OnOutgoingFunc(fn func(*Event)) RecordOption {
	return func(r *Record) error {
		r.onOutgoing = append(r.onOutgoing, fn)
		return nil
	}
}

// OnIncomingFunc adds an incoming-phase handler.
func OnIncomingFunc(fn func(*Event)) RecordOption {
	return func(r *Record) error {
		r.onIncoming = append(r.onIncoming, fn)
		return nil
	}
}

// OnSubmitFunc adds a handler for SUBMIT events leaving this element.
func OnSubmitFunc(fn func(*Event)) RecordOption {
	return func(r *Record) error {
		r.onSubmit = append(r.onSubmit, fn)
		return nil
	}
}

// OnBackFunc adds a handler for BACK events leaving this element.
func OnBackFunc(fn func(*Event)) RecordOption {
	return func(r *Record) error {
		r.onBack = append(r.onBack, fn)
		return nil
	}
}

func invalidBinding(dir Direction, kind, reason string) error {
	return errors.Newf(errors.ErrCodeInvalidBinding, "cannot bind %s %s: %s", kind, dir, reason).
		WithContext("direction", dir.String()).
		WithContext("binding", kind)
}

// Element returns the element the record describes.
func (r *Record) Element() Element { return r.el }

// ExcludeThis reports whether the element itself is skipped.
func (r *Record) ExcludeThis() bool { return r.excludeThis }

// Exclude reports whether the element and its subtree are skipped.
func (r *Record) Exclude() bool { return r.exclude }

// DefaultFocus reports whether the record asked to be selected on register.
func (r *Record) DefaultFocus() bool { return r.defaultFocus }

// SetExclude changes subtree exclusion. Call Registry.Update afterwards so
// the exclusion count follows.
func (r *Record) SetExclude(exclude bool) { r.exclude = exclude }

// SetExcludeThis changes self exclusion.
func (r *Record) SetExcludeThis(exclude bool) { r.excludeThis = exclude }

// Override returns the target bound to dir, zero when none is.
func (r *Record) Override(dir Direction) Target { return r.overrides[dir] }

// OnFocus runs the focus callbacks with the element being selected.
func (r *Record) OnFocus(next Element) {
	for _, fn := range r.onFocus {
		fn(next)
	}
}

// OnOutgoing runs the outgoing callbacks, then the submit or back
// handlers, then applies a capture for the direction unless prevented.
func (r *Record) OnOutgoing(ev *Event) {
	for _, fn := range r.onOutgoing {
		fn(ev)
	}

	switch ev.Direction {
	case Submit:
		for _, fn := range r.onSubmit {
			fn(ev)
		}
	case Back:
		for _, fn := range r.onBack {
			fn(ev)
		}
	}

	if target, ok := r.captures[ev.Direction]; ok && !ev.defaultPrevented {
		ev.Next = target
	}
}

// OnIncoming runs the incoming callbacks.
func (r *Record) OnIncoming(ev *Event) {
	for _, fn := range r.onIncoming {
		fn(ev)
	}
}
