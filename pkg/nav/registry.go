package nav

import (
	"github.com/odvcencio/padnav/pkg/telemetry"
)

type registryEntry struct {
	rec Focusable
	// counted records whether this entry contributes to the exclusion
	// count, so a record whose Exclude changes cannot skew it.
	counted bool
}

// defaultFocuser is implemented by records that want selection on mount.
type defaultFocuser interface {
	DefaultFocus() bool
}

// Registry maps elements to their focusable records. It is not safe for
// concurrent use; drive it from the host UI loop.
type Registry struct {
	entries  map[Element]registryEntry
	excluded int

	requests    listeners[Element]
	lastRequest Element
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Element]registryEntry)}
}

// Add registers rec under its element. Adding an element twice replaces
// the earlier record. Records asking for default focus request it.
func (r *Registry) Add(rec Focusable) {
	el := rec.Element()
	if old, ok := r.entries[el]; ok && old.counted {
		r.excluded--
	}

	entry := registryEntry{rec: rec, counted: rec.Exclude()}
	if entry.counted {
		r.excluded++
	}
	r.entries[el] = entry
	telemetry.RegisteredRecords.Set(float64(len(r.entries)))

	if df, ok := rec.(defaultFocuser); ok && df.DefaultFocus() {
		r.RequestFocus(el)
	}
}

// Remove unregisters el. It reports false when el was not registered.
func (r *Registry) Remove(el Element) bool {
	entry, ok := r.entries[el]
	if !ok {
		return false
	}
	if entry.counted {
		r.excluded--
	}
	delete(r.entries, el)
	if r.lastRequest == el {
		r.lastRequest = nil
	}
	telemetry.RegisteredRecords.Set(float64(len(r.entries)))
	return true
}

// Update re-reads the exclusion flag of el's record.
func (r *Registry) Update(el Element) {
	entry, ok := r.entries[el]
	if !ok {
		return
	}
	now := entry.rec.Exclude()
	switch {
	case now && !entry.counted:
		r.excluded++
	case !now && entry.counted:
		r.excluded--
	}
	entry.counted = now
	r.entries[el] = entry
}

// Find returns the record for el, or nil.
func (r *Registry) Find(el Element) Focusable {
	if el == nil {
		return nil
	}
	if entry, ok := r.entries[el]; ok {
		return entry.rec
	}
	return nil
}

// Len returns the number of registered records.
func (r *Registry) Len() int { return len(r.entries) }

// ExcludedCount returns the number of records excluding their subtree.
func (r *Registry) ExcludedCount() int { return r.excluded }

// IsFocusable reports whether el may be selected: it needs a non-negative
// tab index, must not exclude itself, and no record on it or its
// ancestors may exclude its subtree.
func (r *Registry) IsFocusable(scene Scene, el Element) bool {
	if el == nil {
		return false
	}
	if idx, ok := scene.TabIndex(el); !ok || idx < 0 {
		return false
	}
	if rec := r.Find(el); rec != nil && rec.ExcludeThis() {
		return false
	}
	if r.excluded == 0 {
		return true
	}
	for node := el; node != nil; node = scene.Parent(node) {
		if rec := r.Find(node); rec != nil && rec.Exclude() {
			return false
		}
	}
	return true
}

// RequestFocus asks the controller to select el.
func (r *Registry) RequestFocus(el Element) {
	r.lastRequest = el
	r.requests.emit(el)
}

// consumeRequest forgets el once it has been selected so that later
// subscribers do not jump back to it.
func (r *Registry) consumeRequest(el Element) {
	if r.lastRequest == el {
		r.lastRequest = nil
	}
}

// OnFocusRequest subscribes to focus requests. The most recent request
// still registered is replayed to the new subscriber.
func (r *Registry) OnFocusRequest(fn func(Element)) (unsubscribe func()) {
	unsubscribe = r.requests.add(fn)
	if r.lastRequest != nil {
		fn(r.lastRequest)
	}
	return unsubscribe
}
