package input

import "github.com/odvcencio/padnav/pkg/nav"

// ControlKind classifies the selected element for form handling.
type ControlKind int

const (
	ControlNone ControlKind = iota
	ControlInput
	ControlTextArea
)

// FormState describes the selected element's form context.
type FormState struct {
	// InForm is set when the element sits inside a form.
	InForm bool
	// Control is the element's own control kind.
	Control ControlKind
	// TextEntry is set for inputs whose type accepts free text.
	// Text areas always accept text.
	TextEntry bool
	// SelectionStart and SelectionEnd bound the caret or selection.
	SelectionStart int
	SelectionEnd   int
	// Length is the length of the control's value.
	Length int
}

// FormInspector reports the form context of an element. Hosts without
// form controls can omit it.
type FormInspector interface {
	FormState(el nav.Element) (FormState, bool)
}

// IsForForm reports whether dir should be left to the host control rather
// than navigate. SUBMIT inside a form or on an input is the control's.
// On text fields, LEFT and BACK belong to the control while the caret can
// still move left, RIGHT while it can still move right, and all three
// while a range is selected. UP and DOWN always navigate.
func IsForForm(dir nav.Direction, state FormState) bool {
	if dir == nav.Submit {
		return state.InForm || state.Control != ControlNone
	}

	switch state.Control {
	case ControlTextArea:
	case ControlInput:
		if !state.TextEntry {
			return false
		}
	default:
		return false
	}

	switch dir {
	case nav.Left, nav.Back, nav.Right:
	default:
		return false
	}

	if state.SelectionStart != state.SelectionEnd {
		return true
	}
	if dir == nav.Right {
		return state.SelectionStart < state.Length
	}
	return state.SelectionStart > 0
}
