package nav

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/odvcencio/padnav/pkg/errors"
	"github.com/odvcencio/padnav/pkg/logging"
)

// corridorScene lays out the staggered grid used for history tests.
func corridorScene() (*testScene, map[string]*testNode) {
	scene := newTestScene()
	n := map[string]*testNode{
		"r": scene.item(nil, "r", rect(100, 0, 50, 50)),
		"a": scene.item(nil, "a", rect(90, 60, 50, 50)),
		"b": scene.item(nil, "b", rect(300, 60, 50, 20)),
		"c": scene.item(nil, "c", rect(60, 120, 50, 40)),
		"d": scene.item(nil, "d", rect(130, 120, 50, 40)),
	}
	return scene, n
}

func fire(t *testing.T, c *Controller, dir Direction) bool {
	t.Helper()
	handled, err := c.Fire(dir)
	require.NoError(t, err)
	return handled
}

func TestController_HistoryCorridor(t *testing.T) {
	scene, n := corridorScene()
	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	require.Nil(t, c.Selected(), "bootstrap waits for input before selecting")
	require.True(t, c.SelectNode(n["r"]))

	assert.True(t, fire(t, c, Right))
	assert.Equal(t, Element(n["a"]), c.Selected(), "first move stays level, not the far element")

	assert.True(t, fire(t, c, Right))
	assert.Equal(t, Element(n["d"]), c.Selected(), "second move follows the corridor")
}

func TestController_NonDirectionalSelectResetsHistory(t *testing.T) {
	scene, n := corridorScene()
	c := New(scene, nil, nil)
	c.Bootstrap(nil)

	c.SelectNode(n["r"])
	fire(t, c, Right)
	assert.False(t, c.History().IsNoHistory())

	c.SelectNode(n["r"])
	c.SelectNode(n["a"])
	assert.True(t, c.History().IsNoHistory())

	fire(t, c, Right)
	assert.Equal(t, Element(n["c"]), c.Selected(), "ties keep document order")
}

func TestController_UncommittedMoveKeepsHistory(t *testing.T) {
	tests := []struct {
		name  string
		block func(c *Controller)
	}{
		{"prevented", func(c *Controller) { c.OnDirection(func(ev *Event) { ev.PreventDefault() }) }},
		{"selecting canceled", func(c *Controller) { c.OnSelecting(func(e *SelectEvent) { e.Cancel() }) }},
		{"redirected outside root", func(c *Controller) {
			outside := &testNode{id: "outside", rect: rect(0, 0, 10, 10), hasTab: true}
			c.OnDirection(func(ev *Event) { ev.Next = outside })
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, n := corridorScene()
			c := New(scene, nil, nil)
			c.Bootstrap(nil)
			c.SelectNode(n["r"])
			require.True(t, fire(t, c, Right))
			require.Equal(t, Element(n["a"]), c.Selected())
			corridor := c.History()
			require.False(t, corridor.IsNoHistory())

			tt.block(c)
			fire(t, c, Right)
			assert.Equal(t, Element(n["a"]), c.Selected())
			assert.Equal(t, corridor, c.History())
		})
	}
}

func TestController_FireSelectsDefaultWhenEmpty(t *testing.T) {
	scene := newTestScene()
	hidden := scene.item(nil, "hidden", rect(0, 0, 50, 50))
	hidden.hidden = true
	scene.item(nil, "empty", rect(0, 100, 0, 50))
	first := scene.item(nil, "first", rect(0, 200, 50, 50))
	scene.item(nil, "second", rect(0, 300, 50, 50))

	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	assert.Nil(t, c.Selected())

	assert.True(t, fire(t, c, Down))
	assert.Equal(t, Element(first), c.Selected())
	assert.Equal(t, Element(first), scene.focused)
}

func TestController_SelectNodeIdempotent(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	c := New(scene, nil, nil)
	c.Bootstrap(nil)

	var focusCalls, changes int
	c.Registry().Add(mustRecord(t, a, OnFocusFunc(func(Element) { focusCalls++ })))
	c.OnFocusChanged(func(*FocusChange) { changes++ })

	assert.True(t, c.SelectNode(a))
	assert.False(t, c.SelectNode(a))
	assert.Equal(t, 1, focusCalls)
	assert.Equal(t, 1, changes)
}

func TestController_SelectNodeOutsideRoot(t *testing.T) {
	scene := newTestScene()
	panel := scene.group(nil, "panel", rect(0, 0, 100, 100))
	inside := scene.item(panel, "inside", rect(0, 0, 50, 50))
	outside := scene.item(nil, "outside", rect(0, 200, 50, 50))

	c := New(scene, nil, nil)
	c.Bootstrap(panel)
	assert.False(t, c.SelectNode(outside))
	assert.Nil(t, c.Selected())

	assert.True(t, c.SelectNode(inside))
	assert.False(t, c.SelectNode(outside))
	assert.Equal(t, Element(inside), c.Selected())
}

func TestController_OnFocusWalk(t *testing.T) {
	scene := newTestScene()
	left := scene.group(nil, "left", rect(0, 0, 100, 100))
	l1 := scene.item(left, "l1", rect(0, 0, 50, 50))
	right := scene.group(nil, "right", rect(0, 200, 100, 100))
	r1 := scene.item(right, "r1", rect(0, 200, 50, 50))

	c := New(scene, nil, nil)
	var walked []string
	for _, n := range []*testNode{scene.root, left, l1, right, r1} {
		n := n
		c.Registry().Add(mustRecord(t, n, OnFocusFunc(func(next Element) {
			walked = append(walked, n.id+">"+node(next).id)
		})))
	}
	c.Bootstrap(nil)
	c.SelectNode(l1)
	walked = nil

	c.SelectNode(r1)
	assert.Equal(t, []string{"l1>r1", "left>r1", "r1>r1", "right>r1"}, walked,
		"old branch up to the common ancestor, then the new branch")

	walked = nil
	scene.detach(right)
	c.SelectNode(l1)
	assert.Equal(t, []string{"l1>l1", "left>l1"}, walked, "detached selection walks next to the root")
}

func TestController_SelectingCancel(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	b := scene.item(nil, "b", rect(0, 100, 50, 50))
	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	c.SelectNode(a)

	unsubscribe := c.OnSelecting(func(ev *SelectEvent) {
		if ev.To == Element(b) {
			ev.Cancel()
		}
	})
	assert.False(t, fire(t, c, Right))
	assert.Equal(t, Element(a), c.Selected())

	unsubscribe()
	assert.True(t, fire(t, c, Right))
	assert.Equal(t, Element(b), c.Selected())
}

func TestController_ReentrantSelectSupersedes(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	b := scene.item(nil, "b", rect(0, 100, 50, 50))
	redirect := scene.item(nil, "redirect", rect(0, 200, 50, 50))
	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	c.SelectNode(a)

	var committed []Element
	c.OnFocusChanged(func(fc *FocusChange) { committed = append(committed, fc.To) })
	c.OnSelecting(func(ev *SelectEvent) {
		if ev.To == Element(b) {
			c.SelectNode(redirect)
		}
	})

	c.SelectNode(b)
	assert.Equal(t, Element(redirect), c.Selected())
	assert.Equal(t, []Element{redirect}, committed)
}

func TestController_PreventFocus(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	b := scene.item(nil, "b", rect(0, 100, 50, 50))
	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	c.SelectNode(a)
	require.Equal(t, Element(a), scene.focused)

	c.OnFocusChanged(func(fc *FocusChange) { fc.PreventFocus() })
	c.SelectNode(b)
	assert.Equal(t, Element(b), c.Selected())
	assert.Equal(t, Element(a), scene.focused)
}

func TestController_TrapBalance(t *testing.T) {
	scene := newTestScene()
	scene.item(nil, "a", rect(0, 0, 50, 50))
	b := scene.item(nil, "b", rect(0, 100, 50, 50))
	dlgA := scene.group(nil, "dlg-a", rect(500, 0, 400, 200))
	a1 := scene.item(dlgA, "a1", rect(510, 10, 50, 50))
	dlgB := scene.group(nil, "dlg-b", rect(500, 500, 400, 200))
	b1 := scene.item(dlgB, "b1", rect(510, 510, 50, 50))

	var buf bytes.Buffer
	c := New(scene, nil, nil, WithLogger(logging.NewWithWriter(&buf, "nav", slog.LevelDebug, logging.FormatText)))
	c.Bootstrap(nil)
	c.SelectNode(b)

	c.TrapFocus(dlgA)
	assert.Equal(t, Element(dlgA), c.Root())
	assert.Equal(t, Element(a1), c.Selected())

	c.TrapFocus(dlgB)
	assert.Equal(t, Element(b1), c.Selected())
	assert.False(t, fire(t, c, Left), "nothing outside the trap is reachable")
	assert.Equal(t, Element(b1), c.Selected())

	c.ReleaseFocus()
	assert.Equal(t, Element(dlgA), c.Root())
	assert.Equal(t, Element(a1), c.Selected())

	c.ReleaseFocus()
	assert.Equal(t, Element(scene.root), c.Root())
	assert.Equal(t, Element(b), c.Selected())
	assert.Equal(t, 0, c.TrapDepth())

	assert.NotPanics(t, c.ReleaseFocus)
	assert.Contains(t, buf.String(), "no active trap")
	assert.Equal(t, Element(scene.root), c.Root())
	assert.Equal(t, Element(b), c.Selected())
}

func TestController_ReleaseRestoresSelectionDirectly(t *testing.T) {
	scene := newTestScene()
	scene.item(nil, "first", rect(0, 0, 50, 50))
	prev := scene.item(nil, "prev", rect(0, 100, 50, 50))
	dlg := scene.group(nil, "dlg", rect(500, 0, 400, 200))
	ok := scene.item(dlg, "ok", rect(510, 10, 50, 50))

	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	require.True(t, c.SelectNode(prev))
	c.TrapFocus(dlg)
	require.Equal(t, Element(ok), c.Selected())

	var changes []string
	c.OnFocusChanged(func(fc *FocusChange) {
		changes = append(changes, describe(fc.From)+"->"+describe(fc.To))
	})

	// The host removes the dialog before releasing its trap.
	scene.detach(dlg)
	c.ReleaseFocus()

	assert.Equal(t, []string{"ok->prev"}, changes)
	assert.Equal(t, Element(prev), c.Selected())
	assert.Equal(t, Element(scene.root), c.Root())
}

func TestController_ReleaseFallsBackToDefault(t *testing.T) {
	scene := newTestScene()
	first := scene.item(nil, "first", rect(0, 0, 50, 50))
	prev := scene.item(nil, "prev", rect(0, 100, 50, 50))
	dlg := scene.group(nil, "dlg", rect(500, 0, 400, 200))
	scene.item(dlg, "ok", rect(510, 10, 50, 50))

	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	c.SelectNode(prev)
	c.TrapFocus(dlg)

	scene.detach(dlg)
	scene.detach(prev)
	c.ReleaseFocus()
	assert.Equal(t, Element(first), c.Selected())
}

func TestController_Containment(t *testing.T) {
	scene := newTestScene()
	scene.item(nil, "a", rect(0, 0, 50, 50))
	b := scene.item(nil, "b", rect(0, 100, 50, 50))
	empty := scene.group(nil, "empty", rect(500, 0, 100, 100))

	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	c.SelectNode(b)

	c.TrapFocus(empty)
	assert.Nil(t, c.Selected(), "selection outside an empty trap is dropped")

	c.ReleaseFocus()
	assert.Equal(t, Element(b), c.Selected())
	assert.True(t, scene.Contains(c.Root(), c.Selected()))
}

func TestController_DetachedSelectionUsesCachedRect(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	b := scene.item(nil, "b", rect(0, 100, 50, 50))
	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	c.SelectNode(a)

	scene.detach(a)
	a.rect = Rect{}

	assert.True(t, fire(t, c, Right))
	assert.Equal(t, Element(b), c.Selected())
}

func TestController_OverrideTargets(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	near := scene.item(nil, "near", rect(0, 100, 50, 50))
	far := scene.item(nil, "far", rect(0, 600, 50, 50))

	c := New(scene, nil, nil)
	c.Registry().Add(mustRecord(t, a,
		WithOverride(Right, ElementTarget(far)),
		WithOverride(Down, SelectorTarget("#missing")),
	))
	c.Bootstrap(nil)
	c.SelectNode(a)

	ev, err := c.CreateEvent(Right)
	require.NoError(t, err)
	assert.Equal(t, Element(far), ev.Next)
	assert.Equal(t, "override", ev.Strategy())

	ev, err = c.CreateEvent(Down)
	require.NoError(t, err)
	assert.Nil(t, ev.Next, "missing selector falls through to geometry, which finds nothing below")

	c.Registry().Add(mustRecord(t, a, WithOverride(Right, SelectorTarget("#near"))))
	ev, err = c.CreateEvent(Right)
	require.NoError(t, err)
	assert.Equal(t, Element(near), ev.Next)
}

func TestController_CaptureRedirectsMove(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	scene.item(nil, "b", rect(0, 100, 50, 50))
	elsewhere := scene.item(nil, "elsewhere", rect(600, 600, 50, 50))

	c := New(scene, nil, nil)
	c.Registry().Add(mustRecord(t, a, WithCapture(Right, elsewhere)))
	c.Bootstrap(nil)
	c.SelectNode(a)

	assert.True(t, fire(t, c, Right))
	assert.Equal(t, Element(elsewhere), c.Selected())
	assert.True(t, c.History().IsNoHistory())
}

func TestController_RaycastClimbsToFocusableParent(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	button := scene.item(nil, "button", rect(0, 70, 60, 50))
	scene.group(button, "label", rect(10, 70, 40, 20))

	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	c.SelectNode(a)

	ev, err := c.CreateEvent(Right)
	require.NoError(t, err)
	assert.Equal(t, Element(button), ev.Next)
	assert.Equal(t, "raycast", ev.Strategy())
}

func TestController_ExcludedSubtreeIsSkipped(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	list := scene.group(nil, "list", rect(0, 60, 100, 50))
	scene.item(list, "hidden-item", rect(0, 70, 50, 50))
	beyond := scene.item(nil, "beyond", rect(0, 300, 50, 50))

	c := New(scene, nil, nil)
	c.Registry().Add(mustRecord(t, list, WithExclude(true)))
	c.Bootstrap(nil)
	c.SelectNode(a)

	fire(t, c, Right)
	assert.Equal(t, Element(beyond), c.Selected())
}

func TestController_SubmitAndBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	navigator := NewMockNavigator(ctrl)
	scroller := NewMockScroller(ctrl)

	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))

	scroller.EXPECT().ScrollIntoView(a, rect(0, 0, 50, 50)).Times(1)
	navigator.EXPECT().GoBack().Return(true).Times(1)

	c := New(scene, nil, scroller, WithNavigator(navigator))
	c.Bootstrap(nil)
	c.SelectNode(a)

	assert.True(t, fire(t, c, Submit))
	assert.Equal(t, 1, a.activated)

	assert.True(t, fire(t, c, Back))
	assert.False(t, fire(t, c, X), "unbound action codes are not handled")
}

func TestController_PreventedSubmitSkipsActivation(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	c := New(scene, nil, nil)
	c.Registry().Add(mustRecord(t, a, OnSubmitFunc(func(ev *Event) { ev.PreventDefault() })))
	c.Bootstrap(nil)
	c.SelectNode(a)

	assert.True(t, fire(t, c, Submit), "a prevented event counts as handled")
	assert.Zero(t, a.activated)
}

func TestController_OnDirectionListener(t *testing.T) {
	scene := newTestScene()
	a := scene.item(nil, "a", rect(0, 0, 50, 50))
	b := scene.item(nil, "b", rect(0, 100, 50, 50))
	c := New(scene, nil, nil)
	c.Bootstrap(nil)
	c.SelectNode(a)

	var seen []Direction
	c.OnDirection(func(ev *Event) {
		seen = append(seen, ev.Direction)
		assert.Equal(t, Element(b), ev.Next)
		ev.PreventDefault()
	})

	assert.True(t, fire(t, c, Right))
	assert.Equal(t, []Direction{Right}, seen)
	assert.NotEqual(t, Element(b), c.Selected())
}

func TestController_UnknownDirection(t *testing.T) {
	c := New(newTestScene(), nil, nil)

	_, err := c.Fire(Direction(99))
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownDirection))

	_, err = c.CreateEvent(Direction(-1))
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownDirection))
}

func TestController_FocusRequests(t *testing.T) {
	scene := newTestScene()
	main := scene.group(nil, "main", rect(0, 0, 400, 400))
	scene.item(main, "a", rect(0, 0, 50, 50))
	preferred := scene.item(main, "preferred", rect(0, 100, 50, 50))
	dlg := scene.group(nil, "dlg", rect(500, 0, 200, 200))
	d1 := scene.item(dlg, "d1", rect(500, 0, 50, 50))
	d2 := scene.item(dlg, "d2", rect(500, 100, 50, 50))

	reg := NewRegistry()
	reg.Add(mustRecord(t, preferred, WithDefaultFocus()))

	c := New(scene, reg, nil)
	c.Bootstrap(main)
	assert.Equal(t, Element(preferred), c.Selected(), "default focus record wins at bootstrap")

	reg.Add(mustRecord(t, d2, WithDefaultFocus()))
	assert.Equal(t, Element(preferred), c.Selected(), "requests outside the root are ignored")

	c.TrapFocus(dlg)
	assert.Equal(t, Element(d2), c.Selected(), "pending request is replayed into the trap")
	assert.NotEqual(t, Element(d1), c.Selected())

	c.Teardown()
	c.Teardown()
	reg.RequestFocus(d1)
	assert.Equal(t, Element(d2), c.Selected(), "no requests after teardown")
}
