package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/ui/runtime"
)

const (
	demoRows  = 6
	demoCols  = 4
	helpLabel = "arrows move  enter select  esc back  q quit"
)

// demo is a console-style launcher: a sidebar, a scrolling tile grid, a
// profile form and a confirm dialog.
type demo struct {
	root    *runtime.Node
	sidebar []*runtime.Node
	grid    *runtime.Node
	tiles   []*runtime.Node
	name    *runtime.Node
	save    *runtime.Node
	status  *runtime.Node

	screen *runtime.Screen
	dialog *runtime.Node
}

func newDemo(screen *runtime.Screen) *demo {
	d := &demo{screen: screen}

	side := runtime.NewNode("sidebar", runtime.Bordered(), runtime.Fixed(14))
	for _, label := range []string{"Library", "Store", "Friends", "Settings"} {
		id := strings.ToLower(label)
		item := runtime.NewNode(id, runtime.Label(label), runtime.Focusable(), runtime.Fixed(1))
		item.OnActivate = func(*runtime.Node) bool {
			d.setStatus("opened " + label)
			return true
		}
		d.sidebar = append(d.sidebar, item)
		side.Add(item)
	}

	d.grid = runtime.NewNode("grid", runtime.Bordered(), runtime.Scrollable(), runtime.Grow(1))
	for r := range demoRows {
		row := runtime.NewNode(fmt.Sprintf("row%d", r), runtime.Horizontal(), runtime.Fixed(3))
		for c := range demoCols {
			n := r*demoCols + c + 1
			title := fmt.Sprintf("Game %d", n)
			tile := runtime.NewNode(fmt.Sprintf("game%d", n),
				runtime.Label(title), runtime.Bordered(), runtime.Focusable(), runtime.Grow(1),
				runtime.OnActivate(func(*runtime.Node) bool { return d.confirm(title) }),
			)
			d.tiles = append(d.tiles, tile)
			row.Add(tile)
		}
		d.grid.Add(row)
	}

	d.name = runtime.NewNode("name", runtime.Label("Name: "), runtime.TextField(""), runtime.Grow(1))
	d.save = runtime.NewNode("save", runtime.Label("[Save]"), runtime.Focusable(), runtime.Fixed(6))
	form := runtime.NewNode("profile", runtime.Bordered(), runtime.Horizontal(), runtime.FormGroup(), runtime.Fixed(3),
		runtime.Gap(1),
		runtime.OnActivate(func(*runtime.Node) bool {
			d.setStatus("saved " + d.name.Field.Value())
			return true
		}),
	).Add(d.name, d.save)
	d.save.OnActivate = form.OnActivate

	d.status = runtime.NewNode("status", runtime.Label(helpLabel), runtime.Fixed(1))

	content := runtime.NewNode("content", runtime.Grow(1)).Add(d.grid, form, d.status)
	d.root = runtime.NewNode("launcher", runtime.Horizontal()).Add(side, content)
	return d
}

// records registers the navigation overrides: the sidebar starts
// selected, and Settings jumps straight down to the profile form.
func (d *demo) records(reg *nav.Registry) error {
	library, err := nav.NewRecord(d.sidebar[0], nav.WithDefaultFocus())
	if err != nil {
		return err
	}
	settings, err := nav.NewRecord(d.sidebar[3], nav.WithOverride(nav.Down, nav.SelectorTarget("#name")))
	if err != nil {
		return err
	}
	reg.Add(library)
	reg.Add(settings)
	return nil
}

func (d *demo) setStatus(s string) { d.status.Label = s }

// confirm opens a modal dialog; the screen traps focus inside it.
func (d *demo) confirm(title string) bool {
	if d.dialog != nil {
		return false
	}
	play := runtime.NewNode("play", runtime.Label("Play"), runtime.Focusable(), runtime.Fixed(1),
		runtime.OnActivate(func(*runtime.Node) bool {
			d.setStatus("playing " + title)
			return d.closeDialog()
		}))
	cancel := runtime.NewNode("cancel", runtime.Label("Cancel"), runtime.Focusable(), runtime.Fixed(1),
		runtime.OnActivate(func(*runtime.Node) bool { return d.closeDialog() }))

	box := runtime.NewNode("dialog", runtime.Bordered(), runtime.Fixed(5)).Add(
		runtime.NewNode("prompt", runtime.Label("Launch "+title+"?"), runtime.Fixed(1)),
		play, cancel,
	)
	d.dialog = runtime.NewNode("overlay").Add(
		runtime.NewNode("above", runtime.Grow(1)),
		box,
		runtime.NewNode("below", runtime.Grow(1)),
	)
	d.screen.PushLayer(d.dialog, true)
	return true
}

func (d *demo) closeDialog() bool {
	if d.dialog == nil {
		return false
	}
	d.dialog = nil
	return d.screen.PopLayer()
}

// GoBack implements nav.Navigator: BACK closes the dialog when one is open.
func (d *demo) GoBack() bool {
	if d.closeDialog() {
		d.setStatus("canceled")
		return true
	}
	return false
}
