package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/odvcencio/padnav/pkg/ui/backend"
	"github.com/odvcencio/padnav/pkg/ui/terminal"
)

// UpdateFunc handles a message and returns true if a render is needed.
type UpdateFunc func(app *App, msg Message) bool

// AppConfig configures an App.
type AppConfig struct {
	Backend backend.Backend
	// Screen is used as is when set; otherwise one is sized to the backend.
	Screen        *Screen
	Root          *Node
	Update        UpdateFunc
	MessageBuffer int
	TickRate      time.Duration
	// OnStart runs on the loop once the screen exists.
	OnStart func(app *App)
}

// App runs a screen against a terminal backend. All screen and tree
// mutation happens on the Run goroutine; other goroutines use Post.
type App struct {
	backend  backend.Backend
	screen   *Screen
	root     *Node
	update   UpdateFunc
	onStart  func(*App)
	messages chan Message
	tickRate time.Duration
	done     chan struct{}
	stopOnce sync.Once

	running bool
	dirty   bool
}

// NewApp creates an App from config.
func NewApp(cfg AppConfig) *App {
	bufferSize := cfg.MessageBuffer
	if bufferSize <= 0 {
		bufferSize = 128
	}
	update := cfg.Update
	if update == nil {
		update = DefaultUpdate
	}
	return &App{
		backend:  cfg.Backend,
		screen:   cfg.Screen,
		root:     cfg.Root,
		update:   update,
		onStart:  cfg.OnStart,
		messages: make(chan Message, bufferSize),
		tickRate: cfg.TickRate,
		done:     make(chan struct{}),
	}
}

// Screen returns the screen, nil before Run unless configured.
func (a *App) Screen() *Screen { return a.screen }

// Post queues a message for the loop. It blocks while the queue is full
// and drops the message once the app has stopped.
func (a *App) Post(msg Message) {
	select {
	case a.messages <- msg:
	case <-a.done:
	}
}

// PostFunc runs fn on the loop.
func (a *App) PostFunc(fn func()) {
	a.Post(FuncMsg{Fn: fn})
}

// Quit stops the loop after the current message.
func (a *App) Quit() { a.running = false }

// Run starts the event loop until Quit or context cancellation.
func (a *App) Run(ctx context.Context) error {
	if a.backend == nil {
		return errors.New("backend is required")
	}
	if err := a.backend.Init(); err != nil {
		return fmt.Errorf("init backend: %w", err)
	}
	defer a.backend.Fini()
	defer a.stopOnce.Do(func() { close(a.done) })

	a.backend.HideCursor()
	w, h := a.backend.Size()
	if a.screen == nil {
		a.screen = NewScreen(w, h)
	} else {
		a.screen.Resize(w, h)
	}
	if a.root != nil {
		a.screen.SetRoot(a.root)
	}

	a.running = true
	a.dirty = true
	if a.onStart != nil {
		a.onStart(a)
	}

	go a.pollEvents()

	var ticks <-chan time.Time
	if a.tickRate > 0 {
		ticker := time.NewTicker(a.tickRate)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for a.running {
		if a.dirty {
			a.render()
			a.dirty = false
		}
		select {
		case <-ctx.Done():
			a.running = false
		case msg := <-a.messages:
			if a.update(a, msg) {
				a.dirty = true
			}
		case now := <-ticks:
			if a.update(a, TickMsg{Time: now}) {
				a.dirty = true
			}
		}
	}

	return ctx.Err()
}

// DefaultUpdate handles resizes and posted functions.
func DefaultUpdate(app *App, msg Message) bool {
	if app == nil || app.screen == nil {
		return false
	}
	switch m := msg.(type) {
	case ResizeMsg:
		app.screen.Resize(m.Width, m.Height)
		app.screen.Buffer().MarkAllDirty()
		return true
	case FuncMsg:
		if m.Fn != nil {
			m.Fn()
		}
		return true
	case KeyMsg:
		return app.screen.Tree().HandleKey(m)
	}
	return false
}

func (a *App) pollEvents() {
	for {
		ev := a.backend.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case terminal.KeyEvent:
			a.Post(KeyMsg{Key: e.Key, Rune: e.Rune, Alt: e.Alt, Ctrl: e.Ctrl, Shift: e.Shift})
		case terminal.ResizeEvent:
			a.Post(ResizeMsg{Width: e.Width, Height: e.Height})
		case terminal.MouseEvent:
			a.Post(MouseMsg{X: e.X, Y: e.Y, Button: e.Button, Action: e.Action})
		}
		select {
		case <-a.done:
			return
		default:
		}
	}
}

func (a *App) render() {
	a.screen.Render()
	buf := a.screen.Buffer()
	buf.ForEachDirtyCell(func(x, y int, cell Cell) {
		if cell.Rune == 0 {
			return
		}
		a.backend.SetContent(x, y, cell.Rune, nil, cell.Style)
	})
	a.backend.Show()
}
