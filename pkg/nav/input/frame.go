package input

import (
	"sync"
	"time"
)

// DefaultFrameInterval is the polling interval used when no display
// refresh rate is known.
const DefaultFrameInterval = time.Second / 60

// FrameScheduler runs fn once on the next frame. The returned cancel stops
// a pending frame and is safe to call after it ran.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time)) (cancel func())
}

// TimerFrames schedules frames on a timer and hands each one to post so it
// runs on the owning loop. With a nil post, fn runs on the timer goroutine.
type TimerFrames struct {
	Interval time.Duration
	Post     func(func())
}

// NewTimerFrames returns a scheduler with the given interval.
func NewTimerFrames(interval time.Duration, post func(func())) *TimerFrames {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TimerFrames{Interval: interval, Post: post}
}

// RequestFrame implements FrameScheduler.
func (f *TimerFrames) RequestFrame(fn func(now time.Time)) func() {
	var (
		mu       sync.Mutex
		canceled bool
	)
	run := func() {
		mu.Lock()
		stop := canceled
		mu.Unlock()
		if !stop {
			fn(time.Now())
		}
	}
	timer := time.AfterFunc(f.Interval, func() {
		if f.Post != nil {
			f.Post(run)
			return
		}
		run()
	})
	return func() {
		mu.Lock()
		canceled = true
		mu.Unlock()
		timer.Stop()
	}
}
