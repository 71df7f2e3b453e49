// Package countdown implements the payment redirect countdown: a
// cancellable, tick-per-second task that fires a callback exactly once when
// it reaches zero. It is built from repeated one-shot timers so that
// cancellation clears the pending timer immediately.
package countdown

import (
	"sync"
	"time"
)

type State int

const (
	// Idle means no countdown is active. Cancellation returns here.
	Idle State = iota
	// Counting means ticks are in flight.
	Counting
	// Fired is terminal: the countdown reached zero and OnFire ran.
	Fired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Counting:
		return "COUNTING"
	case Fired:
		return "FIRED"
	default:
		return "UNKNOWN"
	}
}

// Timer is the handle of a scheduled one-shot callback.
type Timer interface {
	Stop() bool
}

// Clock schedules one-shot callbacks. The production implementation wraps
// time.AfterFunc; tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

type realTimer struct{ *time.Timer }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{time.AfterFunc(d, f)}
}

// SystemClock schedules on the runtime timer heap.
func SystemClock() Clock {
	return realClock{}
}

// Countdown counts down wall-clock seconds toward a single fire event.
// A Countdown may be restarted after it was cancelled or fired; each Start
// supersedes whatever came before it.
type Countdown struct {
	mu    sync.Mutex
	clock Clock

	state     State
	remaining int
	gen       uint64
	timer     Timer

	onFire func()
	onTick func(remaining int)
}

type Option func(*Countdown)

// WithOnTick registers a callback invoked after every elapsed second with
// the seconds still remaining.
func WithOnTick(f func(remaining int)) Option {
	return func(c *Countdown) { c.onTick = f }
}

// New creates an idle countdown. onFire runs exactly once per completed
// run, from the timer callback.
func New(clock Clock, onFire func(), opts ...Option) *Countdown {
	c := &Countdown{
		clock:  clock,
		state:  Idle,
		onFire: onFire,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins counting down from the given number of seconds. Starting
// while a countdown is already running replaces it; the old run's pending
// tick is discarded.
func (c *Countdown) Start(seconds int) {
	if seconds <= 0 {
		return
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.state = Counting
	c.remaining = seconds
	c.timer = c.clock.AfterFunc(time.Second, func() { c.tick(gen) })
	c.mu.Unlock()
}

// Cancel stops an active countdown and returns to Idle. It reports whether
// a countdown was actually cancelled. Cancelling an idle or fired countdown
// is a no-op.
func (c *Countdown) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Counting {
		return false
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.state = Idle
	c.remaining = 0
	return true
}

// State returns the current machine state.
func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining returns the seconds left in the current run, zero when idle or
// fired.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) tick(gen uint64) {
	c.mu.Lock()
	// A stale tick from a cancelled or restarted run must not count.
	if gen != c.gen || c.state != Counting {
		c.mu.Unlock()
		return
	}

	c.remaining--
	remaining := c.remaining
	onTick := c.onTick

	if remaining > 0 {
		c.timer = c.clock.AfterFunc(time.Second, func() { c.tick(gen) })
		c.mu.Unlock()
		if onTick != nil {
			onTick(remaining)
		}
		return
	}

	c.state = Fired
	c.timer = nil
	onFire := c.onFire
	c.mu.Unlock()

	if onTick != nil {
		onTick(0)
	}
	if onFire != nil {
		onFire()
	}
}
