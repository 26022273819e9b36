// Package debounce delays an action until its input has been quiet for a
// fixed window. Each Trigger cancels the pending timer and schedules a
// new one, so at most one timer per Debouncer is ever alive.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period used when none is configured.
const DefaultWindow = 500 * time.Millisecond

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. RealClock uses time.AfterFunc; tests inject
// a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is the wall-clock implementation of Clock.
var RealClock Clock = realClock{}

// Debouncer delivers the key of the last Trigger call on C once the
// window elapses without another Trigger.
type Debouncer struct {
	window time.Duration
	clock  Clock

	mu      sync.Mutex
	timer   Timer
	pending uint64 // key armed on the live timer; 0 when none
	stopped bool

	out chan uint64
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(d *Debouncer) {
		if c != nil {
			d.clock = c
		}
	}
}

// New creates a debouncer with the given quiet window.
func New(window time.Duration, opts ...Option) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	d := &Debouncer{
		window: window,
		clock:  RealClock,
		out:    make(chan uint64, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Window returns the configured quiet period.
func (d *Debouncer) Window() time.Duration { return d.window }

// C delivers fired keys. It is buffered to one element and only ever
// holds the most recent fire.
func (d *Debouncer) C() <-chan uint64 { return d.out }

// Trigger cancels any pending timer and arms a new one for key. Keys
// should be non-zero and increasing.
func (d *Debouncer) Trigger(key uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = key
	d.timer = d.clock.AfterFunc(d.window, func() { d.fire(key) })
}

// Cancel stops the pending timer, if any, without firing.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = 0
}

// Pending reports whether a timer is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != 0
}

// Stop cancels the pending timer and disables further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.Cancel()
}

func (d *Debouncer) fire(key uint64) {
	d.mu.Lock()
	// A timer that lost the race with Stop still runs its callback;
	// only the currently armed key may fire.
	if d.stopped || d.pending != key {
		d.mu.Unlock()
		return
	}
	d.pending = 0
	d.timer = nil
	d.mu.Unlock()

	// Replace any undelivered key with the newer one.
	for {
		select {
		case d.out <- key:
			return
		default:
		}
		select {
		case <-d.out:
		default:
		}
	}
}
