package search

import (
	"sync"
	"time"
)

const DefaultDelay = 300 * time.Millisecond

// Debouncer calls fn with the last value passed to Trigger once delay has
// elapsed without another Trigger.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	seq     uint64
	stopped bool
}

func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay < 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger restarts the timer with v as the pending value.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A newer Trigger or a Stop may have raced with this timer firing.
		current := d.seq == seq && !d.stopped
		d.mu.Unlock()

		if current {
			d.fn(v)
		}
	})
}

// Stop drops any pending call. Later Triggers are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
