package datatable

import (
	"sync"
	"time"
)

// DefaultDebounce is the idle period before buffered input is committed.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer buffers rapidly changing input and commits only the last value
// once input has been idle for the configured delay.
//
// commit runs on the timer's goroutine, or on the caller's for Flush.
// Commits never overlap, and once Reset or Stop returns no commit of
// earlier input runs. commit must not call Reset, Stop or Flush.
type Debouncer[V any] struct {
	// fireMu is held across each commit.
	fireMu sync.Mutex
	mu     sync.Mutex
	delay  time.Duration
	commit func(V)
	timer  *time.Timer
	value  V
	seq    uint64
}

// NewDebouncer returns a Debouncer that calls commit after delay of idle
// input. A non-positive delay uses DefaultDebounce.
func NewDebouncer[V any](delay time.Duration, commit func(V)) *Debouncer[V] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[V]{delay: delay, commit: commit}
}

// Input buffers v and restarts the idle timer.
func (d *Debouncer[V]) Input(v V) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.value = v
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// fire commits the buffered value unless newer input or a Reset superseded
// the timer that called it.
func (d *Debouncer[V]) fire(seq uint64) {
	d.fireMu.Lock()
	defer d.fireMu.Unlock()

	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.timer = nil
	d.mu.Unlock()

	d.commit(v)
}

// Value returns the buffered value, committed or not.
func (d *Debouncer[V]) Value() V {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Pending reports whether a commit is scheduled.
func (d *Debouncer[V]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Reset replaces the buffer with an authoritative upstream value, such as a
// filter cleared elsewhere, and drops any pending commit. A commit already
// running finishes first.
func (d *Debouncer[V]) Reset(v V) {
	d.fireMu.Lock()
	defer d.fireMu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.value = v
}

// Flush commits the buffered value now if a commit is pending.
func (d *Debouncer[V]) Flush() {
	d.fireMu.Lock()
	defer d.fireMu.Unlock()

	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.stopLocked()
	v := d.value
	d.mu.Unlock()

	d.commit(v)
}

// Stop drops any pending commit. A commit already running finishes first.
func (d *Debouncer[V]) Stop() {
	d.fireMu.Lock()
	defer d.fireMu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Debouncer[V]) stopLocked() {
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
