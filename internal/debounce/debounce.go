// Package debounce coalesces bursts of calls into a single deferred call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays a callback until no new calls have been made for the
// configured delay.
//
// The debouncer owns exactly one pending slot. Every Call replaces the slot:
// the previous timer is stopped and a sequence number invalidates a timer
// whose function is already running. At most one call is ever pending and
// the callback is never run concurrently with itself by the debouncer.
//
// Thread-safety: All methods are safe for concurrent use.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	seq      uint64
	running  sync.Mutex
	callback func()
}

// New creates a debouncer that runs fn after delay of quiet.
func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: fn,
	}
}

// Call schedules the callback, cancelling any call already pending.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	currentSeq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(currentSeq)
	})
}

// fire runs the callback if seq still identifies the pending slot.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if !d.pending || d.seq != seq || d.callback == nil {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	fn := d.callback
	d.mu.Unlock()

	d.running.Lock()
	defer d.running.Unlock()
	fn()
}

// Flush runs a pending call immediately on the calling goroutine.
// It returns false if nothing was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++

	if !d.pending || d.callback == nil {
		d.mu.Unlock()
		return false
	}
	d.pending = false
	fn := d.callback
	d.mu.Unlock()

	d.running.Lock()
	defer d.running.Unlock()
	fn()
	return true
}

// Cancel drops any pending call.
// A callback that has already started is allowed to finish.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending returns true if a call is scheduled but has not run yet.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// SetDelay changes the quiet period used by subsequent calls.
// Negative values are treated as zero.
func (d *Debouncer) SetDelay(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
}
