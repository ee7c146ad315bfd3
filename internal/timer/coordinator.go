// Package timer implements the Timer & Async Coordinator (spec.md
// §4.8): one-shot and periodic timer bookkeeping, staged draining
// within a remaining time budget, and asynchronous error capture.
//
// Every Callback registered here is only ever invoked from the single
// goroutine that calls Drain, never from a background goroutine —
// the sandboxed goja.Runtime a Callback eventually calls into is not
// safe for concurrent use, so internal/execctx is responsible for
// keeping all VM access on that one goroutine.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/nodebooks/kernel/internal/kernelerr"
)

// Callback is the Go-level timer body the coordinator invokes.
// internal/execctx wraps a goja.Callable so the call into the
// sandboxed runtime always happens inside Drain.
type Callback func() error

type handleKind int

const (
	kindTimeout handleKind = iota
	kindInterval
)

type entry struct {
	handle   int64
	kind     handleKind
	periodMs int64
	cb       Callback
	timer    *time.Timer
}

// Coordinator tracks the pending_timeouts, pending_intervals, and
// first_tick_pending sets spec.md §4.8 describes.
type Coordinator struct {
	mu               sync.Mutex
	nextHandle       int64
	pendingTimeouts  map[int64]*entry
	pendingIntervals map[int64]*entry
	firstTickPending map[int64]bool
	ready            chan int64
	asyncErrors      []*kernelerr.AsyncError
	onAsyncStderr    func(name, message string)
}

// New returns an idle Coordinator. onAsyncStderr, if non-nil, is
// invoked (from Drain's goroutine) for every asynchronously thrown
// error, matching "also echoed through the console stderr stream".
func New(onAsyncStderr func(name, message string)) *Coordinator {
	return &Coordinator{
		pendingTimeouts:  map[int64]*entry{},
		pendingIntervals: map[int64]*entry{},
		firstTickPending: map[int64]bool{},
		ready:            make(chan int64, 16),
		onAsyncStderr:    onAsyncStderr,
	}
}

// SetTimeout registers a one-shot timer and returns its handle.
func (c *Coordinator) SetTimeout(delay time.Duration, cb Callback) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextHandle++
	h := c.nextHandle
	e := &entry{handle: h, kind: kindTimeout, cb: cb}
	e.timer = time.AfterFunc(delay, func() { c.ready <- h })
	c.pendingTimeouts[h] = e
	return h
}

// ClearTimeout cancels a pending one-shot timer; a no-op if absent.
func (c *Coordinator) ClearTimeout(handle int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.pendingTimeouts[handle]; ok {
		e.timer.Stop()
		delete(c.pendingTimeouts, handle)
	}
}

// SetInterval registers a periodic timer and returns its handle.
func (c *Coordinator) SetInterval(period time.Duration, cb Callback) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextHandle++
	h := c.nextHandle
	e := &entry{handle: h, kind: kindInterval, periodMs: period.Milliseconds(), cb: cb}
	e.timer = time.AfterFunc(period, func() { c.ready <- h })
	c.pendingIntervals[h] = e
	c.firstTickPending[h] = true
	return h
}

// ClearInterval cancels a pending periodic timer; a no-op if absent.
func (c *Coordinator) ClearInterval(handle int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.pendingIntervals[handle]; ok {
		e.timer.Stop()
		delete(c.pendingIntervals, handle)
		delete(c.firstTickPending, handle)
	}
}

func (c *Coordinator) PendingTimeoutCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pendingTimeouts)
}

func (c *Coordinator) PendingIntervalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pendingIntervals)
}

func (c *Coordinator) FirstTickPendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.firstTickPending)
}

// AsyncErrors returns the errors thrown inside wrapped timer
// callbacks so far, oldest first.
func (c *Coordinator) AsyncErrors() []*kernelerr.AsyncError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*kernelerr.AsyncError, len(c.asyncErrors))
	copy(out, c.asyncErrors)
	return out
}

// runOne invokes the callback for a handle that just became ready,
// applying the interval-rescheduling and async-error bookkeeping
// spec.md §4.8 describes. Only ever called from Drain's goroutine.
func (c *Coordinator) runOne(h int64) {
	c.mu.Lock()
	e, isTimeout := c.pendingTimeouts[h]
	if isTimeout {
		delete(c.pendingTimeouts, h)
	} else {
		e = c.pendingIntervals[h]
		if e != nil {
			delete(c.firstTickPending, h)
		}
	}
	c.mu.Unlock()

	if e == nil {
		return // cleared between the timer firing and the drain loop observing it
	}

	if err := e.cb(); err != nil {
		c.recordAsyncError(err)
		if e.kind == kindInterval {
			c.ClearInterval(h)
			return
		}
	}

	if e.kind == kindInterval {
		c.mu.Lock()
		if _, stillPending := c.pendingIntervals[h]; stillPending {
			e.timer = time.AfterFunc(time.Duration(e.periodMs)*time.Millisecond, func() { c.ready <- h })
		}
		c.mu.Unlock()
	}
}

func (c *Coordinator) recordAsyncError(err error) {
	ae, ok := err.(*kernelerr.AsyncError)
	if !ok {
		ae = &kernelerr.AsyncError{Name: "Error", Message: err.Error()}
	}
	c.mu.Lock()
	c.asyncErrors = append(c.asyncErrors, ae)
	c.mu.Unlock()
	if c.onAsyncStderr != nil {
		c.onAsyncStderr(ae.Name, ae.Message)
	}
}

// DrainStage identifies which of the four staged waits (spec.md §4.8)
// was in progress when Drain returned.
type DrainStage int

const (
	StagePromise DrainStage = iota
	StageTimeouts
	StageFirstTick
	StageIntervals
)

// Drain waits, in order and within the remaining budget implied by
// deadline, for: promiseSettled to report true, pending_timeouts to
// empty, first_tick_pending to empty, and pending_intervals to empty.
// It returns (stage, true) once every stage has finished, or the stage
// it was waiting on and false if the deadline (or ctx) cuts it off
// first.
//
// promiseSettled is supplied by the caller (internal/execctx), which
// holds the goja.Promise the cell's async scope evaluated to; a timer
// callback resuming a suspended await can flip its state as a direct
// side effect of wait()'s own c.runOne(h) call below, which is why a
// single done()-recheck loop suffices without a separate channel for
// the promise stage.
func (c *Coordinator) Drain(ctx context.Context, deadline time.Time, promiseSettled func() bool) (DrainStage, bool) {
	if !c.wait(ctx, deadline, promiseSettled) {
		return StagePromise, false
	}
	if !c.wait(ctx, deadline, func() bool { return c.PendingTimeoutCount() == 0 }) {
		return StageTimeouts, false
	}
	if !c.wait(ctx, deadline, func() bool { return c.FirstTickPendingCount() == 0 }) {
		return StageFirstTick, false
	}
	if !c.wait(ctx, deadline, func() bool { return c.PendingIntervalCount() == 0 }) {
		return StageIntervals, false
	}
	return StageIntervals, true
}

// wait blocks until done() reports true, processing ready timer
// handles as they arrive, or returns false once the deadline (or ctx)
// cuts it short.
func (c *Coordinator) wait(ctx context.Context, deadline time.Time, done func() bool) bool {
	for !done() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
			return false
		case h := <-c.ready:
			timer.Stop()
			c.runOne(h)
		}
	}
	return true
}

// ClearAll cancels every tracked handle; Execute and InvokeHandler
// call it only when the time limit or a cancelled context cuts a run
// short.
func (c *Coordinator) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for h, e := range c.pendingTimeouts {
		e.timer.Stop()
		delete(c.pendingTimeouts, h)
	}
	for h, e := range c.pendingIntervals {
		e.timer.Stop()
		delete(c.pendingIntervals, h)
		delete(c.firstTickPending, h)
	}
}
