// Package taskcontrol implements the shared pause/resume/cancel signal
// passed into long-running scan and search operations. A single controller
// is created at Command dispatch and outlives the worker goroutine it
// controls; ownership is shared between the presentation layer (which
// signals) and the worker (which polls).
package taskcontrol

import "sync"

// State is the run state of a controlled task.
type State int

const (
	Running State = iota
	Paused
)

// Controller carries a pause/resume/cancel signal into a long operation.
// Cancel broadcasts on the condition variable so a paused task observes
// cancellation immediately instead of blocking forever in AwaitIfPaused.
type Controller struct {
	mu        sync.Mutex
	cond      *sync.Cond
	state     State
	cancelled bool
}

// New returns a fresh controller in the Running, not-cancelled state.
func New() *Controller {
	c := &Controller{state: Running}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Pause moves the controller to the Paused state.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.state = Paused
	c.mu.Unlock()
}

// Resume moves the controller to the Running state and wakes any waiter.
func (c *Controller) Resume() {
	c.mu.Lock()
	c.state = Running
	c.mu.Unlock()
	c.cond.Broadcast()
}

// Cancel sets the cancellation flag and wakes any paused waiter so it can
// observe the cancellation instead of blocking indefinitely.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	c.mu.Unlock()
	c.cond.Broadcast()
}

// IsCancelled reports whether Cancel has been called.
func (c *Controller) IsCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// AwaitIfPaused blocks until the controller leaves the Paused state, either
// because Resume was called or because Cancel woke it. Callers must still
// check IsCancelled after this returns.
func (c *Controller) AwaitIfPaused() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.state == Paused && !c.cancelled {
		c.cond.Wait()
	}
}
