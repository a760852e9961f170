// Package autosave provides a reusable debounced-save controller. Every
// editing surface (patient registration, result entry, catalog, reports)
// previously carried its own copy of the same timer logic; this is the
// single parameterized state machine replacing those copies.
package autosave

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State is the controller's position in the save lifecycle.
type State string

const (
	StateClean  State = "clean"  // no pending edits
	StateDirty  State = "dirty"  // edit occurred, debounce timer armed
	StateSaving State = "saving" // persistence in flight
	StateError  State = "error"  // last save failed; edits still pending
)

// DefaultDebounce is the quiet period after the last edit before a save
// fires. Matches the editing surfaces' historical 800ms window.
const DefaultDebounce = 800 * time.Millisecond

// Hooks parameterize a controller for one editing surface.
type Hooks struct {
	// MinFieldsPresent guards silent auto-saves: until it returns true the
	// timer path is a no-op, so debounce timing alone can never create a
	// worthless durable record (e.g. a patient with no name and no tests).
	MinFieldsPresent func() bool

	// Validate guards explicit saves. A non-nil error aborts Flush before
	// any persistence is attempted.
	Validate func() error

	// Persist writes the surface's current in-memory state durably. It is
	// called with at most one invocation in flight per controller.
	Persist func(ctx context.Context) error
}

// Config carries optional tuning and observer callbacks.
type Config struct {
	Debounce time.Duration
	// OnError is invoked (outside the lock) when a silent auto-save fails.
	OnError func(error)
	// OnSaved is invoked (outside the lock) after each successful save.
	OnSaved func(time.Time)
}

// Controller is the debounced-save state machine for one editing surface
// instance. Safe for concurrent use.
type Controller struct {
	mu    sync.Mutex
	state State
	// saving tracks an in-flight Persist separately from state: an edit
	// during a save moves state back to Dirty while saving stays true, and
	// only this flag decides whether a second save may start.
	saving    bool
	loaded    bool
	closed    bool
	timer     *time.Timer
	debounce  time.Duration
	lastSaved time.Time
	lastErr   error

	hooks   Hooks
	onError func(error)
	onSaved func(time.Time)
}

// New creates a controller in the Clean state. The controller does nothing
// until MarkLoaded is called, so hydrating a form never triggers a save.
func New(hooks Hooks, cfg Config) *Controller {
	if hooks.Persist == nil {
		panic("autosave: Persist hook is required")
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		state:    StateClean,
		debounce: debounce,
		hooks:    hooks,
		onError:  cfg.OnError,
		onSaved:  cfg.OnSaved,
	}
}

// MarkLoaded records that the surface finished its initial load. Auto-save
// is inert before this point.
func (c *Controller) MarkLoaded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
}

// MarkDirty records a field edit. The debounce timer is re-armed on every
// call: last edit wins, timers never accumulate. Edits during an in-flight
// save move the state back to Dirty without launching a second save.
func (c *Controller) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.state = StateDirty
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.timerFired)
}

// timerFired runs the silent auto-save path when the quiet period elapses.
func (c *Controller) timerFired() {
	c.mu.Lock()

	if c.closed || !c.loaded || c.state != StateDirty {
		c.mu.Unlock()
		return
	}
	if c.saving {
		// A save is already running. Stay dirty; finishSave re-arms the
		// timer once the in-flight save completes.
		c.mu.Unlock()
		return
	}
	if c.hooks.MinFieldsPresent != nil && !c.hooks.MinFieldsPresent() {
		// Stay dirty; the next edit re-arms the timer.
		c.mu.Unlock()
		return
	}

	c.state = StateSaving
	c.saving = true
	c.mu.Unlock()

	err := c.hooks.Persist(context.Background())

	c.mu.Lock()
	c.finishSave(err)
	notifyErr := c.onError
	notifySaved := c.onSaved
	saved := c.lastSaved
	c.mu.Unlock()

	if err != nil && notifyErr != nil {
		notifyErr(err)
	}
	if err == nil && notifySaved != nil {
		notifySaved(saved)
	}
}

// Flush performs an explicit save, bypassing the debounce window. Unlike the
// silent path it runs Validate first and returns any error to the caller so
// the surface can block its "finalize and reset" step.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("autosave: controller closed")
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.saving {
		c.mu.Unlock()
		return fmt.Errorf("autosave: save already in flight")
	}
	if c.hooks.Validate != nil {
		if err := c.hooks.Validate(); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.state = StateSaving
	c.saving = true
	c.mu.Unlock()

	err := c.hooks.Persist(ctx)

	c.mu.Lock()
	c.finishSave(err)
	notifySaved := c.onSaved
	saved := c.lastSaved
	c.mu.Unlock()

	if err == nil && notifySaved != nil {
		notifySaved(saved)
	}
	return err
}

// finishSave applies the post-persist transition. Caller holds the lock.
// If an edit arrived while saving, the state is already Dirty; success must
// not mask those edits, so the timer is re-armed for them here (the timer
// firing mid-save is a no-op while the saving flag is set).
func (c *Controller) finishSave(err error) {
	c.saving = false
	if err != nil {
		c.lastErr = err
		if c.state == StateSaving {
			c.state = StateError
		}
	} else {
		c.lastErr = nil
		c.lastSaved = time.Now()
		if c.state == StateSaving {
			c.state = StateClean
		}
	}
	if c.state == StateDirty && !c.closed {
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timer = time.AfterFunc(c.debounce, c.timerFired)
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastSaved returns the timestamp of the most recent successful save, zero
// if none has happened yet.
func (c *Controller) LastSaved() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSaved
}

// Err returns the error from the most recent failed save, nil after a
// success.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Close disarms any pending timer. Pending edits are NOT flushed; callers
// wanting a final write should Flush first.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
