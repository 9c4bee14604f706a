// Package island owns the visibility state of the island panel. It starts
// the stats display when the island is shown, stops it when hidden, and
// hides an attached island automatically once the pointer leaves it.
package island

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Display is what the island drives while visible.
type Display interface {
	Start(ctx context.Context)
	Stop()
}

// Controller is the single owner of island state. Create one with New at
// startup and release it with Close.
type Controller struct {
	display       Display
	autoHideDelay time.Duration
	logger        *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	visible   bool
	detached  bool
	hovering  bool
	sheet     bool
	closed    bool
	holds     int
	observers []Observer
	autoHide  *time.Timer
	hideGen   uint64

	emitMu sync.Mutex
}

// New creates a hidden, attached Controller. A non-positive autoHideDelay
// disables auto-hide.
func New(display Display, autoHideDelay time.Duration, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		display:       display,
		autoHideDelay: autoHideDelay,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// AddObserver registers o for all future events.
func (c *Controller) AddObserver(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// Visible reports whether the island is shown.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Detached reports whether the island is detached from the notch.
func (c *Controller) Detached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detached
}

// Show makes the island visible and starts the display.
func (c *Controller) Show() {
	c.mu.Lock()
	if c.closed || c.visible {
		c.mu.Unlock()
		return
	}
	c.visible = true
	if c.display != nil {
		c.display.Start(c.ctx)
	}
	c.logger.Debug("Island shown")
	c.unlockAndEmit(EventShown)
}

// Acquire registers a holder that needs the island visible, such as the
// console or a connected display client, and shows it if needed.
func (c *Controller) Acquire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.holds++
	if c.visible {
		c.mu.Unlock()
		return
	}
	c.visible = true
	if c.display != nil {
		c.display.Start(c.ctx)
	}
	c.logger.Debug("Island shown", zap.Int("holders", c.holds))
	c.unlockAndEmit(EventShown)
}

// Release drops a holder taken with Acquire. The island hides when the last
// holder releases it; other holders keep it visible.
func (c *Controller) Release() {
	c.mu.Lock()
	if c.holds == 0 {
		c.mu.Unlock()
		return
	}
	c.holds--
	if c.holds > 0 || !c.hideLocked() {
		c.mu.Unlock()
		return
	}
	c.unlockAndEmit(EventHidden)
}

// Hide hides the island and stops the display.
func (c *Controller) Hide() {
	c.mu.Lock()
	if !c.hideLocked() {
		c.mu.Unlock()
		return
	}
	c.unlockAndEmit(EventHidden)
}

// MouseEntered records the pointer entering the island and cancels any
// pending auto-hide.
func (c *Controller) MouseEntered() {
	c.mu.Lock()
	c.hovering = true
	c.cancelAutoHideLocked()
	c.unlockAndEmit(EventMouseEntered)
}

// MouseExited records the pointer leaving and schedules auto-hide.
func (c *Controller) MouseExited() {
	c.mu.Lock()
	c.hovering = false
	c.scheduleAutoHideLocked()
	c.unlockAndEmit(EventMouseExited)
}

// Detach frees the island from the notch. Detached islands never auto-hide.
func (c *Controller) Detach() {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return
	}
	c.detached = true
	c.cancelAutoHideLocked()
	c.unlockAndEmit(EventDetached)
}

// Attach re-anchors the island to the notch.
func (c *Controller) Attach() {
	c.mu.Lock()
	if !c.detached {
		c.mu.Unlock()
		return
	}
	c.detached = false
	c.scheduleAutoHideLocked()
	c.unlockAndEmit(EventAttached)
}

// PresentSheet marks a modal sheet as open; auto-hide is suspended.
func (c *Controller) PresentSheet() {
	c.mu.Lock()
	c.sheet = true
	c.cancelAutoHideLocked()
	c.unlockAndEmit(EventSheetPresented)
}

// DismissSheet closes the modal sheet.
func (c *Controller) DismissSheet() {
	c.mu.Lock()
	c.sheet = false
	c.scheduleAutoHideLocked()
	c.unlockAndEmit(EventSheetDismissed)
}

// Close hides the island, cancels pending tasks and stops accepting Show.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.holds = 0
	hidden := c.hideLocked()
	c.cancel()
	if hidden {
		c.unlockAndEmit(EventHidden)
		return
	}
	c.mu.Unlock()
}

// hideLocked reports whether the island was visible.
func (c *Controller) hideLocked() bool {
	c.cancelAutoHideLocked()
	if !c.visible {
		return false
	}
	c.visible = false
	if c.display != nil {
		c.display.Stop()
	}
	c.logger.Debug("Island hidden")
	return true
}

func (c *Controller) scheduleAutoHideLocked() {
	c.cancelAutoHideLocked()
	if c.autoHideDelay <= 0 || !c.visible || c.detached || c.hovering || c.sheet {
		return
	}
	gen := c.hideGen
	c.autoHide = time.AfterFunc(c.autoHideDelay, func() { c.autoHideFired(gen) })
}

func (c *Controller) cancelAutoHideLocked() {
	c.hideGen++
	if c.autoHide != nil {
		c.autoHide.Stop()
		c.autoHide = nil
	}
}

// autoHideFired hides the island unless the timer was superseded.
func (c *Controller) autoHideFired(gen uint64) {
	c.mu.Lock()
	if gen != c.hideGen {
		c.mu.Unlock()
		return
	}
	c.autoHide = nil
	if !c.hideLocked() {
		c.mu.Unlock()
		return
	}
	c.logger.Debug("Island auto-hidden")
	c.unlockAndEmit(EventHidden)
}

// unlockAndEmit releases c.mu and delivers e to a snapshot of observers.
// emitMu is taken before c.mu is released so events keep their order.
func (c *Controller) unlockAndEmit(e Event) {
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	for _, o := range observers {
		o.OnIslandEvent(e)
	}
}
