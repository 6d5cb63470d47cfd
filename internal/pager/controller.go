package pager

import (
	"errors"
	"fmt"

	"github.com/dinotail/dinotail/internal/ring"
)

// ErrInvalidWindow is returned for a window size below one.
var ErrInvalidWindow = errors.New("window size must be a positive integer")

// Mode is the controller state.
type Mode int

const (
	Live Mode = iota
	Paused
)

func (m Mode) String() string {
	if m == Paused {
		return "paused"
	}
	return "live"
}

// Controller pages through a ring buffer. It is not safe for concurrent
// use.
type Controller[T any] struct {
	buf    *ring.Buffer[T]
	mode   Mode
	anchor ring.Position
	window int
	match  func(T) bool
}

// NewController starts in Live mode showing window items per query.
func NewController[T any](buf *ring.Buffer[T], window int) (*Controller[T], error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	return &Controller[T]{buf: buf, window: window}, nil
}

// Push appends item. It reports true when the push returned a paused
// controller to Live because the writer wrapped onto the frozen anchor.
func (c *Controller[T]) Push(item T) bool {
	c.buf.Push(item)
	if c.mode == Paused && c.buf.CurrentPosition()-c.anchor >= ring.Position(c.buf.Cap()) {
		c.mode = Live
		return true
	}
	return false
}

// Pause freezes the anchor at the live position. Pausing again re-captures
// the anchor.
func (c *Controller[T]) Pause() {
	c.anchor = c.buf.CurrentPosition()
	c.mode = Paused
}

// Resume returns to Live mode.
func (c *Controller[T]) Resume() {
	c.mode = Live
}

// PageBack moves the anchor one window toward older records. It does
// nothing in Live mode or when the current window already reaches the
// oldest retained record. It reports whether the anchor moved.
func (c *Controller[T]) PageBack() bool {
	if c.mode != Paused {
		return false
	}
	if c.buf.Available(c.anchor) <= c.window {
		return false
	}
	c.anchor = c.buf.WrapPosition(c.anchor - ring.Position(c.window))
	return true
}

// PageForward moves the anchor one window toward the live edge, snapping to
// Live once the next window would overlap it. It does nothing in Live mode.
func (c *Controller[T]) PageForward() bool {
	if c.mode != Paused {
		return false
	}
	if c.buf.Available(c.anchor)+c.window > c.buf.Len() {
		c.anchor = c.buf.CurrentPosition()
		c.mode = Live
		return true
	}
	c.anchor = c.buf.WrapPosition(c.anchor + ring.Position(c.window))
	return true
}

// Query returns up to Window() matching items, newest first, relative to
// the live edge or the frozen anchor.
func (c *Controller[T]) Query() []T {
	if c.mode == Paused {
		return c.buf.RetrieveWindow(c.window, c.match, c.anchor)
	}
	return c.buf.WindowAt(c.window, c.match)
}

// SetMatch replaces the predicate; nil accepts everything.
func (c *Controller[T]) SetMatch(match func(T) bool) {
	c.match = match
}

// SetWindow changes the page size.
func (c *Controller[T]) SetWindow(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindow, n)
	}
	c.window = n
	return nil
}

func (c *Controller[T]) Mode() Mode { return c.mode }

func (c *Controller[T]) Window() int { return c.window }

// Anchor returns the position queries are relative to.
func (c *Controller[T]) Anchor() ring.Position {
	if c.mode == Paused {
		return c.anchor
	}
	return c.buf.CurrentPosition()
}

// Buffer exposes the underlying ring for diagnostics.
func (c *Controller[T]) Buffer() *ring.Buffer[T] { return c.buf }
