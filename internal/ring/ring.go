package ring

import (
	"errors"
	"fmt"
)

// ErrInvalidCapacity is returned by New for a capacity below one.
var ErrInvalidCapacity = errors.New("ring capacity must be a positive integer")

// Position is a logical offset into the stream of pushed items: the number
// of pushes that had happened when it was captured. Anchors are always
// expressed as positions; the physical slot is derived only when storage is
// read.
type Position int64

// Buffer is a fixed-capacity circular store that overwrites its oldest item
// once full. It is not safe for concurrent use; callers serialise Push and
// reads (see pager.Session).
type Buffer[T any] struct {
	slots   []T
	pointer int
	length  int
	total   Position
}

// New allocates a buffer holding at most capacity items.
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &Buffer[T]{slots: make([]T, capacity)}, nil
}

// Push stores item at the write pointer, evicting the oldest item when full.
func (b *Buffer[T]) Push(item T) {
	b.slots[b.pointer] = item
	b.pointer = (b.pointer + 1) % len(b.slots)
	if b.length < len(b.slots) {
		b.length++
	}
	b.total++
}

// CurrentPosition returns the live anchor.
func (b *Buffer[T]) CurrentPosition() Position {
	return b.total
}

// Pointer returns the physical write index in [0, Cap()).
func (b *Buffer[T]) Pointer() int {
	return b.pointer
}

// Len returns the number of readable items.
func (b *Buffer[T]) Len() int {
	return b.length
}

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.slots)
}

// Total returns the number of items pushed since creation.
func (b *Buffer[T]) Total() int64 {
	return int64(b.total)
}

// oldest is the position of the oldest retained item.
func (b *Buffer[T]) oldest() Position {
	return b.total - Position(b.length)
}

func (b *Buffer[T]) slot(p Position) int {
	return int(p % Position(len(b.slots)))
}

// Available reports how many retained items are visible as of anchor, that
// is, items pushed before the anchor was captured that have not since been
// evicted. The live anchor sees Len() items. The result is within [0, Len()].
func (b *Buffer[T]) Available(anchor Position) int {
	if anchor == b.total {
		return b.length
	}
	n := anchor - b.oldest()
	switch {
	case n < 0:
		return 0
	case n > Position(b.length):
		return b.length
	}
	return int(n)
}

// RetrieveWindow scans backward from anchor and returns up to n items
// accepted by match, newest first. At most Available(anchor) items are
// examined. A nil match accepts everything.
func (b *Buffer[T]) RetrieveWindow(n int, match func(T) bool, anchor Position) []T {
	if n <= 0 {
		return nil
	}
	avail := b.Available(anchor)
	if avail == 0 {
		return nil
	}
	if match == nil {
		match = acceptAll[T]
	}
	start := min(anchor, b.total)
	out := make([]T, 0, min(n, avail))
	for i := 1; i <= avail && len(out) < n; i++ {
		item := b.slots[b.slot(start-Position(i))]
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// WindowAt is RetrieveWindow anchored at the live position.
func (b *Buffer[T]) WindowAt(n int, match func(T) bool) []T {
	return b.RetrieveWindow(n, match, b.CurrentPosition())
}

// Tail returns the newest n items, newest first.
func (b *Buffer[T]) Tail(n int) []T {
	return b.RetrieveWindow(n, nil, b.CurrentPosition())
}

// WrapPosition brings p back inside the retained window [oldest, live] by
// wrapping modulo the current length. Before the buffer first fills the
// valid index space is bounded by Len(), not Cap().
func (b *Buffer[T]) WrapPosition(p Position) Position {
	if b.length == 0 {
		return b.total
	}
	lo := b.oldest()
	if p >= lo && p <= b.total {
		return p
	}
	l := Position(b.length)
	off := (p - lo) % l
	if off < 0 {
		off += l
	}
	return lo + off
}

// Snapshot copies the retained items, oldest first.
func (b *Buffer[T]) Snapshot() []T {
	out := make([]T, 0, b.length)
	for p := b.oldest(); p < b.total; p++ {
		out = append(out, b.slots[b.slot(p)])
	}
	return out
}

// Stats describes the buffer state for operators.
func (b *Buffer[T]) Stats() string {
	return fmt.Sprintf("pointer=%d length=%d capacity=%d", b.pointer, b.length, len(b.slots))
}

func acceptAll[T any](T) bool { return true }
