package pager

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dinotail/dinotail/internal/ring"
)

func newController(t *testing.T, capacity, window int) *Controller[int] {
	t.Helper()
	buf, err := ring.New[int](capacity)
	if err != nil {
		t.Fatalf("ring.New(%d): %v", capacity, err)
	}
	c, err := NewController(buf, window)
	if err != nil {
		t.Fatalf("NewController(%d): %v", window, err)
	}
	return c
}

func pushN(c *Controller[int], from, to int) {
	for i := from; i <= to; i++ {
		c.Push(i)
	}
}

func TestNewController_RejectsNonPositiveWindow(t *testing.T) {
	buf, _ := ring.New[int](4)
	for _, w := range []int{0, -3} {
		if _, err := NewController(buf, w); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("NewController(window=%d) error = %v, want ErrInvalidWindow", w, err)
		}
	}
	c, _ := NewController(buf, 2)
	if err := c.SetWindow(0); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("SetWindow(0) error = %v, want ErrInvalidWindow", err)
	}
	if c.Window() != 2 {
		t.Fatalf("Window() = %d after rejected SetWindow, want 2", c.Window())
	}
}

func TestPause_FreezesView(t *testing.T) {
	c := newController(t, 5, 5)
	pushN(c, 1, 3)

	c.Pause()
	if c.Mode() != Paused || c.Anchor() != 3 {
		t.Fatalf("after Pause mode=%v anchor=%d, want paused/3", c.Mode(), c.Anchor())
	}

	c.Push(4)
	if c.Buffer().Pointer() != 4 {
		t.Fatalf("Pointer = %d, want 4", c.Buffer().Pointer())
	}
	if got := c.Buffer().Available(3); got != 3 {
		t.Fatalf("Available(3) = %d, want 3", got)
	}
	if got, want := c.Query(), []int{3, 2, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("paused Query = %v, want %v", got, want)
	}

	c.Resume()
	if got, want := c.Query(), []int{4, 3, 2, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("live Query = %v, want %v", got, want)
	}
}

func TestPause_WhilePausedRecapturesAnchor(t *testing.T) {
	c := newController(t, 10, 3)
	pushN(c, 1, 4)
	c.Pause()
	pushN(c, 5, 6)
	c.Pause()
	if c.Anchor() != 6 {
		t.Fatalf("Anchor = %d, want 6", c.Anchor())
	}
}

func TestPageForward_SnapsToLive(t *testing.T) {
	c := newController(t, 5, 5)
	pushN(c, 1, 3)
	c.Pause()
	c.Push(4)

	// available(3)=3, 3+5 > length 4
	if !c.PageForward() {
		t.Fatalf("PageForward reported no change")
	}
	if c.Mode() != Live {
		t.Fatalf("mode = %v, want live", c.Mode())
	}
	if c.Anchor() != 4 {
		t.Fatalf("anchor = %d, want 4", c.Anchor())
	}
}

func TestPageBackThenForward_RestoresAnchor(t *testing.T) {
	c := newController(t, 100, 10)
	pushN(c, 1, 50)
	c.Pause()
	start := c.Anchor()

	if !c.PageBack() {
		t.Fatalf("PageBack did not move")
	}
	if c.Anchor() != start-10 {
		t.Fatalf("anchor after PageBack = %d, want %d", c.Anchor(), start-10)
	}
	if got := c.Query(); got[0] != 40 || len(got) != 10 {
		t.Fatalf("page back window = %v, want 40..31", got)
	}

	c.PageBack()
	c.PageForward()
	if c.Anchor() != start-10 {
		t.Fatalf("anchor after back/forward = %d, want %d", c.Anchor(), start-10)
	}
	if c.Mode() != Paused {
		t.Fatalf("mode = %v, want paused", c.Mode())
	}
}

func TestPageBack_StopsAtOldestWindow(t *testing.T) {
	c := newController(t, 8, 3)
	pushN(c, 1, 7)
	c.Pause()

	moves := 0
	for c.PageBack() {
		moves++
		if moves > 10 {
			t.Fatalf("PageBack never stopped")
		}
	}
	// 7 -> 4 -> 1; with one item left behind the anchor it stops.
	if moves != 2 || c.Anchor() != 1 {
		t.Fatalf("moves=%d anchor=%d, want 2/1", moves, c.Anchor())
	}
	if got, want := c.Query(), []int{1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Query = %v, want %v", got, want)
	}
}

func TestPaging_NoOpWhenLive(t *testing.T) {
	c := newController(t, 8, 2)
	pushN(c, 1, 8)
	if c.PageBack() || c.PageForward() {
		t.Fatalf("paging should not move a live controller")
	}
	if c.Mode() != Live {
		t.Fatalf("mode = %v, want live", c.Mode())
	}
}

func TestPush_AutoResumesWhenWriterWrapsOntoAnchor(t *testing.T) {
	c := newController(t, 4, 2)
	pushN(c, 1, 2)
	c.Pause() // anchor 2, slot 2

	for i := 3; i <= 5; i++ {
		if c.Push(i) {
			t.Fatalf("push %d resumed early", i)
		}
		if c.Mode() != Paused {
			t.Fatalf("push %d: mode = %v, want paused", i, c.Mode())
		}
	}
	if !c.Push(6) {
		t.Fatalf("push 6 should auto-resume")
	}
	if c.Mode() != Live {
		t.Fatalf("mode = %v, want live", c.Mode())
	}
	if c.Buffer().Pointer() != 2 {
		t.Fatalf("Pointer = %d, want anchor slot 2", c.Buffer().Pointer())
	}
}

func TestPush_AutoResumesAfterPagingBack(t *testing.T) {
	tests := []struct {
		name  string
		pages int
	}{
		{"one page back", 1},
		{"two pages back", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const capacity, window = 6, 2
			c := newController(t, capacity, window)
			pushN(c, 1, capacity)
			c.Pause()
			for i := 0; i < tt.pages; i++ {
				if !c.PageBack() {
					t.Fatalf("PageBack %d did not move", i+1)
				}
			}
			anchor := c.Anchor()
			if want := ring.Position(capacity - tt.pages*window); anchor != want {
				t.Fatalf("anchor = %d, want %d", anchor, want)
			}

			// The anchored page survives until the writer is a full
			// capacity ahead of it.
			remaining := capacity - tt.pages*window
			next := capacity + 1
			for i := 1; i < remaining; i++ {
				if c.Push(next) {
					t.Fatalf("push %d of %d resumed early", i, remaining)
				}
				next++
			}
			if c.Mode() != Paused {
				t.Fatalf("mode = %v, want paused before the last push", c.Mode())
			}
			if !c.Push(next) {
				t.Fatalf("push %d of %d should auto-resume", remaining, remaining)
			}
			if c.Mode() != Live {
				t.Fatalf("mode = %v, want live", c.Mode())
			}
		})
	}
}

func TestQuery_UsesMatch(t *testing.T) {
	c := newController(t, 10, 3)
	pushN(c, 1, 10)
	c.SetMatch(func(i int) bool { return i%3 == 0 })
	if got, want := c.Query(), []int{9, 6, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Query = %v, want %v", got, want)
	}
	c.Pause()
	c.PageBack()
	if got, want := c.Query(), []int{6, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("paged Query = %v, want %v", got, want)
	}
}
