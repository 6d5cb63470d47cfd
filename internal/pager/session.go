package pager

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dinotail/dinotail/internal/filter"
	"github.com/dinotail/dinotail/internal/querylog"
	"github.com/dinotail/dinotail/internal/ring"
)

// Session is the concurrency-safe query surface shared by the feed and the
// UI.
type Session struct {
	mu         sync.Mutex
	ctrl       *Controller[querylog.Record]
	pred       filter.Predicate
	cachedView []querylog.Record
	dirty      bool
	recomputes int
	resumes    int
}

// NewSession allocates a ring of the given capacity.
func NewSession(capacity, window int) (*Session, error) {
	buf, err := ring.New[querylog.Record](capacity)
	if err != nil {
		return nil, err
	}
	ctrl, err := NewController(buf, window)
	if err != nil {
		return nil, err
	}
	return &Session{ctrl: ctrl, dirty: true}, nil
}

// Push stores a record and marks the view dirty.
func (s *Session) Push(rec querylog.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl.Push(rec) {
		s.resumes++
	}
	s.dirty = true
}

// SetFilter compiles opts and installs the result. On error the previous
// predicate stays active and the *filter.InvalidPatternError is returned.
func (s *Session) SetFilter(opts filter.Options) error {
	pred, err := filter.Compile(opts)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pred = pred
	s.ctrl.SetMatch(pred.Func())
	s.dirty = true
	return nil
}

// Filter returns the options of the active predicate.
func (s *Session) Filter() filter.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pred.Options()
}

func (s *Session) SetWindow(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == s.ctrl.Window() {
		return nil
	}
	if err := s.ctrl.SetWindow(n); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func (s *Session) Window() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Window()
}

func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Pause()
	s.dirty = true
}

func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl.Mode() == Live {
		return
	}
	s.ctrl.Resume()
	s.dirty = true
}

// TogglePause pauses a live session or resumes a paused one and returns the
// new mode.
func (s *Session) TogglePause() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl.Mode() == Live {
		s.ctrl.Pause()
	} else {
		s.ctrl.Resume()
	}
	s.dirty = true
	return s.ctrl.Mode()
}

func (s *Session) PageBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := s.ctrl.PageBack()
	if moved {
		s.dirty = true
	}
	return moved
}

func (s *Session) PageForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := s.ctrl.PageForward()
	if moved {
		s.dirty = true
	}
	return moved
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Mode()
}

// View returns the current window. It is rebuilt only when a push, filter,
// window or mode change happened since the previous call; changed reports
// whether that was the case.
func (s *Session) View() (view []querylog.Record, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return s.cachedView, false
	}
	s.cachedView = s.ctrl.Query()
	s.dirty = false
	s.recomputes++
	return s.cachedView, true
}

// GetView applies window and opts, then returns the current view.
func (s *Session) GetView(window int, opts filter.Options) ([]querylog.Record, error) {
	if opts != s.Filter() {
		if err := s.SetFilter(opts); err != nil {
			return nil, err
		}
	}
	if err := s.SetWindow(window); err != nil {
		return nil, err
	}
	view, _ := s.View()
	return view, nil
}

// Records copies every retained record, oldest first.
func (s *Session) Records() []querylog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Buffer().Snapshot()
}

// Stats is a diagnostic snapshot of the session.
type Stats struct {
	Mode       Mode
	Pointer    int
	Length     int
	Capacity   int
	Total      int64
	Anchor     ring.Position
	Available  int
	Window     int
	Filter     string
	Recomputes int
	Resumes    int
	Buffer     string
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := s.ctrl.Buffer()
	anchor := s.ctrl.Anchor()
	return Stats{
		Mode:       s.ctrl.Mode(),
		Pointer:    buf.Pointer(),
		Length:     buf.Len(),
		Capacity:   buf.Cap(),
		Total:      buf.Total(),
		Anchor:     anchor,
		Available:  buf.Available(anchor),
		Window:     s.ctrl.Window(),
		Filter:     s.pred.Options().Summary(),
		Recomputes: s.recomputes,
		Resumes:    s.resumes,
		Buffer:     buf.Stats(),
	}
}

func (st Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s window=%d", st.Mode, st.Buffer, st.Window)
	if st.Mode == Paused {
		fmt.Fprintf(&b, " anchor=%d available=%d", st.Anchor, st.Available)
	}
	if st.Filter != "" {
		fmt.Fprintf(&b, " filter=[%s]", st.Filter)
	}
	return b.String()
}
