package pager

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dinotail/dinotail/internal/filter"
	"github.com/dinotail/dinotail/internal/querylog"
	"github.com/dinotail/dinotail/internal/ring"
)

func record(i int, qname string) querylog.Record {
	return querylog.Record{
		Timestamp: time.Date(2024, 5, 1, 10, 0, i, 0, time.UTC),
		Client:    "10.0.0.1",
		QName:     qname,
		QType:     "A",
	}
}

func qnames(recs []querylog.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.QName
	}
	return out
}

func TestNewSession_ConfigurationErrors(t *testing.T) {
	if _, err := NewSession(0, 5); !errors.Is(err, ring.ErrInvalidCapacity) {
		t.Fatalf("NewSession(0,5) error = %v, want ErrInvalidCapacity", err)
	}
	if _, err := NewSession(5, 0); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("NewSession(5,0) error = %v, want ErrInvalidWindow", err)
	}
}

func TestSession_ViewRecomputesOnlyWhenDirty(t *testing.T) {
	s, err := NewSession(10, 3)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if _, changed := s.View(); !changed {
		t.Fatalf("first View should compute")
	}
	if _, changed := s.View(); changed {
		t.Fatalf("second View without changes should be cached")
	}

	s.Push(record(1, "a.example."))
	view, changed := s.View()
	if !changed || len(view) != 1 {
		t.Fatalf("View after push = %v changed=%v", qnames(view), changed)
	}
	if _, changed := s.View(); changed {
		t.Fatalf("View should be cached after recompute")
	}
	if got := s.Stats().Recomputes; got != 2 {
		t.Fatalf("Recomputes = %d, want 2", got)
	}

	if err := s.SetWindow(3); err != nil {
		t.Fatalf("SetWindow: %v", err)
	}
	if _, changed := s.View(); changed {
		t.Fatalf("SetWindow to the same size should not dirty the view")
	}
	if s.PageBack() {
		t.Fatalf("PageBack while live should not move")
	}
	if _, changed := s.View(); changed {
		t.Fatalf("no-op PageBack should not dirty the view")
	}
}

func TestSession_SetFilterKeepsPreviousOnError(t *testing.T) {
	s, _ := NewSession(10, 10)
	s.Push(record(1, "a.example."))
	s.Push(record(2, "b.test."))
	s.Push(record(3, "c.example."))

	if err := s.SetFilter(filter.Options{QName: `example\.$`}); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	view, _ := s.View()
	if got := strings.Join(qnames(view), ","); got != "c.example.,a.example." {
		t.Fatalf("filtered view = %q", got)
	}

	err := s.SetFilter(filter.Options{QName: "("})
	var perr *filter.InvalidPatternError
	if !errors.As(err, &perr) {
		t.Fatalf("SetFilter error = %v, want *InvalidPatternError", err)
	}
	if _, changed := s.View(); changed {
		t.Fatalf("failed SetFilter should not dirty the view")
	}
	if got := s.Filter().QName; got != `example\.$` {
		t.Fatalf("active filter = %q, want previous pattern", got)
	}
}

func TestSession_GetView(t *testing.T) {
	s, _ := NewSession(3, 2)
	for i, name := range []string{"A.", "B.", "C.", "D."} {
		s.Push(record(i, name))
	}

	view, err := s.GetView(3, filter.Options{})
	if err != nil {
		t.Fatalf("GetView: %v", err)
	}
	if got := strings.Join(qnames(view), ","); got != "D.,C.,B." {
		t.Fatalf("GetView(3) = %q, want D.,C.,B.", got)
	}

	view, err = s.GetView(2, filter.Options{QName: "^[BC]"})
	if err != nil {
		t.Fatalf("GetView: %v", err)
	}
	if got := strings.Join(qnames(view), ","); got != "C.,B." {
		t.Fatalf("GetView filtered = %q, want C.,B.", got)
	}

	if _, err := s.GetView(0, filter.Options{}); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("GetView(0) error = %v, want ErrInvalidWindow", err)
	}
}

func TestSession_PausedViewIgnoresNewRecords(t *testing.T) {
	s, _ := NewSession(5, 5)
	for i, name := range []string{"A.", "B.", "C."} {
		s.Push(record(i, name))
	}
	s.Pause()
	s.Push(record(4, "D."))

	view, _ := s.View()
	if got := strings.Join(qnames(view), ","); got != "C.,B.,A." {
		t.Fatalf("paused view = %q, want C.,B.,A.", got)
	}

	st := s.Stats()
	if st.Mode != Paused || st.Anchor != 3 || st.Available != 3 || st.Pointer != 4 || st.Length != 4 {
		t.Fatalf("Stats = %+v", st)
	}
	if !strings.Contains(st.String(), "paused pointer=4 length=4 capacity=5") {
		t.Fatalf("Stats.String() = %q", st.String())
	}

	if mode := s.TogglePause(); mode != Live {
		t.Fatalf("TogglePause = %v, want live", mode)
	}
	view, _ = s.View()
	if view[0].QName != "D." {
		t.Fatalf("live view head = %q, want D.", view[0].QName)
	}
}

func TestSession_AutoResumeCounted(t *testing.T) {
	s, _ := NewSession(2, 2)
	s.Push(record(1, "a."))
	s.Pause()
	s.Push(record(2, "b."))
	s.Push(record(3, "c."))
	if s.Mode() != Live {
		t.Fatalf("mode = %v, want live after wrap", s.Mode())
	}
	if got := s.Stats().Resumes; got != 1 {
		t.Fatalf("Resumes = %d, want 1", got)
	}
}

func TestSession_StatsCountReceivedPastCapacity(t *testing.T) {
	s, _ := NewSession(3, 2)
	for i := 0; i < 7; i++ {
		s.Push(record(i, "r."))
	}
	st := s.Stats()
	if st.Total != 7 {
		t.Fatalf("Total = %d, want 7 received", st.Total)
	}
	if st.Length != 3 || st.Capacity != 3 {
		t.Fatalf("Length/Capacity = %d/%d, want 3/3", st.Length, st.Capacity)
	}
}

func TestSession_ConcurrentPushAndView(t *testing.T) {
	s, _ := NewSession(64, 16)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			s.Push(record(i%60, fmt.Sprintf("h%d.example.", i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			view, _ := s.View()
			if len(view) > 16 {
				t.Errorf("view length %d exceeds window", len(view))
				return
			}
			st := s.Stats()
			if st.Available < 0 || st.Available > st.Length {
				t.Errorf("available %d outside [0,%d]", st.Available, st.Length)
				return
			}
		}
	}()
	wg.Wait()

	if got := s.Stats().Total; got != 2000 {
		t.Fatalf("Total = %d, want 2000", got)
	}
	if got := len(s.Records()); got != 64 {
		t.Fatalf("Records len = %d, want 64", got)
	}
}
