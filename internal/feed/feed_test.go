package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dinotail/dinotail/internal/dinosaur"
	"github.com/dinotail/dinotail/internal/metrics"
	"github.com/dinotail/dinotail/internal/querylog"
	"github.com/dinotail/dinotail/internal/state"
)

const validPayload = `{"timestamp":"2024-05-01T10:11:12Z","client":"10.0.0.1","qname":"example.com.","qtype":"A","rcode":0,"querytime":0.001}`

type recordingSink struct {
	mu   sync.Mutex
	recs []querylog.Record
}

func (s *recordingSink) Push(r querylog.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, r)
}

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

// scriptedStream plays one attempt per Subscribe call.
type scriptedStream struct {
	attempts []attempt
	calls    int
	cancel   context.CancelFunc
}

type attempt struct {
	open   bool
	events []string
	err    error
}

func (s *scriptedStream) Subscribe(ctx context.Context, opened func(), handle func(dinosaur.Event)) error {
	if s.calls >= len(s.attempts) {
		s.cancel()
		<-ctx.Done()
		return ctx.Err()
	}
	a := s.attempts[s.calls]
	s.calls++
	if a.open && opened != nil {
		opened()
	}
	for _, data := range a.events {
		handle(dinosaur.Event{Data: data})
	}
	return a.err
}

func TestBackoff(t *testing.T) {
	base := time.Second
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{-1, time.Second},
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{50, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := Backoff(tt.failures, base, MaxRetry); got != tt.want {
			t.Fatalf("Backoff(%d) = %v, want %v", tt.failures, got, tt.want)
		}
	}
}

func TestHandle_DropsMalformedBeforePush(t *testing.T) {
	sink := &recordingSink{}
	store := &state.Store{}
	a := New(nil, sink, Options{Store: store, Metrics: metrics.New()})

	if !a.Handle([]byte(validPayload)) {
		t.Fatalf("valid payload rejected")
	}
	for _, bad := range []string{"", "{", `{"timestamp":"2024-05-01T10:11:12Z"}`, `{"timestamp":"x","client":"a","qname":"a.","qtype":"A"}`} {
		if a.Handle([]byte(bad)) {
			t.Fatalf("malformed payload %q accepted", bad)
		}
	}
	if sink.len() != 1 {
		t.Fatalf("sink received %d records, want 1", sink.len())
	}
	feed := store.Snapshot().Feed
	if feed.Accepted != 1 || feed.Dropped != 4 {
		t.Fatalf("accepted/dropped = %d/%d, want 1/4", feed.Accepted, feed.Dropped)
	}
}

func TestRun_ReconnectsWithBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refused := errors.New("connection refused")
	stream := &scriptedStream{
		cancel: cancel,
		attempts: []attempt{
			{err: refused},
			{err: refused},
			{open: true, events: []string{validPayload, "junk", validPayload}, err: dinosaur.ErrStreamClosed},
			{err: refused},
		},
	}
	sink := &recordingSink{}
	store := &state.Store{}
	a := New(stream, sink, Options{Store: store, RetryBase: 100 * time.Millisecond})

	var waits []time.Duration
	a.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}

	if err := a.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}

	want := []time.Duration{
		100 * time.Millisecond, // first refusal
		200 * time.Millisecond, // second refusal
		100 * time.Millisecond, // stream had opened, counter reset
		100 * time.Millisecond,
	}
	if !reflect.DeepEqual(waits, want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	if sink.len() != 2 {
		t.Fatalf("sink received %d records, want 2", sink.len())
	}
	feed := store.Snapshot().Feed
	if feed.Reconnects != 4 || feed.Dropped != 1 || feed.Connected {
		t.Fatalf("feed status = %#v", feed)
	}
}

func TestRun_AgainstEventStreamServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < 3; i++ {
			fmt.Fprintf(w, "data: %s\n\n", validPayload)
		}
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	client, err := dinosaur.NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	sink := &recordingSink{}
	a := New(client, sink, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for sink.len() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if sink.len() != 3 {
		t.Fatalf("sink received %d records, want 3", sink.len())
	}
}
