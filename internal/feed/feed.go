// Package feed connects the proxy's query log stream to the ring buffer.
//
// Every event payload is decoded and validated before it is pushed, so a
// malformed record is dropped whole and never reaches the buffer. When the
// stream ends the adapter reconnects with exponential backoff until its
// context is cancelled.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/dinotail/dinotail/internal/dinosaur"
	"github.com/dinotail/dinotail/internal/logging"
	"github.com/dinotail/dinotail/internal/metrics"
	"github.com/dinotail/dinotail/internal/querylog"
	"github.com/dinotail/dinotail/internal/state"
)

const (
	DefaultRetryBase = time.Second
	MaxRetry         = 30 * time.Second
)

// Sink receives validated records.
type Sink interface {
	Push(querylog.Record)
}

// Options configure an Adapter. Every field is optional.
type Options struct {
	Store     *state.Store
	Metrics   *metrics.Collector
	Logger    *logging.Logger
	RetryBase time.Duration
}

// Adapter subscribes to the stream and feeds a Sink.
type Adapter struct {
	stream    dinosaur.Streamer
	sink      Sink
	store     *state.Store
	metrics   *metrics.Collector
	log       *logging.Logger
	retryBase time.Duration
	wait      func(ctx context.Context, d time.Duration) error
}

// New builds an Adapter reading from stream into sink.
func New(stream dinosaur.Streamer, sink Sink, opts Options) *Adapter {
	base := opts.RetryBase
	if base <= 0 {
		base = DefaultRetryBase
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Adapter{
		stream:    stream,
		sink:      sink,
		store:     opts.Store,
		metrics:   opts.Metrics,
		log:       logger.WithComponent("feed"),
		retryBase: base,
		wait:      sleep,
	}
}

// Run subscribes until ctx is cancelled, reconnecting after every stream
// failure. It returns ctx.Err().
func (a *Adapter) Run(ctx context.Context) error {
	failures := 0
	for {
		opened := false
		err := a.stream.Subscribe(ctx, func() {
			opened = true
			failures = 0
			a.connected()
		}, func(ev dinosaur.Event) {
			a.Handle([]byte(ev.Data))
		})
		if ctx.Err() != nil {
			a.disconnected(nil)
			return ctx.Err()
		}
		a.disconnected(err)

		delay := Backoff(failures, a.retryBase, MaxRetry)
		if !opened {
			failures++
		}
		if opened && errors.Is(err, dinosaur.ErrStreamClosed) {
			a.log.Info("query log stream closed by proxy", "retry_in", delay.String())
		} else {
			a.log.Warn("query log stream failed", "error", err, "retry_in", delay.String())
		}
		if err := a.wait(ctx, delay); err != nil {
			return err
		}
	}
}

// Handle decodes one payload and pushes it when valid. It reports whether
// the record was accepted.
func (a *Adapter) Handle(payload []byte) bool {
	rec, err := querylog.Decode(payload)
	if err != nil {
		a.metrics.IncDropped(metrics.ReasonMalformed)
		if a.store != nil {
			a.store.FeedEvent(false)
		}
		a.log.Debug("dropped malformed payload", "error", err)
		return false
	}
	a.sink.Push(rec)
	a.metrics.IncAccepted()
	if a.store != nil {
		a.store.FeedEvent(true)
	}
	return true
}

func (a *Adapter) connected() {
	a.metrics.SetFeedConnected(true)
	if a.store != nil {
		a.store.FeedConnected()
	}
	a.log.Info("query log stream connected")
}

func (a *Adapter) disconnected(err error) {
	a.metrics.SetFeedConnected(false)
	if err == nil {
		return
	}
	a.metrics.IncReconnect()
	if a.store != nil {
		a.store.FeedDisconnected(err)
	}
}

// Backoff doubles base per consecutive failure, capped at limit.
func Backoff(failures int, base, limit time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
