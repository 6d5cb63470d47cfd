package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dinotail/dinotail/internal/dinosaur"
	"github.com/dinotail/dinotail/internal/feed"
	"github.com/dinotail/dinotail/internal/logging"
	"github.com/dinotail/dinotail/internal/metrics"
	"github.com/dinotail/dinotail/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// calculateBackoff doubles the poll interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	return feed.Backoff(failures, base, maxBackoff)
}

// poller refreshes the status store from the proxy API.
type poller struct {
	store    *state.Store
	client   dinosaur.Fetcher
	interval time.Duration
	metrics  *metrics.Collector
	log      *logging.Logger
}

// StartPoller launches a background goroutine that refreshes the store,
// backing off while the proxy is unreachable. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, client dinosaur.Fetcher, interval time.Duration, collector *metrics.Collector, logger *logging.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = logging.Nop()
	}
	p := &poller{
		store:    store,
		client:   client,
		interval: interval,
		metrics:  collector,
		log:      logger.WithComponent("poller"),
	}
	go p.loop(ctx)
}

func (p *poller) loop(ctx context.Context) {
	for {
		_ = p.refresh(ctx)
		failures := p.store.Snapshot().ConsecutiveFailures
		timer := time.NewTimer(calculateBackoff(failures, p.interval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *poller) refresh(ctx context.Context) error {
	err := refresh(ctx, p.store, p.client)
	failures := p.store.Snapshot().ConsecutiveFailures
	p.metrics.ObservePoll(err == nil, failures)
	if err != nil && ctx.Err() == nil {
		p.log.Warn("status poll failed", "error", err, "failures", failures)
	}
	return err
}

// refresh performs one poll of every status call and records the outcome.
func refresh(ctx context.Context, store *state.Store, client dinosaur.Fetcher) error {
	cfg, err := client.FetchConfig(ctx)
	if err != nil {
		err = fmt.Errorf("fetch config: %w", err)
		store.Update(nil, err)
		return err
	}
	entries, err := client.FetchCacheEntries(ctx)
	if err != nil {
		err = fmt.Errorf("fetch cache: %w", err)
		store.Update(nil, err)
		return err
	}
	count, err := client.FetchBlockListCount(ctx)
	if err != nil {
		err = fmt.Errorf("fetch blocklist count: %w", err)
		store.Update(nil, err)
		return err
	}
	store.Update(&state.ProxyStatus{Config: cfg, CacheEntries: entries, BlockListCount: count}, nil)
	return nil
}
