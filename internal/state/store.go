package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/dinotail/dinotail/internal/dinosaur"
)

// ProxyStatus is one successful poll of the proxy's JSON-RPC API.
type ProxyStatus struct {
	Config         *dinosaur.UserConfig
	CacheEntries   []string
	BlockListCount int
}

// FeedStatus describes the health of the query log subscription.
type FeedStatus struct {
	Connected      bool
	ConnectedSince time.Time
	LastEvent      time.Time
	Accepted       int64
	Dropped        int64
	Reconnects     int
	LastError      error
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Config              dinosaur.UserConfig
	HasConfig           bool
	CacheEntries        []string
	BlockListCount      int
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
	Feed                FeedStatus
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the polled proxy status. When err is non-nil the previous
// data is kept but the error is recorded for visibility.
func (s *Store) Update(status *ProxyStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if status != nil {
		s.snapshot.CacheEntries = cloneStrings(status.CacheEntries)
		s.snapshot.BlockListCount = status.BlockListCount
		if status.Config != nil {
			s.snapshot.Config = cloneConfig(*status.Config)
			s.snapshot.HasConfig = true
		} else {
			s.snapshot.HasConfig = false
		}
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// FeedConnected marks the event stream as open.
func (s *Store) FeedConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Feed.Connected = true
	s.snapshot.Feed.ConnectedSince = time.Now()
	s.snapshot.Feed.LastError = nil
}

// FeedDisconnected records why the stream ended and counts the reconnect
// that will follow.
func (s *Store) FeedDisconnected(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Feed.Connected = false
	s.snapshot.Feed.ConnectedSince = time.Time{}
	s.snapshot.Feed.LastError = err
	s.snapshot.Feed.Reconnects++
}

// FeedEvent counts one payload, accepted into the buffer or dropped as
// malformed.
func (s *Store) FeedEvent(accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Feed.LastEvent = time.Now()
	if accepted {
		s.snapshot.Feed.Accepted++
	} else {
		s.snapshot.Feed.Dropped++
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.CacheEntries = cloneStrings(s.snapshot.CacheEntries)
	snap.Config = cloneConfig(s.snapshot.Config)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	if s.snapshot.Feed.LastError != nil {
		snap.Feed.LastError = fmt.Errorf("%w", s.snapshot.Feed.LastError)
	}
	return snap
}

func cloneStrings(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	dup := make([]string, len(items))
	copy(dup, items)
	return dup
}

func cloneConfig(cfg dinosaur.UserConfig) dinosaur.UserConfig {
	cfg.Listen = cloneStrings(cfg.Listen)
	cfg.Upstream = cloneStrings(cfg.Upstream)
	cfg.ACL = cloneStrings(cfg.ACL)
	cfg.Block = cloneStrings(cfg.Block)
	cfg.BlockDelete = cloneStrings(cfg.BlockDelete)
	cfg.Blocklist = cloneStrings(cfg.Blocklist)
	cfg.BlocklistAAAA = cloneStrings(cfg.BlocklistAAAA)
	cfg.BlocklistFromHosts = cloneStrings(cfg.BlocklistFromHosts)
	cfg.LocalRR = cloneStrings(cfg.LocalRR)
	cfg.Localzone = cloneStrings(cfg.Localzone)
	return cfg
}
