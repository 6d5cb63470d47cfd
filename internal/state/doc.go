// Package state holds the proxy status shown next to the query log.
//
// # Overview
//
// Two background goroutines write here and the UI reads:
//
//	Poller:                        Feed:
//	FetchConfig()                  FeedConnected()
//	FetchCacheEntries()            FeedEvent(accepted)
//	FetchBlockListCount()          FeedDisconnected(err)
//	      ↓                              ↓
//	store.Update(status, err) ──→ store.Snapshot() ←── UI tick
//
// The query records themselves do not pass through the Store; they live in
// the pager.Session ring.
//
// # Update Semantics
//
// A failed poll keeps the previous data and records the error:
//
//	store.Update(nil, err)
//	→ snapshot.Config, CacheEntries, BlockListCount = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// After two consecutive failures Snapshot.IsOffline reports true and the UI
// marks the status panel as offline. A successful poll resets the counter.
//
// # Copying
//
// Update and Snapshot copy slices and re-wrap errors so the UI can hold a
// snapshot while the poller keeps writing.
//
// The zero Store is ready to use.
package state
