// Package app provides the orchestration layer for dinotail.
//
// # Overview
//
// This package wires configuration, the query log session, the event feed,
// the status poller, metrics, and the UI together. It is the composition
// root where every long-lived goroutine is started and tied to the caller's
// context.
//
// # Components
//
//   - app.go: Run, option precedence, replay loading, plain output
//   - poller.go: background goroutine refreshing the proxy status store
//   - server.go: optional Prometheus endpoint
//   - status.go: one-shot status report for the `status` command
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()         Read dinotail config, apply flags
//	       ├─────> prefs.Load()          Theme, window, last filter
//	       ├─────> pager.NewSession()    Ring buffer + page controller
//	       ├─────> serveMetrics()        Only when metrics_addr is set
//	       ├─────> feed.Adapter.Run()    GET /log into the session
//	       ├─────> StartPoller()         JSON-RPC status into state.Store
//	       └─────> ui.Run()              Start TUI (blocks)
//
// In replay mode the feed and poller are replaced by a single read of a
// captured stream file. In plain mode the UI is replaced by line output of
// every record that passes the filter.
//
// # Precedence
//
// Window size and filter come from flags first, then remembered
// preferences, then the config file. Every other setting is flag over file
// over default.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration, including non-positive capacity or window
//   - An invalid initial filter pattern
//   - A metrics address that cannot be bound
//   - A replay file that cannot be read
//
// Recoverable errors (logged, retried with backoff):
//   - Event stream disconnects
//   - Status poll failures; the previous snapshot is kept
package app
