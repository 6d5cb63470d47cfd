// Package ui provides the terminal interface for dinotail.
//
// # Architecture
//
// The UI is a Bubble Tea program. A tick at the configured refresh rate
// (100ms by default) asks the shared pager.Session for its view; the
// session only recomputes when a push or a control changed something, so
// an idle tick costs a mutex and a flag check. The status store is read on
// the same tick.
//
// # Views
//
//   - Query Log: newest-first rows of the current window, live or paused
//   - Cache: the proxy's cache entries from the last status poll
//   - Proxy: feed health, poll health, proxy configuration and view stats
//
// # Paging
//
// Space freezes the view at the current write position. While paused, b
// and f move one window older or newer; f past the newest page returns to
// live. Pressing b while live pauses first. A paused view snaps back to
// live on its own once the ring buffer overwrites the frozen anchor.
//
// # Filters
//
// The filter modal edits one regular expression per field. Applying an
// invalid pattern leaves the modal open on the offending field with the
// compile error shown, and the previously active filter keeps running.
// Theme, window size and filters are remembered in the preferences file.
package ui
