// Package pager implements the live/paused view over the query ring.
//
// Controller is the two-state machine. In Live mode queries read the newest
// window; Pause freezes an anchor so the operator can page through history
// while records keep arriving. Paging forward past the live edge, or the
// writer wrapping all the way round onto the frozen anchor, returns the
// controller to Live.
//
// Session wraps a Controller for querylog records with the active filter,
// a cached view and a dirty flag, all behind one mutex. The feed goroutine
// pushes into it and the UI tick reads from it; the view is rebuilt only
// when something changed since the last read.
package pager
