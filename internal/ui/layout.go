package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which dates shrink to clock
	// time and the header drops secondary counters.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the width from which the query time column shows.
	LayoutWideWidth = 120
)

// Log row column widths.
const (
	colDateWide    = 29 // "Mon, 02 Jan 2006 15:04:05 GMT"
	colDateCompact = 8  // "15:04:05"
	colClient      = 15
	colQType       = 6
	colRCode       = 9
	colQueryTime   = 9
)

const (
	// DefaultRefresh is the UI tick when none is configured.
	DefaultRefresh = 100 * time.Millisecond

	// windowStep is how far +/- move the window size.
	windowStep = 5

	// logTailLines is how much of the log file the status view shows.
	logTailLines = 8

	// logTailEvery throttles log file reads while the status view is open.
	logTailEvery = 2 * time.Second
)
