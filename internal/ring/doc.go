// Package ring provides the fixed-capacity circular store behind the query
// log view.
//
// # Overview
//
// A Buffer keeps the most recent Cap() items and silently overwrites the
// oldest one once full. Push never fails and never blocks; an empty buffer
// simply yields empty windows.
//
// # Positions
//
// Every read is relative to an anchor. An anchor is a Position: the number of
// pushes that had happened when it was captured. The live anchor is
// CurrentPosition(); a paused viewer keeps an older one. Positions live in a
// single monotonic domain and are mapped to a physical slot (p mod Cap) only
// when storage is accessed, so pagination arithmetic never has to reconcile
// two different moduli.
//
//	total pushes:   0 1 2 3 4 5 6 7
//	retained (C=5):       [3 4 5 6 7]     oldest=3, live=8
//	anchor 6 sees:        [3 4 5]         Available(6) == 3
//
// Available(anchor) is the number of retained items older than the anchor and
// is always within [0, Len()]. RetrieveWindow scans backward from the anchor,
// examines at most that many items, and returns up to n matches newest first.
//
// # Diagnostics
//
// Pointer() reports the physical write index (total mod Cap) and Stats()
// renders "pointer=P length=L capacity=C" for the status panel.
//
// # Concurrency
//
// Buffer has no internal locking. A reader that observed an updated pointer
// with a stale length would compute a wrong Available, so callers guard Push
// and every read with one lock (pager.Session does this).
package ring
