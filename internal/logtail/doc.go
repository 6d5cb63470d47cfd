// Package logtail reads the tail of line-oriented files.
//
// # Overview
//
// Read extracts the last N lines of a file in one sequential pass using a
// ring.Buffer, so memory stays O(N) regardless of file size. ReadRecords
// applies the same idea to captured query log streams: it decodes every
// payload line with querylog.Decode, drops malformed ones, and keeps the
// newest records for `dinotail replay`.
//
// # Capture Format
//
// A capture is whatever the proxy's /log endpoint emitted, typically saved
// with:
//
//	curl -N http://127.0.0.1:8553/log > capture.txt
//
// Both "data: {...}" lines and bare JSON lines are accepted. Comment lines
// (":") and other event-stream fields (event, id, retry) are ignored.
//
// # Limits
//
// Lines longer than 1 MiB abort the read with bufio.ErrTooLong wrapped in
// the returned error.
package logtail
