package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dinotail/dinotail/internal/querylog"
	"github.com/dinotail/dinotail/internal/ring"
)

const maxLineBytes = 1024 * 1024

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var lines []string
	err = scan(file, maxLines, func(string) bool { return true }, &lines)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Replay is the outcome of reading a captured query log.
type Replay struct {
	Records []querylog.Record // oldest first
	Lines   int               // payload lines examined
	Skipped int               // payload lines rejected as malformed
}

// ReadRecords decodes the query records in a captured event stream (for
// example `curl -N http://proxy:8553/log > capture.txt`) and keeps the last
// maxRecords valid ones. Lines may carry the "data:" prefix or be bare JSON.
// Blank lines and other event-stream fields are ignored; malformed payloads
// are counted and skipped.
func ReadRecords(path string, maxRecords int) (Replay, error) {
	file, err := os.Open(path)
	if err != nil {
		return Replay{}, fmt.Errorf("open capture: %w", err)
	}
	defer file.Close()
	return DecodeRecords(file, maxRecords)
}

// DecodeRecords is ReadRecords over an arbitrary reader.
func DecodeRecords(r io.Reader, maxRecords int) (Replay, error) {
	var (
		out Replay
		buf *ring.Buffer[querylog.Record]
	)
	if maxRecords > 0 {
		buf, _ = ring.New[querylog.Record](maxRecords)
	}
	decode := func(line string) bool {
		if !isPayload(line) {
			return false
		}
		out.Lines++
		rec, err := querylog.Decode([]byte(line))
		if err != nil {
			out.Skipped++
			return false
		}
		if buf != nil {
			buf.Push(rec)
		} else {
			out.Records = append(out.Records, rec)
		}
		return false
	}
	if err := scan(r, 0, decode, nil); err != nil {
		return Replay{}, err
	}
	if buf != nil {
		out.Records = buf.Snapshot()
	}
	return out, nil
}

func isPayload(line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return false
	case strings.HasPrefix(trimmed, ":"):
		return false
	case strings.HasPrefix(trimmed, "event:"), strings.HasPrefix(trimmed, "id:"), strings.HasPrefix(trimmed, "retry:"):
		return false
	}
	return true
}

// scan keeps the last limit accepted lines of r (all of them when limit <= 0)
// in file order.
func scan(r io.Reader, limit int, accept func(string) bool, dst *[]string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var tail *ring.Buffer[string]
	if limit > 0 {
		tail, _ = ring.New[string](limit)
	}
	for scanner.Scan() {
		line := scanner.Text()
		if !accept(line) {
			continue
		}
		switch {
		case tail != nil:
			tail.Push(line)
		case dst != nil:
			*dst = append(*dst, line)
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("read log: line exceeds %d bytes: %w", maxLineBytes, err)
		}
		return fmt.Errorf("read log: %w", err)
	}
	if tail != nil && dst != nil {
		*dst = tail.Snapshot()
	}
	return nil
}
