package dinosaur

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrStreamClosed is returned by Subscribe when the proxy ends the stream.
var ErrStreamClosed = errors.New("event stream closed")

const maxEventLine = 1 << 20

// Subscribe opens GET /log and calls handle for every event until the
// stream ends or ctx is cancelled. opened, when non-nil, runs once the proxy
// has accepted the request. A normal end of stream is reported as
// ErrStreamClosed; cancellation returns ctx.Err().
func (c *Client) Subscribe(ctx context.Context, opened func(), handle func(Event)) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	resp, err := c.send(ctx, c.stream, http.MethodGet, &url.URL{Path: "/log"}, "text/event-stream", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if opened != nil {
		opened()
	}

	err = readEvents(resp.Body, handle)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return ErrStreamClosed
}

// readEvents parses the text/event-stream framing: "field: value" lines,
// dispatched on a blank line, with ":" comment lines ignored. Multiple data
// lines are joined with "\n".
func readEvents(r io.Reader, handle func(Event)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLine)

	var (
		ev      Event
		data    []string
		hasData bool
	)
	dispatch := func() {
		if hasData {
			ev.Data = strings.Join(data, "\n")
			handle(ev)
		}
		ev = Event{ID: ev.ID}
		data = data[:0]
		hasData = false
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			dispatch()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
			hasData = true
		case "event":
			ev.Type = value
		case "id":
			ev.ID = value
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	// A trailing event without its blank line is incomplete and dropped.
	return nil
}
