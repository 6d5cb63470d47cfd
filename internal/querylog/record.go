package querylog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// DateLayout renders timestamps the way browsers print Date.toUTCString, so
// date patterns written against the web log view keep working.
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Status labels in precedence order.
const (
	StatusACLBlocked = "[acl blocked]"
	StatusBlocked    = "[blocked]"
	StatusCached     = "[cached]"
	StatusError      = "[error]"
)

// ErrMalformed marks a payload that must not reach the buffer.
var ErrMalformed = errors.New("malformed query record")

// Record is one resolved (or refused) DNS query.
type Record struct {
	Timestamp time.Time
	Client    string
	QName     string
	QType     string
	RCode     int
	QueryTime time.Duration
	ACLDenied bool
	Blocked   bool
	Cached    bool
	Error     bool
}

type wireRecord struct {
	Timestamp string  `json:"timestamp"`
	Client    string  `json:"client"`
	QName     string  `json:"qname"`
	QType     string  `json:"qtype"`
	RCode     int     `json:"rcode"`
	QueryTime float64 `json:"querytime"`
	ACL       bool    `json:"acl"`
	Blocked   bool    `json:"blocked"`
	Cached    bool    `json:"cached"`
	Error     bool    `json:"error"`
}

// Decode parses a single event payload. A leading "data:" prefix is
// accepted so that raw captures of the event stream can be replayed.
// Every error wraps ErrMalformed.
func Decode(payload []byte) (Record, error) {
	payload = bytes.TrimSpace(payload)
	if rest, ok := bytes.CutPrefix(payload, []byte("data:")); ok {
		payload = bytes.TrimSpace(rest)
	}
	if len(payload) == 0 {
		return Record{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	var w wireRecord
	if err := json.Unmarshal(payload, &w); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(w.Timestamp))
	if err != nil {
		return Record{}, fmt.Errorf("%w: timestamp %q: %v", ErrMalformed, w.Timestamp, err)
	}

	rec := Record{
		Timestamp: ts,
		Client:    strings.TrimSpace(w.Client),
		QName:     strings.TrimSpace(w.QName),
		QType:     strings.TrimSpace(w.QType),
		RCode:     w.RCode,
		QueryTime: time.Duration(math.Round(w.QueryTime * float64(time.Second))),
		ACLDenied: w.ACL,
		Blocked:   w.Blocked,
		Cached:    w.Cached,
		Error:     w.Error,
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Validate reports whether the record is complete enough to display.
func (r Record) Validate() error {
	switch {
	case r.Timestamp.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrMalformed)
	case r.Client == "":
		return fmt.Errorf("%w: missing client", ErrMalformed)
	case r.QType == "":
		return fmt.Errorf("%w: missing qtype", ErrMalformed)
	case r.RCode < 0:
		return fmt.Errorf("%w: negative rcode %d", ErrMalformed, r.RCode)
	}
	if _, ok := dns.IsDomainName(r.QName); !ok || r.QName == "" {
		return fmt.Errorf("%w: invalid qname %q", ErrMalformed, r.QName)
	}
	return nil
}

// MarshalJSON emits the proxy's wire form.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecord{
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339Nano),
		Client:    r.Client,
		QName:     r.QName,
		QType:     r.QType,
		RCode:     r.RCode,
		QueryTime: r.QueryTime.Seconds(),
		ACL:       r.ACLDenied,
		Blocked:   r.Blocked,
		Cached:    r.Cached,
		Error:     r.Error,
	})
}

// FormattedDate is the timestamp in UTC using DateLayout.
func (r Record) FormattedDate() string {
	return r.Timestamp.UTC().Format(DateLayout)
}

// RCodeName is the mnemonic for the response code.
func (r Record) RCodeName() string {
	return RCodeName(r.RCode)
}

// StatusLabel derives the status column. The first matching flag wins, in
// the order ACL denied, blocked, cached, error.
func (r Record) StatusLabel() string {
	switch {
	case r.ACLDenied:
		return StatusACLBlocked
	case r.Blocked:
		return StatusBlocked
	case r.Cached:
		return StatusCached
	case r.Error:
		return StatusError
	}
	return ""
}

// FormatQueryTime renders the lookup latency in milliseconds.
func (r Record) FormatQueryTime() string {
	ms := float64(r.QueryTime) / float64(time.Millisecond)
	return fmt.Sprintf("%.1fms", ms)
}

// Line renders the record as a single plain-text log line.
func (r Record) Line() string {
	parts := []string{
		r.FormattedDate(),
		r.Client,
		r.QName,
		r.QType,
		r.RCodeName(),
		r.FormatQueryTime(),
	}
	if s := r.StatusLabel(); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "  ")
}
