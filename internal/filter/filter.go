// Package filter compiles per-field patterns into a single predicate over
// query log records.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dinotail/dinotail/internal/querylog"
)

// Field identifies a record column a pattern can match against.
type Field int

const (
	FieldDate Field = iota
	FieldClient
	FieldQName
	FieldQType
	FieldRCode
	FieldStatus
)

// Fields lists every filterable field in display order.
var Fields = []Field{FieldDate, FieldClient, FieldQName, FieldQType, FieldRCode, FieldStatus}

func (f Field) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldClient:
		return "client"
	case FieldQName:
		return "qname"
	case FieldQType:
		return "qtype"
	case FieldRCode:
		return "rcode"
	case FieldStatus:
		return "status"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// caseInsensitive reports whether patterns for f ignore case.
func (f Field) caseInsensitive() bool {
	return f == FieldQType || f == FieldRCode
}

// view extracts the string a pattern for f is matched against.
func (f Field) view(r querylog.Record) string {
	switch f {
	case FieldDate:
		return r.FormattedDate()
	case FieldClient:
		return r.Client
	case FieldQName:
		return r.QName
	case FieldQType:
		return r.QType
	case FieldRCode:
		return r.RCodeName()
	case FieldStatus:
		return r.StatusLabel()
	}
	return ""
}

// Options holds one pattern per field. Empty patterns impose no constraint.
type Options struct {
	Date   string `toml:"date,omitempty"`
	Client string `toml:"client,omitempty"`
	QName  string `toml:"qname,omitempty"`
	QType  string `toml:"qtype,omitempty"`
	RCode  string `toml:"rcode,omitempty"`
	Status string `toml:"status,omitempty"`
}

// Get returns the pattern for f.
func (o Options) Get(f Field) string {
	switch f {
	case FieldDate:
		return o.Date
	case FieldClient:
		return o.Client
	case FieldQName:
		return o.QName
	case FieldQType:
		return o.QType
	case FieldRCode:
		return o.RCode
	case FieldStatus:
		return o.Status
	}
	return ""
}

// Set replaces the pattern for f.
func (o *Options) Set(f Field, pattern string) {
	switch f {
	case FieldDate:
		o.Date = pattern
	case FieldClient:
		o.Client = pattern
	case FieldQName:
		o.QName = pattern
	case FieldQType:
		o.QType = pattern
	case FieldRCode:
		o.RCode = pattern
	case FieldStatus:
		o.Status = pattern
	}
}

// Active lists the fields carrying a non-empty pattern. Whitespace is part
// of the pattern.
func (o Options) Active() []Field {
	var out []Field
	for _, f := range Fields {
		if o.Get(f) != "" {
			out = append(out, f)
		}
	}
	return out
}

// IsZero reports whether no field is constrained.
func (o Options) IsZero() bool {
	return len(o.Active()) == 0
}

// Summary renders the active patterns as "field=pattern" pairs.
func (o Options) Summary() string {
	active := o.Active()
	if len(active) == 0 {
		return ""
	}
	parts := make([]string, 0, len(active))
	for _, f := range active {
		parts = append(parts, f.String()+"="+o.Get(f))
	}
	return strings.Join(parts, " ")
}

// InvalidPatternError reports a pattern that failed to compile.
type InvalidPatternError struct {
	Field   Field
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q: %v", e.Field, e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }

type matcher struct {
	field Field
	re    *regexp.Regexp
}

// Predicate is a compiled filter: an ordered list of field matchers
// combined by logical AND. The zero value accepts every record.
type Predicate struct {
	matchers []matcher
	opts     Options
}

// Compile turns opts into a Predicate. Each non-empty field compiles
// independently and exactly as given; the first invalid pattern aborts
// compilation.
func Compile(opts Options) (Predicate, error) {
	p := Predicate{opts: opts}
	for _, f := range opts.Active() {
		pattern := opts.Get(f)
		expr := pattern
		if f.caseInsensitive() {
			expr = "(?i)" + pattern
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return Predicate{}, &InvalidPatternError{Field: f, Pattern: pattern, Err: err}
		}
		p.matchers = append(p.matchers, matcher{field: f, re: re})
	}
	return p, nil
}

// AcceptAll returns a predicate with no constraints.
func AcceptAll() Predicate {
	return Predicate{}
}

// Match reports whether r satisfies every matcher, stopping at the first
// failure.
func (p Predicate) Match(r querylog.Record) bool {
	for _, m := range p.matchers {
		if !m.re.MatchString(m.field.view(r)) {
			return false
		}
	}
	return true
}

// Func adapts the predicate to the ring buffer's match signature.
func (p Predicate) Func() func(querylog.Record) bool {
	if len(p.matchers) == 0 {
		return nil
	}
	return p.Match
}

// Options returns the options the predicate was compiled from.
func (p Predicate) Options() Options {
	return p.opts
}

// fields lists the constrained fields in evaluation order.
func (p Predicate) fields() []Field {
	out := make([]Field, len(p.matchers))
	for i, m := range p.matchers {
		out[i] = m.field
	}
	return out
}
