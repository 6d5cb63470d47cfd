package querylog

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const samplePayload = `{"timestamp":"2024-05-01T10:11:12.5Z","client":"192.168.1.10","qname":"example.com.","qtype":"A","rcode":3,"querytime":0.0123,"acl":false,"blocked":false,"cached":true,"error":false}`

func TestDecode(t *testing.T) {
	rec, err := Decode([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	want := time.Date(2024, 5, 1, 10, 11, 12, 500_000_000, time.UTC)
	if !rec.Timestamp.Equal(want) {
		t.Fatalf("Timestamp = %v, want %v", rec.Timestamp, want)
	}
	if rec.Client != "192.168.1.10" {
		t.Fatalf("Client = %q, want %q", rec.Client, "192.168.1.10")
	}
	if rec.QName != "example.com." || rec.QType != "A" {
		t.Fatalf("QName/QType = %q/%q, want example.com./A", rec.QName, rec.QType)
	}
	if rec.RCode != 3 || rec.RCodeName() != "NXDOMAIN" {
		t.Fatalf("RCode = %d (%s), want 3 (NXDOMAIN)", rec.RCode, rec.RCodeName())
	}
	if rec.QueryTime != 12300*time.Microsecond {
		t.Fatalf("QueryTime = %v, want 12.3ms", rec.QueryTime)
	}
	if !rec.Cached || rec.Blocked || rec.ACLDenied || rec.Error {
		t.Fatalf("flags = %+v, want only cached", rec)
	}
}

func TestDecode_AcceptsEventStreamPrefix(t *testing.T) {
	rec, err := Decode([]byte("data: " + samplePayload + "\n"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if rec.QName != "example.com." {
		t.Fatalf("QName = %q, want %q", rec.QName, "example.com.")
	}
}

func TestDecode_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"comment only", "data:"},
		{"not json", "hello"},
		{"truncated", `{"timestamp":"2024-05-01T10:11:12Z",`},
		{"bad timestamp", `{"timestamp":"yesterday","client":"a","qname":"x.com.","qtype":"A"}`},
		{"missing client", `{"timestamp":"2024-05-01T10:11:12Z","qname":"x.com.","qtype":"A"}`},
		{"missing qtype", `{"timestamp":"2024-05-01T10:11:12Z","client":"a","qname":"x.com."}`},
		{"missing qname", `{"timestamp":"2024-05-01T10:11:12Z","client":"a","qtype":"A"}`},
		{"label too long", `{"timestamp":"2024-05-01T10:11:12Z","client":"a","qtype":"A","qname":"` + strings.Repeat("a", 64) + `.com."}`},
		{"negative rcode", `{"timestamp":"2024-05-01T10:11:12Z","client":"a","qname":"x.com.","qtype":"A","rcode":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload))
			if err == nil {
				t.Fatalf("Decode(%q) returned nil error", tt.payload)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("Decode error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestStatusLabel_Precedence(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"none", Record{}, ""},
		{"error", Record{Error: true}, "[error]"},
		{"cached beats error", Record{Cached: true, Error: true}, "[cached]"},
		{"blocked beats cached", Record{Blocked: true, Cached: true}, "[blocked]"},
		{"acl beats blocked", Record{ACLDenied: true, Blocked: true}, "[acl blocked]"},
		{"acl beats all", Record{ACLDenied: true, Blocked: true, Cached: true, Error: true}, "[acl blocked]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.StatusLabel(); got != tt.want {
				t.Fatalf("StatusLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormattedDate_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	rec := Record{Timestamp: time.Date(2024, 5, 1, 12, 0, 5, 0, loc)}
	if got, want := rec.FormattedDate(), "Wed, 01 May 2024 10:00:05 GMT"; got != want {
		t.Fatalf("FormattedDate() = %q, want %q", got, want)
	}
}

func TestMarshalJSON_RoundTrip(t *testing.T) {
	rec, err := Decode([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	data, err := rec.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	again, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode(MarshalJSON): %v", err)
	}
	if again != rec {
		t.Fatalf("round trip = %+v, want %+v", again, rec)
	}
}

func TestLine(t *testing.T) {
	rec := Record{
		Timestamp: time.Date(2024, 5, 1, 10, 11, 12, 0, time.UTC),
		Client:    "10.0.0.1",
		QName:     "ads.example.",
		QType:     "AAAA",
		RCode:     5,
		QueryTime: 1500 * time.Microsecond,
		Blocked:   true,
	}
	want := "Wed, 01 May 2024 10:11:12 GMT  10.0.0.1  ads.example.  AAAA  REFUSED  1.5ms  [blocked]"
	if got := rec.Line(); got != want {
		t.Fatalf("Line() = %q, want %q", got, want)
	}
}
