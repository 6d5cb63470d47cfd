package logtail

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.log"), 5)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Read() error = %v, want os.ErrNotExist", err)
	}
}

func payload(i int, qname string) string {
	return fmt.Sprintf(`{"timestamp":"2024-05-01T10:00:%02dZ","client":"10.0.0.%d","qname":%q,"qtype":"A","rcode":0,"querytime":0.002}`, i, i, qname)
}

func TestDecodeRecords_CaptureFormat(t *testing.T) {
	capture := strings.Join([]string{
		": connected",
		"data: " + payload(1, "a.example."),
		"",
		"event: message",
		"data: " + payload(2, "b.example."),
		"",
		payload(3, "c.example."), // bare JSON line
		"data: {broken",
		"data: " + payload(4, "d.example."),
		"",
	}, "\n")

	out, err := DecodeRecords(strings.NewReader(capture), 0)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if out.Lines != 5 || out.Skipped != 1 {
		t.Fatalf("Lines/Skipped = %d/%d, want 5/1", out.Lines, out.Skipped)
	}
	var names []string
	for _, r := range out.Records {
		names = append(names, r.QName)
	}
	if want := []string{"a.example.", "b.example.", "c.example.", "d.example."}; !reflect.DeepEqual(names, want) {
		t.Fatalf("records = %v, want %v", names, want)
	}
}

func TestReadRecords_KeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.txt")
	var b strings.Builder
	for i := 1; i <= 9; i++ {
		fmt.Fprintf(&b, "data: %s\n\n", payload(i, fmt.Sprintf("h%d.example.", i)))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, err := ReadRecords(path, 3)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(out.Records) != 3 || out.Lines != 9 {
		t.Fatalf("records/lines = %d/%d, want 3/9", len(out.Records), out.Lines)
	}
	if out.Records[0].QName != "h7.example." || out.Records[2].QName != "h9.example." {
		t.Fatalf("records = %+v, want h7..h9 oldest first", out.Records)
	}

	if _, err := ReadRecords(filepath.Join(t.TempDir(), "missing"), 3); err == nil {
		t.Fatalf("ReadRecords on a missing file should fail")
	}
}
