package wire

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestFramer_StripsTrailingCR(t *testing.T) {
	f := NewFramer(strings.NewReader("{\"a\":1}\r\n{\"b\":2}\n"))

	line1, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(line1) != `{"a":1}` {
		t.Errorf("line1 = %q, want no trailing CR", line1)
	}

	line2, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(line2) != `{"b":2}` {
		t.Errorf("line2 = %q", line2)
	}

	if _, err := f.Next(); err != io.EOF {
		t.Errorf("Next at end = %v, want io.EOF", err)
	}
}

func TestFramer_PassesThroughNonJSONLines(t *testing.T) {
	f := NewFramer(strings.NewReader("not json at all\n"))
	line, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(line) != "not json at all" {
		t.Errorf("line = %q", line)
	}
}

func TestWriteFrame_AddsNewlineIfMissing(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if buf.String() != "{\"a\":1}\n" {
		t.Errorf("buf = %q", buf.String())
	}
}

func TestWriteFrame_DoesNotDoubleNewline(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("{\"a\":1}\n")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if buf.String() != "{\"a\":1}\n" {
		t.Errorf("buf = %q, want exactly one newline", buf.String())
	}
}
