package wire

import (
	"bufio"
	"bytes"
	"io"
)

// maxLineSize bounds a single framed message. MCP tool results can carry
// substantial payloads (file contents, search results), so this is sized
// generously above the typical few-KB request.
const maxLineSize = 4 * 1024 * 1024

// Framer reads newline-delimited messages from an MCP stdio stream. It
// tolerates a trailing \r (CRLF line endings), which some client/server
// implementations emit despite the wire format being newline-delimited
// JSON rather than full HTTP-style framing.
type Framer struct {
	scanner *bufio.Scanner
}

// NewFramer wraps r. Callers read successive frames with Next.
func NewFramer(r io.Reader) *Framer {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)
	return &Framer{scanner: scanner}
}

// Next returns the next line's bytes with any trailing \r stripped, or
// io.EOF when the stream is exhausted. The returned slice is only valid
// until the next call to Next — callers that retain it must copy.
func (f *Framer) Next() ([]byte, error) {
	if !f.scanner.Scan() {
		if err := f.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return bytes.TrimSuffix(f.scanner.Bytes(), []byte("\r")), nil
}

// WriteFrame writes raw followed by a single \n, the canonical framing
// for outbound messages regardless of how the corresponding inbound
// frame was terminated.
func WriteFrame(w io.Writer, raw []byte) error {
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if len(raw) == 0 || raw[len(raw)-1] != '\n' {
		if _, err := w.Write([]byte("\n")); err != nil {
			return err
		}
	}
	return nil
}
