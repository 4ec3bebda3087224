package interceptor

import (
	"bytes"
	"context"
	"sync"

	"github.com/mcpgov/interceptor/internal/audit"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes the two
// forwarder goroutines make during a test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// nopCloser adapts an io.Writer (that doesn't need closing) to the
// io.WriteCloser the interceptor expects for the target's stdin.
type nopCloser struct {
	w *syncBuffer
}

func (n nopCloser) Write(p []byte) (int, error) { return n.w.Write(p) }
func (n nopCloser) Close() error                { return nil }

// recordingSink is an audit.Sink that collects every emitted record for
// assertion, guarded by a mutex for the same reason as syncBuffer.
type recordingSink struct {
	mu      sync.Mutex
	records []audit.Record
}

func (s *recordingSink) Emit(_ context.Context, record audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *recordingSink) Close() error { return nil }

var _ audit.Sink = (*recordingSink)(nil)
