package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StreamSink writes one JSON line per record to an io.Writer. It is the
// interceptor's default sink: fire-and-forget, no batching, no retry,
// safe for concurrent use by both forwarder goroutines.
//
// The wire protocol travels over stdout, so a StreamSink must never be
// pointed at stdout — os.Stderr is the only sane target in the default
// wiring.
type StreamSink struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
}

// NewStreamSink wraps w. Each Emit writes exactly one newline-terminated
// JSON object.
func NewStreamSink(w io.Writer) *StreamSink {
	s := &StreamSink{w: w}
	s.enc = json.NewEncoder(w)
	return s
}

// Emit assigns a correlation ID if the record doesn't already carry one,
// then writes it as a single JSON line. Emit ignores ctx cancellation:
// a write that's already in flight always completes, since audit records
// must reach the sink before a denial is returned to the client.
func (s *StreamSink) Emit(_ context.Context, record Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.Timestamp = record.Timestamp.Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(record); err != nil {
		return fmt.Errorf("audit: writing record: %w", err)
	}
	return nil
}

// Close is a no-op: StreamSink does not own w's lifecycle.
func (s *StreamSink) Close() error { return nil }

var _ Sink = (*StreamSink)(nil)
