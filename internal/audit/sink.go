package audit

import (
	"context"
)

// Sink persists audit records. Emit must not block the interceptor's
// forwarding path beyond writing a single record; callers treat Emit as
// fire-and-forget and do not retry on error.
type Sink interface {
	Emit(ctx context.Context, record Record) error
	Close() error
}

// NopSink discards every record. Used when no sink is configured, and in
// tests that don't care about audit output.
type NopSink struct{}

func (NopSink) Emit(context.Context, Record) error { return nil }
func (NopSink) Close() error                        { return nil }

var _ Sink = NopSink{}
