// Package interceptor drives the two stdio forwarders between an MCP
// client and a target server, classifying and deciding every tools/call
// in between.
package interceptor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/mcpgov/interceptor/internal/audit"
	"github.com/mcpgov/interceptor/internal/classify"
	"github.com/mcpgov/interceptor/internal/metrics"
	"github.com/mcpgov/interceptor/internal/rules"
	"github.com/mcpgov/interceptor/pkg/wire"
)

// deniedMessage is the fixed JSON-RPC error message for a governance
// denial. It never varies by rule; the rule's own reason, when present,
// rides along in the error's data field instead.
const deniedMessage = "Permission denied by governance rules"

// Interceptor classifies, decides, and audits every tools/call crossing
// the client-to-target boundary, and forwards everything else unchanged.
type Interceptor struct {
	evaluator       *rules.Evaluator
	sink            audit.Sink
	serviceOverride string
	project         string
	logger          *slog.Logger
	metrics         *metrics.Registry
	tracer          trace.Tracer
}

// New builds an Interceptor. serviceOverride, when non-empty, replaces
// the classifier's extracted service name for every tool call — set via
// --service when the outer layer already knows the logical service key.
// project, when non-empty, is stamped onto every audit record. reg may
// be nil, in which case decisions simply aren't counted. tracer may be
// nil, in which case spans simply aren't created.
func New(evaluator *rules.Evaluator, sink audit.Sink, serviceOverride, project string, logger *slog.Logger, reg *metrics.Registry, tracer trace.Tracer) *Interceptor {
	return &Interceptor{
		evaluator:       evaluator,
		sink:            sink,
		serviceOverride: serviceOverride,
		project:         project,
		logger:          logger,
		metrics:         reg,
		tracer:          tracer,
	}
}

// Run drives both forwarders until one side closes or ctx is cancelled.
// clientIn/clientOut are the interceptor's own stdin/stdout; targetIn/
// targetOut are the target process's stdin/stdout, as returned by the
// supervisor.
func (i *Interceptor) Run(ctx context.Context, clientIn io.Reader, clientOut io.Writer, targetIn io.WriteCloser, targetOut io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { _ = targetIn.Close() }()
		if err := i.forwardClientToTarget(ctx, clientIn, clientOut, targetIn); err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
				errCh <- fmt.Errorf("client->target: %w", err)
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := forwardTargetToClient(targetOut, clientOut); err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
				errCh <- fmt.Errorf("target->client: %w", err)
			}
		}
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case err := <-errCh:
		cancel()
		<-done
		return err
	}
}

// forwardClientToTarget reads lines from the client, classifies and
// decides every tools/call, and forwards allowed/non-tool-call lines to
// the target unchanged. Denied calls never reach the target; a denial
// response is written to clientOut instead.
func (i *Interceptor) forwardClientToTarget(ctx context.Context, clientIn io.Reader, clientOut io.Writer, targetIn io.Writer) error {
	framer := wire.NewFramer(clientIn)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, err := framer.Next()
		if err != nil {
			return err
		}
		raw := append([]byte(nil), line...)

		msg, decodeErr := wire.Decode(raw, wire.ClientToServer)
		if decodeErr != nil || !msg.IsToolCall() {
			if err := wire.WriteFrame(targetIn, raw); err != nil {
				return fmt.Errorf("forward to target: %w", err)
			}
			continue
		}

		params, ok := msg.ParseToolCall()
		if !ok || params.Name == "" {
			// MalformedToolName: an MCP-level concern, not a governance
			// decision. The target itself will report the error.
			if err := wire.WriteFrame(targetIn, raw); err != nil {
				return fmt.Errorf("forward to target: %w", err)
			}
			continue
		}

		if err := i.decideAndRoute(ctx, msg, raw, params.Name, params.Arguments, clientOut, targetIn); err != nil {
			return err
		}
	}
}

func (i *Interceptor) decideAndRoute(ctx context.Context, msg *wire.Message, raw []byte, toolName string, arguments map[string]any, clientOut, targetIn io.Writer) error {
	if i.tracer != nil {
		var span trace.Span
		ctx, span = i.tracer.Start(ctx, "tools/call")
		defer span.End()
	}

	start := time.Now()

	result, err := classify.Classify(toolName)
	if err != nil {
		// Malformed tool name: forward, let the target surface the error.
		return wire.WriteFrame(targetIn, raw)
	}

	service := result.Service
	if i.serviceOverride != "" {
		service = i.serviceOverride
	}

	decision, err := i.evaluator.Evaluate(toolName, classify.Result{Service: service, Operation: result.Operation}, arguments)
	if err != nil {
		i.logger.Warn("condition evaluation failed, defaulting to decide without conditions", "tool", toolName, "error", err)
		decision = i.evaluator.Decide(service, result.Operation)
	}

	if i.metrics != nil {
		i.metrics.ClassifyDuration.Observe(time.Since(start).Seconds())
	}

	record := audit.Record{
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Tool:      toolName,
		Service:   service,
		Operation: string(result.Operation),
		Project:   i.project,
	}

	if decision.Permission == rules.Deny {
		record.Status = audit.StatusDenied
		record.Reason = decision.Reason
		i.emit(ctx, record)
		i.countDecision(audit.StatusDenied)

		denial := wire.EncodeDenial(msg.RawID(), deniedMessage, wire.DenialData{
			Service:   service,
			Operation: string(result.Operation),
			Reason:    decision.Reason,
		})
		_, writeErr := clientOut.Write(denial)
		return writeErr
	}

	record.Status = audit.StatusAllowed
	i.emit(ctx, record)
	i.countDecision(audit.StatusAllowed)
	return wire.WriteFrame(targetIn, raw)
}

func (i *Interceptor) emit(ctx context.Context, record audit.Record) {
	if err := i.sink.Emit(ctx, record); err != nil {
		i.logger.Warn("audit emit failed", "error", err)
		if i.metrics != nil {
			i.metrics.AuditFailures.Inc()
		}
	}
}

func (i *Interceptor) countDecision(status audit.Status) {
	if i.metrics != nil {
		i.metrics.DecisionsTotal.WithLabelValues(status.String()).Inc()
	}
}

// forwardTargetToClient copies every target stdout line to the client
// verbatim. Responses are never rewritten.
func forwardTargetToClient(targetOut io.Reader, clientOut io.Writer) error {
	framer := wire.NewFramer(targetOut)
	for {
		line, err := framer.Next()
		if err != nil {
			return err
		}
		if err := wire.WriteFrame(clientOut, line); err != nil {
			return fmt.Errorf("forward to client: %w", err)
		}
	}
}
