package qrwlock

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// ScopeHook brackets a task scope with an external tracing system: it
// is given the chance to start a span when a scope begins and is
// handed back a func to end it when the scope's dynamic extent is
// over. Grounded on mauriciomferz-Gauth_go's internal/tracing/tracer.go
// StartSpan/span.End() pattern.
type ScopeHook interface {
	Start(ctx context.Context, name string) (context.Context, func())
}

type noopScopeHook struct{}

func (noopScopeHook) Start(ctx context.Context, name string) (context.Context, func()) {
	return ctx, func() {}
}

// DefaultScopeHook is used by callers that choose to bracket a scope
// with tracing (ginmw.DeadlockScope does). It is a no-op until replaced,
// e.g. with NewOTelSpanHook, so qrwlock has zero tracing overhead until
// a caller opts in.
var DefaultScopeHook ScopeHook = noopScopeHook{}

// otelScopeHook emits one span per scope via an OpenTelemetry tracer.
type otelScopeHook struct {
	tracer trace.Tracer
}

// NewOTelSpanHook wraps tracer as a ScopeHook: Start opens a span named
// after the scope and returns an end func that closes it.
func NewOTelSpanHook(tracer trace.Tracer) ScopeHook {
	return &otelScopeHook{tracer: tracer}
}

func (h *otelScopeHook) Start(ctx context.Context, name string) (context.Context, func()) {
	spanCtx, span := h.tracer.Start(ctx, name)
	return spanCtx, func() { span.End() }
}
