package qrwlock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopScopeHookIsNoOp(t *testing.T) {
	ctx, end := DefaultScopeHook.Start(context.Background(), "scope")
	assert.NotNil(t, ctx)
	assert.NotPanics(t, end)
}

func TestNewOTelSpanHookStartsAndEndsSpan(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("qrwlock-test")
	hook := NewOTelSpanHook(tracer)

	ctx, end := hook.Start(context.Background(), "my-scope")
	assert.NotNil(t, ctx)
	assert.NotPanics(t, end)
}
