package goquery

import (
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Option configures an Engine: a function over the not-yet-constructed
// Engine, applied in NewEngine.
type Option func(*Engine)

// WithAllocator overrides the Arrow memory allocator every physical
// operator uses to build its output batches. Defaults to
// memory.NewGoAllocator().
func WithAllocator(pool memory.Allocator) Option {
	return func(e *Engine) { e.pool = pool }
}

// WithLogger overrides the engine's structured logger. Defaults to a no-op
// logger, the same default posture go-kit/log callers take when no logging
// sink is configured.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTracer overrides the OpenTelemetry tracer used for the one span
// DataFrame.Execute opens per query; operators open no spans of their own.
// Defaults to the no-op tracer, so tracing costs nothing unless a caller
// wires in a real TracerProvider.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithMetricsRegisterer registers the engine's query/batch/row counters with
// reg. Without it the counters are kept but registered nowhere.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) { e.metrics = newEngineMetrics(reg) }
}

func defaultTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("goquery")
}
