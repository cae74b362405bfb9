// Package goquery is an embeddable, vectorized, pull-based query engine over
// Apache Arrow record batches: a closed logical expression/plan algebra,
// single-pass projection pushdown, a physical planner that lowers to
// ordinal-resolved operators, and hash-grouped aggregation. See DataFrame for
// the fluent query-building surface and Engine for wiring an allocator,
// logger, tracer and metrics into how queries run.
package goquery

import (
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/go-kit/log"

	"go.opentelemetry.io/otel/trace"

	"github.com/arrowquery/goquery/datasource"
	"github.com/arrowquery/goquery/logicalplan"
)

// Engine owns the ambient stack every query runs with: the allocator batches
// are built from, a logger, a tracer and a metrics set. It holds no data
// itself — Engine.Scan binds a datasource.Source per query.
type Engine struct {
	pool    memory.Allocator
	logger  log.Logger
	tracer  trace.Tracer
	metrics *engineMetrics
}

// NewEngine builds an Engine, applying opts over sensible defaults: a Go
// heap allocator, a no-op logger, a no-op tracer and metrics that are not
// registered with any Prometheus registry (see WithMetricsRegisterer).
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		pool:    memory.NewGoAllocator(),
		logger:  log.NewNopLogger(),
		tracer:  defaultTracer(),
		metrics: newEngineMetrics(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = newEngineMetrics(nil)
	}
	return e
}

// Scan starts a new DataFrame reading from src.
func (e *Engine) Scan(src datasource.Source) *DataFrame {
	return newDataFrame(e, logicalplan.Scan(src))
}
