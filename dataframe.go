package goquery

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/arrowquery/goquery/logicalplan"
	"github.com/arrowquery/goquery/physicalplan"
)

// DataFrame is a fluent, immutable query builder
// (Scan/Project/Filter/Aggregate...) expressed over this package's own
// Scan/Projection/Selection/Aggregate logical algebra.
type DataFrame struct {
	engine *Engine
	build  logicalplan.Builder
}

func newDataFrame(e *Engine, b logicalplan.Builder) *DataFrame {
	return &DataFrame{engine: e, build: b}
}

// Project applies a fixed list of expressions to the current frame.
func (df *DataFrame) Project(exprs ...logicalplan.Expr) *DataFrame {
	return newDataFrame(df.engine, df.build.Project(exprs...))
}

// Filter restricts the current frame to rows where predicate is true.
func (df *DataFrame) Filter(predicate logicalplan.Expr) *DataFrame {
	return newDataFrame(df.engine, df.build.Filter(predicate))
}

// Aggregate groups the current frame by groupBy and reduces with aggregates.
func (df *DataFrame) Aggregate(groupBy []logicalplan.Expr, aggregates []*logicalplan.AggregateExpr) *DataFrame {
	return newDataFrame(df.engine, df.build.Aggregate(groupBy, aggregates))
}

// LogicalPlan returns the optimized logical plan this frame would execute,
// without running it. Useful for Explain and for tests that only want to
// assert on schema/shape.
func (df *DataFrame) LogicalPlan() logicalplan.Plan {
	return df.build.Build()
}

// Schema returns the frame's output schema without executing anything.
func (df *DataFrame) Schema() (*arrow.Schema, error) {
	return df.LogicalPlan().Schema()
}

// Execute runs the query and invokes callback once per output batch. Each
// batch is released automatically after callback returns; callback must not
// retain it past that call without calling Retain itself.
func (df *DataFrame) Execute(ctx context.Context, callback func(r arrow.Record) error) error {
	queryID := uuid.New()
	logger := log.With(df.engine.logger, "query_id", queryID.String())
	df.engine.metrics.queriesTotal.Inc()

	ctx, span := df.engine.tracer.Start(ctx, "DataFrame.Execute")
	defer span.End()

	start := time.Now()
	err := df.execute(ctx, callback)
	if err != nil {
		df.engine.metrics.queryErrors.Inc()
		level.Error(logger).Log("msg", "query failed", "err", err, "duration", time.Since(start))
		return err
	}

	level.Debug(logger).Log("msg", "query completed", "duration", time.Since(start))
	return nil
}

func (df *DataFrame) execute(ctx context.Context, callback func(r arrow.Record) error) error {
	logical := df.build.Build()

	phys, err := physicalplan.Plan(logical)
	if err != nil {
		return fmt.Errorf("lowering logical plan: %w", err)
	}

	iter, err := phys.Execute(ctx, df.engine.pool)
	if err != nil {
		return fmt.Errorf("opening physical plan: %w", err)
	}

	for {
		batch, err := iter.Next(ctx)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		df.engine.metrics.batchesEmitted.Inc()
		df.engine.metrics.rowsEmitted.Add(float64(batch.NumRows()))

		cbErr := callback(batch)
		batch.Release()
		if cbErr != nil {
			return cbErr
		}
	}
}

// Collect runs the query and gathers every output batch into a single slice,
// for callers that don't need streaming consumption (tests, small results).
// The caller must Release each returned batch.
func (df *DataFrame) Collect(ctx context.Context) ([]arrow.Record, error) {
	var batches []arrow.Record
	err := df.Execute(ctx, func(r arrow.Record) error {
		r.Retain()
		batches = append(batches, r)
		return nil
	})
	if err != nil {
		for _, b := range batches {
			b.Release()
		}
		return nil, err
	}
	return batches, nil
}
