package physicalplan

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/arrowquery/goquery/colval"
	"github.com/arrowquery/goquery/datasource"
)

// ProjectionExec evaluates a fixed list of physical expressions against each
// input batch, producing one output column per expression. A child
// expression that evaluates to a Scalar is inflated to a full-length array
// via colval.ToArray before it becomes an output column — every output
// column of a Record must be a real array.
type ProjectionExec struct {
	child  Plan
	exprs  []Expr
	schema *arrow.Schema
}

func NewProjectionExec(child Plan, exprs []Expr, schema *arrow.Schema) *ProjectionExec {
	return &ProjectionExec{child: child, exprs: exprs, schema: schema}
}

func (p *ProjectionExec) Schema() *arrow.Schema { return p.schema }

func (p *ProjectionExec) String() string { return "ProjectionExec" }

func (p *ProjectionExec) Execute(ctx context.Context, pool memory.Allocator) (datasource.BatchIter, error) {
	childIter, err := p.child.Execute(ctx, pool)
	if err != nil {
		return nil, err
	}

	return datasource.BatchIterFunc(func(ctx context.Context) (arrow.Record, error) {
		batch, err := childIter.Next(ctx)
		if err != nil {
			return nil, err
		}
		defer batch.Release()

		cols := make([]arrow.Array, len(p.exprs))
		for i, e := range p.exprs {
			val, err := e.Eval(pool, batch)
			if err != nil {
				return nil, fmt.Errorf("projection expr %d (%s): %w", i, e, err)
			}
			arr, err := colval.ToArray(pool, val, int(batch.NumRows()))
			if err != nil {
				return nil, fmt.Errorf("projection expr %d (%s): %w", i, e, err)
			}
			cols[i] = arr
		}
		return array.NewRecord(p.schema, cols, batch.NumRows()), nil
	}), nil
}
