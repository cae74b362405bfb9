package physicalplan

import (
	"context"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/arrowquery/goquery/datasource"
)

// Plan is a lowered, executable physical plan node. Execute opens a fresh
// pull-based iterator each time it's called — physical plans, like logical
// ones, are cheap immutable descriptions; all mutable state lives in the
// iterator Execute returns.
type Plan interface {
	// Schema returns this node's output schema.
	Schema() *arrow.Schema

	// Execute opens a BatchIter that pulls this node's output batches,
	// driving its input plan(s) as needed.
	Execute(ctx context.Context, pool memory.Allocator) (datasource.BatchIter, error)

	String() string
}

// ScanExec reads batches directly from a data source, optionally restricted
// to a column projection resolved during lowering.
type ScanExec struct {
	source     datasource.Source
	projection []string
	schema     *arrow.Schema
}

func NewScanExec(source datasource.Source, projection []string, schema *arrow.Schema) *ScanExec {
	return &ScanExec{source: source, projection: projection, schema: schema}
}

func (s *ScanExec) Schema() *arrow.Schema { return s.schema }

func (s *ScanExec) Execute(ctx context.Context, pool memory.Allocator) (datasource.BatchIter, error) {
	return s.source.Scan(ctx, s.projection)
}

func (s *ScanExec) String() string { return "ScanExec" }
