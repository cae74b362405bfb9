// Package datasource defines the boundary between the query engine and
// wherever batches of rows actually live. A Source exposes a fixed schema and
// produces a pull-based iterator of Arrow record batches, optionally
// restricted to a column projection pushed all the way down to the source.
package datasource

import (
	"context"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
)

// BatchIter is the pull-based batch iterator used throughout the engine:
// every operator, from a Source up through the top of the physical plan,
// produces one of these. Next returns io.EOF once exhausted.
type BatchIter interface {
	// Next returns the next batch, or io.EOF when the iterator is exhausted.
	// The returned record is owned by the caller and must be Released once
	// it is no longer needed.
	Next(ctx context.Context) (arrow.Record, error)
}

// Source is a columnar data source: something a Scan can read from.
type Source interface {
	// Schema returns the full schema of every column the source can produce.
	Schema() *arrow.Schema

	// Scan opens an iterator over the source's data. projection, when
	// non-nil, restricts which columns are materialized; nil means all
	// columns. The emitted columns are the projected ones in the source
	// schema's order: the operators above the scan address columns by their
	// ordinal in that projected schema.
	Scan(ctx context.Context, projection []string) (BatchIter, error)
}

// BatchIterFunc adapts a plain function to a BatchIter.
type BatchIterFunc func(ctx context.Context) (arrow.Record, error)

func (f BatchIterFunc) Next(ctx context.Context) (arrow.Record, error) { return f(ctx) }

// EOF re-exports io.EOF for callers that want to avoid importing io just to
// compare sentinel errors; BatchIter.Next returns exactly io.EOF, never a
// wrapped form, so errors.Is(err, io.EOF) and err == datasource.EOF both work.
var EOF = io.EOF
