package datasource

import (
	"context"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"

	"github.com/arrowquery/goquery/schema"
)

// MemorySource is a Source backed by a fixed slice of already-built records,
// all sharing one schema. It exists for tests and small embedded datasets —
// a read-only, in-memory stand-in for a real storage-backed Source.
type MemorySource struct {
	schema  *arrow.Schema
	batches []arrow.Record
}

func NewMemorySource(sc *arrow.Schema, batches ...arrow.Record) *MemorySource {
	return &MemorySource{schema: sc, batches: batches}
}

func (m *MemorySource) Schema() *arrow.Schema { return m.schema }

func (m *MemorySource) Scan(ctx context.Context, projection []string) (BatchIter, error) {
	indices, projected, err := projectionIndices(m.schema, projection)
	if err != nil {
		return nil, err
	}

	i := 0
	return BatchIterFunc(func(ctx context.Context) (arrow.Record, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i >= len(m.batches) {
			return nil, io.EOF
		}
		rec := m.batches[i]
		i++
		if indices == nil {
			rec.Retain()
			return rec, nil
		}
		return projectRecord(rec, indices, projected), nil
	}), nil
}

// projectionIndices resolves a name-based projection to ordinal indices
// against sc, returning (nil, nil, nil) when projection is nil (no pushdown
// needed). The returned indices are in projected's field order (source
// order), not projection's order, since that's the order projectRecord must
// zip columns against the schema it attaches to the output record.
func projectionIndices(sc *arrow.Schema, projection []string) ([]int, *arrow.Schema, error) {
	if projection == nil {
		return nil, sc, nil
	}
	names := make(map[string]struct{}, len(projection))
	for _, name := range projection {
		if schema.IndexOf(sc, name) < 0 {
			return nil, nil, errNoSuchColumn(name)
		}
		names[name] = struct{}{}
	}
	projected := schema.Project(sc, names)

	indices := make([]int, len(projected.Fields()))
	for i, f := range projected.Fields() {
		indices[i] = schema.IndexOf(sc, f.Name)
	}
	return indices, projected, nil
}

func projectRecord(rec arrow.Record, indices []int, projected *arrow.Schema) arrow.Record {
	cols := make([]arrow.Array, len(indices))
	for i, idx := range indices {
		cols[i] = rec.Column(idx)
	}
	return array.NewRecord(projected, cols, rec.NumRows())
}
