package physicalplan

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/arrowquery/goquery/colval"
	"github.com/arrowquery/goquery/datasource"
	"github.com/arrowquery/goquery/errs"
)

// SelectionExec filters each input batch's rows by a boolean-valued
// predicate. The filtering technique — build a bitmap of kept row indices,
// collapse it into contiguous ranges, slice and re-concatenate each column —
// avoids a row-at-a-time rebuild of every column.
type SelectionExec struct {
	child     Plan
	predicate Expr
	schema    *arrow.Schema
}

func NewSelectionExec(child Plan, predicate Expr, schema *arrow.Schema) *SelectionExec {
	return &SelectionExec{child: child, predicate: predicate, schema: schema}
}

func (s *SelectionExec) Schema() *arrow.Schema { return s.schema }

func (s *SelectionExec) String() string { return fmt.Sprintf("SelectionExec: %s", s.predicate) }

func (s *SelectionExec) Execute(ctx context.Context, pool memory.Allocator) (datasource.BatchIter, error) {
	childIter, err := s.child.Execute(ctx, pool)
	if err != nil {
		return nil, err
	}

	return datasource.BatchIterFunc(func(ctx context.Context) (arrow.Record, error) {
		for {
			batch, err := childIter.Next(ctx)
			if err != nil {
				return nil, err
			}

			filtered, empty, err := filterBatch(pool, s.predicate, batch)
			batch.Release()
			if err != nil {
				return nil, err
			}
			if empty {
				// No rows survived this batch; pull the next one instead of
				// surfacing a zero-row record.
				continue
			}
			return filtered, nil
		}
	}), nil
}

// filterBatch evaluates predicate against batch and returns the surviving
// rows as a new record. empty is true when no row survived, in which case
// the returned record is nil.
func filterBatch(pool memory.Allocator, predicate Expr, batch arrow.Record) (arrow.Record, bool, error) {
	val, err := predicate.Eval(pool, batch)
	if err != nil {
		return nil, true, err
	}

	arr, err := colval.ToArray(pool, val, int(batch.NumRows()))
	if err != nil {
		return nil, true, err
	}

	boolArr, ok := arr.(*array.Boolean)
	if !ok {
		return nil, true, fmt.Errorf("%w: predicate produced %T", errs.ErrNoBooleanArrayForFilter, arr)
	}

	bitmap := roaring.New()
	for i := 0; i < boolArr.Len(); i++ {
		if !boolArr.IsNull(i) && boolArr.Value(i) {
			bitmap.Add(uint32(i))
		}
	}

	if bitmap.IsEmpty() {
		return nil, true, nil
	}

	indicesToKeep := bitmap.ToArray()
	ranges := buildIndexRanges(indicesToKeep)

	totalRows := int64(0)
	recordRanges := make([]arrow.Record, len(ranges))
	for j, r := range ranges {
		recordRanges[j] = batch.NewSlice(int64(r.start), int64(r.end))
		totalRows += int64(r.end - r.start)
	}

	cols := make([]arrow.Array, batch.NumCols())
	for i := range cols {
		colRanges := make([]arrow.Array, len(recordRanges))
		for j, rr := range recordRanges {
			colRanges[j] = rr.Column(i)
		}
		concatenated, err := array.Concatenate(colRanges, pool)
		if err != nil {
			return nil, true, err
		}
		cols[i] = concatenated
	}
	for _, rr := range recordRanges {
		rr.Release()
	}

	return array.NewRecord(batch.Schema(), cols, totalRows), false, nil
}

type indexRange struct {
	start uint32
	end   uint32
}

// buildIndexRanges collapses a sorted index slice into contiguous runs, e.g.
// [1,2,7,8,9] -> [{1,3}, {7,10}].
func buildIndexRanges(indices []uint32) []indexRange {
	ranges := make([]indexRange, 0, 1)
	cur := indexRange{start: indices[0], end: indices[0] + 1}
	for _, i := range indices[1:] {
		if i == cur.end {
			cur.end++
			continue
		}
		ranges = append(ranges, cur)
		cur = indexRange{start: i, end: i + 1}
	}
	ranges = append(ranges, cur)
	return ranges
}
