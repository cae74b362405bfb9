package physicalplan

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/arrow/scalar"
	"github.com/cespare/xxhash/v2"

	"github.com/arrowquery/goquery/colval"
	"github.com/arrowquery/goquery/datasource"
	"github.com/arrowquery/goquery/errs"
	"github.com/arrowquery/goquery/kernels"
)

// AggFunc mirrors logicalplan.AggFunc at the physical layer, kept as its own
// type so physicalplan doesn't need to import logicalplan outside of
// planner.go's lowering step.
type AggFunc uint8

const (
	AggSum AggFunc = iota
	AggAvg
	AggMax
	AggMin
	AggCount
)

// AggregateSpec pairs one aggregate function with the physical expression it
// reduces over.
type AggregateSpec struct {
	Func  AggFunc
	Input Expr
	Name  string
}

func newAccumulator(fn AggFunc, dt arrow.DataType) (kernels.Accumulator, error) {
	switch fn {
	case AggSum:
		return kernels.NewSumAccumulator(dt)
	case AggAvg:
		return kernels.NewAvgAccumulator(dt)
	case AggMax:
		return kernels.NewMaxAccumulator(dt)
	case AggMin:
		return kernels.NewMinAccumulator(dt)
	case AggCount:
		return kernels.NewCountAccumulator(), nil
	default:
		return nil, fmt.Errorf("%w: unknown aggregate function", errs.ErrPhysicalExpressionNotSupported)
	}
}

// AggregateExec groups its input by GroupExprs and reduces each group with
// AggExprs. It is a blocking operator: the first call to Next drains the
// entire input, builds one hash-grouped accumulator set, and emits the
// result as a single batch; every subsequent call returns io.EOF. An empty
// input still produces one output batch (of zero rows if there is a
// GroupBy, or a single row of each aggregate's identity value if there is
// none) rather than an error.
type AggregateExec struct {
	child      Plan
	groupExprs []Expr
	aggExprs   []AggregateSpec
	schema     *arrow.Schema
}

func NewAggregateExec(child Plan, groupExprs []Expr, aggExprs []AggregateSpec, schema *arrow.Schema) *AggregateExec {
	return &AggregateExec{child: child, groupExprs: groupExprs, aggExprs: aggExprs, schema: schema}
}

func (a *AggregateExec) Schema() *arrow.Schema { return a.schema }

func (a *AggregateExec) String() string { return "AggregateExec" }

// groupState is one bucket of the grouped aggregation: the group-by key
// values (to rebuild the output's group columns) plus one accumulator per
// aggregate expression.
type groupState struct {
	keyValues    []scalar.Scalar
	accumulators []kernels.Accumulator
}

func (a *AggregateExec) Execute(ctx context.Context, pool memory.Allocator) (datasource.BatchIter, error) {
	childIter, err := a.child.Execute(ctx, pool)
	if err != nil {
		return nil, err
	}

	done := false
	return datasource.BatchIterFunc(func(ctx context.Context) (arrow.Record, error) {
		if done {
			return nil, io.EOF
		}
		done = true

		// buckets maps a combined group-key hash to every distinct group
		// sharing that hash, so a collision never silently merges two
		// different groups — the bucket is scanned and each entry's stored
		// key is compared before accepting a hit.
		buckets := make(map[uint64][]*groupState)
		var order []*groupState

		for {
			batch, err := childIter.Next(ctx)
			if err != nil {
				if err == io.EOF {
					break
				}
				return nil, err
			}

			if err := a.foldBatch(pool, batch, buckets, &order); err != nil {
				batch.Release()
				return nil, err
			}
			batch.Release()
		}

		return a.buildResult(pool, order)
	}), nil
}

func (a *AggregateExec) foldBatch(pool memory.Allocator, batch arrow.Record, buckets map[uint64][]*groupState, order *[]*groupState) error {
	n := int(batch.NumRows())
	if n == 0 {
		return nil
	}

	groupArrs := make([]arrow.Array, len(a.groupExprs))
	for i, e := range a.groupExprs {
		val, err := e.Eval(pool, batch)
		if err != nil {
			return fmt.Errorf("group-by expr %d (%s): %w", i, e, err)
		}
		arr, err := colval.ToArray(pool, val, n)
		if err != nil {
			return err
		}
		groupArrs[i] = arr
	}

	argArrs := make([]arrow.Array, len(a.aggExprs))
	for i, spec := range a.aggExprs {
		val, err := spec.Input.Eval(pool, batch)
		if err != nil {
			return fmt.Errorf("aggregate arg %d (%s): %w", i, spec.Input, err)
		}
		arr, err := colval.ToArray(pool, val, n)
		if err != nil {
			return err
		}
		argArrs[i] = arr
	}

	// rowsByGroup collects, per distinct group encountered in this batch,
	// the row indices belonging to it — a per-batch "seen" structure so
	// each accumulator is folded once per group per batch instead of once
	// per row.
	rowsByGroup := make(map[*groupState][]int)

	for row := 0; row < n; row++ {
		h, err := hashRow(groupArrs, row)
		if err != nil {
			return err
		}

		var gs *groupState
		for _, candidate := range buckets[h] {
			eq, err := sameGroupKey(candidate.keyValues, groupArrs, row)
			if err != nil {
				return err
			}
			if eq {
				gs = candidate
				break
			}
		}

		if gs == nil {
			keyValues := make([]scalar.Scalar, len(groupArrs))
			for i, arr := range groupArrs {
				s, err := elementScalar(arr, row)
				if err != nil {
					return err
				}
				keyValues[i] = s
			}
			accumulators := make([]kernels.Accumulator, len(a.aggExprs))
			for i, spec := range a.aggExprs {
				acc, err := newAccumulator(spec.Func, argArrs[i].DataType())
				if err != nil {
					return err
				}
				accumulators[i] = acc
			}
			gs = &groupState{keyValues: keyValues, accumulators: accumulators}
			buckets[h] = append(buckets[h], gs)
			*order = append(*order, gs)
		}

		rowsByGroup[gs] = append(rowsByGroup[gs], row)
	}

	for gs, rows := range rowsByGroup {
		for i := range a.aggExprs {
			if err := gs.accumulators[i].Accumulate(argArrs[i], rows); err != nil {
				return err
			}
		}
	}

	return nil
}

func (a *AggregateExec) buildResult(pool memory.Allocator, groups []*groupState) (arrow.Record, error) {
	numGroupCols := len(a.groupExprs)
	numAggCols := len(a.aggExprs)
	cols := make([]arrow.Array, numGroupCols+numAggCols)

	if len(groups) == 0 && numGroupCols > 0 {
		// No input rows and a non-trivial GroupBy: emit a zero-row batch
		// with the right schema rather than fabricating a group.
		for i := range cols {
			b := array.NewBuilder(pool, a.schema.Field(i).Type)
			cols[i] = b.NewArray()
			b.Release()
		}
		return array.NewRecord(a.schema, cols, 0), nil
	}

	if len(groups) == 0 {
		// No input rows and no GroupBy: a single group whose accumulators
		// never saw any input, emitting each aggregate's identity value
		// (e.g. Count == 0).
		accumulators := make([]kernels.Accumulator, numAggCols)
		for i, spec := range a.aggExprs {
			acc, err := newAccumulator(spec.Func, a.schema.Field(numGroupCols+i).Type)
			if err != nil {
				return nil, err
			}
			accumulators[i] = acc
		}
		groups = []*groupState{{accumulators: accumulators}}
	}

	for gi := 0; gi < numGroupCols; gi++ {
		b := array.NewBuilder(pool, a.schema.Field(gi).Type)
		for _, g := range groups {
			if err := appendScalar(b, g.keyValues[gi]); err != nil {
				b.Release()
				return nil, err
			}
		}
		cols[gi] = b.NewArray()
		b.Release()
	}

	for ai := 0; ai < numAggCols; ai++ {
		b := array.NewBuilder(pool, a.schema.Field(numGroupCols+ai).Type)
		for _, g := range groups {
			v, err := g.accumulators[ai].FinalValue()
			if err != nil {
				b.Release()
				return nil, err
			}
			if err := appendScalar(b, v); err != nil {
				b.Release()
				return nil, err
			}
		}
		cols[numGroupCols+ai] = b.NewArray()
		b.Release()
	}

	return array.NewRecord(a.schema, cols, int64(len(groups))), nil
}

// hashRow combines the per-column hash of groupArrs[row] with XOR, the
// associative combiner this engine picked for the open question of how to
// fold a multi-column group key into one hash.
func hashRow(groupArrs []arrow.Array, row int) (uint64, error) {
	var h uint64
	for _, arr := range groupArrs {
		b, err := elementHashBytes(arr, row)
		if err != nil {
			return 0, err
		}
		h ^= xxhash.Sum64(b)
	}
	return h, nil
}

func elementHashBytes(arr arrow.Array, i int) ([]byte, error) {
	if arr.IsNull(i) {
		return []byte{0}, nil
	}
	switch v := arr.(type) {
	case *array.Int32:
		buf := make([]byte, 5)
		buf[0] = 1
		binary.LittleEndian.PutUint32(buf[1:], uint32(v.Value(i)))
		return buf, nil
	case *array.Float64:
		buf := make([]byte, 9)
		buf[0] = 2
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(v.Value(i)))
		return buf, nil
	case *array.String:
		s := v.Value(i)
		buf := make([]byte, 0, len(s)+1)
		buf = append(buf, 3)
		buf = append(buf, s...)
		return buf, nil
	case *array.Boolean:
		if v.Value(i) {
			return []byte{4, 1}, nil
		}
		return []byte{4, 0}, nil
	default:
		return nil, fmt.Errorf("%w: group-by over %T", errs.ErrPhysicalTypeNotSupported, arr)
	}
}

// sameGroupKey compares a stored group key against the row at index row in
// groupArrs, per-column. This is the compare-on-hit half of the collision
// policy: a hash match alone is never trusted as a group match.
func sameGroupKey(key []scalar.Scalar, groupArrs []arrow.Array, row int) (bool, error) {
	for i, arr := range groupArrs {
		rowScalar, err := elementScalar(arr, row)
		if err != nil {
			return false, err
		}
		if !scalarsEqual(key[i], rowScalar) {
			return false, nil
		}
	}
	return true, nil
}

func scalarsEqual(a, b scalar.Scalar) bool {
	if a.IsValid() != b.IsValid() {
		return false
	}
	if !a.IsValid() {
		return true
	}
	switch av := a.(type) {
	case *scalar.Int32:
		bv, ok := b.(*scalar.Int32)
		return ok && av.Value == bv.Value
	case *scalar.Float64:
		bv, ok := b.(*scalar.Float64)
		return ok && av.Value == bv.Value
	case *scalar.String:
		bv, ok := b.(*scalar.String)
		return ok && string(av.Data()) == string(bv.Data())
	case *scalar.Boolean:
		bv, ok := b.(*scalar.Boolean)
		return ok && av.Value == bv.Value
	default:
		return false
	}
}

func elementScalar(arr arrow.Array, i int) (scalar.Scalar, error) {
	if arr.IsNull(i) {
		return scalar.MakeNullScalar(arr.DataType()), nil
	}
	switch v := arr.(type) {
	case *array.Int32:
		return scalar.MakeScalar(v.Value(i)), nil
	case *array.Float64:
		return scalar.MakeScalar(v.Value(i)), nil
	case *array.String:
		return scalar.MakeScalar(v.Value(i)), nil
	case *array.Boolean:
		return scalar.MakeScalar(v.Value(i)), nil
	default:
		return nil, fmt.Errorf("%w: %T", errs.ErrPhysicalTypeNotSupported, arr)
	}
}

func appendScalar(b array.Builder, s scalar.Scalar) error {
	if !s.IsValid() {
		b.AppendNull()
		return nil
	}
	switch bb := b.(type) {
	case *array.Int32Builder:
		sv, ok := s.(*scalar.Int32)
		if !ok {
			return fmt.Errorf("%w: expected int32 scalar, got %T", errs.ErrDowncast, s)
		}
		bb.Append(sv.Value)
	case *array.Float64Builder:
		sv, ok := s.(*scalar.Float64)
		if !ok {
			return fmt.Errorf("%w: expected float64 scalar, got %T", errs.ErrDowncast, s)
		}
		bb.Append(sv.Value)
	case *array.StringBuilder:
		sv, ok := s.(*scalar.String)
		if !ok {
			return fmt.Errorf("%w: expected string scalar, got %T", errs.ErrDowncast, s)
		}
		bb.Append(string(sv.Data()))
	case *array.BooleanBuilder:
		sv, ok := s.(*scalar.Boolean)
		if !ok {
			return fmt.Errorf("%w: expected bool scalar, got %T", errs.ErrDowncast, s)
		}
		bb.Append(sv.Value)
	case *array.Int64Builder:
		sv, ok := s.(*scalar.Int64)
		if !ok {
			return fmt.Errorf("%w: expected int64 scalar, got %T", errs.ErrDowncast, s)
		}
		bb.Append(sv.Value)
	default:
		return fmt.Errorf("%w: %T", errs.ErrPhysicalTypeNotSupported, b)
	}
	return nil
}
