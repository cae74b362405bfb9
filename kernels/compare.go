// Package kernels implements the engine's physical-type kernels directly as
// per-type loops over arrow.Array, rather than through arrow/compute's
// CallFunction/Datum registry, keeping every dispatch path a plain,
// auditable type switch.
package kernels

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/arrowquery/goquery/errs"
)

// CompareOp is the closed set of comparison kernels.
type CompareOp uint8

const (
	CmpEq CompareOp = iota
	CmpNeq
	CmpGt
	CmpGtEq
	CmpLt
	CmpLtEq
)

// Compare evaluates left <op> right elementwise, producing a Boolean array of
// the same length. left and right must already be the same length and the
// same physical type, for every op; Bool operands support only Eq and Neq.
func Compare(pool memory.Allocator, op CompareOp, left, right arrow.Array) (*array.Boolean, error) {
	if left.Len() != right.Len() {
		return nil, errs.ErrDifferentSizes
	}

	switch l := left.(type) {
	case *array.Int32:
		r, ok := right.(*array.Int32)
		if !ok {
			return nil, fmt.Errorf("%w: int32 compared against %T", errs.ErrPhysicalTypeNotSupported, right)
		}
		return compareInt32(pool, op, l, r)
	case *array.Float64:
		r, ok := right.(*array.Float64)
		if !ok {
			return nil, fmt.Errorf("%w: float64 compared against %T", errs.ErrPhysicalTypeNotSupported, right)
		}
		return compareFloat64(pool, op, l, r)
	case *array.String:
		r, ok := right.(*array.String)
		if !ok {
			return nil, fmt.Errorf("%w: utf8 compared against %T", errs.ErrPhysicalTypeNotSupported, right)
		}
		return compareString(pool, op, l, r)
	case *array.Boolean:
		r, ok := right.(*array.Boolean)
		if !ok {
			return nil, fmt.Errorf("%w: bool compared against %T", errs.ErrPhysicalTypeNotSupported, right)
		}
		if op != CmpEq && op != CmpNeq {
			return nil, fmt.Errorf("%w: ordering comparisons are not defined on bool", errs.ErrPhysicalTypeNotSupported)
		}
		return compareBoolean(pool, op, l, r)
	default:
		return nil, fmt.Errorf("%w: %T", errs.ErrPhysicalTypeNotSupported, left)
	}
}

func compareInt32(pool memory.Allocator, op CompareOp, l, r *array.Int32) (*array.Boolean, error) {
	b := array.NewBooleanBuilder(pool)
	defer b.Release()
	for i := 0; i < l.Len(); i++ {
		if l.IsNull(i) || r.IsNull(i) {
			b.AppendNull()
			continue
		}
		lv, rv := l.Value(i), r.Value(i)
		res, err := evalOrdered(op, cmpInt32(lv, rv))
		if err != nil {
			return nil, err
		}
		b.Append(res)
	}
	return b.NewBooleanArray(), nil
}

func compareFloat64(pool memory.Allocator, op CompareOp, l, r *array.Float64) (*array.Boolean, error) {
	b := array.NewBooleanBuilder(pool)
	defer b.Release()
	for i := 0; i < l.Len(); i++ {
		if l.IsNull(i) || r.IsNull(i) {
			b.AppendNull()
			continue
		}
		lv, rv := l.Value(i), r.Value(i)
		res, err := evalOrdered(op, cmpFloat64(lv, rv))
		if err != nil {
			return nil, err
		}
		b.Append(res)
	}
	return b.NewBooleanArray(), nil
}

func compareString(pool memory.Allocator, op CompareOp, l, r *array.String) (*array.Boolean, error) {
	b := array.NewBooleanBuilder(pool)
	defer b.Release()
	for i := 0; i < l.Len(); i++ {
		if l.IsNull(i) || r.IsNull(i) {
			b.AppendNull()
			continue
		}
		lv, rv := l.Value(i), r.Value(i)
		var cmp int
		switch {
		case lv < rv:
			cmp = -1
		case lv > rv:
			cmp = 1
		}
		res, err := evalOrdered(op, cmp)
		if err != nil {
			return nil, err
		}
		b.Append(res)
	}
	return b.NewBooleanArray(), nil
}

func compareBoolean(pool memory.Allocator, op CompareOp, l, r *array.Boolean) (*array.Boolean, error) {
	b := array.NewBooleanBuilder(pool)
	defer b.Release()
	for i := 0; i < l.Len(); i++ {
		if l.IsNull(i) || r.IsNull(i) {
			b.AppendNull()
			continue
		}
		eq := l.Value(i) == r.Value(i)
		if op == CmpNeq {
			eq = !eq
		}
		b.Append(eq)
	}
	return b.NewBooleanArray(), nil
}

func cmpInt32(l, r int32) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

// evalOrdered turns a three-way comparison result (-1/0/1) into the boolean
// outcome for op.
func evalOrdered(op CompareOp, cmp int) (bool, error) {
	switch op {
	case CmpEq:
		return cmp == 0, nil
	case CmpNeq:
		return cmp != 0, nil
	case CmpGt:
		return cmp > 0, nil
	case CmpGtEq:
		return cmp >= 0, nil
	case CmpLt:
		return cmp < 0, nil
	case CmpLtEq:
		return cmp <= 0, nil
	default:
		return false, fmt.Errorf("%w: unknown comparison op", errs.ErrPhysicalExpressionNotSupported)
	}
}
