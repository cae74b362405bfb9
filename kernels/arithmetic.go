package kernels

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/arrowquery/goquery/errs"
)

// ArithOp is the closed set of arithmetic kernels.
type ArithOp uint8

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithMod
)

// Arithmetic evaluates left <op> right elementwise over Int32 or Float64
// arrays, producing an array of the same physical type. Division and modulo
// by zero produce a null at that position rather than panicking, matching
// the null-propagation behavior the rest of the engine uses for invalid
// elementwise results.
func Arithmetic(pool memory.Allocator, op ArithOp, left, right arrow.Array) (arrow.Array, error) {
	if left.Len() != right.Len() {
		return nil, errs.ErrDifferentSizes
	}

	switch l := left.(type) {
	case *array.Int32:
		r, ok := right.(*array.Int32)
		if !ok {
			return nil, fmt.Errorf("%w: int32 combined with %T", errs.ErrPhysicalTypeNotSupported, right)
		}
		return arithInt32(pool, op, l, r)
	case *array.Float64:
		r, ok := right.(*array.Float64)
		if !ok {
			return nil, fmt.Errorf("%w: float64 combined with %T", errs.ErrPhysicalTypeNotSupported, right)
		}
		return arithFloat64(pool, op, l, r)
	default:
		return nil, fmt.Errorf("%w: arithmetic is not defined on %T", errs.ErrPhysicalTypeNotSupported, left)
	}
}

func arithInt32(pool memory.Allocator, op ArithOp, l, r *array.Int32) (arrow.Array, error) {
	b := array.NewInt32Builder(pool)
	defer b.Release()
	for i := 0; i < l.Len(); i++ {
		if l.IsNull(i) || r.IsNull(i) {
			b.AppendNull()
			continue
		}
		lv, rv := l.Value(i), r.Value(i)
		switch op {
		case ArithAdd:
			b.Append(lv + rv)
		case ArithSub:
			b.Append(lv - rv)
		case ArithMul:
			b.Append(lv * rv)
		case ArithDiv:
			if rv == 0 {
				b.AppendNull()
				continue
			}
			b.Append(lv / rv)
		case ArithMod:
			if rv == 0 {
				b.AppendNull()
				continue
			}
			b.Append(lv % rv)
		default:
			return nil, fmt.Errorf("%w: unknown arithmetic op", errs.ErrPhysicalExpressionNotSupported)
		}
	}
	return b.NewInt32Array(), nil
}

func arithFloat64(pool memory.Allocator, op ArithOp, l, r *array.Float64) (arrow.Array, error) {
	b := array.NewFloat64Builder(pool)
	defer b.Release()
	for i := 0; i < l.Len(); i++ {
		if l.IsNull(i) || r.IsNull(i) {
			b.AppendNull()
			continue
		}
		lv, rv := l.Value(i), r.Value(i)
		switch op {
		case ArithAdd:
			b.Append(lv + rv)
		case ArithSub:
			b.Append(lv - rv)
		case ArithMul:
			b.Append(lv * rv)
		case ArithDiv:
			if rv == 0 {
				b.AppendNull()
				continue
			}
			b.Append(lv / rv)
		case ArithMod:
			if rv == 0 {
				b.AppendNull()
				continue
			}
			b.Append(float64(int64(lv) % int64(rv)))
		default:
			return nil, fmt.Errorf("%w: unknown arithmetic op", errs.ErrPhysicalExpressionNotSupported)
		}
	}
	return b.NewFloat64Array(), nil
}
