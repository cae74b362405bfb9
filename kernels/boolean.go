package kernels

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/arrowquery/goquery/errs"
)

// BoolOp is the closed set of logical kernels.
type BoolOp uint8

const (
	BoolAnd BoolOp = iota
	BoolOr
)

// Logical evaluates left <op> right elementwise over two Boolean arrays.
// Following Kleene logic, a null operand only forces a null result when the
// other operand doesn't already determine it (false AND null is false; true
// OR null is true).
func Logical(pool memory.Allocator, op BoolOp, left, right *array.Boolean) (*array.Boolean, error) {
	if left.Len() != right.Len() {
		return nil, errs.ErrDifferentSizes
	}

	b := array.NewBooleanBuilder(pool)
	defer b.Release()

	for i := 0; i < left.Len(); i++ {
		lNull, rNull := left.IsNull(i), right.IsNull(i)
		switch op {
		case BoolAnd:
			if !lNull && !left.Value(i) {
				b.Append(false)
				continue
			}
			if !rNull && !right.Value(i) {
				b.Append(false)
				continue
			}
			if lNull || rNull {
				b.AppendNull()
				continue
			}
			b.Append(true)
		case BoolOr:
			if !lNull && left.Value(i) {
				b.Append(true)
				continue
			}
			if !rNull && right.Value(i) {
				b.Append(true)
				continue
			}
			if lNull || rNull {
				b.AppendNull()
				continue
			}
			b.Append(false)
		default:
			return nil, fmt.Errorf("%w: unknown boolean op", errs.ErrPhysicalExpressionNotSupported)
		}
	}
	return b.NewBooleanArray(), nil
}
