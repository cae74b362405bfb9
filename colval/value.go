// Package colval implements ColumnarValue, the tagged union every physical
// expression evaluates to: either a real Arrow array or a single scalar that
// is conceptually broadcastable to any batch length.
package colval

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/arrow/scalar"

	"github.com/arrowquery/goquery/errs"
)

// Value is either an Array or a Scalar. Exactly one of Arr/Scalar is set.
type Value struct {
	Arr    arrow.Array
	Scalar scalar.Scalar
}

func FromArray(a arrow.Array) Value { return Value{Arr: a} }

func FromScalar(s scalar.Scalar) Value { return Value{Scalar: s} }

func (v Value) IsArray() bool { return v.Arr != nil }

func (v Value) IsScalar() bool { return v.Scalar != nil }

func (v Value) DataType() arrow.DataType {
	if v.IsArray() {
		return v.Arr.DataType()
	}
	return v.Scalar.DataType()
}

func (v Value) String() string {
	if v.IsArray() {
		return v.Arr.String()
	}
	return v.Scalar.String()
}

// ToArray materializes v as a length-n array, broadcasting a Scalar n times.
// An Array value is returned unchanged; its length is not checked against n.
func ToArray(pool memory.Allocator, v Value, n int) (arrow.Array, error) {
	if v.IsArray() {
		return v.Arr, nil
	}
	return ScalarToArray(pool, v.Scalar, n)
}

// ScalarToArray broadcasts a scalar value into an array of length n.
// Supported physical types: Int32, Float64, Utf8 (arrow.BinaryTypes.String),
// Bool. Anything else is a ScalarToArrayError.
func ScalarToArray(pool memory.Allocator, s scalar.Scalar, n int) (arrow.Array, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %s", errs.ErrScalarToArray, "null scalar has no physical representation")
	}

	switch sc := s.(type) {
	case *scalar.Int32:
		b := array.NewInt32Builder(pool)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(sc.Value)
		}
		return b.NewInt32Array(), nil
	case *scalar.Float64:
		b := array.NewFloat64Builder(pool)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(sc.Value)
		}
		return b.NewFloat64Array(), nil
	case *scalar.String:
		b := array.NewStringBuilder(pool)
		defer b.Release()
		val := string(sc.Data())
		for i := 0; i < n; i++ {
			b.Append(val)
		}
		return b.NewStringArray(), nil
	case *scalar.Boolean:
		b := array.NewBooleanBuilder(pool)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(sc.Value)
		}
		return b.NewBooleanArray(), nil
	default:
		return nil, fmt.Errorf("%w: %T", errs.ErrScalarToArray, s)
	}
}
