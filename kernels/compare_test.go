package kernels_test

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowquery/goquery/kernels"
)

func int32Array(pool memory.Allocator, vs ...int32) *array.Int32 {
	b := array.NewInt32Builder(pool)
	defer b.Release()
	for _, v := range vs {
		b.Append(v)
	}
	return b.NewInt32Array()
}

func TestCompareInt32Eq(t *testing.T) {
	pool := memory.NewGoAllocator()
	left := int32Array(pool, 1, 2, 3)
	right := int32Array(pool, 1, 0, 3)

	res, err := kernels.Compare(pool, kernels.CmpEq, left, right)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, boolValues(res))
}

func TestCompareInt32Gt(t *testing.T) {
	pool := memory.NewGoAllocator()
	left := int32Array(pool, 5, 1, 3)
	right := int32Array(pool, 1, 5, 3)

	res, err := kernels.Compare(pool, kernels.CmpGt, left, right)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, boolValues(res))
}

func TestCompareMismatchedLengthErrors(t *testing.T) {
	pool := memory.NewGoAllocator()
	left := int32Array(pool, 1, 2)
	right := int32Array(pool, 1)

	_, err := kernels.Compare(pool, kernels.CmpEq, left, right)
	require.Error(t, err)
}

func TestCompareBoolOrderingUnsupported(t *testing.T) {
	pool := memory.NewGoAllocator()
	b := array.NewBooleanBuilder(pool)
	b.Append(true)
	left := b.NewBooleanArray()
	b2 := array.NewBooleanBuilder(pool)
	b2.Append(false)
	right := b2.NewBooleanArray()

	_, err := kernels.Compare(pool, kernels.CmpGt, left, right)
	require.Error(t, err)
}

func boolValues(a *array.Boolean) []bool {
	out := make([]bool, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}
