package colval_test

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/arrow/scalar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowquery/goquery/colval"
)

func TestScalarToArrayBroadcastsInt32(t *testing.T) {
	pool := memory.NewGoAllocator()
	s := scalar.MakeScalar(int32(7))

	arr, err := colval.ScalarToArray(pool, s, 3)
	require.NoError(t, err)
	got := arr.(*array.Int32)
	assert.Equal(t, []int32{7, 7, 7}, got.Int32Values())
}

func TestScalarToArrayBroadcastsString(t *testing.T) {
	pool := memory.NewGoAllocator()
	s := scalar.MakeScalar("hi")

	arr, err := colval.ScalarToArray(pool, s, 2)
	require.NoError(t, err)
	got := arr.(*array.String)
	assert.Equal(t, "hi", got.Value(0))
	assert.Equal(t, "hi", got.Value(1))
}

func TestToArrayPassesThroughRealArrays(t *testing.T) {
	pool := memory.NewGoAllocator()
	b := array.NewInt32Builder(pool)
	b.Append(1)
	b.Append(2)
	real := b.NewInt32Array()

	v := colval.FromArray(real)
	arr, err := colval.ToArray(pool, v, 2)
	require.NoError(t, err)
	assert.Same(t, real, arr)
}

func TestValueIsArrayIsScalar(t *testing.T) {
	v := colval.FromScalar(scalar.MakeScalar(int32(1)))
	assert.True(t, v.IsScalar())
	assert.False(t, v.IsArray())
}
