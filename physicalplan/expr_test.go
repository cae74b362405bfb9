package physicalplan_test

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/arrow/scalar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowquery/goquery/errs"
	"github.com/arrowquery/goquery/kernels"
	"github.com/arrowquery/goquery/physicalplan"
)

func TestColumnExprResolvesByOrdinal(t *testing.T) {
	pool := memory.NewGoAllocator()
	batch := peopleRecord(pool)

	expr := physicalplan.NewColumnExpr(2, "salary")
	val, err := expr.Eval(pool, batch)
	require.NoError(t, err)

	arr := val.Arr.(*array.Int32)
	assert.Equal(t, []int32{100, 200, 150, 300}, arr.Int32Values())
}

func TestColumnExprOutOfBoundsErrors(t *testing.T) {
	pool := memory.NewGoAllocator()
	batch := peopleRecord(pool)

	expr := physicalplan.NewColumnExpr(99, "ghost")
	_, err := expr.Eval(pool, batch)
	assert.ErrorIs(t, err, errs.ErrExceedingBounds)
}

func TestLiteralExprIgnoresBatch(t *testing.T) {
	pool := memory.NewGoAllocator()
	batch := peopleRecord(pool)

	expr := physicalplan.NewLiteralExpr(scalar.MakeScalar(int32(42)))
	val, err := expr.Eval(pool, batch)
	require.NoError(t, err)
	require.True(t, val.IsScalar())
	assert.Equal(t, int32(42), val.Scalar.(*scalar.Int32).Value)
}

func TestBinaryExprCompareKind(t *testing.T) {
	pool := memory.NewGoAllocator()
	batch := peopleRecord(pool)

	expr := physicalplan.NewBinaryExpr(
		physicalplan.NewColumnExpr(2, "salary"),
		physicalplan.KindCompare,
		uint8(kernels.CmpGt),
		physicalplan.NewLiteralExpr(scalar.MakeScalar(int32(150))),
		"salary > 150",
	)

	val, err := expr.Eval(pool, batch)
	require.NoError(t, err)
	arr := val.Arr.(*array.Boolean)
	assert.Equal(t, []bool{false, true, false, true}, boolValues(arr))
}

func TestBinaryExprArithmeticKind(t *testing.T) {
	pool := memory.NewGoAllocator()
	batch := peopleRecord(pool)

	expr := physicalplan.NewBinaryExpr(
		physicalplan.NewColumnExpr(2, "salary"),
		physicalplan.KindArithmetic,
		uint8(kernels.ArithAdd),
		physicalplan.NewLiteralExpr(scalar.MakeScalar(int32(10))),
		"salary + 10",
	)

	val, err := expr.Eval(pool, batch)
	require.NoError(t, err)
	arr := val.Arr.(*array.Int32)
	assert.Equal(t, []int32{110, 210, 160, 310}, arr.Int32Values())
}

func TestBinaryExprBooleanKindRejectsNonBoolean(t *testing.T) {
	pool := memory.NewGoAllocator()
	batch := peopleRecord(pool)

	expr := physicalplan.NewBinaryExpr(
		physicalplan.NewColumnExpr(2, "salary"),
		physicalplan.KindBoolean,
		uint8(kernels.BoolAnd),
		physicalplan.NewLiteralExpr(scalar.MakeScalar(int32(1))),
		"salary AND 1",
	)

	_, err := expr.Eval(pool, batch)
	assert.ErrorIs(t, err, errs.ErrNoBooleanArrayForFilter)
}

func TestBinaryExprBooleanKindCombinesPredicates(t *testing.T) {
	pool := memory.NewGoAllocator()
	batch := peopleRecord(pool)

	isUS := physicalplan.NewBinaryExpr(
		physicalplan.NewColumnExpr(1, "country"),
		physicalplan.KindCompare,
		uint8(kernels.CmpEq),
		physicalplan.NewLiteralExpr(scalar.MakeScalar("US")),
		"country = US",
	)
	highSalary := physicalplan.NewBinaryExpr(
		physicalplan.NewColumnExpr(2, "salary"),
		physicalplan.KindCompare,
		uint8(kernels.CmpGt),
		physicalplan.NewLiteralExpr(scalar.MakeScalar(int32(150))),
		"salary > 150",
	)
	and := physicalplan.NewBinaryExpr(isUS, physicalplan.KindBoolean, uint8(kernels.BoolAnd), highSalary, "and")

	val, err := and.Eval(pool, batch)
	require.NoError(t, err)
	arr := val.Arr.(*array.Boolean)
	assert.Equal(t, []bool{false, true, false, true}, boolValues(arr))
}
