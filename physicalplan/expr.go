// Package physicalplan implements the lowered, column-ordinal physical
// expression algebra and the pull-based operator tree that evaluates it. A
// physical plan never looks a column up by name again — that resolution
// happened once, during lowering (see planner.go) — so every Eval call here
// is a direct index into the batch rather than a per-batch schema search.
package physicalplan

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/arrow/scalar"

	"github.com/arrowquery/goquery/colval"
	"github.com/arrowquery/goquery/errs"
	"github.com/arrowquery/goquery/kernels"
)

// Expr is the lowered physical expression algebra: every node evaluates
// against one input batch and a memory pool, producing a ColumnarValue that
// is either a real array or a scalar ready to be broadcast.
type Expr interface {
	fmt.Stringer

	Eval(pool memory.Allocator, batch arrow.Record) (colval.Value, error)
}

// ColumnExpr resolves a column by its ordinal position in the input schema,
// computed once during lowering instead of re-resolved by name on every
// batch.
type ColumnExpr struct {
	Index int
	Name  string
}

func NewColumnExpr(index int, name string) *ColumnExpr {
	return &ColumnExpr{Index: index, Name: name}
}

func (c *ColumnExpr) String() string { return c.Name }

func (c *ColumnExpr) Eval(pool memory.Allocator, batch arrow.Record) (colval.Value, error) {
	if c.Index < 0 || c.Index >= int(batch.NumCols()) {
		return colval.Value{}, fmt.Errorf("%w: column %q at ordinal %d", errs.ErrExceedingBounds, c.Name, c.Index)
	}
	return colval.FromArray(batch.Column(c.Index)), nil
}

// LiteralExpr wraps a pre-built scalar.Scalar; it evaluates to the same
// scalar regardless of the input batch.
type LiteralExpr struct {
	Value scalar.Scalar
}

func NewLiteralExpr(v scalar.Scalar) *LiteralExpr { return &LiteralExpr{Value: v} }

func (l *LiteralExpr) String() string { return l.Value.String() }

func (l *LiteralExpr) Eval(memory.Allocator, arrow.Record) (colval.Value, error) {
	return colval.FromScalar(l.Value), nil
}

// BinaryExpr evaluates a kernel over two child expressions' materialized
// array forms. Kind selects which kernel family (comparison, arithmetic,
// boolean) Op belongs to.
type BinaryExprKind uint8

const (
	KindCompare BinaryExprKind = iota
	KindArithmetic
	KindBoolean
)

type BinaryExpr struct {
	Left  Expr
	Kind  BinaryExprKind
	Op    uint8 // one of kernels.CompareOp / kernels.ArithOp / kernels.BoolOp, per Kind
	Right Expr
	Name  string
}

func NewBinaryExpr(left Expr, kind BinaryExprKind, op uint8, right Expr, name string) *BinaryExpr {
	return &BinaryExpr{Left: left, Kind: kind, Op: op, Right: right, Name: name}
}

func (b *BinaryExpr) String() string { return b.Name }

func (b *BinaryExpr) Eval(pool memory.Allocator, batch arrow.Record) (colval.Value, error) {
	leftVal, err := b.Left.Eval(pool, batch)
	if err != nil {
		return colval.Value{}, fmt.Errorf("left operand: %w", err)
	}
	rightVal, err := b.Right.Eval(pool, batch)
	if err != nil {
		return colval.Value{}, fmt.Errorf("right operand: %w", err)
	}

	n := int(batch.NumRows())
	leftArr, err := colval.ToArray(pool, leftVal, n)
	if err != nil {
		return colval.Value{}, err
	}
	rightArr, err := colval.ToArray(pool, rightVal, n)
	if err != nil {
		return colval.Value{}, err
	}

	switch b.Kind {
	case KindCompare:
		res, err := kernels.Compare(pool, kernels.CompareOp(b.Op), leftArr, rightArr)
		if err != nil {
			return colval.Value{}, err
		}
		return colval.FromArray(res), nil
	case KindArithmetic:
		res, err := kernels.Arithmetic(pool, kernels.ArithOp(b.Op), leftArr, rightArr)
		if err != nil {
			return colval.Value{}, err
		}
		return colval.FromArray(res), nil
	case KindBoolean:
		leftBool, ok := leftArr.(*array.Boolean)
		if !ok {
			return colval.Value{}, fmt.Errorf("%w: left operand of %q is not boolean", errs.ErrNoBooleanArrayForFilter, b.Name)
		}
		rightBool, ok := rightArr.(*array.Boolean)
		if !ok {
			return colval.Value{}, fmt.Errorf("%w: right operand of %q is not boolean", errs.ErrNoBooleanArrayForFilter, b.Name)
		}
		res, err := kernels.Logical(pool, kernels.BoolOp(b.Op), leftBool, rightBool)
		if err != nil {
			return colval.Value{}, err
		}
		return colval.FromArray(res), nil
	default:
		return colval.Value{}, fmt.Errorf("%w: unknown binary expression kind", errs.ErrPhysicalExpressionNotSupported)
	}
}
