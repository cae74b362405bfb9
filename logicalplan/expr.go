// Package logicalplan implements the logical expression algebra and logical
// plan tree: a closed sum type over columns, literals, comparisons, boolean
// ops, arithmetic and unary aggregates, composed into Scan/Projection/
// Selection/Aggregate plan nodes that each derive their own output schema.
package logicalplan

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/arrowquery/goquery/errs"
)

// Expr is the closed logical expression algebra.
type Expr interface {
	fmt.Stringer

	// ToField infers the output field this expression produces when
	// evaluated against a plan with the given schema.
	ToField(schema *arrow.Schema) (arrow.Field, error)

	// ColumnsUsed returns the set of column names this expression, and any
	// of its children, reference.
	ColumnsUsed() []string
}

// Column references a field of the child plan by name.
type Column struct {
	ColumnName string
}

func Col(name string) *Column { return &Column{ColumnName: name} }

func (c *Column) String() string { return c.ColumnName }

func (c *Column) ToField(schema *arrow.Schema) (arrow.Field, error) {
	idx := schema.FieldIndices(c.ColumnName)
	if len(idx) == 0 {
		return arrow.Field{}, fmt.Errorf("%w: %q", errs.ErrNoField, c.ColumnName)
	}
	return schema.Field(idx[0]), nil
}

func (c *Column) ColumnsUsed() []string { return []string{c.ColumnName} }

// Literal variants. Each owns a single Go value of the matching type.

type LiteralBool struct{ Value bool }

func LitBool(v bool) *LiteralBool { return &LiteralBool{Value: v} }

func (l *LiteralBool) String() string { return strconv.FormatBool(l.Value) }

func (l *LiteralBool) ToField(*arrow.Schema) (arrow.Field, error) {
	return arrow.Field{Name: l.String(), Type: arrow.FixedWidthTypes.Boolean}, nil
}

func (l *LiteralBool) ColumnsUsed() []string { return nil }

type LiteralString struct{ Value string }

func LitString(v string) *LiteralString { return &LiteralString{Value: v} }

func (l *LiteralString) String() string { return l.Value }

func (l *LiteralString) ToField(*arrow.Schema) (arrow.Field, error) {
	return arrow.Field{Name: l.String(), Type: arrow.BinaryTypes.String}, nil
}

func (l *LiteralString) ColumnsUsed() []string { return nil }

type LiteralInteger struct{ Value int32 }

func LitInt(v int32) *LiteralInteger { return &LiteralInteger{Value: v} }

func (l *LiteralInteger) String() string { return strconv.FormatInt(int64(l.Value), 10) }

func (l *LiteralInteger) ToField(*arrow.Schema) (arrow.Field, error) {
	return arrow.Field{Name: l.String(), Type: arrow.PrimitiveTypes.Int32}, nil
}

func (l *LiteralInteger) ColumnsUsed() []string { return nil }

type LiteralFloat struct{ Value float64 }

func LitFloat(v float64) *LiteralFloat { return &LiteralFloat{Value: v} }

func (l *LiteralFloat) String() string { return strconv.FormatFloat(l.Value, 'g', -1, 64) }

// ToField always infers Float64; a float literal should never be typed as
// a string column.
func (l *LiteralFloat) ToField(*arrow.Schema) (arrow.Field, error) {
	return arrow.Field{Name: l.String(), Type: arrow.PrimitiveTypes.Float64}, nil
}

func (l *LiteralFloat) ColumnsUsed() []string { return nil }

// Op is the closed set of binary operators shared by comparison, boolean and
// arithmetic expressions.
type Op uint8

const (
	OpUnknown Op = iota
	OpEq
	OpNeq
	OpGt
	OpGtEq
	OpLt
	OpLtEq
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		return "unknown"
	}
}

// CanonicalName is the inferred field name for a comparison or boolean
// expression ("eq", "neq", "gt", ...).
func (o Op) CanonicalName() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNeq:
		return "neq"
	case OpGt:
		return "gt"
	case OpGtEq:
		return "gteq"
	case OpLt:
		return "lt"
	case OpLtEq:
		return "lteq"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	default:
		return "unknown"
	}
}

func (o Op) isComparisonOrBoolean() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGtEq, OpLt, OpLtEq, OpAnd, OpOr:
		return true
	default:
		return false
	}
}

// BinaryExpr covers comparisons (Eq/Neq/Gt/GtEq/Lt/LtEq), boolean ops
// (And/Or) and arithmetic (Add/Sub/Mul/Div/Mod) — one Go type for the whole
// closed family of binary logical-expression variants, dispatched by Op.
type BinaryExpr struct {
	Left  Expr
	Op    Op
	Right Expr
}

func binary(op Op, left, right Expr) *BinaryExpr {
	return &BinaryExpr{Left: left, Op: op, Right: right}
}

func Eq(left, right Expr) *BinaryExpr    { return binary(OpEq, left, right) }
func Neq(left, right Expr) *BinaryExpr   { return binary(OpNeq, left, right) }
func Gt(left, right Expr) *BinaryExpr    { return binary(OpGt, left, right) }
func GtEq(left, right Expr) *BinaryExpr  { return binary(OpGtEq, left, right) }
func Lt(left, right Expr) *BinaryExpr    { return binary(OpLt, left, right) }
func LtEq(left, right Expr) *BinaryExpr  { return binary(OpLtEq, left, right) }
func And(left, right Expr) *BinaryExpr   { return binary(OpAnd, left, right) }
func Or(left, right Expr) *BinaryExpr    { return binary(OpOr, left, right) }
func Add(left, right Expr) *BinaryExpr   { return binary(OpAdd, left, right) }
func Sub(left, right Expr) *BinaryExpr   { return binary(OpSub, left, right) }
func Mul(left, right Expr) *BinaryExpr   { return binary(OpMul, left, right) }
func Div(left, right Expr) *BinaryExpr   { return binary(OpDiv, left, right) }
func Mod(left, right Expr) *BinaryExpr   { return binary(OpMod, left, right) }

// Fluent chaining methods: eq/neq/gt/gteq/lt/lteq/and/or.
func (e *BinaryExpr) Eq(right Expr) *BinaryExpr   { return Eq(e, right) }
func (e *BinaryExpr) Neq(right Expr) *BinaryExpr  { return Neq(e, right) }
func (e *BinaryExpr) Gt(right Expr) *BinaryExpr   { return Gt(e, right) }
func (e *BinaryExpr) GtEq(right Expr) *BinaryExpr { return GtEq(e, right) }
func (e *BinaryExpr) Lt(right Expr) *BinaryExpr   { return Lt(e, right) }
func (e *BinaryExpr) LtEq(right Expr) *BinaryExpr { return LtEq(e, right) }
func (e *BinaryExpr) And(right Expr) *BinaryExpr  { return And(e, right) }
func (e *BinaryExpr) Or(right Expr) *BinaryExpr   { return Or(e, right) }

func (c *Column) Eq(right Expr) *BinaryExpr   { return Eq(c, right) }
func (c *Column) Neq(right Expr) *BinaryExpr  { return Neq(c, right) }
func (c *Column) Gt(right Expr) *BinaryExpr   { return Gt(c, right) }
func (c *Column) GtEq(right Expr) *BinaryExpr { return GtEq(c, right) }
func (c *Column) Lt(right Expr) *BinaryExpr   { return Lt(c, right) }
func (c *Column) LtEq(right Expr) *BinaryExpr { return LtEq(c, right) }
func (c *Column) And(right Expr) *BinaryExpr  { return And(c, right) }
func (c *Column) Or(right Expr) *BinaryExpr   { return Or(c, right) }

func (e *BinaryExpr) String() string {
	return e.Left.String() + " " + e.Op.String() + " " + e.Right.String()
}

func (e *BinaryExpr) ToField(s *arrow.Schema) (arrow.Field, error) {
	if e.Op.isComparisonOrBoolean() {
		return arrow.Field{Name: e.Op.CanonicalName(), Type: arrow.FixedWidthTypes.Boolean}, nil
	}

	// Arithmetic: inherits the left operand's inferred type. A
	// type-mismatched right operand is not rejected here; that surfaces
	// later, at kernel dispatch time.
	left, err := e.Left.ToField(s)
	if err != nil {
		return arrow.Field{}, fmt.Errorf("left operand: %w", err)
	}
	return arrow.Field{
		Name: fmt.Sprintf("%s(%s, %s)", e.Op.CanonicalName(), e.Left.String(), e.Right.String()),
		Type: left.Type,
	}, nil
}

func (e *BinaryExpr) ColumnsUsed() []string {
	return append(e.Left.ColumnsUsed(), e.Right.ColumnsUsed()...)
}

// AggFunc is the closed set of unary aggregate expressions.
type AggFunc uint8

const (
	AggUnknown AggFunc = iota
	AggSum
	AggAvg
	AggMax
	AggMin
	AggCount
)

func (f AggFunc) String() string {
	switch f {
	case AggSum:
		return "sum"
	case AggAvg:
		return "avg"
	case AggMax:
		return "max"
	case AggMin:
		return "min"
	case AggCount:
		return "count"
	default:
		return "unknown"
	}
}

// AggregateExpr wraps one child expression with an aggregate function.
type AggregateExpr struct {
	Func AggFunc
	Expr Expr
}

func Sum(e Expr) *AggregateExpr   { return &AggregateExpr{Func: AggSum, Expr: e} }
func Avg(e Expr) *AggregateExpr   { return &AggregateExpr{Func: AggAvg, Expr: e} }
func Max(e Expr) *AggregateExpr   { return &AggregateExpr{Func: AggMax, Expr: e} }
func Min(e Expr) *AggregateExpr   { return &AggregateExpr{Func: AggMin, Expr: e} }
func Count(e Expr) *AggregateExpr { return &AggregateExpr{Func: AggCount, Expr: e} }

func (a *AggregateExpr) String() string {
	return fmt.Sprintf("%s(%s)", a.Func, a.Expr)
}

func (a *AggregateExpr) ToField(s *arrow.Schema) (arrow.Field, error) {
	if a.Func == AggCount {
		return arrow.Field{Name: a.String(), Type: arrow.PrimitiveTypes.Int64}, nil
	}

	argField, err := a.Expr.ToField(s)
	if err != nil {
		return arrow.Field{}, fmt.Errorf("aggregate argument: %w", err)
	}
	return arrow.Field{Name: a.String(), Type: argField.Type}, nil
}

func (a *AggregateExpr) ColumnsUsed() []string { return a.Expr.ColumnsUsed() }
