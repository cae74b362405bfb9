package physicalplan

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/scalar"

	"github.com/arrowquery/goquery/errs"
	"github.com/arrowquery/goquery/kernels"
	"github.com/arrowquery/goquery/logicalplan"
	"github.com/arrowquery/goquery/schema"
)

// Plan lowers a logical plan into an executable physical plan in one
// recursive pass: every column reference is resolved to an ordinal position
// against its input's schema, and every logical operator picks a concrete
// kernel over the full expression and aggregate algebra.
func Plan(logical logicalplan.Plan) (Plan, error) {
	switch p := logical.(type) {
	case *logicalplan.Scan:
		sc, err := p.Schema()
		if err != nil {
			return nil, err
		}
		return NewScanExec(p.Source, p.Projection, sc), nil

	case *logicalplan.Projection:
		inputSchema, err := p.Child.Schema()
		if err != nil {
			return nil, err
		}
		exprs := make([]Expr, len(p.Exprs))
		for i, e := range p.Exprs {
			pe, err := toPhysicalExpr(e, inputSchema)
			if err != nil {
				return nil, fmt.Errorf("projection expr %d: %w", i, err)
			}
			exprs[i] = pe
		}
		child, err := Plan(p.Child)
		if err != nil {
			return nil, err
		}
		outSchema, err := p.Schema()
		if err != nil {
			return nil, err
		}
		return NewProjectionExec(child, exprs, outSchema), nil

	case *logicalplan.Selection:
		inputSchema, err := p.Child.Schema()
		if err != nil {
			return nil, err
		}
		predicate, err := toPhysicalExpr(p.Predicate, inputSchema)
		if err != nil {
			return nil, fmt.Errorf("selection predicate: %w", err)
		}
		child, err := Plan(p.Child)
		if err != nil {
			return nil, err
		}
		outSchema, err := p.Schema()
		if err != nil {
			return nil, err
		}
		return NewSelectionExec(child, predicate, outSchema), nil

	case *logicalplan.Aggregate:
		inputSchema, err := p.Child.Schema()
		if err != nil {
			return nil, err
		}
		groupExprs := make([]Expr, len(p.GroupBy))
		for i, e := range p.GroupBy {
			pe, err := toPhysicalExpr(e, inputSchema)
			if err != nil {
				return nil, fmt.Errorf("group-by expr %d: %w", i, err)
			}
			groupExprs[i] = pe
		}
		aggExprs := make([]AggregateSpec, len(p.Aggregates))
		for i, agg := range p.Aggregates {
			spec, err := toPhysicalAggregateExpr(agg, inputSchema)
			if err != nil {
				return nil, fmt.Errorf("aggregate expr %d: %w", i, err)
			}
			aggExprs[i] = spec
		}
		child, err := Plan(p.Child)
		if err != nil {
			return nil, err
		}
		outSchema, err := p.Schema()
		if err != nil {
			return nil, err
		}
		return NewAggregateExec(child, groupExprs, aggExprs, outSchema), nil

	default:
		return nil, fmt.Errorf("%w: %T", errs.ErrPhysicalPlanNotSupported, logical)
	}
}

// toPhysicalExpr lowers one logical expression against its input's schema.
func toPhysicalExpr(e logicalplan.Expr, inputSchema *arrow.Schema) (Expr, error) {
	switch le := e.(type) {
	case *logicalplan.Column:
		idx := schema.IndexOf(inputSchema, le.ColumnName)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", errs.ErrNoField, le.ColumnName)
		}
		return NewColumnExpr(idx, le.ColumnName), nil

	case *logicalplan.LiteralBool:
		return NewLiteralExpr(scalar.MakeScalar(le.Value)), nil
	case *logicalplan.LiteralString:
		return NewLiteralExpr(scalar.MakeScalar(le.Value)), nil
	case *logicalplan.LiteralInteger:
		return NewLiteralExpr(scalar.MakeScalar(le.Value)), nil
	case *logicalplan.LiteralFloat:
		return NewLiteralExpr(scalar.MakeScalar(le.Value)), nil

	case *logicalplan.BinaryExpr:
		left, err := toPhysicalExpr(le.Left, inputSchema)
		if err != nil {
			return nil, fmt.Errorf("left operand: %w", err)
		}
		right, err := toPhysicalExpr(le.Right, inputSchema)
		if err != nil {
			return nil, fmt.Errorf("right operand: %w", err)
		}
		kind, op, err := lowerOp(le.Op)
		if err != nil {
			return nil, err
		}
		return NewBinaryExpr(left, kind, op, right, le.String()), nil

	default:
		return nil, fmt.Errorf("%w: %T", errs.ErrPhysicalExpressionNotSupported, e)
	}
}

// toPhysicalAggregateExpr lowers one logical aggregate expression, accepting
// the full AggFunc algebra (Sum/Avg/Max/Min/Count).
func toPhysicalAggregateExpr(agg *logicalplan.AggregateExpr, inputSchema *arrow.Schema) (AggregateSpec, error) {
	input, err := toPhysicalExpr(agg.Expr, inputSchema)
	if err != nil {
		return AggregateSpec{}, fmt.Errorf("aggregate argument: %w", err)
	}

	var fn AggFunc
	switch agg.Func {
	case logicalplan.AggSum:
		fn = AggSum
	case logicalplan.AggAvg:
		fn = AggAvg
	case logicalplan.AggMax:
		fn = AggMax
	case logicalplan.AggMin:
		fn = AggMin
	case logicalplan.AggCount:
		fn = AggCount
	default:
		return AggregateSpec{}, fmt.Errorf("%w: aggregate function %s", errs.ErrPhysicalExpressionNotSupported, agg.Func)
	}

	return AggregateSpec{Func: fn, Input: input, Name: agg.String()}, nil
}

func lowerOp(op logicalplan.Op) (BinaryExprKind, uint8, error) {
	switch op {
	case logicalplan.OpEq:
		return KindCompare, uint8(kernels.CmpEq), nil
	case logicalplan.OpNeq:
		return KindCompare, uint8(kernels.CmpNeq), nil
	case logicalplan.OpGt:
		return KindCompare, uint8(kernels.CmpGt), nil
	case logicalplan.OpGtEq:
		return KindCompare, uint8(kernels.CmpGtEq), nil
	case logicalplan.OpLt:
		return KindCompare, uint8(kernels.CmpLt), nil
	case logicalplan.OpLtEq:
		return KindCompare, uint8(kernels.CmpLtEq), nil
	case logicalplan.OpAnd:
		return KindBoolean, uint8(kernels.BoolAnd), nil
	case logicalplan.OpOr:
		return KindBoolean, uint8(kernels.BoolOr), nil
	case logicalplan.OpAdd:
		return KindArithmetic, uint8(kernels.ArithAdd), nil
	case logicalplan.OpSub:
		return KindArithmetic, uint8(kernels.ArithSub), nil
	case logicalplan.OpMul:
		return KindArithmetic, uint8(kernels.ArithMul), nil
	case logicalplan.OpDiv:
		return KindArithmetic, uint8(kernels.ArithDiv), nil
	case logicalplan.OpMod:
		return KindArithmetic, uint8(kernels.ArithMod), nil
	default:
		return 0, 0, fmt.Errorf("%w: operator %s", errs.ErrPhysicalExpressionNotSupported, op)
	}
}
