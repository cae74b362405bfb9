package logicalplan

import "github.com/arrowquery/goquery/datasource"

// Builder is a fluent, immutable wrapper over Plan: every method returns a
// new Builder wrapping a new Plan node with the receiver's plan as its
// child.
type Builder struct {
	plan Plan
}

// Scan starts a new Builder reading from src, with no projection.
func Scan(src datasource.Source) Builder {
	return Builder{plan: NewScan(src, nil)}
}

// Project applies a fixed list of expressions on top of the current plan.
func (b Builder) Project(exprs ...Expr) Builder {
	return Builder{plan: NewProjection(b.plan, exprs)}
}

// Filter applies a boolean-valued predicate on top of the current plan.
func (b Builder) Filter(predicate Expr) Builder {
	return Builder{plan: NewSelection(b.plan, predicate)}
}

// Aggregate groups the current plan by groupBy and reduces with aggregates.
func (b Builder) Aggregate(groupBy []Expr, aggregates []*AggregateExpr) Builder {
	return Builder{plan: NewAggregate(b.plan, groupBy, aggregates)}
}

// Build returns the constructed plan, with projection pushdown applied.
func (b Builder) Build() Plan {
	return PushDownProjection(b.plan)
}
