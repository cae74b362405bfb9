package logicalplan

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/arrowquery/goquery/datasource"
	"github.com/arrowquery/goquery/schema"
)

// Plan is the closed logical plan algebra: Scan, Projection, Selection and
// Aggregate. Every variant derives its own output schema from its input(s).
type Plan interface {
	fmt.Stringer

	// Schema returns this node's output schema.
	Schema() (*arrow.Schema, error)

	// Input returns this node's single child, or nil for a leaf (Scan).
	Input() Plan
}

// Scan reads all or a projected subset of a data source's columns.
type Scan struct {
	Source     datasource.Source
	Projection []string // nil means all columns
}

func NewScan(src datasource.Source, projection []string) *Scan {
	return &Scan{Source: src, Projection: projection}
}

func (s *Scan) Input() Plan { return nil }

func (s *Scan) Schema() (*arrow.Schema, error) {
	full := s.Source.Schema()
	if s.Projection == nil {
		return full, nil
	}
	names := make(map[string]struct{}, len(s.Projection))
	for _, n := range s.Projection {
		names[n] = struct{}{}
	}
	return schema.Project(full, names), nil
}

func (s *Scan) String() string {
	if s.Projection == nil {
		return "Scan"
	}
	return fmt.Sprintf("Scan: %s", strings.Join(s.Projection, ", "))
}

// Projection evaluates a fixed list of expressions against its input,
// producing one output column per expression.
type Projection struct {
	Child Plan
	Exprs []Expr
}

func NewProjection(child Plan, exprs []Expr) *Projection {
	return &Projection{Child: child, Exprs: exprs}
}

func (p *Projection) Input() Plan { return p.Child }

func (p *Projection) Schema() (*arrow.Schema, error) {
	inputSchema, err := p.Child.Schema()
	if err != nil {
		return nil, err
	}
	fields := make([]arrow.Field, len(p.Exprs))
	for i, e := range p.Exprs {
		f, err := e.ToField(inputSchema)
		if err != nil {
			return nil, fmt.Errorf("projection expr %d: %w", i, err)
		}
		fields[i] = f
	}
	return arrow.NewSchema(fields, nil), nil
}

func (p *Projection) String() string {
	names := make([]string, len(p.Exprs))
	for i, e := range p.Exprs {
		names[i] = e.String()
	}
	return fmt.Sprintf("Projection: %s", strings.Join(names, ", "))
}

// Selection filters its input's rows by a boolean-valued predicate. It never
// changes the schema.
type Selection struct {
	Child     Plan
	Predicate Expr
}

func NewSelection(child Plan, predicate Expr) *Selection {
	return &Selection{Child: child, Predicate: predicate}
}

func (s *Selection) Input() Plan { return s.Child }

func (s *Selection) Schema() (*arrow.Schema, error) {
	return s.Child.Schema()
}

func (s *Selection) String() string {
	return fmt.Sprintf("Selection: %s", s.Predicate)
}

// Aggregate groups its input by GroupBy and reduces each group with
// Aggregates. An empty GroupBy produces a single group over the whole input.
type Aggregate struct {
	Child      Plan
	GroupBy    []Expr
	Aggregates []*AggregateExpr
}

func NewAggregate(child Plan, groupBy []Expr, aggregates []*AggregateExpr) *Aggregate {
	return &Aggregate{Child: child, GroupBy: groupBy, Aggregates: aggregates}
}

func (a *Aggregate) Input() Plan { return a.Child }

// Schema orders group-by fields first, then aggregate fields.
func (a *Aggregate) Schema() (*arrow.Schema, error) {
	inputSchema, err := a.Child.Schema()
	if err != nil {
		return nil, err
	}
	fields := make([]arrow.Field, 0, len(a.GroupBy)+len(a.Aggregates))
	for i, e := range a.GroupBy {
		f, err := e.ToField(inputSchema)
		if err != nil {
			return nil, fmt.Errorf("group-by expr %d: %w", i, err)
		}
		fields = append(fields, f)
	}
	for i, agg := range a.Aggregates {
		f, err := agg.ToField(inputSchema)
		if err != nil {
			return nil, fmt.Errorf("aggregate expr %d: %w", i, err)
		}
		fields = append(fields, f)
	}
	return arrow.NewSchema(fields, nil), nil
}

func (a *Aggregate) String() string {
	groups := make([]string, len(a.GroupBy))
	for i, e := range a.GroupBy {
		groups[i] = e.String()
	}
	aggs := make([]string, len(a.Aggregates))
	for i, e := range a.Aggregates {
		aggs[i] = e.String()
	}
	return fmt.Sprintf("Aggregate: groupBy=[%s] aggregates=[%s]", strings.Join(groups, ", "), strings.Join(aggs, ", "))
}

// Children walks a plan's immediate child list; useful for generic visitors
// over the tree (optimizer, Explain).
func Children(p Plan) []Plan {
	if in := p.Input(); in != nil {
		return []Plan{in}
	}
	return nil
}
