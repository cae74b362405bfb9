package logicalplan

// PushDownProjection walks the plan top-down, collecting the column names
// referenced by the Projection/Selection/Aggregate nodes above a Scan, and
// returns a copy of the tree whose Scan projection is the union of the Scan's
// original projection and those names. A Projection starts a fresh set,
// since the nodes above it reference its output columns rather than the
// Scan's. The input plan is left unchanged. This engine has no Distinct node
// or separate physical-projection concept to reconcile, so a single top-down
// pass covers the whole algebra.
func PushDownProjection(plan Plan) Plan {
	return pushDown(plan, nil)
}

func pushDown(plan Plan, used []string) Plan {
	switch p := plan.(type) {
	case *Scan:
		scan := *p
		if used != nil {
			scan.Projection = dedupe(append(append([]string{}, p.Projection...), used...))
		}
		return &scan
	case *Projection:
		var next []string
		for _, e := range p.Exprs {
			next = append(next, e.ColumnsUsed()...)
		}
		return &Projection{Child: pushDown(p.Child, next), Exprs: p.Exprs}
	case *Selection:
		next := append(append([]string{}, used...), p.Predicate.ColumnsUsed()...)
		return &Selection{Child: pushDown(p.Child, next), Predicate: p.Predicate}
	case *Aggregate:
		var next []string
		next = append(next, used...)
		for _, e := range p.GroupBy {
			next = append(next, e.ColumnsUsed()...)
		}
		for _, e := range p.Aggregates {
			next = append(next, e.ColumnsUsed()...)
		}
		return &Aggregate{Child: pushDown(p.Child, next), GroupBy: p.GroupBy, Aggregates: p.Aggregates}
	}
	return plan
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
