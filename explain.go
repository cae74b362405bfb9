package goquery

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/arrowquery/goquery/logicalplan"
)

// Explain renders the frame's optimized logical plan as an indented tree,
// one line per node, annotated with the number of fields in each node's
// output schema. It never executes the query.
func (df *DataFrame) Explain() (string, error) {
	plan := df.build.Build()
	var b strings.Builder
	if err := explainNode(&b, plan, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func explainNode(b *strings.Builder, plan logicalplan.Plan, depth int) error {
	sc, err := plan.Schema()
	if err != nil {
		return fmt.Errorf("explain: %w", err)
	}

	fmt.Fprintf(b, "%s%s (%s fields)\n", strings.Repeat("  ", depth), plan, humanize.Comma(int64(len(sc.Fields()))))

	switch p := plan.(type) {
	case *logicalplan.Scan:
		return nil
	case *logicalplan.Projection:
		return explainNode(b, p.Child, depth+1)
	case *logicalplan.Selection:
		return explainNode(b, p.Child, depth+1)
	case *logicalplan.Aggregate:
		return explainNode(b, p.Child, depth+1)
	default:
		return nil
	}
}
