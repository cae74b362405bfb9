package logicalplan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowquery/goquery/datasource"
	"github.com/arrowquery/goquery/logicalplan"
)

func TestScanSchemaDefaultsToSourceSchema(t *testing.T) {
	sc := testSchema()
	src := datasource.NewMemorySource(sc)
	scan := logicalplan.NewScan(src, nil)

	got, err := scan.Schema()
	require.NoError(t, err)
	assert.True(t, got.Equal(sc))
}

func TestScanSchemaHonorsProjection(t *testing.T) {
	sc := testSchema()
	src := datasource.NewMemorySource(sc)
	scan := logicalplan.NewScan(src, []string{"salary"})

	got, err := scan.Schema()
	require.NoError(t, err)
	require.Equal(t, 1, len(got.Fields()))
	assert.Equal(t, "salary", got.Field(0).Name)
}

func TestProjectionSchemaDerivesFromExprs(t *testing.T) {
	sc := testSchema()
	src := datasource.NewMemorySource(sc)
	scan := logicalplan.NewScan(src, nil)
	proj := logicalplan.NewProjection(scan, []logicalplan.Expr{logicalplan.Col("salary")})

	got, err := proj.Schema()
	require.NoError(t, err)
	require.Equal(t, 1, len(got.Fields()))
	assert.Equal(t, "salary", got.Field(0).Name)
}

func TestSelectionSchemaPassesThrough(t *testing.T) {
	sc := testSchema()
	src := datasource.NewMemorySource(sc)
	scan := logicalplan.NewScan(src, nil)
	sel := logicalplan.NewSelection(scan, logicalplan.Gt(logicalplan.Col("salary"), logicalplan.LitInt(0)))

	got, err := sel.Schema()
	require.NoError(t, err)
	assert.True(t, got.Equal(sc))
}

func TestAggregateSchemaOrdersGroupThenAggregate(t *testing.T) {
	sc := testSchema()
	src := datasource.NewMemorySource(sc)
	scan := logicalplan.NewScan(src, nil)
	agg := logicalplan.NewAggregate(
		scan,
		[]logicalplan.Expr{logicalplan.Col("first_name")},
		[]*logicalplan.AggregateExpr{logicalplan.Sum(logicalplan.Col("salary"))},
	)

	got, err := agg.Schema()
	require.NoError(t, err)
	require.Equal(t, 2, len(got.Fields()))
	assert.Equal(t, "first_name", got.Field(0).Name)
	assert.Equal(t, "sum(salary)", got.Field(1).Name)
}

func TestPushDownProjectionSetsScanColumns(t *testing.T) {
	sc := testSchema()
	src := datasource.NewMemorySource(sc)
	plan := logicalplan.Scan(src).
		Filter(logicalplan.Gt(logicalplan.Col("salary"), logicalplan.LitInt(0))).
		Project(logicalplan.Col("first_name")).
		Build()

	proj, ok := plan.(*logicalplan.Projection)
	require.True(t, ok)
	sel, ok := proj.Child.(*logicalplan.Selection)
	require.True(t, ok)
	scan, ok := sel.Child.(*logicalplan.Scan)
	require.True(t, ok)

	// salary is still pushed down even though it isn't in the final
	// projection, since the Selection above the Scan needs it to filter.
	assert.ElementsMatch(t, []string{"first_name", "salary"}, scan.Projection)
}

func TestPushDownProjectionUnionsWithScansOriginalProjection(t *testing.T) {
	sc := testSchema()
	src := datasource.NewMemorySource(sc)
	// The Scan already carries its own projection; wrap it in a Projection
	// that references none of it.
	scan := logicalplan.NewScan(src, []string{"salary"})

	built := logicalplan.PushDownProjection(logicalplan.NewProjection(scan, []logicalplan.Expr{logicalplan.Col("first_name")}))

	proj, ok := built.(*logicalplan.Projection)
	require.True(t, ok)
	gotScan, ok := proj.Child.(*logicalplan.Scan)
	require.True(t, ok)

	// salary was on the Scan's original projection and must survive the
	// pushdown union even though nothing above the Scan references it.
	assert.ElementsMatch(t, []string{"salary", "first_name"}, gotScan.Projection)
}
