package physicalplan_test

import (
	"context"
	"io"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowquery/goquery/datasource"
	"github.com/arrowquery/goquery/logicalplan"
	"github.com/arrowquery/goquery/physicalplan"
)

func peopleSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "first_name", Type: arrow.BinaryTypes.String},
		{Name: "country", Type: arrow.BinaryTypes.String},
		{Name: "salary", Type: arrow.PrimitiveTypes.Int32},
	}, nil)
}

func peopleRecord(pool memory.Allocator) arrow.Record {
	names := array.NewStringBuilder(pool)
	names.AppendValues([]string{"Ada", "Grace", "Linus", "Barbara"}, nil)
	countries := array.NewStringBuilder(pool)
	countries.AppendValues([]string{"UK", "US", "US", "US"}, nil)
	salaries := array.NewInt32Builder(pool)
	salaries.AppendValues([]int32{100, 200, 150, 300}, nil)

	return array.NewRecord(peopleSchema(), []arrow.Array{
		names.NewStringArray(),
		countries.NewStringArray(),
		salaries.NewInt32Array(),
	}, 4)
}

func boolValues(a *array.Boolean) []bool {
	out := make([]bool, a.Len())
	for i := 0; i < a.Len(); i++ {
		out[i] = a.Value(i)
	}
	return out
}

func drain(t *testing.T, iter datasource.BatchIter) []arrow.Record {
	t.Helper()
	var out []arrow.Record
	for {
		rec, err := iter.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestScanExecPassesThroughSource(t *testing.T) {
	pool := memory.NewGoAllocator()
	src := datasource.NewMemorySource(peopleSchema(), peopleRecord(pool))
	scan := physicalplan.NewScanExec(src, nil, peopleSchema())

	iter, err := scan.Execute(context.Background(), pool)
	require.NoError(t, err)

	batches := drain(t, iter)
	require.Len(t, batches, 1)
	assert.Equal(t, int64(4), batches[0].NumRows())
}

func TestProjectionSelectionAggregateEndToEnd(t *testing.T) {
	pool := memory.NewGoAllocator()
	src := datasource.NewMemorySource(peopleSchema(), peopleRecord(pool))

	logical := logicalplan.Scan(src).
		Filter(logicalplan.Eq(logicalplan.Col("country"), logicalplan.LitString("US"))).
		Aggregate(
			[]logicalplan.Expr{logicalplan.Col("country")},
			[]*logicalplan.AggregateExpr{logicalplan.Sum(logicalplan.Col("salary"))},
		).
		Build()

	phys, err := physicalplan.Plan(logical)
	require.NoError(t, err)

	iter, err := phys.Execute(context.Background(), pool)
	require.NoError(t, err)

	batches := drain(t, iter)
	require.Len(t, batches, 1)
	require.Equal(t, int64(1), batches[0].NumRows())

	countryCol := batches[0].Column(0).(*array.String)
	sumCol := batches[0].Column(1).(*array.Int32)
	assert.Equal(t, "US", countryCol.Value(0))
	assert.Equal(t, int32(650), sumCol.Value(0))
}

func TestSelectionFiltersRows(t *testing.T) {
	pool := memory.NewGoAllocator()
	src := datasource.NewMemorySource(peopleSchema(), peopleRecord(pool))

	logical := logicalplan.Scan(src).
		Filter(logicalplan.Gt(logicalplan.Col("salary"), logicalplan.LitInt(150))).
		Build()

	phys, err := physicalplan.Plan(logical)
	require.NoError(t, err)

	iter, err := phys.Execute(context.Background(), pool)
	require.NoError(t, err)

	batches := drain(t, iter)
	require.Len(t, batches, 1)
	assert.Equal(t, int64(2), batches[0].NumRows())
}

func TestProjectionPushDownRestrictsScanColumns(t *testing.T) {
	pool := memory.NewGoAllocator()
	src := datasource.NewMemorySource(peopleSchema(), peopleRecord(pool))

	logical := logicalplan.Scan(src).
		Project(logicalplan.Col("first_name")).
		Build()

	phys, err := physicalplan.Plan(logical)
	require.NoError(t, err)

	iter, err := phys.Execute(context.Background(), pool)
	require.NoError(t, err)

	batches := drain(t, iter)
	require.Len(t, batches, 1)
	assert.Equal(t, int64(1), batches[0].NumCols())
}
