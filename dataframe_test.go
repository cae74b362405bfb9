package goquery_test

import (
	"context"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowquery/goquery"
	"github.com/arrowquery/goquery/datasource"
	"github.com/arrowquery/goquery/logicalplan"
)

func personSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "country", Type: arrow.BinaryTypes.String},
		{Name: "salary", Type: arrow.PrimitiveTypes.Int32},
	}, nil)
}

func personRecord(pool memory.Allocator) arrow.Record {
	names := array.NewStringBuilder(pool)
	names.AppendValues([]string{"Ada", "Grace", "Linus", "Barbara", "Margaret"}, nil)
	countries := array.NewStringBuilder(pool)
	countries.AppendValues([]string{"UK", "US", "US", "US", "US"}, nil)
	salaries := array.NewInt32Builder(pool)
	salaries.AppendValues([]int32{100, 200, 150, 300, 250}, nil)

	cols := []arrow.Array{
		names.NewStringArray(),
		countries.NewStringArray(),
		salaries.NewInt32Array(),
	}
	rec := array.NewRecord(personSchema(), cols, 5)
	for _, c := range cols {
		c.Release()
	}
	return rec
}

func TestDataFrameCollectFiltersAndProjects(t *testing.T) {
	pool := memory.NewGoAllocator()
	src := datasource.NewMemorySource(personSchema(), personRecord(pool))
	engine := goquery.NewEngine(goquery.WithAllocator(pool))

	df := engine.Scan(src).
		Filter(logicalplan.Col("country").Eq(logicalplan.LitString("US"))).
		Project(logicalplan.Col("name"))

	batches, err := df.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	defer batches[0].Release()

	assert.Equal(t, int64(1), batches[0].NumCols())
	assert.Equal(t, int64(4), batches[0].NumRows())

	names := batches[0].Column(0).(*array.String)
	assert.Equal(t, "Grace", names.Value(0))
}

func TestDataFrameAggregateGroupsByColumn(t *testing.T) {
	pool := memory.NewGoAllocator()
	src := datasource.NewMemorySource(personSchema(), personRecord(pool))
	engine := goquery.NewEngine(goquery.WithAllocator(pool))

	df := engine.Scan(src).Aggregate(
		[]logicalplan.Expr{logicalplan.Col("country")},
		[]*logicalplan.AggregateExpr{
			logicalplan.Sum(logicalplan.Col("salary")),
			logicalplan.Count(logicalplan.Col("salary")),
		},
	)

	batches, err := df.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	defer batches[0].Release()

	assert.Equal(t, int64(2), batches[0].NumRows())
	sc := batches[0].Schema()
	assert.Equal(t, "country", sc.Field(0).Name)
	assert.Equal(t, "sum(salary)", sc.Field(1).Name)
	assert.Equal(t, "count(salary)", sc.Field(2).Name)
}

func TestDataFrameExecuteStopsOnCallbackError(t *testing.T) {
	pool := memory.NewGoAllocator()
	src := datasource.NewMemorySource(personSchema(), personRecord(pool))
	engine := goquery.NewEngine(goquery.WithAllocator(pool))

	boom := assert.AnError
	err := engine.Scan(src).Execute(context.Background(), func(r arrow.Record) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestDataFrameSchemaWithoutExecuting(t *testing.T) {
	pool := memory.NewGoAllocator()
	src := datasource.NewMemorySource(personSchema(), personRecord(pool))
	engine := goquery.NewEngine(goquery.WithAllocator(pool))

	sc, err := engine.Scan(src).Project(logicalplan.Col("name")).Schema()
	require.NoError(t, err)
	require.Equal(t, 1, sc.NumFields())
	assert.Equal(t, "name", sc.Field(0).Name)
}
