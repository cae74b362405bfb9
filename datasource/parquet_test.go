package datasource_test

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowquery/goquery/datasource"
)

type employeeRow struct {
	ID     int32   `parquet:"id"`
	Name   string  `parquet:"name"`
	Salary float64 `parquet:"salary"`
	Active bool    `parquet:"active"`
}

func writeTempParquet(t *testing.T, rows []employeeRow) string {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "employees-*.parquet")
	require.NoError(t, err)
	defer f.Close()

	w := parquet.NewGenericWriter[employeeRow](f)
	_, err = w.Write(rows)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return f.Name()
}

func sampleEmployees() []employeeRow {
	return []employeeRow{
		{ID: 1, Name: "Ada", Salary: 100.5, Active: true},
		{ID: 2, Name: "Grace", Salary: 200.25, Active: false},
		{ID: 3, Name: "Linus", Salary: 150, Active: true},
	}
}

func TestOpenParquetDerivesArrowSchema(t *testing.T) {
	path := writeTempParquet(t, sampleEmployees())

	src, err := datasource.OpenParquet(path)
	require.NoError(t, err)

	sc := src.Schema()
	names := make([]string, sc.NumFields())
	for i := 0; i < sc.NumFields(); i++ {
		names[i] = sc.Field(i).Name
	}
	assert.ElementsMatch(t, []string{"id", "name", "salary", "active"}, names)

	idField, found := sc.FieldsByName("id")
	require.True(t, found)
	assert.Equal(t, arrow.PrimitiveTypes.Int32, idField[0].Type)

	salaryField, found := sc.FieldsByName("salary")
	require.True(t, found)
	assert.Equal(t, arrow.PrimitiveTypes.Float64, salaryField[0].Type)
}

func TestParquetSourceScansAllRows(t *testing.T) {
	path := writeTempParquet(t, sampleEmployees())

	src, err := datasource.OpenParquet(path, datasource.WithBatchSize(2))
	require.NoError(t, err)

	iter, err := src.Scan(context.Background(), nil)
	require.NoError(t, err)

	var total int64
	for {
		rec, err := iter.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		total += rec.NumRows()
	}
	assert.Equal(t, int64(3), total)
}

func TestParquetSourceProjectsColumns(t *testing.T) {
	path := writeTempParquet(t, sampleEmployees())

	src, err := datasource.OpenParquet(path)
	require.NoError(t, err)

	iter, err := src.Scan(context.Background(), []string{"name"})
	require.NoError(t, err)

	rec, err := iter.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.NumCols())
	assert.Equal(t, "name", rec.Schema().Field(0).Name)

	col := rec.Column(0).(*array.String)
	assert.Equal(t, "Ada", col.Value(0))
}

func TestParquetSourceProjectionOutOfOrderKeepsColumnsAlignedToSchema(t *testing.T) {
	path := writeTempParquet(t, sampleEmployees())

	src, err := datasource.OpenParquet(path)
	require.NoError(t, err)

	// Requested out of source order (source order is id, name, salary,
	// active). The output schema must stay in source order, and each
	// column's data must match its own field.
	iter, err := src.Scan(context.Background(), []string{"salary", "id", "name"})
	require.NoError(t, err)

	rec, err := iter.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), rec.NumCols())

	sc := rec.Schema()
	require.Equal(t, "id", sc.Field(0).Name)
	require.Equal(t, "name", sc.Field(1).Name)
	require.Equal(t, "salary", sc.Field(2).Name)

	idCol := rec.Column(0).(*array.Int32)
	nameCol := rec.Column(1).(*array.String)
	salaryCol := rec.Column(2).(*array.Float64)
	assert.Equal(t, int32(1), idCol.Value(0))
	assert.Equal(t, "Ada", nameCol.Value(0))
	assert.Equal(t, 100.5, salaryCol.Value(0))
}

func TestParquetSourceUnknownProjectionColumnErrors(t *testing.T) {
	path := writeTempParquet(t, sampleEmployees())

	src, err := datasource.OpenParquet(path)
	require.NoError(t, err)

	_, err = src.Scan(context.Background(), []string{"nope"})
	assert.Error(t, err)
}
