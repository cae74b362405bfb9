package datasource

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/parquet-go/parquet-go"

	"github.com/arrowquery/goquery/errs"
)

// ParquetSource reads a flat (non-nested, non-dynamic) parquet file as an
// Arrow-columnar Source. It supports exactly the four physical types the
// engine's kernels understand: Int32, Float64, Utf8 and Bool — the parquet
// equivalents are Int32, Double, ByteArray/String and Boolean respectively.
// Row conversion here runs the opposite direction of a typical Arrow-to-
// parquet writer: rather than flattening a record into rows, ParquetSource
// reassembles parquet rows back into arrow.Record batches, trimmed to a flat
// schema since this engine has no dynamic-column concept.
type ParquetSource struct {
	path       string
	schema     *arrow.Schema
	pqSchema   *parquet.Schema
	batchSize  int
	allocator  memory.Allocator
}

// ParquetOption configures a ParquetSource.
type ParquetOption func(*ParquetSource)

// WithBatchSize overrides the default read batch size of 1024 rows.
func WithBatchSize(n int) ParquetOption {
	return func(p *ParquetSource) { p.batchSize = n }
}

// WithAllocator overrides the default Arrow allocator used to build batches.
func WithAllocator(mem memory.Allocator) ParquetOption {
	return func(p *ParquetSource) { p.allocator = mem }
}

// OpenParquet opens path and derives its Arrow schema from the parquet file's
// own schema. The file is closed again before OpenParquet returns; each Scan
// reopens it and reads from the start.
func OpenParquet(path string, opts ...ParquetOption) (*ParquetSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrDataSource, err)
	}

	fields, err := arrowFieldsFromParquet(pf.Schema())
	if err != nil {
		f.Close()
		return nil, err
	}
	f.Close()

	p := &ParquetSource{
		path:      path,
		schema:    arrow.NewSchema(fields, nil),
		pqSchema:  pf.Schema(),
		batchSize: 1024,
		allocator: memory.NewGoAllocator(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *ParquetSource) Schema() *arrow.Schema { return p.schema }

func (p *ParquetSource) Scan(ctx context.Context, projection []string) (BatchIter, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrDataSource, err)
	}

	outSchema := p.schema
	indices, projected, err := projectionIndices(p.schema, projection)
	if err != nil {
		f.Close()
		return nil, err
	}
	if projected != nil {
		outSchema = projected
	}

	reader := parquet.NewReader(pf, p.pqSchema)
	rows := make([]parquet.Row, p.batchSize)
	closed := false

	return BatchIterFunc(func(ctx context.Context) (arrow.Record, error) {
		if closed {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := reader.ReadRows(rows)
		if n == 0 {
			closed = true
			reader.Close()
			f.Close()
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("%w: %v", errs.ErrDataSource, err)
			}
			return nil, io.EOF
		}

		rec, buildErr := rowsToRecord(p.allocator, p.schema, rows[:n], indices, outSchema)
		if buildErr != nil {
			return nil, buildErr
		}
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: %v", errs.ErrDataSource, err)
		}
		return rec, nil
	}), nil
}

func arrowFieldsFromParquet(sc *parquet.Schema) ([]arrow.Field, error) {
	pqFields := sc.Fields()
	fields := make([]arrow.Field, 0, len(pqFields))
	for _, f := range pqFields {
		dt, err := arrowTypeFromParquet(f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.Field{
			Name:     f.Name(),
			Type:     dt,
			Nullable: f.Optional(),
		})
	}
	return fields, nil
}

func arrowTypeFromParquet(f parquet.Field) (arrow.DataType, error) {
	switch f.Type().Kind() {
	case parquet.Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case parquet.Double:
		return arrow.PrimitiveTypes.Float64, nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return arrow.BinaryTypes.String, nil
	case parquet.Boolean:
		return arrow.FixedWidthTypes.Boolean, nil
	default:
		return nil, fmt.Errorf("%w: parquet kind %v for column %q", errs.ErrPhysicalTypeNotSupported, f.Type().Kind(), f.Name())
	}
}

// rowsToRecord converts a batch of flat parquet rows into an arrow.Record.
// fullSchema describes every column position in a row (parquet column index
// == fullSchema field index, since this source only supports flat schemas);
// indices, when non-nil, restricts which of those columns are materialized,
// in outSchema's order.
func rowsToRecord(pool memory.Allocator, fullSchema *arrow.Schema, rows []parquet.Row, indices []int, outSchema *arrow.Schema) (arrow.Record, error) {
	colIndices := indices
	if colIndices == nil {
		colIndices = make([]int, len(fullSchema.Fields()))
		for i := range colIndices {
			colIndices[i] = i
		}
	}

	builders := make([]array.Builder, len(colIndices))
	for i, colIdx := range colIndices {
		field := fullSchema.Field(colIdx)
		builders[i] = array.NewBuilder(pool, field.Type)
		defer builders[i].Release()
	}

	for _, row := range rows {
		for i, colIdx := range colIndices {
			v := row[colIdx]
			b := builders[i]
			if v.IsNull() {
				b.AppendNull()
				continue
			}
			switch bb := b.(type) {
			case *array.Int32Builder:
				bb.Append(v.Int32())
			case *array.Float64Builder:
				bb.Append(v.Double())
			case *array.StringBuilder:
				bb.Append(string(v.ByteArray()))
			case *array.BooleanBuilder:
				bb.Append(v.Boolean())
			default:
				return nil, fmt.Errorf("%w: %T", errs.ErrPhysicalTypeNotSupported, b)
			}
		}
	}

	cols := make([]arrow.Array, len(builders))
	for i, b := range builders {
		cols[i] = b.NewArray()
		defer cols[i].Release()
	}
	return array.NewRecord(outSchema, cols, int64(len(rows))), nil
}
