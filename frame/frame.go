// Package frame holds the small slice of Apache Arrow surface the service
// needs: pulling a float64 column out of a record, building single-column
// result records, and bridging stored close prices into a record.
package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Pool is the allocator behind every record this package builds.
var Pool = memory.NewGoAllocator()

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrTypeMismatch   = errors.New("column type mismatch")
)

// FloatColumn returns the named column of rec as a float64 array. The kind of
// failure is inspectable with errors.Is (ErrColumnNotFound, ErrTypeMismatch).
func FloatColumn(rec arrow.Record, name string) (*array.Float64, error) {
	indices := rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	col := rec.Column(indices[0])
	floats, ok := col.(*array.Float64)
	if !ok {
		return nil, fmt.Errorf("%w: column %q is %s, want float64", ErrTypeMismatch, name, col.DataType())
	}

	return floats, nil
}

// FloatValues is FloatColumn plus a null check, returning the raw values.
// Columns with null slots are rejected since a null has no numeric value.
func FloatValues(rec arrow.Record, name string) ([]float64, error) {
	floats, err := FloatColumn(rec, name)
	if err != nil {
		return nil, err
	}
	if floats.NullN() > 0 {
		return nil, fmt.Errorf("%w: column %q has %d null values", ErrTypeMismatch, name, floats.NullN())
	}
	return floats.Float64Values(), nil
}

// SingleColumnRecord builds a record holding one float64 column.
func SingleColumnRecord(name string, values []float64) (arrow.Record, error) {
	if name == "" {
		return nil, errors.New("column name must not be empty")
	}

	schema := arrow.NewSchema([]arrow.Field{
		{Name: name, Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	b := array.NewFloat64Builder(Pool)
	defer b.Release()
	b.AppendValues(values, nil)

	col := b.NewFloat64Array()
	defer col.Release()

	return array.NewRecord(schema, []arrow.Array{col}, int64(len(values))), nil
}

// FromCloses builds a (date, <column>) record from a stored close series.
// Dates and closes are parallel slices and must be the same length.
func FromCloses(column string, dates []time.Time, closes []float64) (arrow.Record, error) {
	if column == "" {
		return nil, errors.New("column name must not be empty")
	}
	if len(dates) != len(closes) {
		return nil, fmt.Errorf("dates and closes mismatched: %d dates, %d closes", len(dates), len(closes))
	}

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "date", Type: arrow.FixedWidthTypes.Date32},
		{Name: column, Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	b := array.NewRecordBuilder(Pool, schema)
	defer b.Release()

	db := b.Field(0).(*array.Date32Builder)
	cb := b.Field(1).(*array.Float64Builder)
	for i := range dates {
		db.Append(arrow.Date32FromTime(dates[i]))
		cb.Append(closes[i])
	}

	return b.NewRecord(), nil
}
