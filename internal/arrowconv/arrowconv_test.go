package arrowconv

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func TestColumns(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String},
	}, nil)

	assert.Equal(t, []string{"id", "name"}, Columns(schema))
}

func TestRows(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "ratio", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "active", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
		{Name: "raw", Type: arrow.BinaryTypes.Binary, Nullable: true},
		{Name: "born", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
		{Name: "at", Type: arrow.FixedWidthTypes.Timestamp_ms, Nullable: true},
		{Name: "tod", Type: arrow.FixedWidthTypes.Time64us, Nullable: true},
		{Name: "big", Type: arrow.PrimitiveTypes.Uint64, Nullable: true},
	}, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	born := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2000, time.December, 31, 12, 13, 14, 15_000_000, time.UTC)
	tod := int64((12*3600+13*60+14)*1_000_000 + 15_123)

	builder.Field(0).(*array.Int32Builder).Append(32)
	builder.Field(1).(*array.StringBuilder).Append("foo")
	builder.Field(2).(*array.Float64Builder).Append(3.5)
	builder.Field(3).(*array.BooleanBuilder).Append(true)
	builder.Field(4).(*array.BinaryBuilder).Append([]byte{0x01, 0x02, 0x03})
	builder.Field(5).(*array.Date32Builder).Append(arrow.Date32FromTime(born))
	builder.Field(6).(*array.TimestampBuilder).Append(arrow.Timestamp(at.UnixMilli()))
	builder.Field(7).(*array.Time64Builder).Append(arrow.Time64(tod))
	builder.Field(8).(*array.Uint64Builder).Append(64)
	for i := 0; i < schema.NumFields(); i++ {
		builder.Field(i).AppendNull()
	}

	record := builder.NewRecordBatch()
	defer record.Release()

	rows, err := Rows(record)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	require.Len(t, first, 9)
	expected := []struct {
		kind   driver.Kind
		record string
	}{
		{driver.KindI32, "32"},
		{driver.KindString, "foo"},
		{driver.KindF64, "3.5"},
		{driver.KindBool, "true"},
		{driver.KindBytes, "AQID"},
		{driver.KindDate, "2021-01-01"},
		{driver.KindDateTime, "2000-12-31 12:13:14.015"},
		{driver.KindTime, "12:13:14.015123"},
		{driver.KindU64, "64"},
	}
	for i, want := range expected {
		assert.Equal(t, want.kind, first[i].Kind(), "column %d kind", i)
		assert.Equal(t, want.record, first[i].String(), "column %d value", i)
	}

	for i, value := range rows[1] {
		assert.True(t, value.IsNull(), "column %d should be null", i)
	}
}

func TestRowsUnsupportedType(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "tags", Type: arrow.ListOf(arrow.PrimitiveTypes.Int32)},
	}, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	listBuilder := builder.Field(0).(*array.ListBuilder)
	listBuilder.Append(true)
	listBuilder.ValueBuilder().(*array.Int32Builder).Append(7)

	record := builder.NewRecordBatch()
	defer record.Release()

	_, err := Rows(record)
	var unsupported driver.UnsupportedColumnTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "tags", unsupported.ColumnName)
}
