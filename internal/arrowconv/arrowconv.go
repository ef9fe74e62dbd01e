// Package arrowconv converts Arrow record batches into driver rows.
//
// It is shared by every backend that speaks the Arrow columnar format
// (FlightSQL, Arrow IPC files, Parquet) so that all of them decode
// cells into the value algebra the same way.
package arrowconv

import (
	"bytes"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// Columns returns the field names of an Arrow schema in declaration order.
func Columns(schema *arrow.Schema) []string {
	names := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		names[i] = field.Name
	}
	return names
}

// Rows converts every row of a record batch into driver rows. Cells are
// decoded with the exact width of their Arrow type; unsupported types
// abort the batch with an UnsupportedColumnTypeError.
func Rows(record arrow.RecordBatch) ([]driver.Row, error) {
	schema := record.Schema()
	numRows := int(record.NumRows())
	numCols := int(record.NumCols())

	rows := make([]driver.Row, 0, numRows)
	for i := 0; i < numRows; i++ {
		row := make(driver.Row, numCols)
		for j := 0; j < numCols; j++ {
			value, err := CellValue(schema.Field(j).Name, record.Column(j), i)
			if err != nil {
				return nil, err
			}
			row[j] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CellValue decodes a single cell of an Arrow column. The column name is
// only used for error reporting.
func CellValue(name string, column arrow.Array, row int) (driver.Value, error) {
	if column.IsNull(row) {
		return driver.NewNull(), nil
	}

	switch typed := column.(type) {
	case *array.Null:
		return driver.NewNull(), nil
	case *array.Boolean:
		return driver.NewBool(typed.Value(row)), nil
	case *array.Int8:
		return driver.NewI8(typed.Value(row)), nil
	case *array.Int16:
		return driver.NewI16(typed.Value(row)), nil
	case *array.Int32:
		return driver.NewI32(typed.Value(row)), nil
	case *array.Int64:
		return driver.NewI64(typed.Value(row)), nil
	case *array.Uint8:
		return driver.NewU8(typed.Value(row)), nil
	case *array.Uint16:
		return driver.NewU16(typed.Value(row)), nil
	case *array.Uint32:
		return driver.NewU32(typed.Value(row)), nil
	case *array.Uint64:
		return driver.NewU64(typed.Value(row)), nil
	case *array.Float32:
		return driver.NewF32(typed.Value(row)), nil
	case *array.Float64:
		return driver.NewF64(typed.Value(row)), nil
	case *array.String:
		return driver.NewString(typed.Value(row)), nil
	case *array.LargeString:
		return driver.NewString(typed.Value(row)), nil
	case *array.Binary:
		// Value aliases the record buffer, which is released with the batch.
		return driver.NewBytes(bytes.Clone(typed.Value(row))), nil
	case *array.LargeBinary:
		return driver.NewBytes(bytes.Clone(typed.Value(row))), nil
	case *array.FixedSizeBinary:
		return driver.NewBytes(bytes.Clone(typed.Value(row))), nil
	case *array.Date32:
		return driver.NewDateFromTime(typed.Value(row).ToTime()), nil
	case *array.Date64:
		return driver.NewDateFromTime(typed.Value(row).ToTime()), nil
	case *array.Time32:
		unit := typed.DataType().(*arrow.Time32Type).Unit
		return driver.NewTimeFromTime(typed.Value(row).ToTime(unit)), nil
	case *array.Time64:
		unit := typed.DataType().(*arrow.Time64Type).Unit
		return driver.NewTimeFromTime(typed.Value(row).ToTime(unit)), nil
	case *array.Timestamp:
		// TODO: implement timezone handling; the zone on the column type is
		// currently dropped and the instant is rendered in UTC.
		unit := typed.DataType().(*arrow.TimestampType).Unit
		return driver.NewDateTimeFromTime(typed.Value(row).ToTime(unit)), nil
	default:
		return driver.Value{}, driver.UnsupportedColumnTypeError{
			ColumnName: name,
			ColumnType: column.DataType().String(),
		}
	}
}
