package sqlserver

import (
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// cellValue maps a scanned cell to a Value following the declared column
// type. TDS is a typed binary protocol, so cells always arrive as native Go
// values. TINYINT is unsigned in SQL Server and stays U8.
func cellValue(columnName, databaseType string, cell any) (driver.Value, error) {
	if cell == nil {
		return driver.NewNull(), nil
	}
	switch databaseType {
	case "TINYINT":
		v, err := intCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewU8(uint8(v)), nil
	case "SMALLINT":
		v, err := intCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI16(int16(v)), nil
	case "INT":
		v, err := intCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI32(int32(v)), nil
	case "BIGINT":
		v, err := intCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI64(v), nil
	case "REAL":
		v, err := floatCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewF32(float32(v)), nil
	case "FLOAT":
		v, err := floatCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewF64(v), nil
	case "BIT":
		v, ok := cell.(bool)
		if !ok {
			return driver.Value{}, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
		}
		return driver.NewBool(v), nil
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		v, err := stringCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewDecimal(v), nil
	case "CHAR", "VARCHAR", "TEXT", "NCHAR", "NVARCHAR", "NTEXT", "XML":
		v, err := stringCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewString(v), nil
	case "BINARY", "VARBINARY", "IMAGE":
		v, ok := cell.([]byte)
		if !ok {
			return driver.Value{}, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
		}
		return driver.NewBytes(v), nil
	case "UNIQUEIDENTIFIER":
		v, ok := cell.([]byte)
		if !ok {
			return driver.Value{}, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
		}
		return uuidValue(columnName, v)
	case "DATE":
		v, err := timeCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewDateFromTime(v), nil
	case "TIME":
		v, err := timeCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewTimeFromTime(v), nil
	case "DATETIME", "DATETIME2", "SMALLDATETIME":
		v, err := timeCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewDateTime(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond()), nil
	case "DATETIMEOFFSET":
		v, err := timeCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewDateTimeFromTime(v), nil
	default:
		return driver.Value{}, driver.UnsupportedColumnTypeError{
			ColumnName: columnName,
			ColumnType: databaseType,
		}
	}
}

func intCell(columnName string, cell any) (int64, error) {
	v, ok := cell.(int64)
	if !ok {
		return 0, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
	}
	return v, nil
}

func floatCell(columnName string, cell any) (float64, error) {
	v, ok := cell.(float64)
	if !ok {
		return 0, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
	}
	return v, nil
}

func stringCell(columnName string, cell any) (string, error) {
	switch v := cell.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
}

func timeCell(columnName string, cell any) (time.Time, error) {
	v, ok := cell.(time.Time)
	if !ok {
		return time.Time{}, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
	}
	return v, nil
}

// uuidValue decodes the wire image of a UNIQUEIDENTIFIER. TDS carries the
// first three groups little-endian, unlike RFC 4122.
func uuidValue(columnName string, raw []byte) (driver.Value, error) {
	if len(raw) != 16 {
		return driver.Value{}, driver.ConversionErrorf("column %s: uniqueidentifier is %d bytes", columnName, len(raw))
	}
	var id uuid.UUID
	copy(id[:], raw)
	id[0], id[1], id[2], id[3] = raw[3], raw[2], raw[1], raw[0]
	id[4], id[5] = raw[5], raw[4]
	id[6], id[7] = raw[7], raw[6]
	return driver.NewUUID(id), nil
}
