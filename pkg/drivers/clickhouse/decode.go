package clickhouse

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// ClickHouse renders temporal values in FORMAT JSON as plain civil text.
const (
	dateLayout = "2006-01-02"
	// The fractional part is optional, so one layout covers DateTime and
	// every DateTime64 precision.
	dateTimeLayout = "2006-01-02 15:04:05.999999999"
)

// parseColumnType splits one Container(Inner) layer off a ClickHouse type
// name. Plain types come back with an empty container.
func parseColumnType(columnType string) (container, inner string) {
	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if start >= 0 && end > start {
		return columnType[:start], columnType[start+1 : end]
	}
	return "", columnType
}

// cellValue converts one FORMAT JSON cell into a Value. The column type
// drives the conversion; Nullable and LowCardinality wrappers are peeled one
// layer per step and arrays convert element-wise. Integers wider than 32 bits
// arrive quoted as strings and 128 bit values keep exact precision through
// big.Int.
func cellValue(columnName, columnType string, cell any) (driver.Value, error) {
	if cell == nil {
		return driver.NewNull(), nil
	}

	container, inner := parseColumnType(columnType)
	switch container {
	case "":
		return scalarValue(columnName, columnType, cell)
	case "Nullable", "LowCardinality":
		return cellValue(columnName, inner, cell)
	case "Array":
		items, ok := cell.([]any)
		if !ok {
			return driver.Value{}, driver.ConversionErrorf("column %s: array cell holds %T", columnName, cell)
		}
		values := make([]driver.Value, len(items))
		for i, item := range items {
			value, err := cellValue(columnName, inner, item)
			if err != nil {
				return driver.Value{}, err
			}
			values[i] = value
		}
		return driver.NewArray(values), nil
	case "FixedString", "Enum8", "Enum16":
		// FixedString carries its length and enums their label list in the
		// parameter position; the cell itself is always text.
		s, err := stringCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewString(s), nil
	case "Decimal":
		s, err := numberText(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewDecimal(s), nil
	case "DateTime", "DateTime64":
		// The parameter holds the precision or time zone name. The rendered
		// text is already civil time in the column zone, so the zone itself
		// is dropped.
		return dateTimeValue(columnName, cell)
	default:
		return driver.Value{}, driver.UnsupportedColumnTypeError{ColumnName: columnName, ColumnType: columnType}
	}
}

func scalarValue(columnName, columnType string, cell any) (driver.Value, error) {
	switch columnType {
	case "Nothing":
		return driver.NewNull(), nil
	case "Bool":
		b, ok := cell.(bool)
		if !ok {
			return driver.Value{}, driver.ConversionErrorf("column %s: bool cell holds %T", columnName, cell)
		}
		return driver.NewBool(b), nil
	case "Int8":
		i, err := intCell(columnName, cell, 8)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI8(int8(i)), nil
	case "Int16":
		i, err := intCell(columnName, cell, 16)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI16(int16(i)), nil
	case "Int32":
		i, err := intCell(columnName, cell, 32)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI32(int32(i)), nil
	case "Int64":
		i, err := intCell(columnName, cell, 64)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI64(i), nil
	case "Int128":
		b, err := bigIntCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI128(b), nil
	case "UInt8":
		u, err := uintCell(columnName, cell, 8)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewU8(uint8(u)), nil
	case "UInt16":
		u, err := uintCell(columnName, cell, 16)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewU16(uint16(u)), nil
	case "UInt32":
		u, err := uintCell(columnName, cell, 32)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewU32(uint32(u)), nil
	case "UInt64":
		u, err := uintCell(columnName, cell, 64)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewU64(u), nil
	case "UInt128":
		b, err := bigIntCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewU128(b), nil
	case "Float32":
		f, err := floatCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewF32(float32(f)), nil
	case "Float64":
		f, err := floatCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewF64(f), nil
	case "String":
		s, err := stringCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewString(s), nil
	case "Date", "Date32":
		s, err := stringCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			return driver.Value{}, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return driver.NewDateFromTime(parsed), nil
	case "DateTime":
		return dateTimeValue(columnName, cell)
	case "UUID":
		s, err := stringCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return driver.Value{}, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return driver.NewUUID(id), nil
	default:
		return driver.Value{}, driver.UnsupportedColumnTypeError{ColumnName: columnName, ColumnType: columnType}
	}
}

func dateTimeValue(columnName string, cell any) (driver.Value, error) {
	s, err := stringCell(columnName, cell)
	if err != nil {
		return driver.Value{}, err
	}
	parsed, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return driver.Value{}, driver.ConversionErrorf("column %s: %s", columnName, err)
	}
	return driver.NewDateTime(parsed.Year(), parsed.Month(), parsed.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond()), nil
}

func intCell(columnName string, cell any, bitSize int) (int64, error) {
	text, err := numberText(columnName, cell)
	if err != nil {
		return 0, err
	}
	i, err := strconv.ParseInt(text, 10, bitSize)
	if err != nil {
		return 0, driver.ConversionErrorf("column %s: %s", columnName, err)
	}
	return i, nil
}

func uintCell(columnName string, cell any, bitSize int) (uint64, error) {
	text, err := numberText(columnName, cell)
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(text, 10, bitSize)
	if err != nil {
		return 0, driver.ConversionErrorf("column %s: %s", columnName, err)
	}
	return u, nil
}

func bigIntCell(columnName string, cell any) (*big.Int, error) {
	text, err := numberText(columnName, cell)
	if err != nil {
		return nil, err
	}
	b, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, driver.ConversionErrorf("column %s: %q is not an integer", columnName, text)
	}
	return b, nil
}

func floatCell(columnName string, cell any) (float64, error) {
	text, err := numberText(columnName, cell)
	if err != nil {
		return 0, err
	}
	// Quoted "inf", "-inf" and "nan" cells appear when the server is
	// configured to quote denormals.
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, driver.ConversionErrorf("column %s: %s", columnName, err)
	}
	return f, nil
}

// numberText returns the exact textual form of a numeric cell. Values inside
// the JSON double range arrive as numbers, wider ones as strings.
func numberText(columnName string, cell any) (string, error) {
	switch v := cell.(type) {
	case json.Number:
		return v.String(), nil
	case string:
		return v, nil
	default:
		return "", driver.ConversionErrorf("column %s: numeric cell holds %T", columnName, cell)
	}
}

func stringCell(columnName string, cell any) (string, error) {
	s, ok := cell.(string)
	if !ok {
		return "", driver.ConversionErrorf("column %s: string cell holds %T", columnName, cell)
	}
	return s, nil
}
