package mysql

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// cellValue maps a scanned cell to a Value following the declared column
// type. The text protocol delivers most cells as raw bytes while prepared
// statements deliver native integers and floats, so every arm accepts both.
// Unsigned columns widen to the next signed type that holds their full
// range; BIGINT UNSIGNED has none and stays unsigned.
func cellValue(columnName, databaseType string, cell any) (driver.Value, error) {
	if cell == nil {
		return driver.NewNull(), nil
	}
	switch databaseType {
	case "TINYINT":
		v, err := intCell(columnName, cell, 8)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI8(int8(v)), nil
	case "SMALLINT", "YEAR":
		v, err := intCell(columnName, cell, 16)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI16(int16(v)), nil
	case "MEDIUMINT", "INT":
		v, err := intCell(columnName, cell, 32)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI32(int32(v)), nil
	case "BIGINT":
		v, err := intCell(columnName, cell, 64)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI64(v), nil
	case "UNSIGNED TINYINT":
		v, err := intCell(columnName, cell, 16)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI16(int16(v)), nil
	case "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT":
		v, err := intCell(columnName, cell, 32)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI32(int32(v)), nil
	case "UNSIGNED INT":
		v, err := intCell(columnName, cell, 64)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewI64(v), nil
	case "UNSIGNED BIGINT":
		v, err := uintCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewU64(v), nil
	case "FLOAT":
		v, err := floatCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewF32(float32(v)), nil
	case "DOUBLE":
		v, err := floatCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewF64(v), nil
	case "DECIMAL":
		v, err := stringCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewDecimal(v), nil
	case "CHAR", "VARCHAR", "TINYTEXT", "TEXT", "MEDIUMTEXT", "LONGTEXT", "ENUM", "SET":
		v, err := stringCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewString(v), nil
	case "BINARY", "VARBINARY", "TINYBLOB", "BLOB", "MEDIUMBLOB", "LONGBLOB", "GEOMETRY":
		v, err := bytesCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewBytes(v), nil
	case "DATE":
		t, err := timeCell(columnName, cell, "2006-01-02")
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewDateFromTime(t), nil
	case "DATETIME", "TIMESTAMP":
		t, err := timeCell(columnName, cell, "2006-01-02 15:04:05.999999")
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewDateTimeFromTime(t), nil
	case "TIME":
		v, err := stringCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return timeOfDayValue(columnName, v)
	case "JSON":
		v, err := bytesCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return jsonValue(columnName, v)
	case "BIT":
		v, err := bytesCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return bitValue(v), nil
	case "NULL":
		return driver.NewNull(), nil
	default:
		return driver.Value{}, driver.UnsupportedColumnTypeError{
			ColumnName: columnName,
			ColumnType: databaseType,
		}
	}
}

func intCell(columnName string, cell any, bitSize int) (int64, error) {
	switch v := cell.(type) {
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case []byte:
		parsed, err := strconv.ParseInt(string(v), 10, bitSize)
		if err != nil {
			return 0, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return parsed, nil
	}
	return 0, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
}

func uintCell(columnName string, cell any) (uint64, error) {
	switch v := cell.(type) {
	case uint64:
		return v, nil
	case int64:
		return uint64(v), nil
	case []byte:
		parsed, err := strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			return 0, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return parsed, nil
	}
	return 0, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
}

func floatCell(columnName string, cell any) (float64, error) {
	switch v := cell.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		parsed, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return parsed, nil
	}
	return 0, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
}

func stringCell(columnName string, cell any) (string, error) {
	switch v := cell.(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	}
	return "", driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
}

func bytesCell(columnName string, cell any) ([]byte, error) {
	switch v := cell.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
}

func timeCell(columnName string, cell any, layout string) (time.Time, error) {
	switch v := cell.(type) {
	case time.Time:
		return v, nil
	case []byte:
		parsed, err := time.Parse(layout, string(v))
		if err != nil {
			return time.Time{}, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return parsed, nil
	}
	return time.Time{}, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
}

// timeOfDayValue parses the TIME wire text. MySQL TIME is a signed duration
// of up to 839 hours; only values inside a single day map onto a civil time.
func timeOfDayValue(columnName, text string) (driver.Value, error) {
	clock, fraction, _ := strings.Cut(text, ".")
	parts := strings.Split(clock, ":")
	if len(parts) != 3 || strings.HasPrefix(clock, "-") {
		return driver.Value{}, driver.ConversionErrorf("column %s: %q is not a time of day", columnName, text)
	}
	hour, hourErr := strconv.Atoi(parts[0])
	minute, minuteErr := strconv.Atoi(parts[1])
	second, secondErr := strconv.Atoi(parts[2])
	if hourErr != nil || minuteErr != nil || secondErr != nil || hour > 23 {
		return driver.Value{}, driver.ConversionErrorf("column %s: %q is not a time of day", columnName, text)
	}
	nanos := 0
	if fraction != "" {
		padded := (fraction + "00000000")[:9]
		parsed, err := strconv.Atoi(padded)
		if err != nil {
			return driver.Value{}, driver.ConversionErrorf("column %s: %q is not a time of day", columnName, text)
		}
		nanos = parsed
	}
	return driver.NewTime(hour, minute, second, nanos), nil
}

func jsonValue(columnName string, raw []byte) (driver.Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return driver.Value{}, driver.ConversionErrorf("invalid JSON in column %s: %s", columnName, err)
	}
	return driver.NewJSON(parsed), nil
}

// bitValue reports single-bit values as booleans. Wider BIT columns carry
// their raw big-endian bytes through unchanged.
func bitValue(raw []byte) driver.Value {
	if len(raw) == 1 && raw[0] <= 1 {
		return driver.NewBool(raw[0] == 1)
	}
	return driver.NewBytes(raw)
}
