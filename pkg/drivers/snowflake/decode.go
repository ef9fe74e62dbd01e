package snowflake

import (
	"strconv"
	"time"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// cellValue maps a scanned cell to a Value following the Snowflake type
// reported for the column. FIXED columns carry integers when the declared
// scale is zero and doubles otherwise; the client pre-converts them on the
// binary result path while JSON result sets render them as strings, so the
// arm accepts both. All three timestamp flavors keep their rendered wall
// clock; the zone offset of TIMESTAMP_TZ is dropped, not normalized.
func cellValue(columnName, databaseType string, scale int64, cell any) (driver.Value, error) {
	if cell == nil {
		return driver.NewNull(), nil
	}
	switch databaseType {
	case "FIXED":
		return fixedValue(columnName, scale, cell)
	case "REAL":
		v, err := floatCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewF64(v), nil
	case "BOOLEAN":
		v, err := boolCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewBool(v), nil
	case "TEXT", "VARIANT", "OBJECT", "ARRAY", "MAP":
		v, err := stringCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewString(v), nil
	case "BINARY":
		v, err := bytesCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewBytes(v), nil
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
	case "TIMESTAMP_NTZ", "TIMESTAMP_LTZ", "TIMESTAMP_TZ":
		v, err := timeCell(columnName, cell)
		if err != nil {
			return driver.Value{}, err
		}
		return driver.NewDateTime(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond()), nil
	case "NULL":
		return driver.NewNull(), nil
	default:
		return driver.Value{}, driver.UnsupportedColumnTypeError{
			ColumnName: columnName,
			ColumnType: databaseType,
		}
	}
}

func fixedValue(columnName string, scale int64, cell any) (driver.Value, error) {
	switch v := cell.(type) {
	case int64:
		return driver.NewI64(v), nil
	case float64:
		return driver.NewF64(v), nil
	case string:
		return parseFixed(columnName, scale, v)
	case []byte:
		return parseFixed(columnName, scale, string(v))
	}
	return driver.Value{}, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
}

func parseFixed(columnName string, scale int64, text string) (driver.Value, error) {
	if scale > 0 {
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return driver.Value{}, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return driver.NewF64(parsed), nil
	}
	parsed, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return driver.Value{}, driver.ConversionErrorf("column %s: %s", columnName, err)
	}
	return driver.NewI64(parsed), nil
}

func floatCell(columnName string, cell any) (float64, error) {
	switch v := cell.(type) {
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return parsed, nil
	case []byte:
		parsed, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return parsed, nil
	}
	return 0, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
}

func boolCell(columnName string, cell any) (bool, error) {
	switch v := cell.(type) {
	case bool:
		return v, nil
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return false, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return parsed, nil
	case []byte:
		parsed, err := strconv.ParseBool(string(v))
		if err != nil {
			return false, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return parsed, nil
	}
	return false, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
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

func bytesCell(columnName string, cell any) ([]byte, error) {
	switch v := cell.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
}

func timeCell(columnName string, cell any) (time.Time, error) {
	v, ok := cell.(time.Time)
	if !ok {
		return time.Time{}, driver.ConversionErrorf("column %s: unexpected %T cell", columnName, cell)
	}
	return v, nil
}
