package engine

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	duckdb "github.com/marcboeker/go-duckdb"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// ScanRows drains a result set into driver rows. When widen is true,
// unsigned 8 and 16 bit cells widen to U32; the standalone driver passes
// false to keep exact widths.
func ScanRows(rows *sql.Rows, widen bool) ([]string, []driver.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read result column types: %w", err)
	}
	typeNames := make([]string, len(columnTypes))
	for i, columnType := range columnTypes {
		typeNames[i] = columnType.DatabaseTypeName()
	}

	var data []driver.Row
	raw := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range raw {
		pointers[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(driver.Row, len(columns))
		for i := range raw {
			value, err := decodeValue(columns[i], typeNames[i], raw[i], widen)
			if err != nil {
				return nil, nil, err
			}
			row[i] = value
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return columns, data, nil
}

func decodeValue(columnName, typeName string, raw any, widen bool) (driver.Value, error) {
	if raw == nil {
		return driver.NewNull(), nil
	}

	switch v := raw.(type) {
	case bool:
		return driver.NewBool(v), nil
	case int8:
		return driver.NewI8(v), nil
	case int16:
		return driver.NewI16(v), nil
	case int32:
		return driver.NewI32(v), nil
	case int64:
		return driver.NewI64(v), nil
	case uint8:
		if widen {
			return driver.NewU32(uint32(v)), nil
		}
		return driver.NewU8(v), nil
	case uint16:
		if widen {
			return driver.NewU32(uint32(v)), nil
		}
		return driver.NewU16(v), nil
	case uint32:
		return driver.NewU32(v), nil
	case uint64:
		return driver.NewU64(v), nil
	case float32:
		return driver.NewF32(v), nil
	case float64:
		return driver.NewF64(v), nil
	case *big.Int:
		if typeName == "UHUGEINT" {
			return driver.NewU128(v), nil
		}
		return driver.NewI128(v), nil
	case duckdb.Decimal:
		return driver.NewDecimal(decimalText(v.Value, int(v.Scale))), nil
	case duckdb.Interval:
		return driver.NewInterval(v.Months, v.Days, v.Micros*int64(time.Microsecond)), nil
	case string:
		switch typeName {
		case "JSON":
			return decodeJSONText(columnName, v)
		case "UUID":
			return decodeUUIDText(columnName, v)
		}
		return driver.NewString(v), nil
	case []byte:
		if typeName == "UUID" {
			return decodeUUIDBytes(columnName, v)
		}
		return driver.NewBytes(v), nil
	case time.Time:
		switch typeName {
		case "DATE":
			return driver.NewDateFromTime(v), nil
		case "TIME", "TIME WITH TIME ZONE":
			return driver.NewTimeFromTime(v), nil
		default:
			return driver.NewDateTimeFromTime(v), nil
		}
	case []any:
		values := make([]driver.Value, len(v))
		for i, element := range v {
			value, err := decodeValue(columnName, "", element, widen)
			if err != nil {
				return driver.Value{}, err
			}
			values[i] = value
		}
		return driver.NewArray(values), nil
	case map[string]any:
		return decodeStruct(columnName, v, widen)
	case duckdb.Map:
		return decodeMap(columnName, v, widen)
	default:
		if typeName == "UUID" {
			if s, ok := raw.(fmt.Stringer); ok {
				return decodeUUIDText(columnName, s.String())
			}
		}
		return driver.Value{}, driver.UnsupportedColumnTypeError{
			ColumnName: columnName,
			ColumnType: typeName,
		}
	}
}

// decodeStruct converts a struct cell. The binding surfaces structs as Go
// maps, so the declared field order is gone; keys are sorted to keep the
// output deterministic.
func decodeStruct(columnName string, fields map[string]any, widen bool) (driver.Value, error) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := driver.NewValueMap()
	for _, key := range keys {
		value, err := decodeValue(columnName, "", fields[key], widen)
		if err != nil {
			return driver.Value{}, err
		}
		entries.Put(driver.NewString(key), value)
	}
	return driver.NewMap(entries), nil
}

func decodeMap(columnName string, pairs duckdb.Map, widen bool) (driver.Value, error) {
	type entry struct {
		key   driver.Value
		value driver.Value
	}
	entries := make([]entry, 0, len(pairs))
	for rawKey, rawValue := range pairs {
		key, err := decodeValue(columnName, "", rawKey, widen)
		if err != nil {
			return driver.Value{}, err
		}
		value, err := decodeValue(columnName, "", rawValue, widen)
		if err != nil {
			return driver.Value{}, err
		}
		entries = append(entries, entry{key: key, value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key.String() < entries[j].key.String()
	})

	result := driver.NewValueMap()
	for _, e := range entries {
		result.Put(e.key, e.value)
	}
	return driver.NewMap(result), nil
}

func decodeJSONText(columnName, text string) (driver.Value, error) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()
	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return driver.Value{}, driver.ConversionErrorf("invalid JSON in column %s: %s", columnName, err)
	}
	return driver.NewJSON(parsed), nil
}

func decodeUUIDText(columnName, text string) (driver.Value, error) {
	id, err := uuid.Parse(text)
	if err != nil {
		return driver.Value{}, driver.ConversionErrorf("invalid UUID in column %s: %s", columnName, err)
	}
	return driver.NewUUID(id), nil
}

func decodeUUIDBytes(columnName string, raw []byte) (driver.Value, error) {
	if len(raw) == 16 {
		id, err := uuid.FromBytes(raw)
		if err != nil {
			return driver.Value{}, driver.ConversionErrorf("invalid UUID in column %s: %s", columnName, err)
		}
		return driver.NewUUID(id), nil
	}
	return decodeUUIDText(columnName, string(raw))
}

// decimalText renders an unscaled integer with its scale applied, keeping
// the value exact.
func decimalText(value *big.Int, scale int) string {
	if value == nil {
		return "0"
	}
	if scale <= 0 {
		return value.String()
	}
	digits := new(big.Int).Abs(value).String()
	for len(digits) <= scale {
		digits = "0" + digits
	}
	point := len(digits) - scale
	text := digits[:point] + "." + digits[point:]
	if value.Sign() < 0 {
		text = "-" + text
	}
	return text
}

// bindArgument lowers a Value to a type the embedded database binds
// natively; 128-bit integers, decimals, intervals and UUIDs travel as
// text and are cast by the target column.
func bindArgument(value driver.Value) any {
	switch value.Kind() {
	case driver.KindNull:
		return nil
	case driver.KindBool:
		return value.Bool()
	case driver.KindI8, driver.KindI16, driver.KindI32, driver.KindI64:
		return value.Int64()
	case driver.KindU8, driver.KindU16, driver.KindU32:
		return int64(value.Uint64())
	case driver.KindU64:
		if value.Uint64() <= math.MaxInt64 {
			return int64(value.Uint64())
		}
		return strconv.FormatUint(value.Uint64(), 10)
	case driver.KindF32:
		return float64(value.Float32())
	case driver.KindF64:
		return value.Float64()
	case driver.KindString:
		return value.String()
	case driver.KindBytes:
		return value.Bytes()
	case driver.KindDate, driver.KindTime, driver.KindDateTime:
		return value.DateTime()
	case driver.KindJSON, driver.KindArray, driver.KindMap:
		encoded, err := json.Marshal(value.JSON())
		if err != nil {
			return value.String()
		}
		return string(encoded)
	default:
		return value.String()
	}
}
