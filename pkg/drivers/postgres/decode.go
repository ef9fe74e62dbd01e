package postgres

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// OIDs pgtype does not name.
const voidOID = 2278

// cellValue decodes one wire format cell into a Value, keyed on the column
// OID. Every supported scalar type has an array counterpart.
// https://www.postgresql.org/docs/current/datatype.html
func cellValue(typeMap *pgtype.Map, field pgconn.FieldDescription, src []byte) (driver.Value, error) {
	if src == nil {
		return driver.NewNull(), nil
	}
	switch field.DataTypeOID {
	case pgtype.BoolOID:
		return scanValue(typeMap, field, src, driver.NewBool)
	case pgtype.BoolArrayOID:
		return scanArray(typeMap, field, src, driver.NewBool)
	case pgtype.Int2OID:
		return scanValue(typeMap, field, src, driver.NewI16)
	case pgtype.Int2ArrayOID:
		return scanArray(typeMap, field, src, driver.NewI16)
	case pgtype.Int4OID:
		return scanValue(typeMap, field, src, driver.NewI32)
	case pgtype.Int4ArrayOID:
		return scanArray(typeMap, field, src, driver.NewI32)
	case pgtype.Int8OID:
		return scanValue(typeMap, field, src, driver.NewI64)
	case pgtype.Int8ArrayOID:
		return scanArray(typeMap, field, src, driver.NewI64)
	case pgtype.Float4OID:
		return scanValue(typeMap, field, src, driver.NewF32)
	case pgtype.Float4ArrayOID:
		return scanArray(typeMap, field, src, driver.NewF32)
	case pgtype.Float8OID:
		return scanValue(typeMap, field, src, driver.NewF64)
	case pgtype.Float8ArrayOID:
		return scanArray(typeMap, field, src, driver.NewF64)
	case pgtype.OIDOID:
		return scanValue(typeMap, field, src, driver.NewU32)
	case pgtype.OIDArrayOID:
		return scanArray(typeMap, field, src, driver.NewU32)
	case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID, pgtype.NameOID:
		return scanValue(typeMap, field, src, driver.NewString)
	case pgtype.TextArrayOID, pgtype.VarcharArrayOID, pgtype.BPCharArrayOID, pgtype.NameArrayOID:
		return scanArray(typeMap, field, src, driver.NewString)
	case pgtype.QCharOID:
		return scanValue(typeMap, field, src, qcharValue)
	case pgtype.QCharArrayOID:
		return scanArray(typeMap, field, src, qcharValue)
	case pgtype.ByteaOID:
		return scanValue(typeMap, field, src, driver.NewBytes)
	case pgtype.ByteaArrayOID:
		return scanArray(typeMap, field, src, driver.NewBytes)
	case pgtype.NumericOID:
		return scanValue(typeMap, field, src, numericValue)
	case pgtype.NumericArrayOID:
		return scanArray(typeMap, field, src, numericValue)
	case pgtype.BitOID, pgtype.VarbitOID:
		return scanValue(typeMap, field, src, bitsValue)
	case pgtype.BitArrayOID, pgtype.VarbitArrayOID:
		return scanArray(typeMap, field, src, bitsValue)
	case pgtype.DateOID:
		return scanValue(typeMap, field, src, driver.NewDateFromTime)
	case pgtype.DateArrayOID:
		return scanArray(typeMap, field, src, driver.NewDateFromTime)
	case pgtype.TimeOID:
		return scanValue(typeMap, field, src, timeOfDay)
	case pgtype.TimeArrayOID:
		return scanArray(typeMap, field, src, timeOfDay)
	case pgtype.TimetzOID:
		// pgx carries no timetz codec, so the server always sends text.
		return timetzValue(field.Name, string(src))
	case pgtype.TimestampOID, pgtype.TimestamptzOID:
		return scanValue(typeMap, field, src, driver.NewDateTimeFromTime)
	case pgtype.TimestampArrayOID, pgtype.TimestamptzArrayOID:
		return scanArray(typeMap, field, src, driver.NewDateTimeFromTime)
	case pgtype.IntervalOID:
		return scanValue(typeMap, field, src, intervalValue)
	case pgtype.IntervalArrayOID:
		return scanArray(typeMap, field, src, intervalValue)
	case pgtype.UUIDOID:
		return scanValue(typeMap, field, src, uuidValue)
	case pgtype.UUIDArrayOID:
		return scanArray(typeMap, field, src, uuidValue)
	case pgtype.JSONOID, pgtype.JSONBOID:
		return jsonCell(typeMap, field, src)
	case pgtype.JSONArrayOID, pgtype.JSONBArrayOID:
		return jsonArrayCell(typeMap, field, src)
	case voidOID:
		// pg_sleep() and friends return a present but empty void cell.
		return driver.NewNull(), nil
	default:
		return driver.Value{}, driver.UnsupportedColumnTypeError{
			ColumnName: field.Name,
			ColumnType: typeName(typeMap, field.DataTypeOID),
		}
	}
}

// scanValue decodes a single cell through the pgx codec for its OID.
func scanValue[T any](typeMap *pgtype.Map, field pgconn.FieldDescription, src []byte, wrap func(T) driver.Value) (driver.Value, error) {
	var v T
	if err := typeMap.Scan(field.DataTypeOID, field.Format, src, &v); err != nil {
		return driver.Value{}, driver.ConversionErrorf("column %s: %s", field.Name, err)
	}
	return wrap(v), nil
}

// scanArray decodes an array cell element-wise, keeping NULL elements.
func scanArray[T any](typeMap *pgtype.Map, field pgconn.FieldDescription, src []byte, wrap func(T) driver.Value) (driver.Value, error) {
	var vs []*T
	if err := typeMap.Scan(field.DataTypeOID, field.Format, src, &vs); err != nil {
		return driver.Value{}, driver.ConversionErrorf("column %s: %s", field.Name, err)
	}
	items := make([]driver.Value, len(vs))
	for i, v := range vs {
		if v == nil {
			items[i] = driver.NewNull()
			continue
		}
		items[i] = wrap(*v)
	}
	return driver.NewArray(items), nil
}

func jsonCell(typeMap *pgtype.Map, field pgconn.FieldDescription, src []byte) (driver.Value, error) {
	var raw []byte
	if err := typeMap.Scan(field.DataTypeOID, field.Format, src, &raw); err != nil {
		return driver.Value{}, driver.ConversionErrorf("column %s: %s", field.Name, err)
	}
	return jsonValue(field.Name, raw)
}

func jsonArrayCell(typeMap *pgtype.Map, field pgconn.FieldDescription, src []byte) (driver.Value, error) {
	var raws [][]byte
	if err := typeMap.Scan(field.DataTypeOID, field.Format, src, &raws); err != nil {
		return driver.Value{}, driver.ConversionErrorf("column %s: %s", field.Name, err)
	}
	items := make([]driver.Value, len(raws))
	for i, raw := range raws {
		if raw == nil {
			items[i] = driver.NewNull()
			continue
		}
		value, err := jsonValue(field.Name, raw)
		if err != nil {
			return driver.Value{}, err
		}
		items[i] = value
	}
	return driver.NewArray(items), nil
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

func qcharValue(v rune) driver.Value { return driver.NewString(string(v)) }

func numericValue(v pgtype.Numeric) driver.Value { return driver.NewDecimal(numericText(v)) }

func bitsValue(v pgtype.Bits) driver.Value { return driver.NewString(bitString(v)) }

func intervalValue(v pgtype.Interval) driver.Value {
	return driver.NewInterval(v.Months, v.Days, v.Microseconds*int64(time.Microsecond))
}

func uuidValue(v [16]byte) driver.Value { return driver.NewUUID(uuid.UUID(v)) }

// timeOfDay converts microseconds since midnight to a civil time.
func timeOfDay(v pgtype.Time) driver.Value {
	const (
		microsPerSecond = int64(1_000_000)
		microsPerMinute = 60 * microsPerSecond
		microsPerHour   = 60 * microsPerMinute
	)
	micros := v.Microseconds
	hour := micros / microsPerHour
	micros %= microsPerHour
	minute := micros / microsPerMinute
	micros %= microsPerMinute
	second := micros / microsPerSecond
	nanos := (micros % microsPerSecond) * 1000
	return driver.NewTime(int(hour), int(minute), int(second), int(nanos))
}

// timetzValue parses the text form of a time with zone, keeping the clock
// and dropping the offset.
func timetzValue(columnName, text string) (driver.Value, error) {
	clock := text
	if i := strings.IndexAny(clock, "+-"); i > 0 {
		clock = clock[:i]
	}
	parsed, err := time.Parse("15:04:05.999999999", clock)
	if err != nil {
		return driver.Value{}, driver.ConversionErrorf("invalid time in column %s: %s", columnName, err)
	}
	return driver.NewTimeFromTime(parsed), nil
}

// numericText renders an arbitrary precision numeric as exact decimal text.
func numericText(v pgtype.Numeric) string {
	if v.NaN {
		return "NaN"
	}
	switch v.InfinityModifier {
	case pgtype.Infinity:
		return "Infinity"
	case pgtype.NegativeInfinity:
		return "-Infinity"
	}
	if v.Int == nil || v.Int.Sign() == 0 {
		return "0"
	}
	if v.Exp >= 0 {
		return v.Int.String() + strings.Repeat("0", int(v.Exp))
	}
	scale := int(-v.Exp)
	digits := new(big.Int).Abs(v.Int).String()
	for len(digits) <= scale {
		digits = "0" + digits
	}
	point := len(digits) - scale
	text := digits[:point] + "." + digits[point:]
	if v.Int.Sign() < 0 {
		text = "-" + text
	}
	return text
}

// bitString renders a bit or varbit payload as a string of '0' and '1'.
func bitString(v pgtype.Bits) string {
	out := make([]byte, v.Len)
	for i := int32(0); i < v.Len; i++ {
		out[i] = '0'
		if v.Bytes[i/8]&(byte(0x80)>>(i%8)) != 0 {
			out[i] = '1'
		}
	}
	return string(out)
}

func typeName(typeMap *pgtype.Map, oid uint32) string {
	if t, ok := typeMap.TypeForOID(oid); ok {
		return t.Name
	}
	return fmt.Sprintf("oid %d", oid)
}
