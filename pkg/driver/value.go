package driver

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/rsql/internal/intl"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindF32
	KindF64
	KindDecimal
	KindString
	KindBytes
	KindDate
	KindTime
	KindDateTime
	KindInterval
	KindUUID
	KindJSON
	KindArray
	KindMap
)

var kindNames = map[Kind]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindI8:       "i8",
	KindI16:      "i16",
	KindI32:      "i32",
	KindI64:      "i64",
	KindI128:     "i128",
	KindU8:       "u8",
	KindU16:      "u16",
	KindU32:      "u32",
	KindU64:      "u64",
	KindU128:     "u128",
	KindF32:      "f32",
	KindF64:      "f64",
	KindDecimal:  "decimal",
	KindString:   "string",
	KindBytes:    "bytes",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
	KindInterval: "interval",
	KindUUID:     "uuid",
	KindJSON:     "json",
	KindArray:    "array",
	KindMap:      "map",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Interval is a calendar-aware duration: months and days do not have a
// fixed length, so they are carried separately from the sub-day nanos.
type Interval struct {
	Months int32
	Days   int32
	Nanos  int64
}

// Value is the universal cell type: a tagged union covering every variant a
// driver may decode a backend cell into. Values are immutable after
// construction; accessors for slice-backed variants return the underlying
// storage, which callers must not modify.
type Value struct {
	kind Kind
	n    uint64 // bool, signed/unsigned ints, float bits
	s    string // String, Decimal
	b    []byte // Bytes
	t    time.Time
	x    any // *big.Int, Interval, uuid.UUID, JSON payload, []Value, *ValueMap
}

// NewNull returns the Null value.
func NewNull() Value { return Value{kind: KindNull} }

// NewBool wraps a boolean.
func NewBool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: KindBool, n: n}
}

func NewI8(v int8) Value   { return Value{kind: KindI8, n: uint64(int64(v))} }
func NewI16(v int16) Value { return Value{kind: KindI16, n: uint64(int64(v))} }
func NewI32(v int32) Value { return Value{kind: KindI32, n: uint64(int64(v))} }
func NewI64(v int64) Value { return Value{kind: KindI64, n: uint64(v)} }

// NewI128 wraps an arbitrary-width signed integer. The big.Int is not
// copied; callers must not modify it afterwards.
func NewI128(v *big.Int) Value { return Value{kind: KindI128, x: v} }

func NewU8(v uint8) Value   { return Value{kind: KindU8, n: uint64(v)} }
func NewU16(v uint16) Value { return Value{kind: KindU16, n: uint64(v)} }
func NewU32(v uint32) Value { return Value{kind: KindU32, n: uint64(v)} }
func NewU64(v uint64) Value { return Value{kind: KindU64, n: v} }

// NewU128 wraps an arbitrary-width unsigned integer.
func NewU128(v *big.Int) Value { return Value{kind: KindU128, x: v} }

func NewF32(v float32) Value { return Value{kind: KindF32, n: uint64(math.Float32bits(v))} }
func NewF64(v float64) Value { return Value{kind: KindF64, n: math.Float64bits(v)} }

// NewDecimal carries a fixed-point number as exact text. Parsing is the
// consumer's responsibility.
func NewDecimal(text string) Value { return Value{kind: KindDecimal, s: text} }

func NewString(v string) Value { return Value{kind: KindString, s: v} }
func NewBytes(v []byte) Value  { return Value{kind: KindBytes, b: v} }

// NewDate wraps a civil date.
func NewDate(year int, month time.Month, day int) Value {
	return Value{kind: KindDate, t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// NewTime wraps a civil time of day.
func NewTime(hour, minute, second, nanos int) Value {
	return Value{kind: KindTime, t: time.Date(1, time.January, 1, hour, minute, second, nanos, time.UTC)}
}

// NewDateTime wraps a civil date and time with no timezone.
func NewDateTime(year int, month time.Month, day, hour, minute, second, nanos int) Value {
	return Value{kind: KindDateTime, t: time.Date(year, month, day, hour, minute, second, nanos, time.UTC)}
}

// NewDateTimeFromTime normalizes a timezone-bearing instant to UTC and
// stores it as a civil datetime.
func NewDateTimeFromTime(t time.Time) Value {
	u := t.UTC()
	return NewDateTime(u.Year(), u.Month(), u.Day(), u.Hour(), u.Minute(), u.Second(), u.Nanosecond())
}

// NewDateFromTime stores the date portion of t as a civil date.
func NewDateFromTime(t time.Time) Value {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// NewTimeFromTime stores the clock portion of t as a civil time.
func NewTimeFromTime(t time.Time) Value {
	return NewTime(t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

func NewInterval(months, days int32, nanos int64) Value {
	return Value{kind: KindInterval, x: Interval{Months: months, Days: days, Nanos: nanos}}
}

func NewUUID(v uuid.UUID) Value { return Value{kind: KindUUID, x: v} }

// NewJSON wraps a decoded JSON document (the encoding/json any shape).
func NewJSON(v any) Value { return Value{kind: KindJSON, x: v} }

// NewArray wraps an ordered sequence of values. The slice is not copied.
func NewArray(v []Value) Value { return Value{kind: KindArray, x: v} }

// NewMap wraps an insertion-ordered map of values.
func NewMap(m *ValueMap) Value {
	if m == nil {
		m = NewValueMap()
	}
	return Value{kind: KindMap, x: m}
}

// Kind reports the variant held by the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the Null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether the value is an integer or float variant.
// Formatters right-align numeric columns.
func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindI8, KindI16, KindI32, KindI64, KindI128,
		KindU8, KindU16, KindU32, KindU64, KindU128,
		KindF32, KindF64, KindDecimal:
		return true
	default:
		return false
	}
}

// Bool returns the boolean payload. Valid only for KindBool.
func (v Value) Bool() bool { return v.n != 0 }

// Int64 returns the signed integer payload widened to 64 bits. Valid for
// KindI8 through KindI64; the Kind preserves the declared width.
func (v Value) Int64() int64 { return int64(v.n) }

// Uint64 returns the unsigned integer payload widened to 64 bits.
func (v Value) Uint64() uint64 { return v.n }

// Float32 returns the KindF32 payload.
func (v Value) Float32() float32 { return math.Float32frombits(uint32(v.n)) }

// Float64 returns the KindF64 payload.
func (v Value) Float64() float64 { return math.Float64frombits(v.n) }

// BigInt returns the 128-bit integer payload for KindI128/KindU128.
func (v Value) BigInt() *big.Int {
	if b, ok := v.x.(*big.Int); ok {
		return b
	}
	return nil
}

// Decimal returns the exact text of a KindDecimal value.
func (v Value) Decimal() string { return v.s }

// Bytes returns the KindBytes payload without copying.
func (v Value) Bytes() []byte { return v.b }

// DateTime returns the stored civil instant for KindDate, KindTime and
// KindDateTime values. Only the relevant fields are meaningful.
func (v Value) DateTime() time.Time { return v.t }

// Interval returns the KindInterval payload.
func (v Value) Interval() Interval {
	if iv, ok := v.x.(Interval); ok {
		return iv
	}
	return Interval{}
}

// UUID returns the KindUUID payload.
func (v Value) UUID() uuid.UUID {
	if u, ok := v.x.(uuid.UUID); ok {
		return u
	}
	return uuid.UUID{}
}

// Array returns the KindArray payload without copying.
func (v Value) Array() []Value {
	if a, ok := v.x.([]Value); ok {
		return a
	}
	return nil
}

// Map returns the KindMap payload.
func (v Value) Map() *ValueMap {
	if m, ok := v.x.(*ValueMap); ok {
		return m
	}
	return nil
}

// String renders the canonical, locale-independent text form: bytes as
// standard base64, dates ISO-8601, arrays as [v1, v2], maps as {k: v}.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindI8, KindI16, KindI32, KindI64:
		return strconv.FormatInt(v.Int64(), 10)
	case KindU8, KindU16, KindU32, KindU64:
		return strconv.FormatUint(v.Uint64(), 10)
	case KindI128, KindU128:
		if b := v.BigInt(); b != nil {
			return b.String()
		}
		return "0"
	case KindF32:
		return strconv.FormatFloat(float64(v.Float32()), 'f', -1, 32)
	case KindF64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case KindDecimal, KindString:
		return v.s
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.b)
	case KindDate:
		return v.t.Format("2006-01-02")
	case KindTime:
		return v.t.Format("15:04:05") + fracSeconds(v.t.Nanosecond())
	case KindDateTime:
		return v.t.Format("2006-01-02 15:04:05") + fracSeconds(v.t.Nanosecond())
	case KindInterval:
		return v.Interval().String()
	case KindUUID:
		return v.UUID().String()
	case KindJSON:
		data, err := json.Marshal(v.x)
		if err != nil {
			return ""
		}
		return string(data)
	case KindArray:
		parts := make([]string, 0, len(v.Array()))
		for _, item := range v.Array() {
			parts = append(parts, item.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		m := v.Map()
		parts := make([]string, 0, m.Len())
		for i := 0; i < m.Len(); i++ {
			k, val := m.At(i)
			parts = append(parts, k.String()+": "+val.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

// FormattedString renders like String but groups integer digits per the
// locale (12345 becomes "12,345" under "en"). 128-bit integers are not
// grouped.
func (v Value) FormattedString(locale string) string {
	switch v.kind {
	case KindI8, KindI16, KindI32, KindI64:
		return intl.FormatInt(locale, v.Int64())
	case KindU8, KindU16, KindU32, KindU64:
		return intl.FormatUint(locale, v.Uint64())
	case KindArray:
		parts := make([]string, 0, len(v.Array()))
		for _, item := range v.Array() {
			parts = append(parts, item.FormattedString(locale))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		m := v.Map()
		parts := make([]string, 0, m.Len())
		for i := 0; i < m.Len(); i++ {
			k, val := m.At(i)
			parts = append(parts, k.FormattedString(locale)+": "+val.FormattedString(locale))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return v.String()
	}
}

// Equal compares structurally. Floats compare by value except that two NaNs
// are considered equal so result sets have a total equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindI8, KindI16, KindI32, KindI64, KindU8, KindU16, KindU32, KindU64:
		return v.n == o.n
	case KindI128, KindU128:
		a, b := v.BigInt(), o.BigInt()
		if a == nil || b == nil {
			return a == b
		}
		return a.Cmp(b) == 0
	case KindF32:
		a, b := v.Float32(), o.Float32()
		if math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
			return true
		}
		return a == b
	case KindF64:
		a, b := v.Float64(), o.Float64()
		if math.IsNaN(a) && math.IsNaN(b) {
			return true
		}
		return a == b
	case KindDecimal, KindString:
		return v.s == o.s
	case KindBytes:
		return string(v.b) == string(o.b)
	case KindDate, KindTime, KindDateTime:
		return v.t.Equal(o.t)
	case KindInterval:
		return v.Interval() == o.Interval()
	case KindUUID:
		return v.UUID() == o.UUID()
	case KindJSON:
		return jsonDeepEqual(v.x, o.x)
	case KindArray:
		a, b := v.Array(), o.Array()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case KindMap:
		a, b := v.Map(), o.Map()
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			ak, av := a.At(i)
			bk, bv := b.At(i)
			if !ak.Equal(bk) || !av.Equal(bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the interval as an ISO-8601 duration.
func (iv Interval) String() string {
	if iv.Months == 0 && iv.Days == 0 && iv.Nanos == 0 {
		return "PT0S"
	}
	var sb strings.Builder
	sb.WriteByte('P')
	months := iv.Months
	if years := months / 12; years != 0 {
		sb.WriteString(strconv.FormatInt(int64(years), 10))
		sb.WriteByte('Y')
		months %= 12
	}
	if months != 0 {
		sb.WriteString(strconv.FormatInt(int64(months), 10))
		sb.WriteByte('M')
	}
	if iv.Days != 0 {
		sb.WriteString(strconv.FormatInt(int64(iv.Days), 10))
		sb.WriteByte('D')
	}
	if iv.Nanos != 0 {
		sb.WriteByte('T')
		nanos := iv.Nanos
		if hours := nanos / int64(time.Hour); hours != 0 {
			sb.WriteString(strconv.FormatInt(hours, 10))
			sb.WriteByte('H')
			nanos %= int64(time.Hour)
		}
		if minutes := nanos / int64(time.Minute); minutes != 0 {
			sb.WriteString(strconv.FormatInt(minutes, 10))
			sb.WriteByte('M')
			nanos %= int64(time.Minute)
		}
		if nanos != 0 {
			seconds := nanos / int64(time.Second)
			sb.WriteString(strconv.FormatInt(seconds, 10))
			sb.WriteString(fracSeconds(int(nanos % int64(time.Second))))
			sb.WriteByte('S')
		}
	}
	return sb.String()
}

// fracSeconds renders nanos as a dot-prefixed fraction in 3, 6 or 9 digit
// groups, or an empty string for zero.
func fracSeconds(nanos int) string {
	if nanos == 0 {
		return ""
	}
	switch {
	case nanos%1_000_000 == 0:
		return "." + pad(nanos/1_000_000, 3)
	case nanos%1_000 == 0:
		return "." + pad(nanos/1_000, 6)
	default:
		return "." + pad(nanos, 9)
	}
}

func pad(v, width int) string {
	s := strconv.Itoa(v)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// jsonDeepEqual compares two decoded JSON payloads.
func jsonDeepEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case json.Number:
		bv, ok := b.(json.Number)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonDeepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			ov, present := bv[k]
			if !present || !jsonDeepEqual(v, ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ValueMap is an ordered map of values: iteration follows insertion order
// and Put on an existing key replaces in place.
type ValueMap struct {
	keys []Value
	vals []Value
}

// NewValueMap returns an empty ordered map.
func NewValueMap() *ValueMap { return &ValueMap{} }

// Put inserts or replaces the entry for key.
func (m *ValueMap) Put(key, value Value) {
	for i := range m.keys {
		if m.keys[i].Equal(key) {
			m.vals[i] = value
			return
		}
	}
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, value)
}

// Get returns the value stored under key.
func (m *ValueMap) Get(key Value) (Value, bool) {
	for i := range m.keys {
		if m.keys[i].Equal(key) {
			return m.vals[i], true
		}
	}
	return NewNull(), false
}

// At returns the i-th entry in insertion order.
func (m *ValueMap) At(i int) (Value, Value) {
	return m.keys[i], m.vals[i]
}

// Len returns the number of entries.
func (m *ValueMap) Len() int { return len(m.keys) }
