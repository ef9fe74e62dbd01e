package driver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// The wire form tags every value with its kind so a decoded value carries
// the same variant it was encoded from. Floats travel as strings to keep
// NaN and the infinities representable; 128-bit integers and decimals
// travel as strings to avoid precision loss in consumers that read JSON
// numbers as float64.
type valueEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type intervalEnvelope struct {
	Months int32 `json:"months"`
	Days   int32 `json:"days"`
	Nanos  int64 `json:"nanos"`
}

type mapEntryEnvelope struct {
	Key   Value `json:"key"`
	Value Value `json:"value"`
}

// MarshalJSON encodes the value as {"type": kind, "value": payload}.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.kind {
	case KindNull:
		return json.Marshal(valueEnvelope{Type: v.kind.String()})
	case KindBool:
		payload = v.Bool()
	case KindI8, KindI16, KindI32, KindI64:
		payload = v.Int64()
	case KindU8, KindU16, KindU32, KindU64:
		payload = v.Uint64()
	case KindI128, KindU128:
		payload = v.String()
	case KindF32:
		payload = strconv.FormatFloat(float64(v.Float32()), 'g', -1, 32)
	case KindF64:
		payload = strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case KindDecimal, KindString:
		payload = v.s
	case KindBytes:
		payload = base64.StdEncoding.EncodeToString(v.b)
	case KindDate, KindTime, KindDateTime:
		payload = v.String()
	case KindInterval:
		iv := v.Interval()
		payload = intervalEnvelope{Months: iv.Months, Days: iv.Days, Nanos: iv.Nanos}
	case KindUUID:
		payload = v.UUID().String()
	case KindJSON:
		payload = v.x
	case KindArray:
		payload = v.Array()
	case KindMap:
		m := v.Map()
		entries := make([]mapEntryEnvelope, 0, m.Len())
		for i := 0; i < m.Len(); i++ {
			k, val := m.At(i)
			entries = append(entries, mapEntryEnvelope{Key: k, Value: val})
		}
		payload = entries
	default:
		return nil, fmt.Errorf("cannot marshal value of kind %s", v.kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueEnvelope{Type: v.kind.String(), Value: raw})
}

// UnmarshalJSON decodes the envelope produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var env valueEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	kind, ok := kindByName(env.Type)
	if !ok {
		return fmt.Errorf("unknown value type %q", env.Type)
	}
	decoded, err := decodeEnvelope(kind, env.Value)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func kindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindNull, false
}

func decodeEnvelope(kind Kind, raw json.RawMessage) (Value, error) {
	switch kind {
	case KindNull:
		return NewNull(), nil
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, err
		}
		return NewBool(b), nil
	case KindI8, KindI16, KindI32, KindI64:
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return Value{}, err
		}
		return Value{kind: kind, n: uint64(n)}, nil
	case KindU8, KindU16, KindU32, KindU64:
		var n uint64
		if err := json.Unmarshal(raw, &n); err != nil {
			return Value{}, err
		}
		return Value{kind: kind, n: n}, nil
	case KindI128, KindU128:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		b, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return Value{}, fmt.Errorf("invalid 128-bit integer %q", s)
		}
		return Value{kind: kind, x: b}, nil
	case KindF32:
		f, err := decodeFloat(raw, 32)
		if err != nil {
			return Value{}, err
		}
		return NewF32(float32(f)), nil
	case KindF64:
		f, err := decodeFloat(raw, 64)
		if err != nil {
			return Value{}, err
		}
		return NewF64(f), nil
	case KindDecimal, KindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return Value{kind: kind, s: s}, nil
	case KindBytes:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return Value{}, err
		}
		return NewBytes(b), nil
	case KindDate:
		return decodeCivil(raw, "2006-01-02", KindDate)
	case KindTime:
		return decodeCivil(raw, "15:04:05", KindTime)
	case KindDateTime:
		return decodeCivil(raw, "2006-01-02 15:04:05", KindDateTime)
	case KindInterval:
		var iv intervalEnvelope
		if err := json.Unmarshal(raw, &iv); err != nil {
			return Value{}, err
		}
		return NewInterval(iv.Months, iv.Days, iv.Nanos), nil
	case KindUUID:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return Value{}, err
		}
		return NewUUID(u), nil
	case KindJSON:
		var payload any
		if err := json.Unmarshal(raw, &payload); err != nil {
			return Value{}, err
		}
		return NewJSON(payload), nil
	case KindArray:
		var items []Value
		if err := json.Unmarshal(raw, &items); err != nil {
			return Value{}, err
		}
		if items == nil {
			items = []Value{}
		}
		return NewArray(items), nil
	case KindMap:
		var entries []mapEntryEnvelope
		if err := json.Unmarshal(raw, &entries); err != nil {
			return Value{}, err
		}
		m := NewValueMap()
		for _, e := range entries {
			m.Put(e.Key, e.Value)
		}
		return NewMap(m), nil
	default:
		return Value{}, fmt.Errorf("cannot unmarshal value of kind %s", kind)
	}
}

func decodeFloat(raw json.RawMessage, bits int) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, bits)
	}
	// Plain numbers are accepted for hand-written input.
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

func decodeCivil(raw json.RawMessage, layout string, kind Kind) (Value, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Value{}, err
	}
	base := s
	nanos := 0
	if i := indexFraction(s, layout); i >= 0 {
		base = s[:i]
		frac := s[i+1:]
		for len(frac) < 9 {
			frac += "0"
		}
		n, err := strconv.Atoi(frac[:9])
		if err != nil {
			return Value{}, fmt.Errorf("invalid fractional seconds in %q", s)
		}
		nanos = n
	}
	t, err := time.ParseInLocation(layout, base, time.UTC)
	if err != nil {
		return Value{}, err
	}
	switch kind {
	case KindDate:
		return NewDate(t.Year(), t.Month(), t.Day()), nil
	case KindTime:
		return NewTime(t.Hour(), t.Minute(), t.Second(), nanos), nil
	default:
		return NewDateTime(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), nanos), nil
	}
}

func indexFraction(s, layout string) int {
	if len(s) <= len(layout) || s[len(layout)] != '.' {
		return -1
	}
	return len(layout)
}

// JSON returns the value in the natural shape formatters emit: nulls as
// nil, numbers as numbers, bytes as base64 text, dates as their canonical
// strings, maps as insertion-ordered objects. The result marshals with
// encoding/json.
func (v Value) JSON() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool()
	case KindI8, KindI16, KindI32, KindI64:
		return v.Int64()
	case KindU8, KindU16, KindU32, KindU64:
		return v.Uint64()
	case KindI128, KindU128:
		if b := v.BigInt(); b != nil {
			return json.Number(b.String())
		}
		return json.Number("0")
	case KindF32:
		f := float64(v.Float32())
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v.String()
		}
		return f
	case KindF64:
		f := v.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v.String()
		}
		return f
	case KindDecimal:
		return json.Number(v.s)
	case KindString:
		return v.s
	case KindBytes, KindDate, KindTime, KindDateTime, KindInterval, KindUUID:
		return v.String()
	case KindJSON:
		return v.x
	case KindArray:
		items := make([]any, 0, len(v.Array()))
		for _, item := range v.Array() {
			items = append(items, item.JSON())
		}
		return items
	case KindMap:
		m := v.Map()
		obj := make(jsonObject, 0, m.Len())
		for i := 0; i < m.Len(); i++ {
			k, val := m.At(i)
			obj = append(obj, jsonMember{Key: k.String(), Value: val.JSON()})
		}
		return obj
	default:
		return nil
	}
}

type jsonMember struct {
	Key   string
	Value any
}

// jsonObject marshals as a JSON object preserving member order.
type jsonObject []jsonMember

func (o jsonObject) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, m := range o {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}
