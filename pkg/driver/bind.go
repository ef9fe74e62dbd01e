package driver

import (
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ToValue converts a Go value into the value algebra for use as a query
// parameter. Nil and nil pointers become Null; timezone-bearing times are
// normalized to UTC civil datetimes.
func ToValue(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return NewNull(), nil
	case Value:
		return t, nil
	case bool:
		return NewBool(t), nil
	case int8:
		return NewI8(t), nil
	case int16:
		return NewI16(t), nil
	case int32:
		return NewI32(t), nil
	case int64:
		return NewI64(t), nil
	case int:
		return NewI64(int64(t)), nil
	case uint8:
		return NewU8(t), nil
	case uint16:
		return NewU16(t), nil
	case uint32:
		return NewU32(t), nil
	case uint64:
		return NewU64(t), nil
	case uint:
		return NewU64(uint64(t)), nil
	case float32:
		return NewF32(t), nil
	case float64:
		return NewF64(t), nil
	case string:
		return NewString(t), nil
	case []byte:
		if t == nil {
			return NewNull(), nil
		}
		return NewBytes(t), nil
	case time.Time:
		return NewDateTimeFromTime(t), nil
	case uuid.UUID:
		return NewUUID(t), nil
	case *big.Int:
		if t == nil {
			return NewNull(), nil
		}
		return NewI128(t), nil
	case *bool:
		if t == nil {
			return NewNull(), nil
		}
		return NewBool(*t), nil
	case *int32:
		if t == nil {
			return NewNull(), nil
		}
		return NewI32(*t), nil
	case *int64:
		if t == nil {
			return NewNull(), nil
		}
		return NewI64(*t), nil
	case *float64:
		if t == nil {
			return NewNull(), nil
		}
		return NewF64(*t), nil
	case *string:
		if t == nil {
			return NewNull(), nil
		}
		return NewString(*t), nil
	case *time.Time:
		if t == nil {
			return NewNull(), nil
		}
		return NewDateTimeFromTime(*t), nil
	default:
		return Value{}, ConversionErrorf("unsupported parameter type %T", v)
	}
}

// ToValues converts a parameter list with ToValue.
func ToValues(args []any) ([]Value, error) {
	values := make([]Value, 0, len(args))
	for _, arg := range args {
		v, err := ToValue(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Native lowers a Value to a type SQL drivers bind natively. 128-bit
// integers, decimals, UUIDs, intervals and JSON shapes travel as their
// canonical text and are cast by the backend.
func Native(value Value) any {
	switch value.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return value.Bool()
	case KindI8, KindI16, KindI32, KindI64:
		return value.Int64()
	case KindU8, KindU16, KindU32:
		return int64(value.Uint64())
	case KindU64:
		if value.Uint64() <= math.MaxInt64 {
			return int64(value.Uint64())
		}
		return strconv.FormatUint(value.Uint64(), 10)
	case KindF32:
		return float64(value.Float32())
	case KindF64:
		return value.Float64()
	case KindString:
		return value.String()
	case KindBytes:
		return value.Bytes()
	case KindDate, KindTime, KindDateTime:
		return value.DateTime()
	default:
		return value.String()
	}
}

// NativeArguments applies Native to every Value parameter, passing
// anything else through untouched.
func NativeArguments(args []any) []any {
	natives := make([]any, len(args))
	for i, arg := range args {
		if value, ok := arg.(Value); ok {
			natives[i] = Native(value)
			continue
		}
		natives[i] = arg
	}
	return natives
}
