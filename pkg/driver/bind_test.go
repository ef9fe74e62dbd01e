package driver

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToValue(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	loc := time.FixedZone("UTC-3", -3*60*60)

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{name: "nil", in: nil, want: NewNull()},
		{name: "value passthrough", in: NewDecimal("1.5"), want: NewDecimal("1.5")},
		{name: "bool", in: true, want: NewBool(true)},
		{name: "int8", in: int8(-1), want: NewI8(-1)},
		{name: "int16", in: int16(2), want: NewI16(2)},
		{name: "int32", in: int32(3), want: NewI32(3)},
		{name: "int64", in: int64(4), want: NewI64(4)},
		{name: "int", in: 5, want: NewI64(5)},
		{name: "uint8", in: uint8(6), want: NewU8(6)},
		{name: "uint64", in: uint64(7), want: NewU64(7)},
		{name: "uint", in: uint(8), want: NewU64(8)},
		{name: "float32", in: float32(1.5), want: NewF32(1.5)},
		{name: "float64", in: 2.5, want: NewF64(2.5)},
		{name: "string", in: "foo", want: NewString("foo")},
		{name: "bytes", in: []byte{1, 2}, want: NewBytes([]byte{1, 2})},
		{name: "nil bytes", in: []byte(nil), want: NewNull()},
		{
			name: "time normalized to utc",
			in:   time.Date(2024, time.March, 1, 9, 0, 0, 0, loc),
			want: NewDateTime(2024, time.March, 1, 12, 0, 0, 0),
		},
		{name: "uuid", in: id, want: NewUUID(id)},
		{name: "nil string pointer", in: (*string)(nil), want: NewNull()},
		{name: "nil time pointer", in: (*time.Time)(nil), want: NewNull()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToValue(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestToValuePointers(t *testing.T) {
	s := "hello"
	got, err := ToValue(&s)
	require.NoError(t, err)
	assert.True(t, NewString("hello").Equal(got))

	n := int64(42)
	got, err = ToValue(&n)
	require.NoError(t, err)
	assert.True(t, NewI64(42).Equal(got))
}

func TestToValueUnsupported(t *testing.T) {
	_, err := ToValue(struct{ X int }{X: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversion)
}

func TestToValues(t *testing.T) {
	values, err := ToValues([]any{1, "a", nil})
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.True(t, values[0].Equal(NewI64(1)))
	assert.True(t, values[1].Equal(NewString("a")))
	assert.True(t, values[2].IsNull())

	_, err = ToValues([]any{make(chan int)})
	require.Error(t, err)
}
