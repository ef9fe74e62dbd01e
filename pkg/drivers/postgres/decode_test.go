package postgres

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func encodeCell(t *testing.T, typeMap *pgtype.Map, oid uint32, format int16, value any) []byte {
	t.Helper()
	src, err := typeMap.Encode(oid, format, value, nil)
	require.NoError(t, err)
	return src
}

func decodeCell(t *testing.T, typeMap *pgtype.Map, oid uint32, format int16, src []byte) (driver.Value, error) {
	t.Helper()
	field := pgconn.FieldDescription{Name: "v", DataTypeOID: oid, Format: format}
	return cellValue(typeMap, field, src)
}

func TestCellValueScalars(t *testing.T) {
	typeMap := pgtype.NewMap()

	tests := []struct {
		name  string
		oid   uint32
		value any
		want  driver.Value
	}{
		{"bool", pgtype.BoolOID, true, driver.NewBool(true)},
		{"int2", pgtype.Int2OID, int16(32767), driver.NewI16(32767)},
		{"int4", pgtype.Int4OID, int32(2147483647), driver.NewI32(2147483647)},
		{"int8", pgtype.Int8OID, int64(2147483647), driver.NewI64(2147483647)},
		{"float4", pgtype.Float4OID, float32(1.25), driver.NewF32(1.25)},
		{"float8", pgtype.Float8OID, float64(1.25), driver.NewF64(1.25)},
		{"oid", pgtype.OIDOID, uint32(4294967295), driver.NewU32(4294967295)},
		{"text", pgtype.TextOID, "foo", driver.NewString("foo")},
		{"name", pgtype.NameOID, "pg_catalog", driver.NewString("pg_catalog")},
		{"char", pgtype.QCharOID, byte('a'), driver.NewString("a")},
		{"bytea", pgtype.ByteaOID, []byte{0x2a}, driver.NewBytes([]byte{0x2a})},
		{
			"numeric",
			pgtype.NumericOID,
			pgtype.Numeric{Int: big.NewInt(123), Exp: -2, Valid: true},
			driver.NewDecimal("1.23"),
		},
		{
			"bit",
			pgtype.BitOID,
			pgtype.Bits{Bytes: []byte{0b1010_0000}, Len: 3, Valid: true},
			driver.NewString("101"),
		},
		{
			"varbit",
			pgtype.VarbitOID,
			pgtype.Bits{Bytes: []byte{0b1010_1010, 0b1100_0000}, Len: 10, Valid: true},
			driver.NewString("1010101011"),
		},
		{
			"uuid",
			pgtype.UUIDOID,
			[16]byte(uuid.MustParse("acf5b3e3-4c4d-4860-8604-490db38c99dc")),
			driver.NewUUID(uuid.MustParse("acf5b3e3-4c4d-4860-8604-490db38c99dc")),
		},
		{
			"interval",
			pgtype.IntervalOID,
			pgtype.Interval{Months: 1, Days: 2, Microseconds: 3_000_000, Valid: true},
			driver.NewInterval(1, 2, 3_000_000_000),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := encodeCell(t, typeMap, tt.oid, pgtype.BinaryFormatCode, tt.value)
			got, err := decodeCell(t, typeMap, tt.oid, pgtype.BinaryFormatCode, src)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCellValueTemporals(t *testing.T) {
	typeMap := pgtype.NewMap()

	src := encodeCell(t, typeMap, pgtype.DateOID, pgtype.BinaryFormatCode,
		time.Date(1983, time.January, 1, 0, 0, 0, 0, time.UTC))
	got, err := decodeCell(t, typeMap, pgtype.DateOID, pgtype.BinaryFormatCode, src)
	require.NoError(t, err)
	require.Equal(t, driver.NewDate(1983, time.January, 1), got)

	src = encodeCell(t, typeMap, pgtype.TimeOID, pgtype.BinaryFormatCode,
		pgtype.Time{Microseconds: ((1*3600+23*60+45)*1_000_000 + 500_000), Valid: true})
	got, err = decodeCell(t, typeMap, pgtype.TimeOID, pgtype.BinaryFormatCode, src)
	require.NoError(t, err)
	require.Equal(t, driver.NewTime(1, 23, 45, 500_000_000), got)

	src = encodeCell(t, typeMap, pgtype.TimestampOID, pgtype.BinaryFormatCode,
		time.Date(1983, time.January, 1, 1, 23, 45, 0, time.UTC))
	got, err = decodeCell(t, typeMap, pgtype.TimestampOID, pgtype.BinaryFormatCode, src)
	require.NoError(t, err)
	require.Equal(t, driver.NewDateTime(1983, time.January, 1, 1, 23, 45, 0), got)

	// A zoned instant normalizes to UTC.
	src = encodeCell(t, typeMap, pgtype.TimestamptzOID, pgtype.BinaryFormatCode,
		time.Date(2024, time.July, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600)))
	got, err = decodeCell(t, typeMap, pgtype.TimestamptzOID, pgtype.BinaryFormatCode, src)
	require.NoError(t, err)
	require.Equal(t, driver.NewDateTime(2024, time.July, 1, 10, 0, 0, 0), got)
}

func TestCellValueTimetz(t *testing.T) {
	typeMap := pgtype.NewMap()

	got, err := decodeCell(t, typeMap, pgtype.TimetzOID, pgtype.TextFormatCode, []byte("12:13:14.25+02"))
	require.NoError(t, err)
	require.Equal(t, driver.NewTime(12, 13, 14, 250_000_000), got)

	got, err = decodeCell(t, typeMap, pgtype.TimetzOID, pgtype.TextFormatCode, []byte("23:59:59-05:30"))
	require.NoError(t, err)
	require.Equal(t, driver.NewTime(23, 59, 59, 0), got)

	_, err = decodeCell(t, typeMap, pgtype.TimetzOID, pgtype.TextFormatCode, []byte("not a time"))
	require.ErrorIs(t, err, driver.ErrConversion)
}

func TestCellValueJSON(t *testing.T) {
	typeMap := pgtype.NewMap()

	src := encodeCell(t, typeMap, pgtype.JSONOID, pgtype.TextFormatCode, []byte(`{"key": "value"}`))
	got, err := decodeCell(t, typeMap, pgtype.JSONOID, pgtype.TextFormatCode, src)
	require.NoError(t, err)
	require.Equal(t, driver.NewJSON(map[string]any{"key": "value"}), got)

	src = encodeCell(t, typeMap, pgtype.JSONBOID, pgtype.BinaryFormatCode, []byte(`[1, 2]`))
	got, err = decodeCell(t, typeMap, pgtype.JSONBOID, pgtype.BinaryFormatCode, src)
	require.NoError(t, err)
	require.Equal(t, driver.KindJSON, got.Kind())
}

func TestCellValueArrays(t *testing.T) {
	typeMap := pgtype.NewMap()

	src := encodeCell(t, typeMap, pgtype.Int4ArrayOID, pgtype.BinaryFormatCode, []int32{0, 2147483647})
	got, err := decodeCell(t, typeMap, pgtype.Int4ArrayOID, pgtype.BinaryFormatCode, src)
	require.NoError(t, err)
	require.Equal(t, driver.NewArray([]driver.Value{
		driver.NewI32(0),
		driver.NewI32(2147483647),
	}), got)

	src = encodeCell(t, typeMap, pgtype.TextArrayOID, pgtype.BinaryFormatCode, []string{"foo", "bar"})
	got, err = decodeCell(t, typeMap, pgtype.TextArrayOID, pgtype.BinaryFormatCode, src)
	require.NoError(t, err)
	require.Equal(t, driver.NewArray([]driver.Value{
		driver.NewString("foo"),
		driver.NewString("bar"),
	}), got)

	// NULL elements survive as Null values.
	one := int64(1)
	src = encodeCell(t, typeMap, pgtype.Int8ArrayOID, pgtype.BinaryFormatCode, []*int64{nil, &one})
	got, err = decodeCell(t, typeMap, pgtype.Int8ArrayOID, pgtype.BinaryFormatCode, src)
	require.NoError(t, err)
	require.Equal(t, driver.NewArray([]driver.Value{
		driver.NewNull(),
		driver.NewI64(1),
	}), got)
}

func TestCellValueNullAndVoid(t *testing.T) {
	typeMap := pgtype.NewMap()

	got, err := decodeCell(t, typeMap, pgtype.TextOID, pgtype.TextFormatCode, nil)
	require.NoError(t, err)
	require.Equal(t, driver.NewNull(), got)

	got, err = decodeCell(t, typeMap, voidOID, pgtype.TextFormatCode, []byte{})
	require.NoError(t, err)
	require.Equal(t, driver.NewNull(), got)
}

func TestCellValueUnsupported(t *testing.T) {
	typeMap := pgtype.NewMap()

	_, err := decodeCell(t, typeMap, pgtype.PointOID, pgtype.TextFormatCode, []byte("(1,2)"))
	var colErr driver.UnsupportedColumnTypeError
	require.ErrorAs(t, err, &colErr)
	require.Equal(t, "v", colErr.ColumnName)
	require.Equal(t, "point", colErr.ColumnType)
}

func TestNumericText(t *testing.T) {
	tests := []struct {
		name    string
		numeric pgtype.Numeric
		want    string
	}{
		{"zero", pgtype.Numeric{Int: big.NewInt(0), Valid: true}, "0"},
		{"integral", pgtype.Numeric{Int: big.NewInt(42), Valid: true}, "42"},
		{"positive exponent", pgtype.Numeric{Int: big.NewInt(123), Exp: 2, Valid: true}, "12300"},
		{"fraction", pgtype.Numeric{Int: big.NewInt(123), Exp: -2, Valid: true}, "1.23"},
		{"leading zeros", pgtype.Numeric{Int: big.NewInt(-5), Exp: -3, Valid: true}, "-0.005"},
		{"nan", pgtype.Numeric{NaN: true, Valid: true}, "NaN"},
		{"infinity", pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true}, "Infinity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, numericText(tt.numeric))
		})
	}
}
