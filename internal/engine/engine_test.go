package engine

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/internal/testutil"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(context.Background(), testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func usersFrame() Frame {
	return Frame{
		Columns: []string{"id", "name"},
		Rows: []driver.Row{
			{driver.NewI64(1), driver.NewString("foo")},
			{driver.NewI64(2), driver.NewString("bar")},
		},
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"users.csv", "users"},
		{"/tmp/data/users.csv.gz", "users"},
		{"users", "users"},
		{"archive.tar.gz", "archive"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TableName(tt.path), "path %q", tt.path)
	}
}

func TestSheetTableName(t *testing.T) {
	assert.Equal(t, "users__Sheet_1", SheetTableName("users", "Sheet 1"))
	assert.Equal(t, "users__Q1_2024", SheetTableName("users", "Q1/2024"))
}

func TestSpreadsheetColumnName(t *testing.T) {
	tests := []struct {
		column   int
		expected string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SpreadsheetColumnName(tt.column), "column %d", tt.column)
	}
}

func TestDecimalText(t *testing.T) {
	tests := []struct {
		value    int64
		scale    int
		expected string
	}{
		{12345, 2, "123.45"},
		{5, 3, "0.005"},
		{-12345, 2, "-123.45"},
		{7, 0, "7"},
		{0, 2, "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, decimalText(big.NewInt(tt.value), tt.scale))
	}
	assert.Equal(t, "0", decimalText(nil, 2))
}

func TestInferColumnTypes(t *testing.T) {
	frame := Frame{
		Columns: []string{"id", "name", "mixed", "empty"},
		Rows: []driver.Row{
			{driver.NewNull(), driver.NewString("foo"), driver.NewI64(1), driver.NewNull()},
			{driver.NewI64(2), driver.NewString("bar"), driver.NewString("x"), driver.NewNull()},
		},
	}
	assert.Equal(t, []string{"BIGINT", "VARCHAR", "VARCHAR", "VARCHAR"}, inferColumnTypes(frame))
}

func TestRegisterFrame(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	table, err := eng.RegisterFrame(ctx, "users", usersFrame())
	require.NoError(t, err)
	assert.Equal(t, "users", table)
	assert.Equal(t, []string{"users"}, eng.TableNames())

	columns, rows, err := eng.Query(ctx, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, driver.NewI64(1), rows[0][0])
	assert.Equal(t, "foo", rows[0][1].String())
	assert.Equal(t, driver.NewI64(2), rows[1][0])
}

func TestRegisterFrameNameCollision(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	first, err := eng.RegisterFrame(ctx, "users", usersFrame())
	require.NoError(t, err)
	second, err := eng.RegisterFrame(ctx, "users", usersFrame())
	require.NoError(t, err)

	assert.Equal(t, "users", first)
	assert.Equal(t, "users_1", second)
	assert.Equal(t, []string{"users", "users_1"}, eng.TableNames())
}

func TestRegisterFrameEmptyName(t *testing.T) {
	eng := newTestEngine(t)

	table, err := eng.RegisterFrame(context.Background(), "", usersFrame())
	require.NoError(t, err)
	assert.Equal(t, "table", table)
}

func TestRegisterCSV(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,foo\n2,bar\n"), 0o600))

	table, err := eng.RegisterCSV(ctx, TableName(path), path, DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, "users", table)

	_, rows, err := eng.Query(ctx, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, driver.NewI64(1), rows[0][0])
	assert.Equal(t, "foo", rows[0][1].String())
}

func TestRegisterCSVSeparatorAndSkip(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "users.pipe")
	require.NoError(t, os.WriteFile(path, []byte("id|name\n1|foo\n2|bar\n"), 0o600))

	options := DefaultCSVOptions()
	options.Separator = '|'
	options.SkipRowsAfterHeader = 1

	table, err := eng.RegisterCSV(ctx, TableName(path), path, options)
	require.NoError(t, err)

	_, rows, err := eng.Query(ctx, "SELECT * FROM "+table)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRegisterJSONBytes(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	data := []byte(`[{"id": 1, "name": "foo"}, {"id": 2, "name": "bar"}]`)
	table, err := eng.RegisterJSONBytes(ctx, "users", data, DefaultJSONOptions())
	require.NoError(t, err)
	assert.Equal(t, "users", table)

	_, rows, err := eng.Query(ctx, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "bar", rows[1][1].String())
}

func TestExecuteReportsResultHeight(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.RegisterFrame(ctx, "users", usersFrame())
	require.NoError(t, err)

	affected, err := eng.Execute(ctx, "SELECT * FROM users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}

func TestQueryWidensSmallUnsigned(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	frame := Frame{
		Columns: []string{"u8", "u16", "u32"},
		Rows: []driver.Row{
			{driver.NewU8(8), driver.NewU16(16), driver.NewU32(32)},
		},
	}
	_, err := eng.RegisterFrame(ctx, "widths", frame)
	require.NoError(t, err)

	_, rows, err := eng.Query(ctx, "SELECT u8, u16, u32 FROM widths")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, driver.KindU32, rows[0][0].Kind())
	assert.Equal(t, driver.KindU32, rows[0][1].Kind())
	assert.Equal(t, driver.KindU32, rows[0][2].Kind())
	assert.Equal(t, uint64(8), rows[0][0].Uint64())
}

func TestQueryDataTypes(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    string
		kind     driver.Kind
		expected string
	}{
		{"date", "SELECT DATE '2021-01-01'", driver.KindDate, "2021-01-01"},
		{"time", "SELECT TIME '12:13:14'", driver.KindTime, "12:13:14"},
		{"timestamp", "SELECT TIMESTAMP '2000-12-31 12:13:14.015'", driver.KindDateTime, "2000-12-31 12:13:14.015"},
		{"decimal", "SELECT 123.45::DECIMAL(5,2)", driver.KindDecimal, "123.45"},
		{"hugeint", "SELECT 170141183460469231731687303715884105727::HUGEINT", driver.KindI128, "170141183460469231731687303715884105727"},
		{"list", "SELECT [1, 2]", driver.KindArray, "[1, 2]"},
		{"struct", "SELECT {'a': 1}", driver.KindMap, "{a: 1}"},
		{"interval", "SELECT INTERVAL 90 MINUTE", driver.KindInterval, "PT1H30M"},
		{"blob", "SELECT 'foo'::BLOB", driver.KindBytes, "Zm9v"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rows, err := eng.Query(ctx, tt.query)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.kind, rows[0][0].Kind())
			assert.Equal(t, tt.expected, rows[0][0].String())
		})
	}
}
