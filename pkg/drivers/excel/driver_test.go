package excel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func writeWorkbook(t *testing.T, build func(*excelize.File)) string {
	t.Helper()
	workbook := excelize.NewFile()
	defer func() { _ = workbook.Close() }()
	build(workbook)
	path := filepath.Join(t.TempDir(), "users.xlsx")
	require.NoError(t, workbook.SaveAs(path))
	return path
}

func TestConnect(t *testing.T) {
	ctx := context.Background()
	path := writeWorkbook(t, func(workbook *excelize.File) {
		require.NoError(t, workbook.SetSheetRow("Sheet1", "A1", &[]any{"id", "name"}))
		require.NoError(t, workbook.SetSheetRow("Sheet1", "A2", &[]any{1, "alice"}))
		require.NoError(t, workbook.SetSheetRow("Sheet1", "A3", &[]any{2, "bob"}))
	})

	conn, err := (&Driver{}).Connect(ctx, "excel://"+path)
	require.NoError(t, err)
	defer func() { _ = conn.Close(ctx) }()

	result, err := conn.Query(ctx, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	defer func() { _ = result.Close() }()

	assert.Equal(t, []string{"id", "name"}, result.Columns())
	row, err := result.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, driver.Row{driver.NewI64(1), driver.NewString("alice")}, row)
	row, err = result.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, driver.Row{driver.NewI64(2), driver.NewString("bob")}, row)
	row, err = result.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, row)
}

// A workbook with more than one sheet registers one table per sheet.
func TestConnectMultipleSheets(t *testing.T) {
	ctx := context.Background()
	path := writeWorkbook(t, func(workbook *excelize.File) {
		require.NoError(t, workbook.SetSheetRow("Sheet1", "A1", &[]any{"id"}))
		require.NoError(t, workbook.SetSheetRow("Sheet1", "A2", &[]any{1}))
		_, err := workbook.NewSheet("Extra")
		require.NoError(t, err)
		require.NoError(t, workbook.SetSheetRow("Extra", "A1", &[]any{"id"}))
		require.NoError(t, workbook.SetSheetRow("Extra", "A2", &[]any{2}))
	})

	conn, err := (&Driver{}).Connect(ctx, "excel://"+path)
	require.NoError(t, err)
	defer func() { _ = conn.Close(ctx) }()

	for table, expected := range map[string]driver.Value{
		"users__Sheet1": driver.NewI64(1),
		"users__Extra":  driver.NewI64(2),
	} {
		result, err := conn.Query(ctx, "SELECT id FROM "+table)
		require.NoError(t, err)
		row, err := result.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, driver.Row{expected}, row, table)
		require.NoError(t, result.Close())
	}
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		cell     string
		expected driver.Value
	}{
		{"", driver.NewNull()},
		{"42", driver.NewI64(42)},
		{"-7", driver.NewI64(-7)},
		{"1.5", driver.NewF64(1.5)},
		{"007", driver.NewString("007")},
		{"true", driver.NewBool(true)},
		{"FALSE", driver.NewBool(false)},
		{"alice", driver.NewString("alice")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CellValue(tt.cell), "cell %q", tt.cell)
	}
}
