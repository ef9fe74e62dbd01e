// Package excel implements the driver for Office Open XML workbooks. Every
// worksheet becomes a table on the embedded engine; when the workbook has
// more than one sheet the sheet name is appended to the table name.
//
// The has_header option (default true) decides whether the first row names
// the columns; otherwise columns get spreadsheet-style names.
package excel

import (
	"context"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens excel:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "excel" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	path, err := driver.FilePath(url)
	if err != nil {
		return nil, err
	}
	parameters, err := driver.QueryOptions(url)
	if err != nil {
		return nil, err
	}
	hasHeader := driver.BoolOption(parameters, "has_header", true)

	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, driver.IOError(err)
	}
	defer func() { _ = workbook.Close() }()

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return nil, driver.IOError(err)
	}

	table := engine.TableName(path)
	sheets := workbook.GetSheetList()
	for _, sheet := range sheets {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			_ = eng.Close()
			return nil, driver.IOError(err)
		}
		frame := buildFrame(rows, hasHeader)
		name := table
		if len(sheets) > 1 {
			name = engine.SheetTableName(table, sheet)
		}
		if _, err := eng.RegisterFrame(ctx, name, frame); err != nil {
			_ = eng.Close()
			return nil, driver.IOError(err)
		}
	}
	return engine.NewConnection(url, eng), nil
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeExcel
}

// buildFrame shapes raw sheet rows into a frame. Ragged rows are padded
// with nulls to the widest row.
func buildFrame(rows [][]string, hasHeader bool) engine.Frame {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var frame engine.Frame
	start := 0
	if hasHeader && len(rows) > 0 {
		if len(rows[0]) > width {
			width = len(rows[0])
		}
		for i := 0; i < width; i++ {
			if i < len(rows[0]) && rows[0][i] != "" {
				frame.Columns = append(frame.Columns, rows[0][i])
			} else {
				frame.Columns = append(frame.Columns, engine.SpreadsheetColumnName(i))
			}
		}
		start = 1
	} else {
		for i := 0; i < width; i++ {
			frame.Columns = append(frame.Columns, engine.SpreadsheetColumnName(i))
		}
	}

	for _, raw := range rows[start:] {
		row := make(driver.Row, width)
		for i := range row {
			if i < len(raw) {
				row[i] = CellValue(raw[i])
			} else {
				row[i] = driver.NewNull()
			}
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame
}

// CellValue types a formatted spreadsheet cell: integers, floats and
// booleans are recognized, everything else stays text. Numbers with
// leading zeros stay text so identifiers survive.
func CellValue(cell string) driver.Value {
	if cell == "" {
		return driver.NewNull()
	}
	if !leadingZero(cell) {
		if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return driver.NewI64(n)
		}
		if f, err := strconv.ParseFloat(cell, 64); err == nil {
			return driver.NewF64(f)
		}
	}
	switch strings.ToLower(cell) {
	case "true":
		return driver.NewBool(true)
	case "false":
		return driver.NewBool(false)
	}
	return driver.NewString(cell)
}

func leadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}
