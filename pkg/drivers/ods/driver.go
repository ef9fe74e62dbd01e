// Package ods implements the driver for OpenDocument spreadsheets. The
// content stream is parsed straight out of the archive; every sheet
// becomes a table on the embedded engine, named like the excel driver
// names them.
package ods

import (
	"archive/zip"
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens ods:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "ods" }

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

	sheets, err := readSheets(path)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return nil, driver.IOError(err)
	}
	table := engine.TableName(path)
	for _, sheet := range sheets {
		name := table
		if len(sheets) > 1 {
			name = engine.SheetTableName(table, sheet.name)
		}
		if _, err := eng.RegisterFrame(ctx, name, buildFrame(sheet.rows, hasHeader)); err != nil {
			_ = eng.Close()
			return nil, driver.IOError(err)
		}
	}
	return engine.NewConnection(url, eng), nil
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeODS
}

type sheet struct {
	name string
	rows [][]driver.Value
}

// maxEmptyRepeat caps column/row repetition of empty content; documents
// pad the sheet grid with huge trailing repeats.
const maxEmptyRepeat = 64

func readSheets(path string) ([]sheet, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, driver.IOError(err)
	}
	defer func() { _ = archive.Close() }()

	for _, f := range archive.File {
		if f.Name != "content.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, driver.IOError(err)
		}
		doc, err := xmlquery.Parse(rc)
		_ = rc.Close()
		if err != nil {
			return nil, driver.IOError(err)
		}
		return parseSheets(doc), nil
	}
	return nil, driver.IOErrorf("no content stream in %s", path)
}

func parseSheets(doc *xmlquery.Node) []sheet {
	var sheets []sheet
	for _, table := range elements(doc, "table") {
		s := sheet{name: table.SelectAttr("table:name")}
		for child := table.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != xmlquery.ElementNode || child.Data != "table-row" {
				continue
			}
			row := parseRow(child)
			repeat := repeatCount(child, "table:number-rows-repeated", len(row) == 0)
			for i := 0; i < repeat; i++ {
				s.rows = append(s.rows, row)
			}
		}
		// drop trailing empty rows left by grid padding
		for len(s.rows) > 0 && len(s.rows[len(s.rows)-1]) == 0 {
			s.rows = s.rows[:len(s.rows)-1]
		}
		sheets = append(sheets, s)
	}
	return sheets
}

func parseRow(node *xmlquery.Node) []driver.Value {
	var row []driver.Value
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		if child.Data != "table-cell" && child.Data != "covered-table-cell" {
			continue
		}
		value := cellValue(child)
		repeat := repeatCount(child, "table:number-columns-repeated", value.IsNull())
		for i := 0; i < repeat; i++ {
			row = append(row, value)
		}
	}
	for len(row) > 0 && row[len(row)-1].IsNull() {
		row = row[:len(row)-1]
	}
	return row
}

func repeatCount(node *xmlquery.Node, attr string, empty bool) int {
	repeat, err := strconv.Atoi(node.SelectAttr(attr))
	if err != nil || repeat < 1 {
		return 1
	}
	if empty && repeat > maxEmptyRepeat {
		return maxEmptyRepeat
	}
	return repeat
}

var durationPattern = regexp.MustCompile(`^PT(\d+)H(\d+)M(\d+(?:\.\d+)?)S$`)

func cellValue(node *xmlquery.Node) driver.Value {
	switch node.SelectAttr("office:value-type") {
	case "float", "currency", "percentage":
		raw := node.SelectAttr("office:value")
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			if f == float64(int64(f)) && !strings.ContainsAny(raw, ".eE") {
				return driver.NewI64(int64(f))
			}
			return driver.NewF64(f)
		}
	case "boolean":
		return driver.NewBool(node.SelectAttr("office:boolean-value") == "true")
	case "date":
		raw := node.SelectAttr("office:date-value")
		if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
			return driver.NewDateTimeFromTime(t)
		}
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return driver.NewDateFromTime(t)
		}
	case "time":
		if m := durationPattern.FindStringSubmatch(node.SelectAttr("office:time-value")); m != nil {
			hour, _ := strconv.Atoi(m[1])
			minute, _ := strconv.Atoi(m[2])
			seconds, _ := strconv.ParseFloat(m[3], 64)
			nanos := int((seconds - float64(int(seconds))) * 1e9)
			return driver.NewTime(hour, minute, int(seconds), nanos)
		}
	case "string":
		return driver.NewString(node.InnerText())
	}
	if text := node.InnerText(); text != "" {
		return driver.NewString(text)
	}
	return driver.NewNull()
}

// buildFrame shapes sheet rows into a frame, naming columns from the
// first row when hasHeader is set.
func buildFrame(rows [][]driver.Value, hasHeader bool) engine.Frame {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var frame engine.Frame
	start := 0
	if hasHeader && len(rows) > 0 {
		for i := 0; i < width; i++ {
			if i < len(rows[0]) && !rows[0][i].IsNull() {
				frame.Columns = append(frame.Columns, rows[0][i].String())
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

	for _, cells := range rows[start:] {
		row := make(driver.Row, width)
		for i := range row {
			if i < len(cells) {
				row[i] = cells[i]
			} else {
				row[i] = driver.NewNull()
			}
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame
}

// elements collects every descendant element with the given local name.
func elements(node *xmlquery.Node, local string) []*xmlquery.Node {
	var found []*xmlquery.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == local {
			found = append(found, child)
			continue
		}
		found = append(found, elements(child, local)...)
	}
	return found
}
