// Package fwf implements the driver for fixed-width field files. The URL
// fwf://<path>?widths=4,25[&headers=id,name] slices every line into the
// given column widths and registers the result on the embedded engine.
//
// The widths parameter is required. Column names come from the headers
// parameter when present, otherwise spreadsheet-style names (A, B, ...).
// Cells are trimmed and kept as text.
package fwf

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens fwf:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "fwf" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	path, err := driver.FilePath(url)
	if err != nil {
		return nil, err
	}
	parameters, err := driver.QueryOptions(url)
	if err != nil {
		return nil, err
	}
	widths, err := parseWidths(parameters.Get("widths"))
	if err != nil {
		return nil, err
	}
	columns, err := columnNames(parameters.Get("headers"), len(widths))
	if err != nil {
		return nil, err
	}

	frame, err := readFrame(path, widths, columns)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return nil, driver.IOError(err)
	}
	if _, err := eng.RegisterFrame(ctx, engine.TableName(path), frame); err != nil {
		_ = eng.Close()
		return nil, driver.IOError(err)
	}
	return engine.NewConnection(url, eng), nil
}

func (d *Driver) SupportsFileType(driver.FileType) bool { return false }

func parseWidths(raw string) ([]int, error) {
	if raw == "" {
		return nil, driver.IOErrorf("widths parameter is required")
	}
	parts := strings.Split(raw, ",")
	widths := make([]int, len(parts))
	for i, part := range parts {
		width, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || width <= 0 {
			return nil, driver.IOErrorf("invalid width: %s", part)
		}
		widths[i] = width
	}
	return widths, nil
}

func columnNames(raw string, count int) ([]string, error) {
	if raw == "" {
		columns := make([]string, count)
		for i := range columns {
			columns[i] = engine.SpreadsheetColumnName(i)
		}
		return columns, nil
	}
	columns := strings.Split(raw, ",")
	if len(columns) != count {
		return nil, driver.IOErrorf("headers count %d does not match widths count %d", len(columns), count)
	}
	for i, column := range columns {
		columns[i] = strings.TrimSpace(column)
	}
	return columns, nil
}

func readFrame(path string, widths []int, columns []string) (engine.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.Frame{}, driver.IOError(err)
	}
	defer func() { _ = f.Close() }()

	frame := engine.Frame{Columns: columns}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		row := make(driver.Row, len(widths))
		offset := 0
		for i, width := range widths {
			end := offset + width
			if offset > len(line) {
				offset = len(line)
			}
			if end > len(line) {
				end = len(line)
			}
			row[i] = driver.NewString(strings.TrimSpace(line[offset:end]))
			offset = end
		}
		frame.Rows = append(frame.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return engine.Frame{}, driver.IOError(err)
	}
	return frame, nil
}
