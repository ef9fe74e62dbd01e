package format

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// sqliteFormatter renders rows the way the sqlite3 shell does: pipe
// separated, unquoted, nulls empty.
type sqliteFormatter struct{}

func (sqliteFormatter) Identifier() string { return "sqlite" }

func (sqliteFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	var count int64
	if results.IsQuery() {
		result := results.Query()
		columns := result.Columns()
		if options.Header {
			if _, err := fmt.Fprintln(output, strings.Join(columns, "|")); err != nil {
				return err
			}
		}
		rows, err := drain(ctx, result)
		if err != nil {
			return err
		}
		count = int64(len(rows))
		for _, row := range rows {
			cells := make([]string, len(columns))
			for i := range columns {
				if i < len(row) && !row[i].IsNull() {
					cells[i] = row[i].String()
				}
			}
			if _, err := fmt.Fprintln(output, strings.Join(cells, "|")); err != nil {
				return err
			}
		}
	}
	return writeFooter(output, options, results, count)
}

func init() {
	Register(sqliteFormatter{})
}
