package format

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// delimitedFormatter is the shared renderer behind csv, tsv and
// delimited: non-numeric values are double-quoted, numbers stay bare and
// nulls render as an empty quoted string.
type delimitedFormatter struct {
	identifier string
	separator  string
}

func (f delimitedFormatter) Identifier() string { return f.identifier }

func (f delimitedFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	var count int64
	if results.IsQuery() {
		result := results.Query()
		columns := result.Columns()
		if options.Header {
			quoted := make([]string, len(columns))
			for i, column := range columns {
				quoted[i] = quote(column)
			}
			if _, err := fmt.Fprintln(output, strings.Join(quoted, f.separator)); err != nil {
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
				switch {
				case i >= len(row) || row[i].IsNull():
					cells[i] = `""`
				case row[i].IsNumeric():
					cells[i] = row[i].String()
				default:
					cells[i] = quote(row[i].String())
				}
			}
			if _, err := fmt.Fprintln(output, strings.Join(cells, f.separator)); err != nil {
				return err
			}
		}
	}
	return writeFooter(output, options, results, count)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func init() {
	Register(delimitedFormatter{identifier: "csv", separator: ","})
	Register(delimitedFormatter{identifier: "tsv", separator: "\t"})
	Register(delimitedFormatter{identifier: "delimited", separator: ","})
}
