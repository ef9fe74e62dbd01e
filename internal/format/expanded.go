package format

import (
	"context"
	"fmt"
	"io"
)

// expandedFormatter renders one column per line, psql \x style.
type expandedFormatter struct{}

func (expandedFormatter) Identifier() string { return "expanded" }

func (expandedFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	var count int64
	if results.IsQuery() {
		result := results.Query()
		columns := result.Columns()
		width := 0
		for _, column := range columns {
			if len(column) > width {
				width = len(column)
			}
		}
		rows, err := drain(ctx, result)
		if err != nil {
			return err
		}
		count = int64(len(rows))
		for n, row := range rows {
			if _, err := fmt.Fprintf(output, "-[ RECORD %d ]-\n", n+1); err != nil {
				return err
			}
			for i, column := range columns {
				value := "NULL"
				if i < len(row) && !row[i].IsNull() {
					value = row[i].FormattedString(options.Locale)
				}
				if _, err := fmt.Fprintf(output, "%-*s | %s\n", width, column, value); err != nil {
					return err
				}
			}
		}
	}
	return writeFooter(output, options, results, count)
}

func init() {
	Register(expandedFormatter{})
}
