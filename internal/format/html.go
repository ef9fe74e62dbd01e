package format

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
)

// htmlFormatter renders a plain <table> with the header in <thead>.
type htmlFormatter struct{}

func (htmlFormatter) Identifier() string { return "html" }

func (htmlFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	var count int64
	if results.IsQuery() {
		result := results.Query()
		columns := result.Columns()
		rows, err := drain(ctx, result)
		if err != nil {
			return err
		}
		count = int64(len(rows))

		var buf strings.Builder
		buf.WriteString("<table>\n")
		if options.Header {
			buf.WriteString("  <thead>\n    <tr>\n")
			for _, column := range columns {
				fmt.Fprintf(&buf, "      <th>%s</th>\n", html.EscapeString(column))
			}
			buf.WriteString("    </tr>\n  </thead>\n")
		}
		buf.WriteString("  <tbody>\n")
		for _, row := range rows {
			buf.WriteString("    <tr>\n")
			for i := range columns {
				if i >= len(row) || row[i].IsNull() {
					buf.WriteString("      <td/>\n")
					continue
				}
				fmt.Fprintf(&buf, "      <td>%s</td>\n", html.EscapeString(row[i].String()))
			}
			buf.WriteString("    </tr>\n")
		}
		buf.WriteString("  </tbody>\n</table>")
		if _, err := fmt.Fprintln(output, buf.String()); err != nil {
			return err
		}
	}
	return writeFooter(output, options, results, count)
}

func init() {
	Register(htmlFormatter{})
}
