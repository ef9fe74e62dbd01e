package format

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// xmlFormatter renders <results> with one <row> element per row and one
// child element per column; nulls collapse to self-closing elements.
type xmlFormatter struct{}

func (xmlFormatter) Identifier() string { return "xml" }

func (xmlFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
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
		buf.WriteString("<results>\n")
		for _, row := range rows {
			buf.WriteString("  <row>\n")
			for i, column := range columns {
				if i >= len(row) || row[i].IsNull() {
					fmt.Fprintf(&buf, "    <%s/>\n", column)
					continue
				}
				fmt.Fprintf(&buf, "    <%s>%s</%s>\n", column, escapeXML(row[i].String()), column)
			}
			buf.WriteString("  </row>\n")
		}
		buf.WriteString("</results>")
		if _, err := fmt.Fprintln(output, buf.String()); err != nil {
			return err
		}
	}
	return writeFooter(output, options, results, count)
}

func escapeXML(s string) string {
	var buf strings.Builder
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func init() {
	Register(xmlFormatter{})
}
