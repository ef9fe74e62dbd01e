package format

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// jsonFormatter renders a pretty-printed array of row objects; the
// companion jsonl formatter emits one compact object per line. Objects
// are built by hand so key order follows the column order.
type jsonFormatter struct{}

func (jsonFormatter) Identifier() string { return "json" }

func (jsonFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	var count int64
	if results.IsQuery() {
		result := results.Query()
		rows, err := drain(ctx, result)
		if err != nil {
			return err
		}
		count = int64(len(rows))

		var buf bytes.Buffer
		buf.WriteString("[")
		for n, row := range rows {
			if n > 0 {
				buf.WriteString(",")
			}
			buf.WriteString("\n  ")
			object, err := rowObject(result.Columns(), row, true)
			if err != nil {
				return err
			}
			buf.Write(object)
		}
		if len(rows) > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString("]")
		if _, err := fmt.Fprintln(output, buf.String()); err != nil {
			return err
		}
	}
	return writeFooter(output, options, results, count)
}

type jsonlFormatter struct{}

func (jsonlFormatter) Identifier() string { return "jsonl" }

func (jsonlFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	var count int64
	if results.IsQuery() {
		result := results.Query()
		rows, err := drain(ctx, result)
		if err != nil {
			return err
		}
		count = int64(len(rows))
		for _, row := range rows {
			object, err := rowObject(result.Columns(), row, false)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(output, string(object)); err != nil {
				return err
			}
		}
	}
	return writeFooter(output, options, results, count)
}

// rowObject marshals one row as a JSON object with keys in column order.
// Pretty objects indent members under the two-space array indent.
func rowObject(columns []string, row driver.Row, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, column := range columns {
		if i > 0 {
			buf.WriteString(",")
		}
		if pretty {
			buf.WriteString("\n    ")
		}
		key, err := json.Marshal(column)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(":")
		if pretty {
			buf.WriteString(" ")
		}
		var cell any
		if i < len(row) {
			cell = row[i].JSON()
		}
		value, err := json.Marshal(cell)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	if pretty && len(columns) > 0 {
		buf.WriteString("\n  ")
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}

func init() {
	Register(jsonFormatter{})
	Register(jsonlFormatter{})
}
