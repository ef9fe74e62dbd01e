package format

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// renderTable drives the shared tabular renderer: NULL literals, locale
// grouped numbers, right-aligned numeric columns and a centered header.
func renderTable(ctx context.Context, options *Options, results *Results, output io.Writer, style table.Style, markdown bool) error {
	var count int64
	if results.IsQuery() {
		result := results.Query()
		columns := result.Columns()
		if len(columns) == 0 {
			return writeFooter(output, options, results, 0)
		}
		rows, err := drain(ctx, result)
		if err != nil {
			return err
		}
		count = int64(len(rows))

		writer := table.NewWriter()
		writer.SetStyle(style)
		writer.Style().Format.Header = text.FormatDefault
		applyTheme(writer, options)

		if options.Header {
			header := make(table.Row, len(columns))
			for i, column := range columns {
				header[i] = column
			}
			writer.AppendHeader(header)
		}
		for _, row := range rows {
			cells := make(table.Row, len(columns))
			for i := range columns {
				if i >= len(row) || row[i].IsNull() {
					cells[i] = "NULL"
					continue
				}
				cells[i] = row[i].FormattedString(options.Locale)
			}
			writer.AppendRow(cells)
		}
		writer.SetColumnConfigs(columnConfigs(columns, rows))

		var rendered string
		if markdown {
			rendered = writer.RenderMarkdown()
		} else {
			rendered = writer.Render()
		}
		if _, err := fmt.Fprintln(output, rendered); err != nil {
			return err
		}
	}
	return writeFooter(output, options, results, count)
}

// columnConfigs right-aligns columns whose values are all numeric and
// centers every header cell.
func columnConfigs(columns []string, rows []driver.Row) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, len(columns))
	for i := range columns {
		numeric := false
		for _, row := range rows {
			if i >= len(row) || row[i].IsNull() {
				continue
			}
			if !row[i].IsNumeric() {
				numeric = false
				break
			}
			numeric = true
		}
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignCenter}
		if numeric {
			configs[i].Align = text.AlignRight
		}
	}
	return configs
}

// applyTheme colors the table per the theme setting when color is on.
func applyTheme(writer table.Writer, options *Options) {
	if !options.Color {
		return
	}
	switch options.Theme {
	case "dark":
		writer.Style().Color = table.StyleColoredDark.Color
	case "light":
		writer.Style().Color = table.StyleColoredBright.Color
	}
}

// plainStyle renders space-separated columns without any borders.
var plainStyle = table.Style{
	Name:    "plain",
	Box:     table.StyleBoxDefault,
	Options: table.Options{},
}

// psqlStyle mimics the psql client: no outer border, a dashed separator
// under the header.
var psqlStyle = table.Style{
	Name: "psql",
	Box: table.BoxStyle{
		MiddleHorizontal: "-",
		MiddleSeparator:  "+",
		MiddleVertical:   "|",
		PaddingLeft:      " ",
		PaddingRight:     " ",
	},
	Options: table.Options{
		SeparateColumns: true,
		SeparateHeader:  true,
	},
}

type asciiFormatter struct{}

func (asciiFormatter) Identifier() string { return "ascii" }

func (asciiFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	return renderTable(ctx, options, results, output, table.StyleDefault, false)
}

type unicodeFormatter struct{}

func (unicodeFormatter) Identifier() string { return "unicode" }

func (unicodeFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	return renderTable(ctx, options, results, output, table.StyleLight, false)
}

type psqlFormatter struct{}

func (psqlFormatter) Identifier() string { return "psql" }

func (psqlFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	return renderTable(ctx, options, results, output, psqlStyle, false)
}

type plainFormatter struct{}

func (plainFormatter) Identifier() string { return "plain" }

func (plainFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	return renderTable(ctx, options, results, output, plainStyle, false)
}

type markdownFormatter struct{}

func (markdownFormatter) Identifier() string { return "markdown" }

func (markdownFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	return renderTable(ctx, options, results, output, table.StyleDefault, true)
}

func init() {
	Register(asciiFormatter{})
	Register(unicodeFormatter{})
	Register(psqlFormatter{})
	Register(plainFormatter{})
	Register(markdownFormatter{})
}
