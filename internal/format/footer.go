package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/rsql/internal/intl"
)

// writeFooter appends the result summary: a locale-grouped row count and,
// with the timer on, the elapsed time. Row counts are gated by the rows
// setting for queries and the changes setting for execute results.
func writeFooter(output io.Writer, options *Options, results *Results, queryRows int64) error {
	if !options.Footer {
		return nil
	}

	display := options.Rows
	affected := queryRows
	if !results.IsQuery() {
		display = options.Changes
		affected = results.Affected()
	}

	var parts []string
	if display {
		label := "rows"
		if affected == 1 {
			label = "row"
		}
		parts = append(parts, fmt.Sprintf("%s %s", intl.FormatInt(options.Locale, affected), label))
	}
	if options.Timer {
		elapsed := fmt.Sprintf("(%s)", options.Elapsed)
		if options.Color {
			elapsed = text.Faint.Sprint(elapsed)
		}
		parts = append(parts, elapsed)
	}
	if len(parts) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(output, strings.Join(parts, " "))
	return err
}
