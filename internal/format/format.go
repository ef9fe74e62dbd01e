// Package format renders query and execute results. Formatters register
// themselves by identifier the way drivers do; the REPL looks the active
// one up per statement.
package format

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// Options carry the render settings of one statement.
type Options struct {
	Changes bool
	Color   bool
	Elapsed time.Duration
	Footer  bool
	Header  bool
	Locale  string
	Rows    bool
	Theme   string
	Timer   bool
}

// DefaultOptions returns the settings a fresh shell starts with.
func DefaultOptions() *Options {
	return &Options{
		Changes: true,
		Color:   true,
		Footer:  true,
		Header:  true,
		Locale:  "en",
		Rows:    true,
		Theme:   "default",
		Timer:   true,
	}
}

// Results is either a query result or an affected-row count.
type Results struct {
	query    driver.QueryResult
	affected int64
}

// QueryResults wraps a query result for formatting.
func QueryResults(result driver.QueryResult) *Results {
	return &Results{query: result}
}

// ExecuteResults wraps an affected-row count for formatting.
func ExecuteResults(affected int64) *Results {
	return &Results{affected: affected}
}

func (r *Results) IsQuery() bool { return r.query != nil }
func (r *Results) Query() driver.QueryResult { return r.query }
func (r *Results) Affected() int64 { return r.affected }

// Formatter renders results in one output format.
type Formatter interface {
	Identifier() string
	Format(ctx context.Context, options *Options, results *Results, output io.Writer) error
}

var (
	mu         sync.RWMutex
	formatters = map[string]Formatter{}
)

// Register adds a formatter to the registry; a later registration with
// the same identifier wins.
func Register(f Formatter) {
	mu.Lock()
	defer mu.Unlock()
	formatters[f.Identifier()] = f
}

// Get resolves a formatter by identifier.
func Get(identifier string) (Formatter, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := formatters[identifier]
	if !ok {
		return nil, driver.UnknownFormatError{Format: identifier}
	}
	return f, nil
}

// Formats returns the registered identifiers, sorted.
func Formats() []string {
	mu.RLock()
	defer mu.RUnlock()
	identifiers := make([]string, 0, len(formatters))
	for identifier := range formatters {
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)
	return identifiers
}

// drain materializes the remaining rows of a query result.
func drain(ctx context.Context, result driver.QueryResult) ([]driver.Row, error) {
	var rows []driver.Row
	for {
		row, err := result.Next(ctx)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}
