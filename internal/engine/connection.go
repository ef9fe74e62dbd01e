package engine

import (
	"context"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// Connection adapts an Engine to the driver connection contract. File
// drivers construct one after registering their tables.
type Connection struct {
	url    string
	engine *Engine
}

// NewConnection wraps an engine for a source URL.
func NewConnection(url string, eng *Engine) *Connection {
	return &Connection{url: url, engine: eng}
}

// URL returns the connection string the source was opened with.
func (c *Connection) URL() string { return c.url }

// Execute runs a statement; the affected count is the height of the
// statement's result.
func (c *Connection) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	affected, err := c.engine.Execute(ctx, sql, normalizeArguments(args)...)
	if err != nil {
		return 0, driver.IOError(err)
	}
	return affected, nil
}

// Query runs a statement and materializes its rows.
func (c *Connection) Query(ctx context.Context, sql string, args ...any) (driver.QueryResult, error) {
	columns, rows, err := c.engine.Query(ctx, sql, normalizeArguments(args)...)
	if err != nil {
		return nil, driver.IOError(err)
	}
	return driver.NewMemoryQueryResult(columns, rows), nil
}

// Metadata reflects the registered tables as a single-catalog tree.
func (c *Connection) Metadata(ctx context.Context) (*driver.Metadata, error) {
	return buildMetadata(ctx, c)
}

// Close releases the embedded engine.
func (c *Connection) Close(context.Context) error {
	if err := c.engine.Close(); err != nil {
		return driver.IOError(err)
	}
	return nil
}

// Dialect identifies the SQL dialect spoken by the embedded engine.
func (c *Connection) Dialect() driver.Dialect { return driver.DialectDuckDB }

// MatchStatement classifies a statement by its first keyword.
func (c *Connection) MatchStatement(sql string) driver.StatementKind {
	return driver.ClassifyStatement(sql)
}

// normalizeArguments lowers Value parameters to natively bindable types;
// anything else passes through untouched.
func normalizeArguments(args []any) []any {
	normalized := make([]any, len(args))
	for i, arg := range args {
		if value, ok := arg.(driver.Value); ok {
			normalized[i] = bindArgument(value)
			continue
		}
		normalized[i] = arg
	}
	return normalized
}

var _ driver.Connection = (*Connection)(nil)
