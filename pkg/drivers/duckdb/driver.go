// Package duckdb implements the duckdb driver for database files and
// in-memory sessions. The URL duckdb://<path>[?options] opens a database
// file; an empty path or memory=true opens an in-memory database.
package duckdb

import (
	"context"
	"database/sql"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens duckdb:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "duckdb" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	options, err := driver.QueryOptions(url)
	if err != nil {
		return nil, err
	}

	dsn := ""
	if !driver.BoolOption(options, "memory", false) {
		if path, pathErr := driver.FilePath(url); pathErr == nil {
			dsn = path
		}
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, driver.IOError(err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, driver.IOError(err)
	}

	return &Connection{url: url, db: db}, nil
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeDuckDB
}

// Connection is an open DuckDB session.
type Connection struct {
	url string
	db  *sql.DB
}

var _ driver.Connection = (*Connection)(nil)

func (c *Connection) URL() string { return c.url }

func (c *Connection) Execute(ctx context.Context, sqlText string, args ...any) (int64, error) {
	result, err := c.db.ExecContext(ctx, sqlText, driver.NativeArguments(args)...)
	if err != nil {
		return 0, driver.IOError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, driver.IOError(err)
	}
	return affected, nil
}

// Query decodes with exact column widths. Unlike the embedded engine, a
// database the user opened directly keeps its declared small unsigned
// types.
func (c *Connection) Query(ctx context.Context, sqlText string, args ...any) (driver.QueryResult, error) {
	rows, err := c.db.QueryContext(ctx, sqlText, driver.NativeArguments(args)...)
	if err != nil {
		return nil, driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	columns, decoded, err := engine.ScanRows(rows, false)
	if err != nil {
		return nil, err
	}
	return driver.NewMemoryQueryResult(columns, decoded), nil
}

func (c *Connection) Close(_ context.Context) error {
	if err := c.db.Close(); err != nil {
		return driver.IOError(err)
	}
	return nil
}

func (c *Connection) Dialect() driver.Dialect { return driver.DialectDuckDB }

// MatchStatement extends the shared classifier with statements that change
// the visible schema set or the extension state of this backend.
func (c *Connection) MatchStatement(sql string) driver.StatementKind {
	kind := driver.ClassifyStatement(sql)
	if kind == driver.StatementUnknown {
		switch driver.FirstKeyword(sql) {
		case "ATTACH", "DETACH", "INSTALL", "LOAD":
			return driver.StatementDDL
		}
	}
	return kind
}
