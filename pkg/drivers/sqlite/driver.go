// Package sqlite implements the sqlite driver on a pure Go SQLite build.
// The URL sqlite://<path>[?options] opens a database file; an empty path or
// memory=true opens a private in-memory database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leapstack-labs/rsql/pkg/driver"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens sqlite:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "sqlite" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	options, err := driver.QueryOptions(url)
	if err != nil {
		return nil, err
	}

	dsn := ":memory:"
	if !driver.BoolOption(options, "memory", false) {
		if path, pathErr := driver.FilePath(url); pathErr == nil {
			dsn = path
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, driver.IOError(err)
	}
	// An in-memory database is private to the pool connection that opened
	// it, so the pool must never rotate connections.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, driver.IOError(err)
	}

	return &Connection{url: url, db: db}, nil
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeSQLite
}

// Connection is an open SQLite session.
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

func (c *Connection) Query(ctx context.Context, sqlText string, args ...any) (driver.QueryResult, error) {
	rows, err := c.db.QueryContext(ctx, sqlText, driver.NativeArguments(args)...)
	if err != nil {
		return nil, driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, driver.IOError(err)
	}

	var decoded []driver.Row
	for rows.Next() {
		raw := make([]any, len(columns))
		scan := make([]any, len(columns))
		for i := range raw {
			scan[i] = &raw[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, driver.IOError(err)
		}
		row := make(driver.Row, len(columns))
		for i, cell := range raw {
			value, err := cellValue(columns[i], cell)
			if err != nil {
				return nil, err
			}
			row[i] = value
		}
		decoded = append(decoded, row)
	}
	if err := rows.Err(); err != nil {
		return nil, driver.IOError(err)
	}

	return driver.NewMemoryQueryResult(columns, decoded), nil
}

func (c *Connection) Close(_ context.Context) error {
	if err := c.db.Close(); err != nil {
		return driver.IOError(err)
	}
	return nil
}

func (c *Connection) Dialect() driver.Dialect { return driver.DialectSQLite }

// MatchStatement extends the shared classifier with statements that change
// the visible schema set of this backend.
func (c *Connection) MatchStatement(sql string) driver.StatementKind {
	kind := driver.ClassifyStatement(sql)
	if kind == driver.StatementUnknown {
		switch driver.FirstKeyword(sql) {
		case "ATTACH", "DETACH":
			return driver.StatementDDL
		}
	}
	return kind
}

// cellValue maps a scanned cell to a Value. SQLite types values per cell,
// not per column, so the declared column type never participates.
func cellValue(name string, cell any) (driver.Value, error) {
	switch v := cell.(type) {
	case nil:
		return driver.NewNull(), nil
	case int64:
		return driver.NewI64(v), nil
	case float64:
		return driver.NewF64(v), nil
	case string:
		return driver.NewString(v), nil
	case []byte:
		return driver.NewBytes(v), nil
	case time.Time:
		// Columns declared DATE, DATETIME or TIMESTAMP surface as time.Time.
		return driver.NewDateTimeFromTime(v), nil
	default:
		return driver.Value{}, driver.UnsupportedColumnTypeError{
			ColumnName: name,
			ColumnType: fmt.Sprintf("%T", cell),
		}
	}
}
