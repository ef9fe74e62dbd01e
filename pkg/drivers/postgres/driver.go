// Package postgres implements the postgres driver on the native pgx wire
// protocol client. The postgresql scheme is an alias, and wire compatible
// backends reuse the session through Open with their own URL schemes and
// dialects.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(NewDriver("postgres"))
	driver.Register(NewDriver("postgresql"))
}

// Driver opens postgres connections under a configurable URL scheme.
type Driver struct {
	identifier string
}

var _ driver.Driver = (*Driver)(nil)

// NewDriver returns a driver registered under the given URL scheme.
func NewDriver(identifier string) *Driver {
	return &Driver{identifier: identifier}
}

func (d *Driver) Identifier() string { return d.identifier }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return Open(ctx, url, driver.DialectPostgres)
}

func (d *Driver) SupportsFileType(_ driver.FileType) bool { return false }

// Open establishes a session against any postgres wire compatible server.
// The connection keeps rawURL as its identity and reports the given
// dialect, so backends such as cockroachdb and redshift can reuse it.
func Open(ctx context.Context, rawURL string, dialect driver.Dialect) (*Connection, error) {
	config, err := pgx.ParseConfig(driver.SwapScheme(rawURL, "postgres"))
	if err != nil {
		return nil, driver.InvalidURLErrorf("%s", err)
	}
	conn, err := pgx.ConnectConfig(ctx, config)
	if err != nil {
		return nil, driver.IOError(err)
	}
	return &Connection{url: rawURL, dialect: dialect, conn: conn}, nil
}

// Connection is an open postgres session.
type Connection struct {
	url     string
	dialect driver.Dialect
	conn    *pgx.Conn
}

var _ driver.Connection = (*Connection)(nil)

func (c *Connection) URL() string { return c.url }

func (c *Connection) Execute(ctx context.Context, sqlText string, args ...any) (int64, error) {
	tag, err := c.conn.Exec(ctx, sqlText, driver.NativeArguments(args)...)
	if err != nil {
		return 0, driver.IOError(err)
	}
	return tag.RowsAffected(), nil
}

func (c *Connection) Query(ctx context.Context, sqlText string, args ...any) (driver.QueryResult, error) {
	rows, err := c.conn.Query(ctx, sqlText, driver.NativeArguments(args)...)
	if err != nil {
		return nil, driver.IOError(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name
	}

	typeMap := c.conn.TypeMap()
	var decoded []driver.Row
	for rows.Next() {
		raw := rows.RawValues()
		row := make(driver.Row, len(fields))
		for i, field := range fields {
			value, err := cellValue(typeMap, field, raw[i])
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

func (c *Connection) Close(ctx context.Context) error {
	if err := c.conn.Close(ctx); err != nil {
		return driver.IOError(err)
	}
	return nil
}

func (c *Connection) Dialect() driver.Dialect { return c.dialect }

func (c *Connection) MatchStatement(sql string) driver.StatementKind {
	return driver.ClassifyStatement(sql)
}
