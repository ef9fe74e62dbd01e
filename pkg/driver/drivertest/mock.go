// Package drivertest provides scriptable Driver and Connection fakes for
// exercising registry, executor and command code without a live backend.
package drivertest

import (
	"context"
	"sync"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// Connection is a configurable in-memory driver.Connection. Zero value
// behavior: Execute affects no rows, Query returns an empty result,
// Metadata returns an empty tree. Calls are recorded for assertions.
type Connection struct {
	URLValue     string
	DialectValue driver.Dialect

	ExecuteFunc  func(ctx context.Context, sql string, args ...any) (int64, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (driver.QueryResult, error)
	MetadataFunc func(ctx context.Context) (*driver.Metadata, error)
	CloseFunc    func(ctx context.Context) error
	MatchFunc    func(sql string) driver.StatementKind

	mu          sync.Mutex
	executedSQL []string
	queriedSQL  []string
	closed      bool
}

var _ driver.Connection = (*Connection)(nil)

func (c *Connection) URL() string { return c.URLValue }

func (c *Connection) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	c.mu.Lock()
	c.executedSQL = append(c.executedSQL, sql)
	c.mu.Unlock()
	if c.ExecuteFunc != nil {
		return c.ExecuteFunc(ctx, sql, args...)
	}
	return 0, nil
}

func (c *Connection) Query(ctx context.Context, sql string, args ...any) (driver.QueryResult, error) {
	c.mu.Lock()
	c.queriedSQL = append(c.queriedSQL, sql)
	c.mu.Unlock()
	if c.QueryFunc != nil {
		return c.QueryFunc(ctx, sql, args...)
	}
	return driver.NewMemoryQueryResult(nil, nil), nil
}

func (c *Connection) Metadata(ctx context.Context) (*driver.Metadata, error) {
	if c.MetadataFunc != nil {
		return c.MetadataFunc(ctx)
	}
	return driver.NewMetadata(c.Dialect()), nil
}

func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	if c.CloseFunc != nil {
		return c.CloseFunc(ctx)
	}
	return nil
}

func (c *Connection) Dialect() driver.Dialect {
	if c.DialectValue == "" {
		return driver.DialectGeneric
	}
	return c.DialectValue
}

func (c *Connection) MatchStatement(sql string) driver.StatementKind {
	if c.MatchFunc != nil {
		return c.MatchFunc(sql)
	}
	return driver.ClassifyStatement(sql)
}

// ExecutedSQL returns the statements passed to Execute, in order.
func (c *Connection) ExecutedSQL() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.executedSQL...)
}

// QueriedSQL returns the statements passed to Query, in order.
func (c *Connection) QueriedSQL() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queriedSQL...)
}

// Closed reports whether Close was called.
func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Driver is a configurable driver.Driver. The zero value identifies as
// "test" and hands out fresh mock Connections.
type Driver struct {
	ID          string
	ConnectFunc func(ctx context.Context, url string) (driver.Connection, error)
	FileTypes   []driver.FileType

	mu         sync.Mutex
	lastConn   *Connection
	connectURL []string
}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string {
	if d.ID == "" {
		return "test"
	}
	return d.ID
}

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	d.mu.Lock()
	d.connectURL = append(d.connectURL, url)
	d.mu.Unlock()
	if d.ConnectFunc != nil {
		return d.ConnectFunc(ctx, url)
	}
	conn := &Connection{URLValue: url}
	d.mu.Lock()
	d.lastConn = conn
	d.mu.Unlock()
	return conn, nil
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	for _, supported := range d.FileTypes {
		if supported == ft {
			return true
		}
	}
	return false
}

// LastConnection returns the most recent Connection handed out by the
// default ConnectFunc.
func (d *Driver) LastConnection() *Connection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastConn
}

// ConnectURLs returns the URLs passed to Connect, in order.
func (d *Driver) ConnectURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.connectURL...)
}
