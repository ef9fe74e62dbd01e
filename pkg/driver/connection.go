package driver

import (
	"context"
	"sync"
)

// Connection is an open session against a data source. Operations on a
// single Connection must not be issued concurrently; the caller serializes.
type Connection interface {
	// URL returns the URL the connection was opened with.
	URL() string
	// Execute runs a statement and returns the number of affected rows.
	Execute(ctx context.Context, sql string, args ...any) (int64, error)
	// Query runs a statement and returns its result cursor.
	Query(ctx context.Context, sql string, args ...any) (QueryResult, error)
	// Metadata reflects the catalog/schema/table tree of the data source.
	Metadata(ctx context.Context) (*Metadata, error)
	Close(ctx context.Context) error
	Dialect() Dialect
	// MatchStatement classifies sql for cache invalidation and routing.
	MatchStatement(sql string) StatementKind
}

// CachedMetadataConnection decorates a Connection and memoizes its
// metadata. The cache drops after any successful Execute whose statement
// classifies as DDL, or as Unknown since an unparsable statement may have
// changed the schema. Reflected metadata gets primary and foreign key
// inference applied before it is stored.
type CachedMetadataConnection struct {
	inner Connection

	mu       sync.Mutex
	metadata *Metadata
}

var _ Connection = (*CachedMetadataConnection)(nil)

// NewCachedMetadataConnection wraps inner with a metadata cache.
func NewCachedMetadataConnection(inner Connection) *CachedMetadataConnection {
	return &CachedMetadataConnection{inner: inner}
}

func (c *CachedMetadataConnection) URL() string { return c.inner.URL() }

func (c *CachedMetadataConnection) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	affected, err := c.inner.Execute(ctx, sql, args...)
	if err != nil {
		return affected, err
	}
	switch c.MatchStatement(sql) {
	case StatementDDL, StatementUnknown:
		c.mu.Lock()
		c.metadata = nil
		c.mu.Unlock()
	}
	return affected, nil
}

func (c *CachedMetadataConnection) Query(ctx context.Context, sql string, args ...any) (QueryResult, error) {
	return c.inner.Query(ctx, sql, args...)
}

func (c *CachedMetadataConnection) Metadata(ctx context.Context) (*Metadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metadata != nil {
		return c.metadata, nil
	}
	metadata, err := c.inner.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	metadata.InferPrimaryKeys()
	metadata.InferForeignKeys()
	c.metadata = metadata
	return metadata, nil
}

func (c *CachedMetadataConnection) Close(ctx context.Context) error {
	c.mu.Lock()
	c.metadata = nil
	c.mu.Unlock()
	return c.inner.Close(ctx)
}

func (c *CachedMetadataConnection) Dialect() Dialect { return c.inner.Dialect() }

func (c *CachedMetadataConnection) MatchStatement(sql string) StatementKind {
	return c.inner.MatchStatement(sql)
}

// Unwrap returns the decorated connection.
func (c *CachedMetadataConnection) Unwrap() Connection { return c.inner }
