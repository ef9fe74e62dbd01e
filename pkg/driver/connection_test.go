package driver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
	"github.com/leapstack-labs/rsql/pkg/driver/drivertest"
)

func metadataWithUsers() *driver.Metadata {
	table := driver.NewTable("users")
	table.AddColumn(driver.Column{Name: "id", DataType: "INTEGER", NotNull: true})
	schema := driver.NewSchema("main", true)
	schema.AddTable(table)
	catalog := driver.NewCatalog("db", true)
	catalog.AddSchema(schema)
	metadata := driver.NewMetadata(driver.DialectGeneric)
	metadata.AddCatalog(catalog)
	return metadata
}

func TestCachedMetadataConnectionMemoizes(t *testing.T) {
	ctx := context.Background()
	calls := 0
	inner := &drivertest.Connection{
		URLValue: "test://db",
		MetadataFunc: func(context.Context) (*driver.Metadata, error) {
			calls++
			return metadataWithUsers(), nil
		},
	}
	conn := driver.NewCachedMetadataConnection(inner)

	first, err := conn.Metadata(ctx)
	require.NoError(t, err)
	second, err := conn.Metadata(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Same(t, first, second)
}

func TestCachedMetadataConnectionAppliesInference(t *testing.T) {
	ctx := context.Background()
	inner := &drivertest.Connection{
		MetadataFunc: func(context.Context) (*driver.Metadata, error) {
			return metadataWithUsers(), nil
		},
	}
	conn := driver.NewCachedMetadataConnection(inner)

	metadata, err := conn.Metadata(ctx)
	require.NoError(t, err)

	schema, ok := metadata.CurrentSchema()
	require.True(t, ok)
	users, ok := schema.Table("users")
	require.True(t, ok)
	pk, ok := users.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, "inferred_users_pk", pk.Name)
	assert.True(t, pk.Inferred)
}

func TestCachedMetadataConnectionInvalidation(t *testing.T) {
	tests := []struct {
		name        string
		sql         string
		wantRefetch bool
	}{
		{name: "ddl invalidates", sql: "CREATE TABLE t (id INTEGER)", wantRefetch: true},
		{name: "unknown invalidates", sql: "GRANT ALL ON t TO someone", wantRefetch: true},
		{name: "dml keeps cache", sql: "INSERT INTO t VALUES (1)", wantRefetch: false},
		{name: "query keeps cache", sql: "SELECT 1", wantRefetch: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			calls := 0
			inner := &drivertest.Connection{
				MetadataFunc: func(context.Context) (*driver.Metadata, error) {
					calls++
					return metadataWithUsers(), nil
				},
			}
			conn := driver.NewCachedMetadataConnection(inner)

			_, err := conn.Metadata(ctx)
			require.NoError(t, err)
			_, err = conn.Execute(ctx, tt.sql)
			require.NoError(t, err)
			_, err = conn.Metadata(ctx)
			require.NoError(t, err)

			if tt.wantRefetch {
				assert.Equal(t, 2, calls)
			} else {
				assert.Equal(t, 1, calls)
			}
		})
	}
}

func TestCachedMetadataConnectionFailedExecuteKeepsCache(t *testing.T) {
	ctx := context.Background()
	calls := 0
	inner := &drivertest.Connection{
		MetadataFunc: func(context.Context) (*driver.Metadata, error) {
			calls++
			return metadataWithUsers(), nil
		},
		ExecuteFunc: func(context.Context, string, ...any) (int64, error) {
			return 0, errors.New("syntax error")
		},
	}
	conn := driver.NewCachedMetadataConnection(inner)

	_, err := conn.Metadata(ctx)
	require.NoError(t, err)
	_, err = conn.Execute(ctx, "DROP TABLE t")
	require.Error(t, err)
	_, err = conn.Metadata(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestCachedMetadataConnectionCloseForwardsAndDrops(t *testing.T) {
	ctx := context.Background()
	calls := 0
	inner := &drivertest.Connection{
		MetadataFunc: func(context.Context) (*driver.Metadata, error) {
			calls++
			return metadataWithUsers(), nil
		},
	}
	conn := driver.NewCachedMetadataConnection(inner)

	_, err := conn.Metadata(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.Close(ctx))
	assert.True(t, inner.Closed())

	_, err = conn.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedMetadataConnectionForwards(t *testing.T) {
	ctx := context.Background()
	inner := &drivertest.Connection{
		URLValue:     "test://db",
		DialectValue: driver.DialectSQLite,
		QueryFunc: func(context.Context, string, ...any) (driver.QueryResult, error) {
			return driver.NewMemoryQueryResult([]string{"one"}, []driver.Row{{driver.NewI64(1)}}), nil
		},
	}
	conn := driver.NewCachedMetadataConnection(inner)

	assert.Equal(t, "test://db", conn.URL())
	assert.Equal(t, driver.DialectSQLite, conn.Dialect())
	assert.Equal(t, driver.StatementQuery, conn.MatchStatement("SELECT 1"))
	assert.Same(t, inner, conn.Unwrap())

	result, err := conn.Query(ctx, "SELECT 1")
	require.NoError(t, err)
	row, err := result.Next(ctx)
	require.NoError(t, err)
	require.Len(t, row, 1)
	assert.True(t, driver.NewI64(1).Equal(row[0]))
	require.NoError(t, result.Close())
	assert.Equal(t, []string{"SELECT 1"}, inner.QueriedSQL())
}
