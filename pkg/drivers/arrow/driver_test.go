package arrow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func usersRecord(t *testing.T) (*arrow.Schema, arrow.RecordBatch) {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	builder.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	names := builder.Field(1).(*array.StringBuilder)
	names.Append("alice")
	names.Append("bob")
	names.AppendNull()

	return schema, builder.NewRecordBatch()
}

func assertUsers(t *testing.T, conn driver.Connection) {
	t.Helper()
	ctx := context.Background()
	result, err := conn.Query(ctx, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	defer func() { _ = result.Close() }()

	assert.Equal(t, []string{"id", "name"}, result.Columns())
	expected := []driver.Row{
		{driver.NewI64(1), driver.NewString("alice")},
		{driver.NewI64(2), driver.NewString("bob")},
		{driver.NewI64(3), driver.NewNull()},
	}
	for _, want := range expected {
		row, err := result.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, row)
	}
	row, err := result.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestConnectFileFormat(t *testing.T) {
	ctx := context.Background()
	schema, record := usersRecord(t)
	defer record.Release()

	path := filepath.Join(t.TempDir(), "users.arrow")
	f, err := os.Create(path)
	require.NoError(t, err)
	writer, err := ipc.NewFileWriter(f, ipc.WithSchema(schema))
	require.NoError(t, err)
	require.NoError(t, writer.Write(record))
	require.NoError(t, writer.Close())
	require.NoError(t, f.Close())

	conn, err := (&Driver{}).Connect(ctx, "arrow://"+path)
	require.NoError(t, err)
	defer func() { _ = conn.Close(ctx) }()

	assertUsers(t, conn)
}

func TestConnectStreamFormat(t *testing.T) {
	ctx := context.Background()
	schema, record := usersRecord(t)
	defer record.Release()

	path := filepath.Join(t.TempDir(), "users.arrows")
	f, err := os.Create(path)
	require.NoError(t, err)
	writer := ipc.NewWriter(f, ipc.WithSchema(schema))
	require.NoError(t, writer.Write(record))
	require.NoError(t, writer.Close())
	require.NoError(t, f.Close())

	conn, err := (&Driver{}).Connect(ctx, "arrow://"+path)
	require.NoError(t, err)
	defer func() { _ = conn.Close(ctx) }()

	assertUsers(t, conn)
}
