package brotli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/csv"
)

func TestConnect(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte("id,name\n1,alice\n2,bob\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "users.csv.br")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	conn, err := (&Driver{}).Connect(ctx, "brotli://"+path)
	require.NoError(t, err)
	defer func() { _ = conn.Close(ctx) }()

	result, err := conn.Query(ctx, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	defer func() { _ = result.Close() }()

	row, err := result.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, driver.Row{driver.NewI64(1), driver.NewString("alice")}, row)
	row, err = result.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, driver.Row{driver.NewI64(2), driver.NewString("bob")}, row)
}
