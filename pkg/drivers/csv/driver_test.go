package csv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/internal/format"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

// Rows written by the csv formatter read back unchanged through the csv
// driver, including quoting and the empty-quoted null convention.
func TestFormatterRoundTrip(t *testing.T) {
	ctx := context.Background()
	rows := []driver.Row{
		{driver.NewI64(1), driver.NewString("alice")},
		{driver.NewI64(2), driver.NewString(`comma, and "quote"`)},
		{driver.NewI64(3), driver.NewNull()},
	}

	formatter, err := format.Get("csv")
	require.NoError(t, err)
	options := format.DefaultOptions()
	options.Color = false
	options.Footer = false

	var buf bytes.Buffer
	results := format.QueryResults(driver.NewMemoryQueryResult([]string{"id", "name"}, rows))
	require.NoError(t, formatter.Format(ctx, options, results, &buf))

	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	conn, err := (&Driver{}).Connect(ctx, "csv://"+path)
	require.NoError(t, err)
	defer func() { _ = conn.Close(ctx) }()

	result, err := conn.Query(ctx, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	defer func() { _ = result.Close() }()

	assert.Equal(t, []string{"id", "name"}, result.Columns())
	for _, expected := range rows {
		row, err := result.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected, row)
	}
	row, err := result.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, row)
}
