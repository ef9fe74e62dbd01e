package yaml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func TestConnect(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.yaml")
	document := "- id: 1\n  name: alice\n- id: 2\n  name: bob\n"
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))

	conn, err := (&Driver{}).Connect(ctx, "yaml://"+path)
	require.NoError(t, err)
	defer func() { _ = conn.Close(ctx) }()

	result, err := conn.Query(ctx, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	defer func() { _ = result.Close() }()

	assert.Equal(t, []string{"id", "name"}, result.Columns())
	row, err := result.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, driver.Row{driver.NewI64(1), driver.NewString("alice")}, row)
	row, err = result.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, driver.Row{driver.NewI64(2), driver.NewString("bob")}, row)
	row, err = result.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestStringKeys(t *testing.T) {
	converted := stringKeys(map[any]any{1: "x", "nested": map[any]any{true: "y"}})
	assert.Equal(t, map[string]any{
		"1":      "x",
		"nested": map[string]any{"true": "y"},
	}, converted)

	sequence := stringKeys([]any{map[any]any{2: "z"}})
	assert.Equal(t, []any{map[string]any{"2": "z"}}, sequence)
}
