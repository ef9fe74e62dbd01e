package shell

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/internal/config"
	"github.com/leapstack-labs/rsql/internal/format"
	"github.com/leapstack-labs/rsql/internal/shell/commands"
	"github.com/leapstack-labs/rsql/pkg/driver"
	"github.com/leapstack-labs/rsql/pkg/driver/drivertest"
)

func testExecutor(connection driver.Connection) (*Executor, *bytes.Buffer, *config.Settings) {
	var buf bytes.Buffer
	settings := config.Default()
	settings.Color = false
	settings.ResultsFormat = "sqlite"
	history := []string{}
	executor := NewExecutor(settings, commands.NewRegistry(), connection, format.NewOutput(&buf), &history, nil)
	return executor, &buf, settings
}

func TestRunEmptyLine(t *testing.T) {
	executor, buf, _ := testExecutor(&drivertest.Connection{})
	result, err := executor.Run(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, commands.Continue, result.Condition)
	assert.Empty(t, buf.String())
}

func TestRunCommand(t *testing.T) {
	executor, _, settings := testExecutor(&drivertest.Connection{})
	result, err := executor.Run(context.Background(), ".bail on")
	require.NoError(t, err)
	assert.Equal(t, commands.Continue, result.Condition)
	assert.True(t, settings.BailOnError)
}

func TestRunCommandByPrefix(t *testing.T) {
	executor, _, settings := testExecutor(&drivertest.Connection{})
	_, err := executor.Run(context.Background(), ".ba on")
	require.NoError(t, err)
	assert.True(t, settings.BailOnError)
}

func TestRunInvalidCommand(t *testing.T) {
	executor, _, _ := testExecutor(&drivertest.Connection{})
	_, err := executor.Run(context.Background(), ".nope")
	var invalid driver.InvalidCommandError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "nope", invalid.CommandName)
}

func TestRunQuery(t *testing.T) {
	connection := &drivertest.Connection{
		QueryFunc: func(context.Context, string, ...any) (driver.QueryResult, error) {
			return driver.NewMemoryQueryResult(
				[]string{"id"},
				[]driver.Row{{driver.NewI64(1)}, {driver.NewI64(2)}},
			), nil
		},
	}
	executor, buf, _ := testExecutor(connection)

	result, err := executor.Run(context.Background(), "SELECT id FROM users")
	require.NoError(t, err)
	assert.Equal(t, commands.Continue, result.Condition)
	assert.Contains(t, buf.String(), "id\n1\n2\n")
	assert.Contains(t, buf.String(), "2 rows")
	assert.Equal(t, []string{"SELECT id FROM users"}, connection.QueriedSQL())
}

func TestRunQueryAppliesLimit(t *testing.T) {
	connection := &drivertest.Connection{
		QueryFunc: func(context.Context, string, ...any) (driver.QueryResult, error) {
			rows := make([]driver.Row, 10)
			for i := range rows {
				rows[i] = driver.Row{driver.NewI64(int64(i))}
			}
			return driver.NewMemoryQueryResult([]string{"n"}, rows), nil
		},
	}
	executor, buf, settings := testExecutor(connection)
	settings.ResultsLimit = 3

	_, err := executor.Run(context.Background(), "SELECT n FROM numbers")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "3 rows")
	assert.NotContains(t, buf.String(), "\n4\n")
}

func TestRunExecute(t *testing.T) {
	connection := &drivertest.Connection{
		ExecuteFunc: func(context.Context, string, ...any) (int64, error) {
			return 42, nil
		},
	}
	executor, buf, _ := testExecutor(connection)

	_, err := executor.Run(context.Background(), "INSERT INTO users VALUES (1)")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "42 rows")
	assert.Equal(t, []string{"INSERT INTO users VALUES (1)"}, connection.ExecutedSQL())
}

func TestRunKeywordRouting(t *testing.T) {
	queries := []string{
		"SELECT 1",
		"show tables",
		"WITH t AS (SELECT 1) SELECT * FROM t",
		"PRAGMA table_info(users)",
		"EXPLAIN SELECT 1",
		"DESCRIBE users",
	}
	for _, sql := range queries {
		connection := &drivertest.Connection{}
		executor, _, _ := testExecutor(connection)
		_, err := executor.Run(context.Background(), sql)
		require.NoError(t, err, sql)
		assert.Len(t, connection.QueriedSQL(), 1, sql)
		assert.Empty(t, connection.ExecutedSQL(), sql)
	}
}

func TestRunEcho(t *testing.T) {
	executor, buf, settings := testExecutor(&drivertest.Connection{})
	settings.Echo = true

	_, err := executor.Run(context.Background(), ".timer off")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), ".timer off\n")
}
