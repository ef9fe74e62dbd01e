package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryResultOf(n int) *MemoryQueryResult {
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, Row{NewI64(int64(i))})
	}
	return NewMemoryQueryResult([]string{"id"}, rows)
}

func TestMemoryQueryResult(t *testing.T) {
	ctx := context.Background()
	result := NewMemoryQueryResult([]string{"id", "name"}, []Row{
		{NewI64(1), NewString("foo")},
		{NewI64(2), NewString("bar")},
	})

	assert.Equal(t, []string{"id", "name"}, result.Columns())

	row, err := result.Next(ctx)
	require.NoError(t, err)
	require.Len(t, row, 2)
	assert.True(t, NewI64(1).Equal(row[0]))
	assert.True(t, NewString("foo").Equal(row[1]))

	row, err = result.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, row)

	row, err = result.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, row)

	require.NoError(t, result.Close())
	require.NoError(t, result.Close())
}

func TestMemoryQueryResultCloseStopsIteration(t *testing.T) {
	ctx := context.Background()
	result := memoryResultOf(5)
	require.NoError(t, result.Close())

	row, err := result.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestLimitQueryResult(t *testing.T) {
	ctx := context.Background()
	limited := NewLimitQueryResult(memoryResultOf(10), 3)

	assert.Equal(t, []string{"id"}, limited.Columns())
	assert.Equal(t, 3, limited.Limit())

	var rows []Row
	for {
		row, err := limited.Next(ctx)
		require.NoError(t, err)
		if row == nil {
			break
		}
		rows = append(rows, row)
	}
	require.Len(t, rows, 3)
	assert.True(t, NewI64(0).Equal(rows[0][0]))
	assert.True(t, NewI64(2).Equal(rows[2][0]))
	require.NoError(t, limited.Close())
}

func TestLimitQueryResultZeroPassesThrough(t *testing.T) {
	ctx := context.Background()
	limited := NewLimitQueryResult(memoryResultOf(4), 0)

	count := 0
	for {
		row, err := limited.Next(ctx)
		require.NoError(t, err)
		if row == nil {
			break
		}
		count++
	}
	assert.Equal(t, 4, count)
}
