package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePath(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr error
	}{
		{name: "plain", url: "csv:///data/users.csv", want: "/data/users.csv"},
		{name: "query stripped", url: "delimited:///tmp/users.pipe?separator=|", want: "/tmp/users.pipe"},
		{name: "relative", url: "file://datasets/users.csv", want: "datasets/users.csv"},
		{name: "spaces kept", url: "file:///tmp/my file.csv", want: "/tmp/my file.csv"},
		{name: "empty path", url: "file://", wantErr: ErrIO},
		{name: "root only", url: "file:///", wantErr: ErrIO},
		{name: "no scheme", url: "/tmp/users.csv", wantErr: ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilePath(tt.url)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSwapScheme(t *testing.T) {
	assert.Equal(t, "csv:///tmp/users.csv?x=1", SwapScheme("file:///tmp/users.csv?x=1", "csv"))
	assert.Equal(t, "gzip:///tmp/a.csv.gz", SwapScheme("file:///tmp/a.csv.gz", "gzip"))
}

func TestQueryOptions(t *testing.T) {
	values, err := QueryOptions("csv:///tmp/users.csv?has_header=false&skip_rows=2")
	require.NoError(t, err)
	assert.Equal(t, "false", values.Get("has_header"))

	assert.False(t, BoolOption(values, "has_header", true))
	assert.True(t, BoolOption(values, "missing", true))
	assert.Equal(t, 2, IntOption(values, "skip_rows", 0))
	assert.Equal(t, 7, IntOption(values, "missing", 7))
}
