package cockroachdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func TestDriverRegistration(t *testing.T) {
	d, ok := driver.Get("cockroachdb")
	require.True(t, ok)
	require.Equal(t, "cockroachdb", d.Identifier())
	require.False(t, d.SupportsFileType(driver.FileTypeCSV))
}

func TestConnectInvalidURL(t *testing.T) {
	d := &Driver{}
	_, err := d.Connect(context.Background(), "cockroachdb://user@host:bad/db")
	require.ErrorIs(t, err, driver.ErrInvalidURL)
}
