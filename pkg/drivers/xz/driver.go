// Package xz implements the xz decompression driver.
package xz

import (
	"context"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/leapstack-labs/rsql/internal/fetch"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens xz:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "xz" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return fetch.Decompress(ctx, url, driver.FileTypeXZ, func(r io.Reader) (io.Reader, error) {
		return xz.NewReader(r)
	})
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeXZ
}
