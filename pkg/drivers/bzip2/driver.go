// Package bzip2 implements the bzip2 decompression driver. The standard
// library decoder serves here; the compression libraries in the module
// only cover the other formats.
package bzip2

import (
	"compress/bzip2"
	"context"
	"io"

	"github.com/leapstack-labs/rsql/internal/fetch"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens bzip2:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "bzip2" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return fetch.Decompress(ctx, url, driver.FileTypeBzip2, func(r io.Reader) (io.Reader, error) {
		return bzip2.NewReader(r), nil
	})
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeBzip2
}
