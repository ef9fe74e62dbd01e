// Package gzip implements the gzip decompression driver. The file is
// decompressed into a scoped temp dir and handed to the driver for the
// inner file type.
package gzip

import (
	"context"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/leapstack-labs/rsql/internal/fetch"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens gzip:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "gzip" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return fetch.Decompress(ctx, url, driver.FileTypeGzip, func(r io.Reader) (io.Reader, error) {
		return gzip.NewReader(r)
	})
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeGzip
}
