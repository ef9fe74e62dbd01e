// Package lz4 implements the lz4 decompression driver.
package lz4

import (
	"context"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/leapstack-labs/rsql/internal/fetch"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens lz4:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "lz4" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return fetch.Decompress(ctx, url, driver.FileTypeLZ4, func(r io.Reader) (io.Reader, error) {
		return lz4.NewReader(r), nil
	})
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeLZ4
}
