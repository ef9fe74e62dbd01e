// Package brotli implements the brotli decompression driver. Brotli
// carries no magic number, so only the file extension routes here.
package brotli

import (
	"context"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/leapstack-labs/rsql/internal/fetch"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens brotli:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "brotli" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return fetch.Decompress(ctx, url, driver.FileTypeBrotli, func(r io.Reader) (io.Reader, error) {
		return brotli.NewReader(r), nil
	})
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeBrotli
}
