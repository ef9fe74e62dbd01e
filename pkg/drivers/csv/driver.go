// Package csv implements the comma-separated file driver as a thin layer
// over the delimited driver.
package csv

import (
	"context"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
	"github.com/leapstack-labs/rsql/pkg/drivers/delimited"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens csv:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "csv" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return delimited.Open(ctx, url, engine.DefaultCSVOptions())
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeCSV
}
