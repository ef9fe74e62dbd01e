// Package tsv implements the tab-separated file driver as a thin layer
// over the delimited driver.
package tsv

import (
	"context"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
	"github.com/leapstack-labs/rsql/pkg/drivers/delimited"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens tsv:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "tsv" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	options := engine.DefaultCSVOptions()
	options.Separator = '\t'
	return delimited.Open(ctx, url, options)
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeTSV
}
