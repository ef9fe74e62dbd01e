// Package jsonl implements the driver for newline-delimited JSON files as
// a thin layer over the json driver.
package jsonl

import (
	"context"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
	"github.com/leapstack-labs/rsql/pkg/drivers/json"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens jsonl:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "jsonl" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	options := engine.DefaultJSONOptions()
	options.Format = "newline_delimited"
	return json.Open(ctx, url, options)
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeJSONL
}
