// Package http implements the plain-HTTP fetch driver; it shares the
// https driver's implementation and requests over the scheme the URL
// names.
package http

import (
	"context"

	"github.com/leapstack-labs/rsql/pkg/driver"
	"github.com/leapstack-labs/rsql/pkg/drivers/https"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens http:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "http" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return https.Fetch(ctx, url)
}

func (d *Driver) SupportsFileType(driver.FileType) bool { return false }
