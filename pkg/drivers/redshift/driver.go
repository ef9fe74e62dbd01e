// Package redshift implements the redshift driver on top of the postgres
// wire protocol session, reporting the redshift dialect.
package redshift

import (
	"context"

	"github.com/leapstack-labs/rsql/pkg/driver"
	"github.com/leapstack-labs/rsql/pkg/drivers/postgres"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens redshift:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "redshift" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return postgres.Open(ctx, url, driver.DialectRedshift)
}

func (d *Driver) SupportsFileType(_ driver.FileType) bool { return false }
