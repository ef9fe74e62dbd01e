// Package cockroachdb implements the cockroachdb driver on top of the
// postgres wire protocol session.
package cockroachdb

import (
	"context"

	"github.com/leapstack-labs/rsql/pkg/driver"
	"github.com/leapstack-labs/rsql/pkg/drivers/postgres"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens cockroachdb:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "cockroachdb" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return postgres.Open(ctx, url, driver.DialectPostgres)
}

func (d *Driver) SupportsFileType(_ driver.FileType) bool { return false }
