// Package mariadb implements the mariadb driver on top of the mysql wire
// protocol session.
package mariadb

import (
	"context"

	"github.com/leapstack-labs/rsql/pkg/driver"
	"github.com/leapstack-labs/rsql/pkg/drivers/mysql"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens mariadb:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "mariadb" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return mysql.Open(ctx, url, driver.DialectMySQL)
}

func (d *Driver) SupportsFileType(_ driver.FileType) bool { return false }
