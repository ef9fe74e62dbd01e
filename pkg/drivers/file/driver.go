// Package file implements the driver for local files of any supported
// type: the file type is detected and the URL re-dispatched to the driver
// that handles it.
package file

import (
	"context"

	"github.com/leapstack-labs/rsql/internal/fetch"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens file:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "file" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	path, err := driver.FilePath(url)
	if err != nil {
		return nil, err
	}
	return fetch.Dispatch(ctx, path, "", url)
}

func (d *Driver) SupportsFileType(driver.FileType) bool { return false }
