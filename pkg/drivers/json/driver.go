// Package json implements the driver for JSON documents. The URL
// json://<path>[?options] ingests the document into the embedded engine.
//
// Options: ignore_errors and infer_schema_length (default 100, 0 scans
// everything). Top-level arrays and single objects are both accepted.
package json

import (
	"context"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens json:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "json" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return Open(ctx, url, engine.DefaultJSONOptions())
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeJSON
}

// Open ingests the document behind rawURL with defaults as the starting
// options; URL parameters override them. The jsonl driver reuses it with
// the newline-delimited format pinned.
func Open(ctx context.Context, rawURL string, defaults engine.JSONOptions) (driver.Connection, error) {
	path, err := driver.FilePath(rawURL)
	if err != nil {
		return nil, err
	}
	parameters, err := driver.QueryOptions(rawURL)
	if err != nil {
		return nil, err
	}
	options := defaults
	options.IgnoreErrors = driver.BoolOption(parameters, "ignore_errors", defaults.IgnoreErrors)
	options.InferSchemaLength = driver.IntOption(parameters, "infer_schema_length", defaults.InferSchemaLength)

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return nil, driver.IOError(err)
	}
	if _, err := eng.RegisterJSON(ctx, engine.TableName(path), path, options); err != nil {
		_ = eng.Close()
		return nil, driver.IOError(err)
	}
	return engine.NewConnection(rawURL, eng), nil
}
