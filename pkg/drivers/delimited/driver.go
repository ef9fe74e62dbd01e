// Package delimited implements the driver for character-separated files.
// The URL delimited://<path>[?options] ingests the file into the embedded
// engine under a table named after the file.
//
// Options: separator (single char, default ','), quote, eol, has_header
// (default true), skip_rows, skip_rows_after_header, infer_schema_length
// (default 100, 0 scans everything) and ignore_errors.
package delimited

import (
	"context"
	"net/url"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens delimited:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "delimited" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return Open(ctx, url, engine.DefaultCSVOptions())
}

func (d *Driver) SupportsFileType(driver.FileType) bool { return false }

// Open ingests the file behind rawURL with defaults as the starting
// options; URL parameters override them. The csv and tsv drivers reuse it
// with their fixed separators.
func Open(ctx context.Context, rawURL string, defaults engine.CSVOptions) (driver.Connection, error) {
	path, err := driver.FilePath(rawURL)
	if err != nil {
		return nil, err
	}
	parameters, err := driver.QueryOptions(rawURL)
	if err != nil {
		return nil, err
	}
	options, err := csvOptions(parameters, defaults)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return nil, driver.IOError(err)
	}
	if _, err := eng.RegisterCSV(ctx, engine.TableName(path), path, options); err != nil {
		_ = eng.Close()
		return nil, driver.IOError(err)
	}
	return engine.NewConnection(rawURL, eng), nil
}

func csvOptions(parameters url.Values, defaults engine.CSVOptions) (engine.CSVOptions, error) {
	options := defaults
	options.HasHeader = driver.BoolOption(parameters, "has_header", defaults.HasHeader)
	options.IgnoreErrors = driver.BoolOption(parameters, "ignore_errors", defaults.IgnoreErrors)
	options.InferSchemaLength = driver.IntOption(parameters, "infer_schema_length", defaults.InferSchemaLength)
	options.SkipRows = driver.IntOption(parameters, "skip_rows", defaults.SkipRows)
	options.SkipRowsAfterHeader = driver.IntOption(parameters, "skip_rows_after_header", defaults.SkipRowsAfterHeader)

	var err error
	if options.Separator, err = charOption(parameters, "separator", defaults.Separator); err != nil {
		return options, err
	}
	if options.Quote, err = charOption(parameters, "quote", defaults.Quote); err != nil {
		return options, err
	}
	if options.EOL, err = charOption(parameters, "eol", defaults.EOL); err != nil {
		return options, err
	}
	return options, nil
}

// charOption reads a single-character parameter; longer values are invalid.
func charOption(parameters url.Values, key string, fallback byte) (byte, error) {
	raw := parameters.Get(key)
	if raw == "" {
		return fallback, nil
	}
	if len(raw) != 1 {
		return 0, driver.InvalidURLErrorf("parameter %s must be a single character: %s", key, raw)
	}
	return raw[0], nil
}
