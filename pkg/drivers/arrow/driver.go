// Package arrow implements the driver for Arrow IPC files. Both the file
// format and the stream format are accepted; record batches are decoded
// into a frame on the embedded engine.
package arrow

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow/ipc"

	"github.com/leapstack-labs/rsql/internal/arrowconv"
	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens arrow:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "arrow" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	path, err := driver.FilePath(url)
	if err != nil {
		return nil, err
	}
	frame, err := readFrame(path)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return nil, driver.IOError(err)
	}
	if _, err := eng.RegisterFrame(ctx, engine.TableName(path), frame); err != nil {
		_ = eng.Close()
		return nil, driver.IOError(err)
	}
	return engine.NewConnection(url, eng), nil
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeArrow
}

func readFrame(path string) (engine.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.Frame{}, driver.IOError(err)
	}
	defer func() { _ = f.Close() }()

	if frame, err := readFile(f); err == nil {
		return frame, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return engine.Frame{}, driver.IOError(err)
	}
	return readStream(f)
}

// readFile decodes the random-access file format (ARROW1 magic).
func readFile(f *os.File) (engine.Frame, error) {
	reader, err := ipc.NewFileReader(f)
	if err != nil {
		return engine.Frame{}, driver.IOError(err)
	}
	defer func() { _ = reader.Close() }()

	frame := engine.Frame{Columns: arrowconv.Columns(reader.Schema())}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return frame, nil
		}
		if err != nil {
			return engine.Frame{}, driver.IOError(err)
		}
		rows, err := arrowconv.Rows(record)
		if err != nil {
			return engine.Frame{}, err
		}
		frame.Rows = append(frame.Rows, rows...)
	}
}

// readStream decodes the streaming format.
func readStream(f *os.File) (engine.Frame, error) {
	reader, err := ipc.NewReader(f)
	if err != nil {
		return engine.Frame{}, driver.IOError(err)
	}
	defer reader.Release()

	frame := engine.Frame{Columns: arrowconv.Columns(reader.Schema())}
	for reader.Next() {
		rows, err := arrowconv.Rows(reader.RecordBatch())
		if err != nil {
			return engine.Frame{}, err
		}
		frame.Rows = append(frame.Rows, rows...)
	}
	if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return engine.Frame{}, driver.IOError(err)
	}
	return frame, nil
}
