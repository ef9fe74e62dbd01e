package format

import (
	"fmt"
	"io"
	"os"
)

// Output is the sink results are rendered into: the base writer (normally
// stdout), a truncated file for .output, or a tee of both for .tee.
type Output struct {
	base   io.Writer
	writer io.Writer
	file   *os.File
}

// NewOutput writes to base, normally os.Stdout.
func NewOutput(base io.Writer) *Output {
	return &Output{base: base, writer: base}
}

func (o *Output) Write(p []byte) (int, error) {
	return o.writer.Write(p)
}

// ToFile redirects output into path, truncating it. With tee, output goes
// to both the file and the base writer.
func (o *Output) ToFile(path string, tee bool) error {
	if err := o.closeFile(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	o.file = f
	if tee {
		o.writer = io.MultiWriter(o.base, f)
	} else {
		o.writer = f
	}
	return nil
}

// ToBase points output back at the base writer, closing any open file.
func (o *Output) ToBase() error {
	if err := o.closeFile(); err != nil {
		return err
	}
	o.writer = o.base
	return nil
}

func (o *Output) closeFile() error {
	if o.file == nil {
		return nil
	}
	err := o.file.Close()
	o.file = nil
	if err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// Close releases the file sink if one is open.
func (o *Output) Close() error {
	return o.closeFile()
}
