package driver

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure categories every driver shares. Driver
// internals wrap their own errors into one of these with %w so callers can
// match with errors.Is regardless of backend.
var (
	// ErrInvalidURL indicates a connection URL that could not be parsed.
	ErrInvalidURL = errors.New("invalid url")

	// ErrDriverNotFound indicates a URL scheme with no registered driver.
	ErrDriverNotFound = errors.New("driver not found")

	// ErrIO indicates a transport, protocol, or operating system failure.
	ErrIO = errors.New("io error")

	// ErrConversion indicates a parse or cast failure while decoding values.
	ErrConversion = errors.New("conversion error")
)

// UnsupportedColumnTypeError is returned when a backend column type has no
// representation in the value algebra. Drivers must fail the row rather
// than silently truncate.
type UnsupportedColumnTypeError struct {
	ColumnName string
	ColumnType string
}

func (e UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("unsupported column type %s for column %s", e.ColumnType, e.ColumnName)
}

// InvalidOptionError is returned by a meta-command given an argument
// outside its accepted set.
type InvalidOptionError struct {
	CommandName string
	Option      string
}

func (e InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid %s option: %s", e.CommandName, e.Option)
}

// InvalidCommandError is returned when an input line names an unknown
// meta-command.
type InvalidCommandError struct {
	CommandName string
}

func (e InvalidCommandError) Error() string {
	return fmt.Sprintf("invalid command: %s", e.CommandName)
}

// UnknownFormatError is returned when a formatter identifier is not
// registered.
type UnknownFormatError struct {
	Format string
}

func (e UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown format: %s", e.Format)
}

// IOError wraps err into the ErrIO category, preserving the original
// message for errors.Is matching.
func IOError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// IOErrorf formats a new ErrIO-category error.
func IOErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIO, fmt.Sprintf(format, args...))
}

// ConversionErrorf formats a new ErrConversion-category error.
func ConversionErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConversion, fmt.Sprintf(format, args...))
}

// InvalidURLErrorf formats a new ErrInvalidURL-category error.
func InvalidURLErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidURL, fmt.Sprintf(format, args...))
}

// DriverNotFoundErrorf formats a new ErrDriverNotFound-category error.
func DriverNotFoundErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDriverNotFound, fmt.Sprintf(format, args...))
}
