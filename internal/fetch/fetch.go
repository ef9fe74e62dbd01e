// Package fetch is the shared machinery behind the fetch and decompression
// drivers: it detects the type of a local file and re-dispatches it to the
// driver registered for that type, carrying the original URL parameters
// along.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// Version is stamped at build time and reported in the User-Agent of
// outbound requests.
var Version = "0.1.0"

// UserAgent identifies outbound HTTP requests.
func UserAgent() string {
	return fmt.Sprintf("rsql/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)
}

// Dispatch resolves the driver for a local file and connects it as
// <identifier>://<path>?<original query>. The media type hint wins over
// content detection when it maps to a known type; generic hints are
// ignored upstream by FileTypeFromMediaType.
func Dispatch(ctx context.Context, path, mediaType, originalURL string) (driver.Connection, error) {
	ft := driver.FileTypeFromMediaType(mediaType)
	if ft == driver.FileTypeUnknown {
		ft = driver.DetectFileType(path)
	}
	d, ok := driver.GetByFileType(ft)
	if !ok {
		return nil, driver.IOErrorf("no driver handles %s (detected type %q)", path, string(ft))
	}

	target := d.Identifier() + "://" + path
	if _, query, found := strings.Cut(originalURL, "?"); found {
		target += "?" + query
	}
	return d.Connect(ctx, target)
}

// TempDir creates the scoped directory a fetcher downloads into.
func TempDir() (string, error) {
	dir, err := os.MkdirTemp("", "rsql-")
	if err != nil {
		return "", driver.IOError(err)
	}
	return dir, nil
}

// WithCleanup wraps a connection so closing it also runs cleanup, which
// releases the temp dir holding the fetched file.
func WithCleanup(conn driver.Connection, cleanup func()) driver.Connection {
	return &scopedConnection{Connection: conn, cleanup: cleanup}
}

type scopedConnection struct {
	driver.Connection
	cleanup func()
}

func (c *scopedConnection) Close(ctx context.Context) error {
	err := c.Connection.Close(ctx)
	if c.cleanup != nil {
		c.cleanup()
		c.cleanup = nil
	}
	return err
}

// FileName extracts the last path segment of a URL to name the downloaded
// file, falling back to "response".
func FileName(parsed *url.URL) string {
	name := filepath.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return "response"
	}
	return name
}

// Save streams a response body into dir under the given file name.
func Save(dir, name string, body io.Reader) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", driver.IOError(err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return "", driver.IOError(err)
	}
	if err := f.Close(); err != nil {
		return "", driver.IOError(err)
	}
	return path, nil
}
