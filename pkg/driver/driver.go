// Package driver defines the polyglot access fabric: the Value algebra
// rows are decoded into, the Connection and QueryResult contracts every
// backend implements, the metadata tree, and the process-wide driver
// registry that resolves connection URLs by scheme.
package driver

import (
	"context"
	"net/url"
	"sort"
	"sync"
)

// Driver opens connections for one URL scheme.
type Driver interface {
	// Identifier returns the URL scheme the driver handles.
	Identifier() string
	// Connect opens a connection to the data source named by url.
	Connect(ctx context.Context, url string) (Connection, error)
	// SupportsFileType reports whether the driver can read files of the
	// given type, used by the fetch layer to dispatch downloaded files.
	SupportsFileType(ft FileType) bool
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register adds a driver to the registry. Registering the same identifier
// again replaces the previous driver.
func Register(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[d.Identifier()] = d
}

// Get returns the driver registered for the identifier.
func Get(identifier string) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[identifier]
	return d, ok
}

// GetByFileType returns the first driver, in identifier order, that
// supports the file type.
func GetByFileType(ft FileType) (Driver, bool) {
	if ft == FileTypeUnknown {
		return nil, false
	}
	for _, d := range Drivers() {
		if d.SupportsFileType(ft) {
			return d, true
		}
	}
	return nil, false
}

// Drivers returns all registered drivers sorted by identifier.
func Drivers() []Driver {
	driversMu.RLock()
	defer driversMu.RUnlock()
	out := make([]Driver, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier() < out[j].Identifier() })
	return out
}

// Connect resolves the URL scheme to a registered driver, opens a
// connection and wraps it with a metadata cache.
func Connect(ctx context.Context, rawURL string) (Connection, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, InvalidURLErrorf("%s", err)
	}
	scheme := parsed.Scheme
	if scheme == "" {
		return nil, InvalidURLErrorf("missing scheme: %s", rawURL)
	}
	d, ok := Get(scheme)
	if !ok {
		return nil, DriverNotFoundErrorf("%s", scheme)
	}
	conn, err := d.Connect(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return NewCachedMetadataConnection(conn), nil
}
