package driver

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// FilePath extracts the filesystem path from a <scheme>://<path>[?query]
// URL. The path is taken verbatim, not percent-decoded, so paths may carry
// any character except '?'.
func FilePath(rawURL string) (string, error) {
	idx := strings.Index(rawURL, "://")
	if idx < 0 {
		return "", InvalidURLErrorf("missing scheme: %s", rawURL)
	}
	path := rawURL[idx+len("://"):]
	if q := strings.IndexByte(path, '?'); q >= 0 {
		path = path[:q]
	}
	if path == "" || path == "/" {
		return "", IOErrorf("no file provided: %s", rawURL)
	}
	return path, nil
}

// FileStem derives a source name from a URL's file path: the base name cut
// at the first dot. It returns an empty string when the URL carries no file
// path.
func FileStem(rawURL string) string {
	path, err := FilePath(rawURL)
	if err != nil {
		return ""
	}
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// SwapScheme rewrites the scheme of rawURL, preserving everything after
// the first ':'.
func SwapScheme(rawURL, scheme string) string {
	idx := strings.IndexByte(rawURL, ':')
	if idx < 0 {
		return scheme + ":" + rawURL
	}
	return scheme + rawURL[idx:]
}

// QueryOptions returns the parsed query parameters of a URL. A malformed
// query yields ErrInvalidUrl.
func QueryOptions(rawURL string) (url.Values, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, InvalidURLErrorf("%s", err)
	}
	values, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return nil, InvalidURLErrorf("%s", err)
	}
	return values, nil
}

// BoolOption reads a boolean query parameter, returning fallback when the
// parameter is absent or unparsable.
func BoolOption(values url.Values, key string, fallback bool) bool {
	raw := values.Get(key)
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

// IntOption reads an integer query parameter, returning fallback when the
// parameter is absent or unparsable.
func IntOption(values url.Values, key string, fallback int) int {
	raw := values.Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
