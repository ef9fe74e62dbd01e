// Package https implements the driver that fetches a data file over HTTP
// and re-dispatches it to the driver for the downloaded file type. URL
// query parameters are sent as request headers; a _headers parameter may
// carry extra headers as semicolon-separated key=value pairs.
//
// The request and response headers stay queryable on the resulting
// connection as the request_headers and response_headers tables.
package https

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/leapstack-labs/rsql/internal/fetch"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens https:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "https" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	return Fetch(ctx, url)
}

func (d *Driver) SupportsFileType(driver.FileType) bool { return false }

// Fetch downloads the file behind rawURL and connects the driver for its
// type. The http driver shares this implementation; the request scheme
// follows the URL.
func Fetch(ctx context.Context, rawURL string) (driver.Connection, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, driver.InvalidURLErrorf("%s", err)
	}
	requestHeaders := headerValues(parsed.Query())

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, driver.IOError(err)
	}
	for key, value := range requestHeaders {
		request.Header.Set(key, value)
	}

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, driver.IOError(err)
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode >= http.StatusBadRequest {
		return nil, driver.IOErrorf("%s: %s", rawURL, response.Status)
	}

	responseHeaders := map[string]string{}
	for key := range response.Header {
		responseHeaders[key] = response.Header.Get(key)
	}
	mediaType, _, _ := strings.Cut(response.Header.Get("Content-Type"), ";")

	dir, err := fetch.TempDir()
	if err != nil {
		return nil, err
	}
	path, err := fetch.Save(dir, fetch.FileName(parsed), response.Body)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	conn, err := fetch.Dispatch(ctx, path, mediaType, rawURL)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if err := createHeaderTables(ctx, conn, requestHeaders, responseHeaders); err != nil {
		_ = conn.Close(ctx)
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return fetch.WithCleanup(conn, func() { _ = os.RemoveAll(dir) }), nil
}

// headerValues lifts the URL query parameters into request headers. The
// _headers parameter expands into individual headers; a User-Agent is
// supplied when none is given.
func headerValues(query url.Values) map[string]string {
	headers := map[string]string{}
	for key := range query {
		headers[key] = query.Get(key)
	}
	if packed, ok := headers["_headers"]; ok {
		delete(headers, "_headers")
		for _, header := range strings.Split(packed, ";") {
			key, value, _ := strings.Cut(header, "=")
			if key != "" {
				headers[key] = value
			}
		}
	}
	hasAgent := false
	for key := range headers {
		if strings.EqualFold(key, "user-agent") {
			hasAgent = true
			break
		}
	}
	if !hasAgent {
		headers["User-Agent"] = fetch.UserAgent()
	}
	return headers
}

// createHeaderTables materializes the request and response headers as
// queryable tables on the dispatched connection.
func createHeaderTables(ctx context.Context, conn driver.Connection, request, response map[string]string) error {
	if _, err := conn.Execute(ctx, headerTableSQL("request_headers", request)); err != nil {
		return err
	}
	if _, err := conn.Execute(ctx, headerTableSQL("response_headers", response)); err != nil {
		return err
	}
	return nil
}

func headerTableSQL(table string, headers map[string]string) string {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	selects := make([]string, 0, len(keys))
	for _, key := range keys {
		selects = append(selects, "SELECT "+driver.QuoteLiteral(strings.ToLower(key))+
			` AS "header", `+driver.QuoteLiteral(headers[key])+` AS "value"`)
	}
	if len(selects) == 0 {
		selects = append(selects, `SELECT '' AS "header", '' AS "value" WHERE 1 = 0`)
	}
	return "CREATE TABLE " + table + " AS " + strings.Join(selects, " UNION ")
}
