// Package clickhouse implements the clickhouse driver on top of the server's
// HTTP interface. Statements are posted as the request body and result sets
// come back as FORMAT JSON documents, so the driver needs no native protocol
// client. 64 bit and wider integers arrive quoted as strings and are parsed
// back to their exact width.
package clickhouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver connects to ClickHouse servers over HTTP or HTTPS.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "clickhouse" }

func (d *Driver) Connect(ctx context.Context, rawURL string) (driver.Connection, error) {
	conn, err := Open(rawURL)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Execute(ctx, "SELECT 1"); err != nil {
		return nil, err
	}
	return conn, nil
}

func (d *Driver) SupportsFileType(_ driver.FileType) bool { return false }

// Open parses rawURL into a connection without touching the network.
//
// The host defaults to localhost and the port to 8123. The first path segment
// names the database. Recognized query parameters are scheme (http or https,
// default https) and access_token for bearer token authentication; user and
// password credentials travel in the ClickHouse authentication headers.
func Open(rawURL string) (*Connection, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, driver.InvalidURLErrorf("%s", err)
	}
	query := parsed.Query()

	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := parsed.Port()
	if port == "" {
		port = "8123"
	}
	scheme := query.Get("scheme")
	if scheme == "" {
		scheme = "https"
	}
	if scheme != "http" && scheme != "https" {
		return nil, driver.InvalidURLErrorf("clickhouse url %q: scheme parameter must be http or https", rawURL)
	}

	conn := &Connection{
		url:      rawURL,
		endpoint: fmt.Sprintf("%s://%s/", scheme, net.JoinHostPort(host, port)),
		database: strings.TrimPrefix(parsed.Path, "/"),
		user:     parsed.User.Username(),
		token:    query.Get("access_token"),
		// Each HTTP request is otherwise stateless, so a session id keeps
		// SET statements visible to everything that runs after them.
		session: uuid.NewString(),
		client:  &http.Client{},
	}
	conn.password, _ = parsed.User.Password()
	return conn, nil
}

// Connection issues statements against one ClickHouse server, pinned to a
// single server side session.
type Connection struct {
	url      string
	endpoint string
	database string
	user     string
	password string
	token    string
	session  string
	client   *http.Client
}

var _ driver.Connection = (*Connection)(nil)

func (c *Connection) URL() string { return c.url }

func (c *Connection) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	if len(args) > 0 {
		return 0, driver.IOErrorf("the clickhouse http interface does not support bind parameters")
	}
	_, header, err := c.post(ctx, sql)
	if err != nil {
		return 0, err
	}
	return writtenRows(header), nil
}

func (c *Connection) Query(ctx context.Context, sql string, args ...any) (driver.QueryResult, error) {
	if len(args) > 0 {
		return nil, driver.IOErrorf("the clickhouse http interface does not support bind parameters")
	}
	body, _, err := c.post(ctx, sql)
	if err != nil {
		return nil, err
	}

	var response struct {
		Meta []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"meta"`
		Data []map[string]any `json:"data"`
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&response); err != nil {
		return nil, driver.IOErrorf("malformed clickhouse response: %s", err)
	}

	columns := make([]string, len(response.Meta))
	for i, column := range response.Meta {
		columns[i] = column.Name
	}

	rows := make([]driver.Row, 0, len(response.Data))
	for _, object := range response.Data {
		row := make(driver.Row, len(response.Meta))
		for i, column := range response.Meta {
			value, err := cellValue(column.Name, column.Type, object[column.Name])
			if err != nil {
				return nil, err
			}
			row[i] = value
		}
		rows = append(rows, row)
	}
	return driver.NewMemoryQueryResult(columns, rows), nil
}

func (c *Connection) Close(_ context.Context) error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Connection) Dialect() driver.Dialect { return driver.DialectGeneric }

func (c *Connection) MatchStatement(sql string) driver.StatementKind {
	return driver.ClassifyStatement(sql)
}

// post sends sql to the server and returns the response body and headers.
// Results are requested in FORMAT JSON unless the statement names a format
// of its own.
func (c *Connection) post(ctx context.Context, sql string) ([]byte, http.Header, error) {
	params := url.Values{}
	params.Set("default_format", "JSON")
	params.Set("session_id", c.session)
	if c.database != "" {
		params.Set("database", c.database)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?"+params.Encode(), strings.NewReader(sql))
	if err != nil {
		return nil, nil, driver.IOError(err)
	}
	if c.user != "" {
		request.Header.Set("X-ClickHouse-User", c.user)
	}
	if c.password != "" {
		request.Header.Set("X-ClickHouse-Key", c.password)
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return nil, nil, driver.IOError(err)
	}
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, nil, driver.IOError(err)
	}
	if response.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = response.Status
		}
		return nil, nil, driver.IOErrorf("%s", message)
	}
	return body, response.Header, nil
}

// writtenRows reads the statement summary the server attaches to every
// response. Statements that write nothing report zero.
func writtenRows(header http.Header) int64 {
	raw := header.Get("X-ClickHouse-Summary")
	if raw == "" {
		return 0
	}
	var summary struct {
		WrittenRows string `json:"written_rows"`
	}
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return 0
	}
	written, err := strconv.ParseInt(summary.WrittenRows, 10, 64)
	if err != nil {
		return 0
	}
	return written
}
