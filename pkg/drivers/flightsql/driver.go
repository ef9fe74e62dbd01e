// Package flightsql implements the driver for Arrow Flight SQL services.
//
// The URL flightsql://[user:pass@]host[:port][?options] dials a gRPC
// channel; the port defaults to 31337 and the channel is TLS unless
// scheme=http. Credentials in the URL run the basic-auth handshake; an
// access_token option sends a bearer token instead.
package flightsql

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/flight/flightsql"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/leapstack-labs/rsql/internal/arrowconv"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens flightsql:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "flightsql" }

func (d *Driver) Connect(ctx context.Context, rawURL string) (driver.Connection, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, driver.InvalidURLErrorf("%s", err)
	}
	if parsed.Hostname() == "" {
		return nil, driver.InvalidURLErrorf("missing host: %s", rawURL)
	}
	query := parsed.Query()

	port := parsed.Port()
	if port == "" {
		port = "31337"
	}
	address := fmt.Sprintf("%s:%s", parsed.Hostname(), port)

	transport := grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{}))
	if query.Get("scheme") == "http" {
		transport = grpc.WithTransportCredentials(insecure.NewCredentials())
	}
	options := []grpc.DialOption{transport}
	if token := query.Get("access_token"); token != "" {
		options = append(options, grpc.WithPerRPCCredentials(bearerToken{token: token}))
	}

	client, err := flightsql.NewClient(address, nil, nil, options...)
	if err != nil {
		return nil, driver.IOError(err)
	}

	conn := &Connection{url: rawURL, client: client}
	if user := parsed.User.Username(); user != "" {
		password, _ := parsed.User.Password()
		authCtx, err := client.Client.AuthenticateBasicToken(ctx, user, password)
		if err != nil {
			_ = client.Close()
			return nil, driver.IOError(err)
		}
		if md, ok := metadata.FromOutgoingContext(authCtx); ok {
			conn.auth = md
		}
	}
	return conn, nil
}

func (d *Driver) SupportsFileType(driver.FileType) bool { return false }

// bearerToken attaches a static bearer token to every RPC.
type bearerToken struct {
	token string
}

func (t bearerToken) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + t.token}, nil
}

func (t bearerToken) RequireTransportSecurity() bool { return false }

// Connection is an open Flight SQL session.
type Connection struct {
	url    string
	client *flightsql.Client
	auth   metadata.MD
}

var _ driver.Connection = (*Connection)(nil)

func (c *Connection) URL() string { return c.url }

// callContext merges the handshake metadata into a per-call context.
func (c *Connection) callContext(ctx context.Context) context.Context {
	if c.auth == nil {
		return ctx
	}
	return metadata.NewOutgoingContext(ctx, c.auth)
}

func (c *Connection) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	if len(args) > 0 {
		return 0, driver.IOErrorf("flightsql does not support bound parameters")
	}
	affected, err := c.client.ExecuteUpdate(c.callContext(ctx), sql)
	if err != nil {
		return 0, driver.IOError(err)
	}
	return affected, nil
}

func (c *Connection) Query(ctx context.Context, sql string, args ...any) (driver.QueryResult, error) {
	if len(args) > 0 {
		return nil, driver.IOErrorf("flightsql does not support bound parameters")
	}
	ctx = c.callContext(ctx)
	info, err := c.client.Execute(ctx, sql)
	if err != nil {
		return nil, driver.IOError(err)
	}
	return c.fetch(ctx, info)
}

// fetch materializes every endpoint of a flight into a memory result.
func (c *Connection) fetch(ctx context.Context, info *flight.FlightInfo) (driver.QueryResult, error) {
	var columns []string
	var rows []driver.Row
	for _, endpoint := range info.Endpoint {
		reader, err := c.client.DoGet(ctx, endpoint.Ticket)
		if err != nil {
			return nil, driver.IOError(err)
		}
		if columns == nil {
			columns = arrowconv.Columns(reader.Schema())
		}
		for reader.Next() {
			decoded, err := arrowconv.Rows(reader.RecordBatch())
			if err != nil {
				reader.Release()
				return nil, err
			}
			rows = append(rows, decoded...)
		}
		err = reader.Err()
		reader.Release()
		if err != nil {
			return nil, driver.IOError(err)
		}
	}
	return driver.NewMemoryQueryResult(columns, rows), nil
}

func (c *Connection) Metadata(ctx context.Context) (*driver.Metadata, error) {
	ctx = c.callContext(ctx)
	meta := driver.NewMetadata(c.Dialect())

	info, err := c.client.GetCatalogs(ctx)
	if err != nil {
		return nil, driver.IOError(err)
	}
	catalogs, err := c.fetch(ctx, info)
	if err != nil {
		return nil, err
	}
	for {
		row, err := catalogs.Next(ctx)
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		if len(row) > 0 {
			meta.AddCatalog(driver.NewCatalog(row[0].String(), false))
		}
	}

	info, err = c.client.GetDBSchemas(ctx, &flightsql.GetDBSchemasOpts{})
	if err != nil {
		return nil, driver.IOError(err)
	}
	schemas, err := c.fetch(ctx, info)
	if err != nil {
		return nil, err
	}
	first := true
	for {
		row, err := schemas.Next(ctx)
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		if len(row) < 2 {
			continue
		}
		catalog, ok := meta.Catalog(row[0].String())
		if !ok {
			catalog = driver.NewCatalog(row[0].String(), false)
			meta.AddCatalog(catalog)
		}
		if first {
			catalog.SetCurrent(true)
			first = false
		}
		catalog.AddSchema(driver.NewSchema(row[1].String(), false))
	}
	return meta, nil
}

func (c *Connection) Close(context.Context) error {
	if err := c.client.Close(); err != nil {
		return driver.IOError(err)
	}
	return nil
}

func (c *Connection) Dialect() driver.Dialect { return driver.DialectGeneric }

func (c *Connection) MatchStatement(sql string) driver.StatementKind {
	return driver.ClassifyStatement(sql)
}
