// Package dynamodb implements the dynamodb driver on the AWS SDK. Statements
// are PartiQL and run through ExecuteStatement with response pagination
// followed until the token runs out.
//
// Credentials in the URL take precedence; otherwise the SDK's default chain
// applies (environment, shared config, instance metadata).
package dynamodb

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver connects to DynamoDB.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "dynamodb" }

// Connect builds a client from dynamodb://[key:secret@][host[:port]]
// [?region=...&session_token=...&scheme=http|https]. The host is only used
// as a custom endpoint when the scheme parameter is present, which is how
// local stacks (DynamoDB Local, LocalStack) are addressed.
func (d *Driver) Connect(ctx context.Context, rawURL string) (driver.Connection, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, driver.InvalidURLErrorf("%s", err)
	}
	query := parsed.Query()

	var options []func(*config.LoadOptions) error
	if user := parsed.User.Username(); user != "" {
		secret, _ := parsed.User.Password()
		options = append(options, config.WithCredentialsProvider(aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(user, secret, query.Get("session_token")))))
	}
	if region := query.Get("region"); region != "" {
		options = append(options, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, driver.IOError(err)
	}

	var endpoint string
	if scheme := query.Get("scheme"); scheme != "" {
		if parsed.Hostname() == "" {
			return nil, driver.InvalidURLErrorf("dynamodb url %q: scheme parameter given without an endpoint host", rawURL)
		}
		port := parsed.Port()
		if port == "" {
			port = "443"
		}
		endpoint = fmt.Sprintf("%s://%s:%s", scheme, parsed.Hostname(), port)
	}

	client := awsdynamodb.NewFromConfig(cfg, func(o *awsdynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &Connection{url: rawURL, client: client}, nil
}

func (d *Driver) SupportsFileType(_ driver.FileType) bool { return false }

// api is the slice of the DynamoDB client the connection calls, satisfied by
// *dynamodb.Client.
type api interface {
	ExecuteStatement(ctx context.Context, input *awsdynamodb.ExecuteStatementInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.ExecuteStatementOutput, error)
	ListTables(ctx context.Context, input *awsdynamodb.ListTablesInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.ListTablesOutput, error)
	DescribeTable(ctx context.Context, input *awsdynamodb.DescribeTableInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.DescribeTableOutput, error)
}

// Connection issues PartiQL statements against one DynamoDB endpoint.
type Connection struct {
	url    string
	client api
}

var _ driver.Connection = (*Connection)(nil)

func (c *Connection) URL() string { return c.url }

// Execute runs a PartiQL statement and reports how many items the response
// pages carried. Writes return no items, so INSERT, UPDATE and DELETE report
// zero; reads report their item count.
func (c *Connection) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	parameters, err := bindParameters(args)
	if err != nil {
		return 0, err
	}

	var rows int64
	var nextToken *string
	for {
		output, err := c.client.ExecuteStatement(ctx, &awsdynamodb.ExecuteStatementInput{
			Statement:  aws.String(sql),
			Parameters: parameters,
			NextToken:  nextToken,
		})
		if err != nil {
			return 0, driver.IOError(err)
		}
		rows += int64(len(output.Items))
		if output.NextToken == nil {
			return rows, nil
		}
		nextToken = output.NextToken
	}
}

// Query runs a PartiQL statement and collects every response page. Items are
// schemaless attribute maps, so the column list is the sorted union of every
// item's attribute names and absent attributes read as NULL.
func (c *Connection) Query(ctx context.Context, sql string, args ...any) (driver.QueryResult, error) {
	parameters, err := bindParameters(args)
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue
	var nextToken *string
	for {
		output, err := c.client.ExecuteStatement(ctx, &awsdynamodb.ExecuteStatementInput{
			Statement:  aws.String(sql),
			Parameters: parameters,
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, driver.IOError(err)
		}
		items = append(items, output.Items...)
		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	seen := map[string]bool{}
	var columns []string
	for _, item := range items {
		for name := range item {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}
	sort.Strings(columns)

	rows := make([]driver.Row, 0, len(items))
	for _, item := range items {
		row := make(driver.Row, len(columns))
		for i, column := range columns {
			attribute, ok := item[column]
			if !ok {
				row[i] = driver.NewNull()
				continue
			}
			value, err := cellValue(column, attribute)
			if err != nil {
				return nil, err
			}
			row[i] = value
		}
		rows = append(rows, row)
	}
	return driver.NewMemoryQueryResult(columns, rows), nil
}

func (c *Connection) Close(_ context.Context) error { return nil }

func (c *Connection) Dialect() driver.Dialect { return driver.DialectGeneric }

func (c *Connection) MatchStatement(sql string) driver.StatementKind {
	return driver.ClassifyStatement(sql)
}
