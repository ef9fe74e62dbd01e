package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// Metadata lists tables through the control plane. DynamoDB has no catalog
// or schema levels, so a synthetic default catalog with one dynamodb schema
// stands in. Items are schemaless and attribute definitions only describe
// key attributes, so those are the columns a table reflects.
func (c *Connection) Metadata(ctx context.Context) (*driver.Metadata, error) {
	metadata := driver.NewMetadata(c.Dialect())
	catalog := driver.NewCatalog("default", true)
	metadata.AddCatalog(catalog)
	schema := driver.NewSchema("dynamodb", true)
	catalog.AddSchema(schema)

	names, err := c.tableNames(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		table, err := c.describeTable(ctx, name)
		if err != nil {
			return nil, err
		}
		if table != nil {
			schema.AddTable(table)
		}
	}
	return metadata, nil
}

func (c *Connection) tableNames(ctx context.Context) ([]string, error) {
	var names []string
	var start *string
	for {
		output, err := c.client.ListTables(ctx, &awsdynamodb.ListTablesInput{
			ExclusiveStartTableName: start,
		})
		if err != nil {
			return nil, driver.IOError(err)
		}
		names = append(names, output.TableNames...)
		if output.LastEvaluatedTableName == nil {
			return names, nil
		}
		start = output.LastEvaluatedTableName
	}
}

func (c *Connection) describeTable(ctx context.Context, name string) (*driver.Table, error) {
	output, err := c.client.DescribeTable(ctx, &awsdynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		return nil, driver.IOError(err)
	}
	description := output.Table
	if description == nil {
		return nil, nil
	}

	table := driver.NewTable(name)
	for _, attribute := range description.AttributeDefinitions {
		table.AddColumn(driver.Column{
			Name:     aws.ToString(attribute.AttributeName),
			DataType: string(attribute.AttributeType),
		})
	}

	// The key schema lists the partition key first, then the sort key when
	// the table has one.
	var keyColumns []string
	for _, key := range description.KeySchema {
		keyName := aws.ToString(key.AttributeName)
		keyColumns = append(keyColumns, keyName)
		table.AddIndex(driver.Index{
			Name:    keyName,
			Columns: []string{keyName},
			Unique:  key.KeyType == types.KeyTypeHash,
		})
	}
	if len(keyColumns) > 0 {
		table.SetPrimaryKey(driver.PrimaryKey{Name: "PRIMARY", Columns: keyColumns})
	}
	return table, nil
}
