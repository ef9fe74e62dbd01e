package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func TestConnectionMetadata(t *testing.T) {
	conn := newFakeConnection(&fakeClient{
		list: func(input *awsdynamodb.ListTablesInput) (*awsdynamodb.ListTablesOutput, error) {
			if input.ExclusiveStartTableName == nil {
				return &awsdynamodb.ListTablesOutput{
					TableNames:             []string{"orders"},
					LastEvaluatedTableName: aws.String("orders"),
				}, nil
			}
			assert.Equal(t, "orders", aws.ToString(input.ExclusiveStartTableName))
			return &awsdynamodb.ListTablesOutput{TableNames: []string{"sessions"}}, nil
		},
		describe: func(input *awsdynamodb.DescribeTableInput) (*awsdynamodb.DescribeTableOutput, error) {
			switch aws.ToString(input.TableName) {
			case "orders":
				return &awsdynamodb.DescribeTableOutput{
					Table: &types.TableDescription{
						AttributeDefinitions: []types.AttributeDefinition{
							{AttributeName: aws.String("customer_id"), AttributeType: types.ScalarAttributeTypeS},
							{AttributeName: aws.String("order_date"), AttributeType: types.ScalarAttributeTypeN},
						},
						KeySchema: []types.KeySchemaElement{
							{AttributeName: aws.String("customer_id"), KeyType: types.KeyTypeHash},
							{AttributeName: aws.String("order_date"), KeyType: types.KeyTypeRange},
						},
					},
				}, nil
			default:
				// Tables can disappear between the list and describe calls.
				return &awsdynamodb.DescribeTableOutput{}, nil
			}
		},
	})

	metadata, err := conn.Metadata(context.Background())
	require.NoError(t, err)

	catalog, ok := metadata.CurrentCatalog()
	require.True(t, ok)
	assert.Equal(t, "default", catalog.Name())

	schema, ok := catalog.CurrentSchema()
	require.True(t, ok)
	assert.Equal(t, "dynamodb", schema.Name())

	require.Len(t, schema.Tables(), 1)
	orders, ok := schema.Table("orders")
	require.True(t, ok)

	require.Len(t, orders.Columns(), 2)
	customer, ok := orders.Column("customer_id")
	require.True(t, ok)
	assert.Equal(t, "S", customer.DataType)
	assert.False(t, customer.NotNull)

	pk, ok := orders.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, []string{"customer_id", "order_date"}, pk.Columns)

	hash, ok := orders.Index("customer_id")
	require.True(t, ok)
	assert.True(t, hash.Unique)

	sortKey, ok := orders.Index("order_date")
	require.True(t, ok)
	assert.False(t, sortKey.Unique)
}

func TestConnectionMetadataListError(t *testing.T) {
	conn := newFakeConnection(&fakeClient{
		list: func(*awsdynamodb.ListTablesInput) (*awsdynamodb.ListTablesOutput, error) {
			return nil, errors.New("AccessDeniedException")
		},
	})

	_, err := conn.Metadata(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrIO)
}

func TestConnectionMetadataDescribeError(t *testing.T) {
	conn := newFakeConnection(&fakeClient{
		list: func(*awsdynamodb.ListTablesInput) (*awsdynamodb.ListTablesOutput, error) {
			return &awsdynamodb.ListTablesOutput{TableNames: []string{"orders"}}, nil
		},
		describe: func(*awsdynamodb.DescribeTableInput) (*awsdynamodb.DescribeTableOutput, error) {
			return nil, errors.New("ResourceNotFoundException")
		},
	})

	_, err := conn.Metadata(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrIO)
}
