package dynamodb

import (
	"math/big"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func TestCellValueScalars(t *testing.T) {
	huge, ok := new(big.Int).SetString("99999999999999999999999999999999999999", 10)
	require.True(t, ok)

	tests := []struct {
		name      string
		attribute types.AttributeValue
		want      driver.Value
	}{
		{"null", &types.AttributeValueMemberNULL{Value: true}, driver.NewNull()},
		{"bool", &types.AttributeValueMemberBOOL{Value: true}, driver.NewBool(true)},
		{"string", &types.AttributeValueMemberS{Value: "alice"}, driver.NewString("alice")},
		{"binary", &types.AttributeValueMemberB{Value: []byte{0x01, 0x02}}, driver.NewBytes([]byte{0x01, 0x02})},
		{"integer", &types.AttributeValueMemberN{Value: "42"}, driver.NewI128(big.NewInt(42))},
		{"negative integer", &types.AttributeValueMemberN{Value: "-7"}, driver.NewI128(big.NewInt(-7))},
		{"38 digit integer", &types.AttributeValueMemberN{Value: "99999999999999999999999999999999999999"}, driver.NewI128(huge)},
		{"fraction", &types.AttributeValueMemberN{Value: "19.99"}, driver.NewF64(19.99)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cellValue("v", tt.attribute)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCellValueSets(t *testing.T) {
	got, err := cellValue("v", &types.AttributeValueMemberSS{Value: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, driver.NewArray([]driver.Value{driver.NewString("a"), driver.NewString("b")}), got)

	got, err = cellValue("v", &types.AttributeValueMemberNS{Value: []string{"1", "2.5"}})
	require.NoError(t, err)
	assert.Equal(t, driver.NewArray([]driver.Value{driver.NewI128(big.NewInt(1)), driver.NewF64(2.5)}), got)

	got, err = cellValue("v", &types.AttributeValueMemberBS{Value: [][]byte{{0x01}, {0x02}}})
	require.NoError(t, err)
	assert.Equal(t, driver.NewArray([]driver.Value{
		driver.NewBytes([]byte{0x01}),
		driver.NewBytes([]byte{0x02}),
	}), got)
}

func TestCellValueList(t *testing.T) {
	got, err := cellValue("v", &types.AttributeValueMemberL{Value: []types.AttributeValue{
		&types.AttributeValueMemberS{Value: "x"},
		&types.AttributeValueMemberN{Value: "1"},
		&types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberBOOL{Value: false},
		}},
	}})
	require.NoError(t, err)
	assert.Equal(t, driver.NewArray([]driver.Value{
		driver.NewString("x"),
		driver.NewI128(big.NewInt(1)),
		driver.NewArray([]driver.Value{driver.NewBool(false)}),
	}), got)
}

func TestCellValueMap(t *testing.T) {
	got, err := cellValue("v", &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
		"zip":  &types.AttributeValueMemberS{Value: "12345"},
		"city": &types.AttributeValueMemberS{Value: "Springfield"},
	}})
	require.NoError(t, err)

	// Keys come out sorted regardless of wire order.
	assert.Equal(t, `{city: Springfield, zip: 12345}`, got.String())
}

func TestCellValueNumberErrors(t *testing.T) {
	_, err := cellValue("v", &types.AttributeValueMemberN{Value: "abc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrConversion)

	_, err = cellValue("v", &types.AttributeValueMemberNS{Value: []string{"1", "1e5"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrConversion)
}

func TestBindParameters(t *testing.T) {
	parameters, err := bindParameters([]any{
		driver.NewNull(),
		driver.NewBool(true),
		driver.NewI64(-3),
		driver.NewDecimal("12.50"),
		driver.NewString("alice"),
		driver.NewBytes([]byte{0xff}),
		nil,
		42,
		"plain",
		3.5,
		[]byte{0x00},
	})
	require.NoError(t, err)
	require.Len(t, parameters, 11)

	assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, parameters[0])
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, parameters[1])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "-3"}, parameters[2])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "12.50"}, parameters[3])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "alice"}, parameters[4])
	assert.Equal(t, &types.AttributeValueMemberB{Value: []byte{0xff}}, parameters[5])
	assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, parameters[6])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "42"}, parameters[7])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "plain"}, parameters[8])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "3.5"}, parameters[9])
	assert.Equal(t, &types.AttributeValueMemberB{Value: []byte{0x00}}, parameters[10])
}

func TestBindParameterUnsupported(t *testing.T) {
	_, err := bindParameter(struct{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrConversion)
}
