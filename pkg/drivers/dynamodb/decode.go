package dynamodb

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// cellValue converts one DynamoDB attribute into a Value. Lists and maps
// convert element-wise; number attributes carry their value as text and
// parse to F64 when a fraction is present, otherwise to a 128 bit integer
// since DynamoDB numbers hold up to 38 digits.
func cellValue(columnName string, attribute types.AttributeValue) (driver.Value, error) {
	switch v := attribute.(type) {
	case *types.AttributeValueMemberNULL:
		return driver.NewNull(), nil
	case *types.AttributeValueMemberBOOL:
		return driver.NewBool(v.Value), nil
	case *types.AttributeValueMemberB:
		return driver.NewBytes(v.Value), nil
	case *types.AttributeValueMemberBS:
		values := make([]driver.Value, len(v.Value))
		for i, member := range v.Value {
			values[i] = driver.NewBytes(member)
		}
		return driver.NewArray(values), nil
	case *types.AttributeValueMemberS:
		return driver.NewString(v.Value), nil
	case *types.AttributeValueMemberSS:
		values := make([]driver.Value, len(v.Value))
		for i, member := range v.Value {
			values[i] = driver.NewString(member)
		}
		return driver.NewArray(values), nil
	case *types.AttributeValueMemberN:
		return numberValue(columnName, v.Value)
	case *types.AttributeValueMemberNS:
		values := make([]driver.Value, len(v.Value))
		for i, member := range v.Value {
			value, err := numberValue(columnName, member)
			if err != nil {
				return driver.Value{}, err
			}
			values[i] = value
		}
		return driver.NewArray(values), nil
	case *types.AttributeValueMemberL:
		values := make([]driver.Value, len(v.Value))
		for i, member := range v.Value {
			value, err := cellValue(columnName, member)
			if err != nil {
				return driver.Value{}, err
			}
			values[i] = value
		}
		return driver.NewArray(values), nil
	case *types.AttributeValueMemberM:
		// Attribute maps are unordered on the wire; sorted keys keep the
		// rendering stable.
		keys := make([]string, 0, len(v.Value))
		for key := range v.Value {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		entries := driver.NewValueMap()
		for _, key := range keys {
			value, err := cellValue(columnName, v.Value[key])
			if err != nil {
				return driver.Value{}, err
			}
			entries.Put(driver.NewString(key), value)
		}
		return driver.NewMap(entries), nil
	default:
		return driver.Value{}, driver.UnsupportedColumnTypeError{
			ColumnName: columnName,
			ColumnType: fmt.Sprintf("%T", attribute),
		}
	}
}

func numberValue(columnName, text string) (driver.Value, error) {
	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return driver.Value{}, driver.ConversionErrorf("column %s: %s", columnName, err)
		}
		return driver.NewF64(f), nil
	}
	i, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return driver.Value{}, driver.ConversionErrorf("column %s: %q is not a number", columnName, text)
	}
	return driver.NewI128(i), nil
}

// bindParameters converts statement arguments to PartiQL parameters bound to
// ? placeholders.
func bindParameters(args []any) ([]types.AttributeValue, error) {
	if len(args) == 0 {
		return nil, nil
	}
	parameters := make([]types.AttributeValue, len(args))
	for i, arg := range args {
		parameter, err := bindParameter(arg)
		if err != nil {
			return nil, err
		}
		parameters[i] = parameter
	}
	return parameters, nil
}

func bindParameter(arg any) (types.AttributeValue, error) {
	if value, ok := arg.(driver.Value); ok {
		return bindValue(value)
	}
	switch v := arg.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: v}, nil
	case int:
		return &types.AttributeValueMemberN{Value: strconv.Itoa(v)}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}, nil
	case uint64:
		return &types.AttributeValueMemberN{Value: strconv.FormatUint(v, 10)}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'f', -1, 64)}, nil
	case string:
		return &types.AttributeValueMemberS{Value: v}, nil
	case []byte:
		return &types.AttributeValueMemberB{Value: v}, nil
	default:
		return nil, driver.ConversionErrorf("cannot bind %T as a dynamodb parameter", arg)
	}
}

func bindValue(value driver.Value) (types.AttributeValue, error) {
	switch {
	case value.IsNull():
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case value.Kind() == driver.KindBool:
		return &types.AttributeValueMemberBOOL{Value: value.Bool()}, nil
	case value.Kind() == driver.KindBytes:
		return &types.AttributeValueMemberB{Value: value.Bytes()}, nil
	case value.IsNumeric():
		// String renders every numeric kind, decimals and 128 bit widths
		// included, in the plain text form the N attribute expects.
		return &types.AttributeValueMemberN{Value: value.String()}, nil
	default:
		return &types.AttributeValueMemberS{Value: value.String()}, nil
	}
}
