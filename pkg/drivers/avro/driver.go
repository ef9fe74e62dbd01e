// Package avro implements the driver for Avro object container files.
// Records are decoded into a frame on the embedded engine; the top-level
// schema must be a record.
package avro

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/linkedin/goavro/v2"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens avro:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "avro" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	path, err := driver.FilePath(url)
	if err != nil {
		return nil, err
	}
	frame, err := readFrame(path)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return nil, driver.IOError(err)
	}
	if _, err := eng.RegisterFrame(ctx, engine.TableName(path), frame); err != nil {
		_ = eng.Close()
		return nil, driver.IOError(err)
	}
	return engine.NewConnection(url, eng), nil
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeAvro
}

func readFrame(path string) (engine.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.Frame{}, driver.IOError(err)
	}
	defer func() { _ = f.Close() }()

	reader, err := goavro.NewOCFReader(bufio.NewReader(f))
	if err != nil {
		return engine.Frame{}, driver.IOError(err)
	}
	columns, err := recordFields(reader.Codec().Schema())
	if err != nil {
		return engine.Frame{}, err
	}

	frame := engine.Frame{Columns: columns}
	for reader.Scan() {
		datum, err := reader.Read()
		if err != nil {
			return engine.Frame{}, driver.IOError(err)
		}
		record, ok := datum.(map[string]any)
		if !ok {
			return engine.Frame{}, driver.IOErrorf("unexpected datum type %T", datum)
		}
		row := make(driver.Row, len(columns))
		for i, column := range columns {
			value, err := decodeValue(column, record[column])
			if err != nil {
				return engine.Frame{}, err
			}
			row[i] = value
		}
		frame.Rows = append(frame.Rows, row)
	}
	if err := reader.Err(); err != nil {
		return engine.Frame{}, driver.IOError(err)
	}
	return frame, nil
}

// recordFields extracts the field names of a record schema in declaration
// order.
func recordFields(schema string) ([]string, error) {
	var parsed struct {
		Type   string `json:"type"`
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(schema), &parsed); err != nil {
		return nil, driver.IOError(err)
	}
	if parsed.Type != "record" {
		return nil, driver.IOErrorf("top-level schema must be a record, got %s", parsed.Type)
	}
	columns := make([]string, len(parsed.Fields))
	for i, field := range parsed.Fields {
		columns[i] = field.Name
	}
	return columns, nil
}

// unionTypes is the set of single-key map keys that mark a goavro union
// wrapper rather than a genuine map value.
var unionTypes = map[string]bool{
	"null": true, "boolean": true, "int": true, "long": true,
	"float": true, "double": true, "bytes": true, "string": true,
}

func decodeValue(column string, datum any) (driver.Value, error) {
	switch v := datum.(type) {
	case nil:
		return driver.NewNull(), nil
	case bool:
		return driver.NewBool(v), nil
	case int32:
		return driver.NewI32(v), nil
	case int64:
		return driver.NewI64(v), nil
	case float32:
		return driver.NewF32(v), nil
	case float64:
		return driver.NewF64(v), nil
	case string:
		return driver.NewString(v), nil
	case []byte:
		return driver.NewBytes(v), nil
	case time.Time:
		return driver.NewDateTimeFromTime(v), nil
	case time.Duration:
		// time-millis and time-micros logical types surface as durations
		// since midnight.
		return driver.NewTime(int(v/time.Hour), int(v%time.Hour/time.Minute),
			int(v%time.Minute/time.Second), int(v%time.Second)), nil
	case *big.Rat:
		return decimalValue(column, v)
	case map[string]any:
		if len(v) == 1 {
			for key, inner := range v {
				if unionTypes[key] {
					return decodeValue(column, inner)
				}
			}
		}
		values := driver.NewValueMap()
		for key, inner := range v {
			value, err := decodeValue(column, inner)
			if err != nil {
				return driver.Value{}, err
			}
			values.Put(driver.NewString(key), value)
		}
		return driver.NewMap(values), nil
	case []any:
		values := make([]driver.Value, len(v))
		for i, inner := range v {
			value, err := decodeValue(column, inner)
			if err != nil {
				return driver.Value{}, err
			}
			values[i] = value
		}
		return driver.NewArray(values), nil
	default:
		return driver.Value{}, driver.UnsupportedColumnTypeError{
			ColumnName: column,
			ColumnType: fmt.Sprintf("%T", datum),
		}
	}
}

// decimalValue renders a decimal logical type exactly. Avro decimals scale
// by powers of ten, so the denominator decides the digit count.
func decimalValue(column string, v *big.Rat) (driver.Value, error) {
	scale := 0
	denom := new(big.Int).Set(v.Denom())
	ten := big.NewInt(10)
	for denom.Cmp(big.NewInt(1)) > 0 {
		rem := new(big.Int)
		denom.QuoRem(denom, ten, rem)
		if rem.Sign() != 0 {
			return driver.Value{}, driver.UnsupportedColumnTypeError{
				ColumnName: column,
				ColumnType: "decimal " + v.RatString(),
			}
		}
		scale++
	}
	if scale == 0 {
		return driver.NewDecimal(v.Num().String()), nil
	}
	return driver.NewDecimal(v.FloatString(scale)), nil
}
