// Package yaml implements the driver for YAML documents. The document is
// lowered to JSON and ingested by the embedded engine, so sequences of
// mappings become rows the same way JSON arrays do.
package yaml

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	goyaml "gopkg.in/yaml.v3"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens yaml:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "yaml" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	path, err := driver.FilePath(url)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, driver.IOError(err)
	}
	var document any
	if err := goyaml.Unmarshal(raw, &document); err != nil {
		return nil, driver.IOError(err)
	}
	data, err := json.Marshal(stringKeys(document))
	if err != nil {
		return nil, driver.ConversionErrorf("%s", err)
	}

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return nil, driver.IOError(err)
	}
	if _, err := eng.RegisterJSONBytes(ctx, engine.TableName(path), data, engine.DefaultJSONOptions()); err != nil {
		_ = eng.Close()
		return nil, driver.IOError(err)
	}
	return engine.NewConnection(url, eng), nil
}

func (d *Driver) SupportsFileType(ft driver.FileType) bool {
	return ft == driver.FileTypeYAML
}

// stringKeys rewrites non-string mapping keys so the document marshals as
// JSON.
func stringKeys(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = stringKeys(inner)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = stringKeys(inner)
		}
		return out
	case []any:
		for i, inner := range v {
			v[i] = stringKeys(inner)
		}
		return v
	default:
		return value
	}
}
