// Package xml implements the driver for XML documents. The document is
// converted to JSON and ingested by the embedded engine: attributes become
// "@name" keys, element text becomes "#text" (collapsed when it is the
// only content) and repeated sibling elements become arrays. Scalar text
// is typed as bool, integer or float where it parses cleanly; values with
// leading zeros stay text.
package xml

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/leapstack-labs/rsql/internal/engine"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens xml:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "xml" }

func (d *Driver) Connect(ctx context.Context, url string) (driver.Connection, error) {
	path, err := driver.FilePath(url)
	if err != nil {
		return nil, err
	}
	data, err := Rows(path)
	if err != nil {
		return nil, err
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
	return ft == driver.FileTypeXML
}

// Rows converts the document into a JSON array of row objects. A document
// shaped <users><user>…</user><user>…</user></users> yields the array of
// user objects; anything else yields a single-row array.
func Rows(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, driver.IOError(err)
	}
	defer func() { _ = f.Close() }()

	doc, err := xmlquery.Parse(f)
	if err != nil {
		return nil, driver.IOError(err)
	}
	root := firstElement(doc)
	if root == nil {
		return nil, driver.IOErrorf("no root element in %s", path)
	}

	value := any(map[string]any{root.Data: convert(root)})
	for {
		object, ok := value.(map[string]any)
		if !ok || len(object) != 1 {
			break
		}
		for _, inner := range object {
			value = inner
		}
	}
	rows, ok := value.([]any)
	if !ok {
		rows = []any{value}
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return nil, driver.ConversionErrorf("%s", err)
	}
	return data, nil
}

func firstElement(node *xmlquery.Node) *xmlquery.Node {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

func convert(node *xmlquery.Node) any {
	object := map[string]any{}
	for _, attr := range node.Attr {
		object["@"+attr.Name.Local] = infer(attr.Value)
	}

	var text strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(child.Data)
		case xmlquery.ElementNode:
			value := convert(child)
			if existing, ok := object[child.Data]; ok {
				if slice, ok := existing.([]any); ok {
					object[child.Data] = append(slice, value)
				} else {
					object[child.Data] = []any{existing, value}
				}
			} else {
				object[child.Data] = value
			}
		}
	}

	if trimmed := strings.TrimSpace(text.String()); trimmed != "" {
		if len(object) == 0 {
			return infer(trimmed)
		}
		object["#text"] = infer(trimmed)
	}
	if len(object) == 0 {
		return nil
	}
	return object
}

func infer(text string) any {
	switch text {
	case "true":
		return true
	case "false":
		return false
	}
	if leadingZero(text) {
		return text
	}
	if n, err := strconv.ParseUint(text, 10, 64); err == nil {
		return n
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}

func leadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}
