package format

import (
	"context"
	"fmt"
	"io"

	goyaml "gopkg.in/yaml.v3"
)

// yamlFormatter renders a YAML sequence of row mappings. The node tree
// is built by hand so mapping keys keep the column order.
type yamlFormatter struct{}

func (yamlFormatter) Identifier() string { return "yaml" }

func (yamlFormatter) Format(ctx context.Context, options *Options, results *Results, output io.Writer) error {
	var count int64
	if results.IsQuery() {
		result := results.Query()
		columns := result.Columns()
		rows, err := drain(ctx, result)
		if err != nil {
			return err
		}
		count = int64(len(rows))

		root := &goyaml.Node{Kind: goyaml.SequenceNode}
		for _, row := range rows {
			mapping := &goyaml.Node{Kind: goyaml.MappingNode}
			for i, column := range columns {
				key := &goyaml.Node{Kind: goyaml.ScalarNode, Value: column}
				value := &goyaml.Node{}
				if i >= len(row) || row[i].IsNull() {
					value.Kind = goyaml.ScalarNode
					value.Tag = "!!null"
					value.Value = "null"
				} else if err := value.Encode(row[i].JSON()); err != nil {
					return err
				}
				mapping.Content = append(mapping.Content, key, value)
			}
			root.Content = append(root.Content, mapping)
		}

		if len(rows) > 0 {
			encoded, err := goyaml.Marshal(root)
			if err != nil {
				return err
			}
			if _, err := output.Write(encoded); err != nil {
				return err
			}
		} else if _, err := fmt.Fprintln(output, "[]"); err != nil {
			return err
		}
	}
	return writeFooter(output, options, results, count)
}

func init() {
	Register(yamlFormatter{})
}
