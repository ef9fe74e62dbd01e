package clickhouse

import (
	"context"
	"strings"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

const catalogsSQL = `
SELECT name, name = currentDatabase() AS is_current
FROM system.databases
ORDER BY name`

const tablesSQL = `
SELECT name, engine, primary_key
FROM system.tables
WHERE database = currentDatabase()
ORDER BY name`

const columnsSQL = `
SELECT table, name, type, default_expression
FROM system.columns
WHERE database = currentDatabase()
ORDER BY table, position`

const indexesSQL = `
SELECT table, name, expr
FROM system.data_skipping_indices
WHERE database = currentDatabase()
ORDER BY table, name`

// Metadata reflects databases as catalogs. ClickHouse has no schema level
// between databases and tables, so every table tree hangs off one synthetic
// schema named default under the current catalog.
func (c *Connection) Metadata(ctx context.Context) (*driver.Metadata, error) {
	metadata := driver.NewMetadata(c.Dialect())
	if err := c.reflectCatalogs(ctx, metadata); err != nil {
		return nil, err
	}
	catalog, ok := metadata.CurrentCatalog()
	if !ok {
		return metadata, nil
	}

	schema := driver.NewSchema("default", true)
	catalog.AddSchema(schema)
	if err := c.reflectTables(ctx, schema); err != nil {
		return nil, err
	}
	if err := c.reflectColumns(ctx, schema); err != nil {
		return nil, err
	}
	if err := c.reflectIndexes(ctx, schema); err != nil {
		return nil, err
	}
	return metadata, nil
}

func (c *Connection) reflectCatalogs(ctx context.Context, metadata *driver.Metadata) error {
	result, err := c.Query(ctx, catalogsSQL)
	if err != nil {
		return err
	}
	defer func() { _ = result.Close() }()

	for {
		row, err := result.Next(ctx)
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		metadata.AddCatalog(driver.NewCatalog(row[0].String(), row[1].Uint64() == 1))
	}
}

func (c *Connection) reflectTables(ctx context.Context, schema *driver.Schema) error {
	result, err := c.Query(ctx, tablesSQL)
	if err != nil {
		return err
	}
	defer func() { _ = result.Close() }()

	for {
		row, err := result.Next(ctx)
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		name := row[0].String()

		// Engine names View, MaterializedView and LiveView mark views.
		if strings.HasSuffix(row[1].String(), "View") {
			schema.AddView(driver.NewView(name))
			continue
		}

		table := driver.NewTable(name)
		// system.tables renders the primary key as a comma separated
		// expression list in sorting order.
		if keyColumns := splitKeyExpression(row[2].String()); len(keyColumns) > 0 {
			table.SetPrimaryKey(driver.PrimaryKey{Name: "PRIMARY", Columns: keyColumns})
			table.AddIndex(driver.Index{Name: "PRIMARY", Columns: keyColumns, Unique: true})
		}
		schema.AddTable(table)
	}
}

func (c *Connection) reflectColumns(ctx context.Context, schema *driver.Schema) error {
	result, err := c.Query(ctx, columnsSQL)
	if err != nil {
		return err
	}
	defer func() { _ = result.Close() }()

	for {
		row, err := result.Next(ctx)
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}

		tableName := row[0].String()
		dataType := row[2].String()
		column := driver.Column{
			Name:     row[1].String(),
			DataType: dataType,
			NotNull:  !strings.HasPrefix(dataType, "Nullable("),
			Default:  row[3].String(),
		}
		if view, ok := schema.View(tableName); ok {
			view.AddColumn(column)
			continue
		}
		if table, ok := schema.Table(tableName); ok {
			table.AddColumn(column)
		}
	}
}

func (c *Connection) reflectIndexes(ctx context.Context, schema *driver.Schema) error {
	result, err := c.Query(ctx, indexesSQL)
	if err != nil {
		return err
	}
	defer func() { _ = result.Close() }()

	for {
		row, err := result.Next(ctx)
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		table, ok := schema.Table(row[0].String())
		if !ok {
			continue
		}
		// A data skipping index covers an expression rather than a column
		// list, so the expression text stands in as the single member.
		table.AddIndex(driver.Index{
			Name:    row[1].String(),
			Columns: []string{row[2].String()},
			Unique:  false,
		})
	}
}

// splitKeyExpression breaks a primary key expression list into its parts.
func splitKeyExpression(expression string) []string {
	if strings.TrimSpace(expression) == "" {
		return nil
	}
	parts := strings.Split(expression, ",")
	columns := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			columns = append(columns, trimmed)
		}
	}
	return columns
}
