package duckdb

import (
	"context"
	"regexp"
	"strings"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

const schemataSQL = `
	SELECT
		catalog_name,
		schema_name,
		catalog_name = current_database() AS current_catalog,
		schema_name = current_schema() AS current_schema
	FROM information_schema.schemata
	ORDER BY catalog_name, schema_name
`

const tableColumnsSQL = `
	SELECT
		c.table_name,
		t.table_type,
		c.column_name,
		c.data_type,
		c.is_nullable,
		coalesce(c.column_default, '')
	FROM information_schema.columns AS c
	JOIN information_schema.tables AS t
		ON t.table_catalog = c.table_catalog
		AND t.table_schema = c.table_schema
		AND t.table_name = c.table_name
	WHERE c.table_catalog = current_database()
		AND c.table_schema = current_schema()
	ORDER BY c.table_name, c.ordinal_position
`

const indexesSQL = `
	SELECT
		table_name,
		index_name,
		sql,
		is_unique
	FROM duckdb_indexes()
	ORDER BY table_name, index_name
`

// indexColumnsPattern extracts the parenthesized column lists from an index
// definition; duckdb_indexes() exposes no structured column list.
var indexColumnsPattern = regexp.MustCompile(`\((.*?)\)`)

// Metadata reflects every attached catalog and its schemas from
// information_schema.schemata; tables, views and indexes are populated for
// the current schema only.
func (c *Connection) Metadata(ctx context.Context) (*driver.Metadata, error) {
	metadata := driver.NewMetadata(driver.DialectDuckDB)

	if err := c.reflectSchemata(ctx, metadata); err != nil {
		return nil, err
	}
	schema, ok := metadata.CurrentSchema()
	if !ok {
		return metadata, nil
	}
	if err := c.reflectColumns(ctx, schema); err != nil {
		return nil, err
	}
	if err := c.reflectIndexes(ctx, schema); err != nil {
		return nil, err
	}
	return metadata, nil
}

func (c *Connection) reflectSchemata(ctx context.Context, metadata *driver.Metadata) error {
	rows, err := c.db.QueryContext(ctx, schemataSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var catalogName, schemaName string
		var currentCatalog, currentSchema bool
		if err := rows.Scan(&catalogName, &schemaName, &currentCatalog, &currentSchema); err != nil {
			return driver.IOError(err)
		}
		catalog, ok := metadata.Catalog(catalogName)
		if !ok {
			catalog = driver.NewCatalog(catalogName, currentCatalog)
			metadata.AddCatalog(catalog)
		}
		catalog.AddSchema(driver.NewSchema(schemaName, currentCatalog && currentSchema))
	}
	if err := rows.Err(); err != nil {
		return driver.IOError(err)
	}
	return nil
}

func (c *Connection) reflectColumns(ctx context.Context, schema *driver.Schema) error {
	rows, err := c.db.QueryContext(ctx, tableColumnsSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tableName, tableType, nullable string
		var column driver.Column
		if err := rows.Scan(&tableName, &tableType, &column.Name, &column.DataType, &nullable, &column.Default); err != nil {
			return driver.IOError(err)
		}
		column.NotNull = nullable == "NO"

		if tableType == "VIEW" {
			view, ok := schema.View(tableName)
			if !ok {
				view = driver.NewView(tableName)
				schema.AddView(view)
			}
			view.AddColumn(column)
			continue
		}
		table, ok := schema.Table(tableName)
		if !ok {
			table = driver.NewTable(tableName)
			schema.AddTable(table)
		}
		table.AddColumn(column)
	}
	if err := rows.Err(); err != nil {
		return driver.IOError(err)
	}
	return nil
}

func (c *Connection) reflectIndexes(ctx context.Context, schema *driver.Schema) error {
	rows, err := c.db.QueryContext(ctx, indexesSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tableName, indexName, definition string
		var unique bool
		if err := rows.Scan(&tableName, &indexName, &definition, &unique); err != nil {
			return driver.IOError(err)
		}
		table, ok := schema.Table(tableName)
		if !ok {
			continue
		}
		table.AddIndex(driver.Index{
			Name:    indexName,
			Columns: indexColumns(definition),
			Unique:  unique,
		})
	}
	if err := rows.Err(); err != nil {
		return driver.IOError(err)
	}
	return nil
}

func indexColumns(definition string) []string {
	var columns []string
	for _, captures := range indexColumnsPattern.FindAllStringSubmatch(definition, -1) {
		for _, column := range strings.Split(captures[1], ", ") {
			columns = append(columns, column)
		}
	}
	return columns
}
