package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

const catalogsSQL = `
SELECT
    database_name,
    database_name = current_database() AS is_current
FROM information_schema.databases
ORDER BY database_name`

const schemasSQL = `
SELECT
    schema_name,
    schema_name = current_schema() AS is_current
FROM information_schema.schemata
ORDER BY schema_name`

const tableColumnsSQL = `
SELECT
    c.table_name,
    t.table_type,
    c.column_name,
    c.data_type,
    c.character_maximum_length,
    c.is_nullable,
    c.column_default
FROM information_schema.columns AS c
    JOIN information_schema.tables AS t
        ON t.table_schema = c.table_schema
        AND t.table_name = c.table_name
WHERE c.table_schema = current_schema()
ORDER BY c.table_name, c.ordinal_position`

// Metadata reflects databases and schemas, then populates the current schema
// with tables and views. Snowflake keeps key constraints declarative and has
// no index catalog, so tables carry columns only; primary and foreign keys
// are left to naming inference.
func (c *Connection) Metadata(ctx context.Context) (*driver.Metadata, error) {
	metadata := driver.NewMetadata(c.Dialect())
	if err := c.reflectCatalogs(ctx, metadata); err != nil {
		return nil, err
	}
	catalog, ok := metadata.CurrentCatalog()
	if !ok {
		return metadata, nil
	}
	if err := c.reflectSchemas(ctx, catalog); err != nil {
		return nil, err
	}
	schema, ok := catalog.CurrentSchema()
	if !ok {
		return metadata, nil
	}
	if err := c.reflectColumns(ctx, schema); err != nil {
		return nil, err
	}
	return metadata, nil
}

func (c *Connection) reflectCatalogs(ctx context.Context, metadata *driver.Metadata) error {
	rows, err := c.db.QueryContext(ctx, catalogsSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		var current sql.NullBool
		if err := rows.Scan(&name, &current); err != nil {
			return driver.IOError(err)
		}
		metadata.AddCatalog(driver.NewCatalog(name, current.Valid && current.Bool))
	}
	if err := rows.Err(); err != nil {
		return driver.IOError(err)
	}
	return nil
}

func (c *Connection) reflectSchemas(ctx context.Context, catalog *driver.Catalog) error {
	rows, err := c.db.QueryContext(ctx, schemasSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		var current sql.NullBool
		if err := rows.Scan(&name, &current); err != nil {
			return driver.IOError(err)
		}
		catalog.AddSchema(driver.NewSchema(name, current.Valid && current.Bool))
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
		var tableName, tableType, columnName, dataType, nullable string
		var maxLength sql.NullInt64
		var columnDefault sql.NullString
		if err := rows.Scan(&tableName, &tableType, &columnName, &dataType, &maxLength, &nullable, &columnDefault); err != nil {
			return driver.IOError(err)
		}
		if maxLength.Valid {
			dataType = fmt.Sprintf("%s(%d)", dataType, maxLength.Int64)
		}
		column := driver.Column{
			Name:     columnName,
			DataType: dataType,
			NotNull:  nullable == "NO",
			Default:  columnDefault.String,
		}

		// table_type is BASE TABLE, VIEW, EXTERNAL TABLE or MATERIALIZED VIEW.
		if strings.HasSuffix(tableType, "VIEW") {
			view, ok := schema.View(tableName)
			if !ok {
				view = driver.NewView(tableName)
			}
			view.AddColumn(column)
			schema.AddView(view)
			continue
		}
		table, ok := schema.Table(tableName)
		if !ok {
			table = driver.NewTable(tableName)
		}
		table.AddColumn(column)
		schema.AddTable(table)
	}
	if err := rows.Err(); err != nil {
		return driver.IOError(err)
	}
	return nil
}
