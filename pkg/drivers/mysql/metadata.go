package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

const catalogsSQL = `
SELECT
    catalog_name,
    catalog_name = database() AS is_current
FROM information_schema.schemata
GROUP BY catalog_name
ORDER BY catalog_name`

const schemasSQL = `
SELECT
    schema_name,
    schema_name = schema() AS is_current
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
WHERE c.table_schema = schema()
ORDER BY c.table_name, c.ordinal_position`

const indexColumnsSQL = `
SELECT DISTINCT
    table_name,
    index_name,
    column_name,
    non_unique,
    seq_in_index
FROM information_schema.statistics
WHERE table_schema = schema()
ORDER BY table_name, index_name, seq_in_index`

const primaryKeysSQL = `
SELECT
    table_name,
    column_name
FROM information_schema.key_column_usage
WHERE table_schema = schema()
    AND constraint_name = 'PRIMARY'
ORDER BY table_name, ordinal_position`

const foreignKeysSQL = `
SELECT
    table_name,
    constraint_name,
    column_name,
    referenced_table_name,
    referenced_column_name
FROM information_schema.key_column_usage
WHERE table_schema = schema()
    AND referenced_table_name IS NOT NULL
ORDER BY table_name, constraint_name, ordinal_position`

// Metadata reflects catalogs and schemas, then populates the current schema
// with tables, views, indexes and declared keys.
func (c *Connection) Metadata(ctx context.Context) (*driver.Metadata, error) {
	metadata := driver.NewMetadata(c.dialect)
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
	if err := c.reflectIndexes(ctx, schema); err != nil {
		return nil, err
	}
	if err := c.reflectPrimaryKeys(ctx, schema); err != nil {
		return nil, err
	}
	if err := c.reflectForeignKeys(ctx, schema); err != nil {
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

	type catalog struct {
		name    string
		current bool
	}
	var catalogs []catalog
	for rows.Next() {
		var name string
		var current sql.NullBool
		if err := rows.Scan(&name, &current); err != nil {
			return driver.IOError(err)
		}
		catalogs = append(catalogs, catalog{name: name, current: current.Valid && current.Bool})
	}
	if err := rows.Err(); err != nil {
		return driver.IOError(err)
	}

	// catalog_name is the constant "def", which never equals database(), so
	// a lone catalog is always the current one.
	if len(catalogs) == 1 {
		catalogs[0].current = true
	}
	for _, entry := range catalogs {
		metadata.AddCatalog(driver.NewCatalog(entry.name, entry.current))
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

		// table_type is BASE TABLE, VIEW or SYSTEM VIEW.
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

func (c *Connection) reflectIndexes(ctx context.Context, schema *driver.Schema) error {
	rows, err := c.db.QueryContext(ctx, indexColumnsSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tableName, indexName, columnName string
		var nonUnique, position int64
		if err := rows.Scan(&tableName, &indexName, &columnName, &nonUnique, &position); err != nil {
			return driver.IOError(err)
		}
		table, ok := schema.Table(tableName)
		if !ok {
			continue
		}
		if index, ok := table.Index(indexName); ok {
			index.Columns = append(index.Columns, columnName)
			table.AddIndex(index)
			continue
		}
		table.AddIndex(driver.Index{Name: indexName, Columns: []string{columnName}, Unique: nonUnique == 0})
	}
	if err := rows.Err(); err != nil {
		return driver.IOError(err)
	}
	return nil
}

func (c *Connection) reflectPrimaryKeys(ctx context.Context, schema *driver.Schema) error {
	rows, err := c.db.QueryContext(ctx, primaryKeysSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tableName, columnName string
		if err := rows.Scan(&tableName, &columnName); err != nil {
			return driver.IOError(err)
		}
		table, ok := schema.Table(tableName)
		if !ok {
			continue
		}
		if pk, ok := table.PrimaryKey(); ok {
			pk.Columns = append(pk.Columns, columnName)
			table.SetPrimaryKey(pk)
			continue
		}
		table.SetPrimaryKey(driver.PrimaryKey{Name: "PRIMARY", Columns: []string{columnName}})
	}
	if err := rows.Err(); err != nil {
		return driver.IOError(err)
	}
	return nil
}

func (c *Connection) reflectForeignKeys(ctx context.Context, schema *driver.Schema) error {
	rows, err := c.db.QueryContext(ctx, foreignKeysSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tableName, constraintName, columnName, referencedTable, referencedColumn string
		if err := rows.Scan(&tableName, &constraintName, &columnName, &referencedTable, &referencedColumn); err != nil {
			return driver.IOError(err)
		}
		table, ok := schema.Table(tableName)
		if !ok {
			continue
		}
		if fk, ok := table.ForeignKey(constraintName); ok {
			fk.Columns = append(fk.Columns, columnName)
			fk.ReferencedColumns = append(fk.ReferencedColumns, referencedColumn)
			table.AddForeignKey(fk)
			continue
		}
		table.AddForeignKey(driver.ForeignKey{
			Name:              constraintName,
			Columns:           []string{columnName},
			ReferencedTable:   referencedTable,
			ReferencedColumns: []string{referencedColumn},
		})
	}
	if err := rows.Err(); err != nil {
		return driver.IOError(err)
	}
	return nil
}
