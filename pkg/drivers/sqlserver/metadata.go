package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

const catalogsSQL = `
SELECT
    name,
    CASE WHEN name = DB_NAME() THEN CAST(1 AS BIT) ELSE CAST(0 AS BIT) END AS is_current
FROM sys.databases
ORDER BY name`

const schemasSQL = `
SELECT
    name,
    CASE WHEN name = SCHEMA_NAME() THEN CAST(1 AS BIT) ELSE CAST(0 AS BIT) END AS is_current
FROM sys.schemas
ORDER BY name`

const tableColumnsSQL = `
SELECT
    c.TABLE_NAME,
    t.TABLE_TYPE,
    c.COLUMN_NAME,
    c.DATA_TYPE,
    c.CHARACTER_MAXIMUM_LENGTH,
    c.IS_NULLABLE,
    c.COLUMN_DEFAULT
FROM INFORMATION_SCHEMA.COLUMNS AS c
    JOIN INFORMATION_SCHEMA.TABLES AS t
        ON t.TABLE_CATALOG = c.TABLE_CATALOG
        AND t.TABLE_SCHEMA = c.TABLE_SCHEMA
        AND t.TABLE_NAME = c.TABLE_NAME
WHERE c.TABLE_SCHEMA = SCHEMA_NAME()
ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

// Heaps carry a nameless row in sys.indexes and are filtered out.
const indexColumnsSQL = `
SELECT
    t.name AS table_name,
    i.name AS index_name,
    c.name AS column_name,
    i.is_unique
FROM sys.tables AS t
    JOIN sys.indexes AS i ON i.object_id = t.object_id
    JOIN sys.index_columns AS ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
    JOIN sys.columns AS c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
WHERE i.name IS NOT NULL
    AND SCHEMA_NAME(t.schema_id) = SCHEMA_NAME()
ORDER BY t.name, i.name, ic.key_ordinal`

const primaryKeysSQL = `
SELECT
    t.name AS table_name,
    kc.name AS constraint_name,
    c.name AS column_name
FROM sys.key_constraints AS kc
    JOIN sys.tables AS t ON t.object_id = kc.parent_object_id
    JOIN sys.index_columns AS ic ON ic.object_id = kc.parent_object_id AND ic.index_id = kc.unique_index_id
    JOIN sys.columns AS c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
WHERE kc.type = 'PK'
    AND SCHEMA_NAME(t.schema_id) = SCHEMA_NAME()
ORDER BY t.name, kc.name, ic.key_ordinal`

const foreignKeysSQL = `
SELECT
    tp.name AS table_name,
    fk.name AS constraint_name,
    cp.name AS column_name,
    tr.name AS referenced_table_name,
    cr.name AS referenced_column_name
FROM sys.foreign_keys AS fk
    JOIN sys.tables AS tp ON tp.object_id = fk.parent_object_id
    JOIN sys.tables AS tr ON tr.object_id = fk.referenced_object_id
    JOIN sys.foreign_key_columns AS fkc ON fkc.constraint_object_id = fk.object_id
    JOIN sys.columns AS cp ON cp.object_id = fkc.parent_object_id AND cp.column_id = fkc.parent_column_id
    JOIN sys.columns AS cr ON cr.object_id = fkc.referenced_object_id AND cr.column_id = fkc.referenced_column_id
WHERE SCHEMA_NAME(tp.schema_id) = SCHEMA_NAME()
ORDER BY tp.name, fk.name, fkc.constraint_column_id`

// Metadata reflects the database list and schemas, then populates the
// current schema with tables, views, indexes and declared keys.
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

	for rows.Next() {
		var name string
		var current bool
		if err := rows.Scan(&name, &current); err != nil {
			return driver.IOError(err)
		}
		metadata.AddCatalog(driver.NewCatalog(name, current))
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
		var current bool
		if err := rows.Scan(&name, &current); err != nil {
			return driver.IOError(err)
		}
		catalog.AddSchema(driver.NewSchema(name, current))
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
		var unique bool
		if err := rows.Scan(&tableName, &indexName, &columnName, &unique); err != nil {
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
		table.AddIndex(driver.Index{Name: indexName, Columns: []string{columnName}, Unique: unique})
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
		var tableName, constraintName, columnName string
		if err := rows.Scan(&tableName, &constraintName, &columnName); err != nil {
			return driver.IOError(err)
		}
		table, ok := schema.Table(tableName)
		if !ok {
			continue
		}
		if pk, ok := table.PrimaryKey(); ok && pk.Name == constraintName {
			pk.Columns = append(pk.Columns, columnName)
			table.SetPrimaryKey(pk)
			continue
		}
		table.SetPrimaryKey(driver.PrimaryKey{Name: constraintName, Columns: []string{columnName}})
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
