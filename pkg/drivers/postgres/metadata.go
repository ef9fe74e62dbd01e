package postgres

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

const catalogsSQL = `
SELECT
    catalog_name,
    catalog_name = current_database() AS is_current
FROM information_schema.schemata
GROUP BY catalog_name
ORDER BY catalog_name`

const schemasSQL = `
SELECT
    schema_name,
    schema_name = current_schema() AS is_current
FROM information_schema.schemata
WHERE catalog_name = current_database()
GROUP BY schema_name
ORDER BY schema_name`

const tableColumnsSQL = `
SELECT
    c.table_name,
    t.table_type,
    c.column_name,
    c.udt_name,
    c.character_maximum_length,
    c.is_nullable,
    c.column_default
FROM information_schema.columns AS c
    JOIN information_schema.tables AS t
        ON t.table_catalog = c.table_catalog
        AND t.table_schema = c.table_schema
        AND t.table_name = c.table_name
WHERE c.table_catalog = current_database()
    AND c.table_schema = current_schema()
ORDER BY c.table_name, c.ordinal_position`

const indexColumnsSQL = `
SELECT
    t.relname AS table_name,
    i.relname AS index_name,
    a.attname AS column_name,
    ix.indisunique AS is_unique
FROM pg_index AS ix
    JOIN pg_class AS t ON t.oid = ix.indrelid
    JOIN pg_class AS i ON i.oid = ix.indexrelid
    JOIN pg_namespace AS n ON n.oid = t.relnamespace
    JOIN pg_attribute AS a ON a.attrelid = t.oid AND a.attnum = ANY (ix.indkey)
WHERE t.relkind = 'r'
    AND n.nspname = current_schema()
ORDER BY t.relname, i.relname, array_position(ix.indkey, a.attnum)`

const primaryKeysSQL = `
SELECT
    kcu.table_name,
    tc.constraint_name,
    kcu.column_name
FROM information_schema.table_constraints AS tc
    JOIN information_schema.key_column_usage AS kcu
        ON kcu.constraint_name = tc.constraint_name
        AND kcu.table_schema = tc.table_schema
WHERE tc.constraint_type = 'PRIMARY KEY'
    AND tc.table_schema = current_schema()
ORDER BY kcu.table_name, tc.constraint_name, kcu.ordinal_position`

// position_in_unique_constraint pairs each referencing column with its
// referenced counterpart, keeping composite keys aligned.
const foreignKeysSQL = `
SELECT
    kcu.table_name,
    kcu.constraint_name,
    kcu.column_name,
    ref.table_name AS referenced_table_name,
    ref.column_name AS referenced_column_name
FROM information_schema.referential_constraints AS rc
    JOIN information_schema.key_column_usage AS kcu
        ON kcu.constraint_name = rc.constraint_name
        AND kcu.constraint_schema = rc.constraint_schema
    JOIN information_schema.key_column_usage AS ref
        ON ref.constraint_name = rc.unique_constraint_name
        AND ref.constraint_schema = rc.unique_constraint_schema
        AND ref.ordinal_position = kcu.position_in_unique_constraint
WHERE kcu.table_schema = current_schema()
ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position`

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
	rows, err := c.conn.Query(ctx, catalogsSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer rows.Close()

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
	rows, err := c.conn.Query(ctx, schemasSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer rows.Close()

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
	rows, err := c.conn.Query(ctx, tableColumnsSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, tableType, columnName, dataType, nullable string
		var maxLength *int32
		var columnDefault *string
		if err := rows.Scan(&tableName, &tableType, &columnName, &dataType, &maxLength, &nullable, &columnDefault); err != nil {
			return driver.IOError(err)
		}
		if maxLength != nil {
			dataType = fmt.Sprintf("%s(%d)", dataType, *maxLength)
		}
		column := driver.Column{
			Name:     columnName,
			DataType: dataType,
			NotNull:  nullable == "NO",
		}
		if columnDefault != nil {
			column.Default = *columnDefault
		}

		if tableType == "VIEW" {
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
	rows, err := c.conn.Query(ctx, indexColumnsSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer rows.Close()

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
	rows, err := c.conn.Query(ctx, primaryKeysSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer rows.Close()

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
	rows, err := c.conn.Query(ctx, foreignKeysSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer rows.Close()

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
