package sqlite

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

const schemaListSQL = `SELECT name FROM pragma_database_list ORDER BY name`

const tableColumnsSQL = `
	SELECT
		m.name,
		m.type,
		p.name,
		p.type,
		p."notnull",
		coalesce(p.dflt_value, '')
	FROM sqlite_master AS m, pragma_table_info(m.name) AS p
	WHERE m.type IN ('table', 'view')
	ORDER BY m.name, p.cid
`

const indexColumnsSQL = `
	SELECT
		m.tbl_name,
		il.name,
		ii.name,
		il."unique"
	FROM sqlite_master AS m, pragma_index_list(m.name) AS il, pragma_index_info(il.name) AS ii
	WHERE m.type = 'table'
	ORDER BY m.tbl_name, il.name, ii.seqno
`

// Metadata reflects the attached database list through pragma_database_list
// and the table, view and index definitions of the current schema through
// sqlite_master and the table-valued pragma functions. ATTACHed databases
// are listed as schemas but only the current one is populated.
func (c *Connection) Metadata(ctx context.Context) (*driver.Metadata, error) {
	catalogName := driver.FileStem(c.url)
	if catalogName == "" {
		catalogName = "default"
	}

	metadata := driver.NewMetadata(driver.DialectSQLite)
	catalog := driver.NewCatalog(catalogName, true)
	metadata.AddCatalog(catalog)

	schemas, err := c.schemaList(ctx)
	if err != nil {
		return nil, err
	}
	for _, schema := range schemas {
		if schema.Current() {
			if err := c.reflectColumns(ctx, schema); err != nil {
				return nil, err
			}
			if err := c.reflectIndexes(ctx, schema); err != nil {
				return nil, err
			}
		}
		catalog.AddSchema(schema)
	}

	return metadata, nil
}

func (c *Connection) schemaList(ctx context.Context) ([]*driver.Schema, error) {
	rows, err := c.db.QueryContext(ctx, schemaListSQL)
	if err != nil {
		return nil, driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	var schemas []*driver.Schema
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, driver.IOError(err)
		}
		schemas = append(schemas, driver.NewSchema(name, name == "main"))
	}
	if err := rows.Err(); err != nil {
		return nil, driver.IOError(err)
	}
	return schemas, nil
}

func (c *Connection) reflectColumns(ctx context.Context, schema *driver.Schema) error {
	rows, err := c.db.QueryContext(ctx, tableColumnsSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tableName, tableType string
		var column driver.Column
		var notNull int
		if err := rows.Scan(&tableName, &tableType, &column.Name, &column.DataType, &notNull, &column.Default); err != nil {
			return driver.IOError(err)
		}
		column.NotNull = notNull != 0

		if tableType == "view" {
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
	rows, err := c.db.QueryContext(ctx, indexColumnsSQL)
	if err != nil {
		return driver.IOError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tableName, indexName string
		var columnName sql.NullString
		var unique int
		if err := rows.Scan(&tableName, &indexName, &columnName, &unique); err != nil {
			return driver.IOError(err)
		}
		// Expression index members carry no column name.
		if !columnName.Valid {
			continue
		}
		table, ok := schema.Table(tableName)
		if !ok {
			continue
		}
		if index, ok := table.Index(indexName); ok {
			index.Columns = append(index.Columns, columnName.String)
			table.AddIndex(index)
			continue
		}
		table.AddIndex(driver.Index{
			Name:    indexName,
			Columns: []string{columnName.String},
			Unique:  unique != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return driver.IOError(err)
	}
	return nil
}
