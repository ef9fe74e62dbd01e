package engine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// buildMetadata synthesizes the metadata tree for an engine-backed
// source: one catalog named after the source file, one schema named
// "default", holding every registered table.
func buildMetadata(ctx context.Context, conn *Connection) (*driver.Metadata, error) {
	catalogName := "default"
	if path, err := driver.FilePath(conn.url); err == nil {
		if name := TableName(path); name != "" {
			catalogName = name
		}
	}

	metadata := driver.NewMetadata(driver.DialectDuckDB)
	catalog := driver.NewCatalog(catalogName, true)
	schema := driver.NewSchema("default", true)

	for _, name := range conn.engine.TableNames() {
		table := driver.NewTable(name)
		columns, err := tableColumns(ctx, conn.engine.db, name)
		if err != nil {
			return nil, driver.IOError(err)
		}
		for _, column := range columns {
			table.AddColumn(column)
		}
		schema.AddTable(table)
	}

	catalog.AddSchema(schema)
	metadata.AddCatalog(catalog)
	return metadata, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]driver.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable, coalesce(column_default, '')
		FROM information_schema.columns
		WHERE table_schema = 'main' AND table_name = ?
		ORDER BY ordinal_position
	`
	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []driver.Column
	for rows.Next() {
		var column driver.Column
		var nullable string
		if err := rows.Scan(&column.Name, &column.DataType, &nullable, &column.Default); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		column.NotNull = nullable == "NO"
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return columns, nil
}
