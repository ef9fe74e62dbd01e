package commands

import (
	"context"
	"strings"
	"time"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// Metadata commands reflect the connection's catalog tree into in-memory
// results rendered through the active formatter.

func yesNo(v bool) driver.Value {
	if v {
		return driver.NewString("yes")
	}
	return driver.NewString("no")
}

type catalogsCommand struct{}

func (catalogsCommand) Name() string { return "catalogs" }
func (catalogsCommand) Args() string { return "" }
func (catalogsCommand) Description() string { return "List the catalogs" }

func (catalogsCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	start := time.Now()
	metadata, err := opts.Connection.Metadata(ctx)
	if err != nil {
		return ContinueResult, err
	}
	var rows []driver.Row
	for _, catalog := range metadata.Catalogs() {
		rows = append(rows, driver.Row{driver.NewString(catalog.Name()), yesNo(catalog.Current())})
	}
	return ContinueResult, renderResult(ctx, opts, time.Since(start), []string{"Catalog", "Current"}, rows)
}

type schemasCommand struct{}

func (schemasCommand) Name() string { return "schemas" }
func (schemasCommand) Args() string { return "" }
func (schemasCommand) Description() string { return "List the schemas in the current catalog" }

func (schemasCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	start := time.Now()
	metadata, err := opts.Connection.Metadata(ctx)
	if err != nil {
		return ContinueResult, err
	}
	var rows []driver.Row
	if catalog, ok := metadata.CurrentCatalog(); ok {
		for _, schema := range catalog.Schemas() {
			rows = append(rows, driver.Row{driver.NewString(schema.Name()), yesNo(schema.Current())})
		}
	}
	return ContinueResult, renderResult(ctx, opts, time.Since(start), []string{"Schema", "Current"}, rows)
}

type tablesCommand struct{}

func (tablesCommand) Name() string { return "tables" }
func (tablesCommand) Args() string { return "" }
func (tablesCommand) Description() string { return "List the tables in the current schema" }

func (tablesCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	start := time.Now()
	schema, err := currentSchema(ctx, opts)
	if err != nil {
		return ContinueResult, err
	}
	var rows []driver.Row
	if schema != nil {
		for _, table := range schema.Tables() {
			rows = append(rows, driver.Row{driver.NewString(table.Name())})
		}
	}
	return ContinueResult, renderResult(ctx, opts, time.Since(start), []string{"Table"}, rows)
}

type viewsCommand struct{}

func (viewsCommand) Name() string { return "views" }
func (viewsCommand) Args() string { return "" }
func (viewsCommand) Description() string { return "List the views in the current schema" }

func (viewsCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	start := time.Now()
	schema, err := currentSchema(ctx, opts)
	if err != nil {
		return ContinueResult, err
	}
	var rows []driver.Row
	if schema != nil {
		for _, view := range schema.Views() {
			rows = append(rows, driver.Row{driver.NewString(view.Name())})
		}
	}
	return ContinueResult, renderResult(ctx, opts, time.Since(start), []string{"View"}, rows)
}

type indexesCommand struct{}

func (indexesCommand) Name() string { return "indexes" }
func (indexesCommand) Args() string { return "[table]" }
func (indexesCommand) Description() string { return "List indexes, optionally for one table" }

func (c indexesCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	start := time.Now()
	tables, err := selectTables(ctx, opts, c)
	if err != nil {
		return ContinueResult, err
	}
	var rows []driver.Row
	for _, table := range tables {
		for _, index := range table.Indexes() {
			rows = append(rows, driver.Row{
				driver.NewString(table.Name()),
				driver.NewString(index.Name),
				driver.NewString(strings.Join(index.Columns, ", ")),
				yesNo(index.Unique),
			})
		}
	}
	columns := []string{"Table", "Index", "Columns", "Unique"}
	return ContinueResult, renderResult(ctx, opts, time.Since(start), columns, rows)
}

type primaryCommand struct{}

func (primaryCommand) Name() string { return "primary" }
func (primaryCommand) Args() string { return "[table]" }
func (primaryCommand) Description() string { return "Show primary keys, optionally for one table" }

func (c primaryCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	start := time.Now()
	tables, err := selectTables(ctx, opts, c)
	if err != nil {
		return ContinueResult, err
	}
	var rows []driver.Row
	for _, table := range tables {
		pk, ok := table.PrimaryKey()
		if !ok {
			continue
		}
		rows = append(rows, driver.Row{
			driver.NewString(table.Name()),
			driver.NewString(pk.Name),
			driver.NewString(strings.Join(pk.Columns, ", ")),
			yesNo(pk.Inferred),
		})
	}
	columns := []string{"Table", "Primary Key", "Columns", "Inferred"}
	return ContinueResult, renderResult(ctx, opts, time.Since(start), columns, rows)
}

type foreignCommand struct{}

func (foreignCommand) Name() string { return "foreign" }
func (foreignCommand) Args() string { return "[table]" }
func (foreignCommand) Description() string { return "Show foreign keys, optionally for one table" }

func (c foreignCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	start := time.Now()
	tables, err := selectTables(ctx, opts, c)
	if err != nil {
		return ContinueResult, err
	}
	var rows []driver.Row
	for _, table := range tables {
		for _, fk := range table.ForeignKeys() {
			rows = append(rows, driver.Row{
				driver.NewString(table.Name()),
				driver.NewString(fk.Name),
				driver.NewString(strings.Join(fk.Columns, ", ")),
				driver.NewString(fk.ReferencedTable),
				driver.NewString(strings.Join(fk.ReferencedColumns, ", ")),
				yesNo(fk.Inferred),
			})
		}
	}
	columns := []string{"Table", "Foreign Key", "Columns", "References", "Referenced Columns", "Inferred"}
	return ContinueResult, renderResult(ctx, opts, time.Since(start), columns, rows)
}

type describeCommand struct{}

func (describeCommand) Name() string { return "describe" }
func (describeCommand) Args() string { return "<table>" }
func (describeCommand) Description() string { return "Describe the columns of a table" }

func (c describeCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		return ContinueResult, usageError(opts, c)
	}
	start := time.Now()
	schema, err := currentSchema(ctx, opts)
	if err != nil {
		return ContinueResult, err
	}
	name := opts.Input[1]
	var columns []driver.Column
	if schema != nil {
		if table, ok := schema.Table(name); ok {
			columns = table.Columns()
		} else if view, ok := schema.View(name); ok {
			columns = view.Columns()
		} else {
			return ContinueResult, driver.IOErrorf("table not found: %s", name)
		}
	} else {
		return ContinueResult, driver.IOErrorf("table not found: %s", name)
	}
	var rows []driver.Row
	for _, column := range columns {
		var defaultValue driver.Value
		if column.Default == "" {
			defaultValue = driver.NewNull()
		} else {
			defaultValue = driver.NewString(column.Default)
		}
		rows = append(rows, driver.Row{
			driver.NewString(column.Name),
			driver.NewString(column.DataType),
			yesNo(column.NotNull),
			defaultValue,
		})
	}
	labels := []string{"Column", "Type", "Not Null", "Default"}
	return ContinueResult, renderResult(ctx, opts, time.Since(start), labels, rows)
}

func currentSchema(ctx context.Context, opts *Options) (*driver.Schema, error) {
	metadata, err := opts.Connection.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	if schema, ok := metadata.CurrentSchema(); ok {
		return schema, nil
	}
	return nil, nil
}

// selectTables resolves the optional table argument to either the one
// named table or every table in the current schema.
func selectTables(ctx context.Context, opts *Options, command Command) ([]*driver.Table, error) {
	schema, err := currentSchema(ctx, opts)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, nil
	}
	if len(opts.Input) > 1 {
		table, ok := schema.Table(opts.Input[1])
		if !ok {
			return nil, driver.IOErrorf("table not found: %s", opts.Input[1])
		}
		return []*driver.Table{table}, nil
	}
	return schema.Tables(), nil
}
