// Package engine embeds an in-memory SQL engine that makes file-backed
// sources queryable.
//
// File drivers either hand the engine a path to ingest natively (CSV,
// JSON, Parquet) or parse the payload themselves and register a Frame.
// Each source owns a private engine instance; tables registered on it
// are queryable under names derived from the source file.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode"

	_ "github.com/marcboeker/go-duckdb" // embedded database driver

	"github.com/leapstack-labs/rsql/pkg/driver"
)

// Frame is a parsed, in-memory table produced by a file parser.
type Frame struct {
	Columns []string
	Rows    []driver.Row
}

// Engine owns one in-memory database instance and the tables registered
// on it. All methods are safe for concurrent use.
type Engine struct {
	db     *sql.DB
	logger *slog.Logger

	mu     sync.Mutex
	tables []string
}

// New opens a fresh in-memory engine.
func New(ctx context.Context, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping embedded database: %w", err)
	}
	return &Engine{db: db, logger: logger}, nil
}

// Close releases the embedded database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// TableNames returns the registered table names in registration order.
func (e *Engine) TableNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.tables...)
}

// Query runs a statement and decodes every row. Unsigned 8 and 16 bit
// cells widen to U32 to stay within the engine's type support; everything
// else keeps its exact width.
func (e *Engine) Query(ctx context.Context, query string, args ...any) ([]string, []driver.Row, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return ScanRows(rows, true)
}

// Execute runs a statement and reports the height of its result as the
// affected row count.
func (e *Engine) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute statement: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var affected int64
	for rows.Next() {
		affected++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to drain statement result: %w", err)
	}
	return affected, nil
}

// reserveTable claims a unique table name derived from base, appending a
// numeric suffix on collision.
func (e *Engine) reserveTable(base string) string {
	if base == "" {
		base = "table"
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	name := base
	for suffix := 1; e.reserved(name); suffix++ {
		name = base + "_" + strconv.Itoa(suffix)
	}
	e.tables = append(e.tables, name)
	return name
}

func (e *Engine) reserved(name string) bool {
	for _, table := range e.tables {
		if table == name {
			return true
		}
	}
	return false
}

// CSVOptions control how delimited files are ingested.
type CSVOptions struct {
	HasHeader           bool
	IgnoreErrors        bool
	InferSchemaLength   int // rows sampled for type inference; 0 scans everything
	SkipRows            int
	SkipRowsAfterHeader int
	Separator           byte
	Quote               byte // 0 keeps the reader default
	EOL                 byte
}

// DefaultCSVOptions mirrors the delimited URL parameter defaults.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{HasHeader: true, InferSchemaLength: 100, Separator: ',', EOL: '\n'}
}

// RegisterCSV ingests a delimited file and returns the final table name.
func (e *Engine) RegisterCSV(ctx context.Context, name, path string, options CSVOptions) (string, error) {
	table := e.reserveTable(name)
	arguments := []string{
		driver.QuoteLiteral(path),
		fmt.Sprintf("header=%t", options.HasHeader),
		"delim=" + driver.QuoteLiteral(string(options.Separator)),
	}
	if options.Quote != 0 {
		arguments = append(arguments, "quote="+driver.QuoteLiteral(string(options.Quote)))
	}
	if options.EOL == '\r' {
		arguments = append(arguments, `new_line='\r'`)
	}
	if options.SkipRows > 0 {
		arguments = append(arguments, "skip="+strconv.Itoa(options.SkipRows))
	}
	if options.IgnoreErrors {
		arguments = append(arguments, "ignore_errors=true")
	}
	arguments = append(arguments, "sample_size="+sampleSize(options.InferSchemaLength))

	statement := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM read_csv(%s)",
		quoteIdentifier(table), strings.Join(arguments, ", "))
	if options.SkipRowsAfterHeader > 0 {
		statement += " OFFSET " + strconv.Itoa(options.SkipRowsAfterHeader)
	}
	if _, err := e.db.ExecContext(ctx, statement); err != nil {
		return "", fmt.Errorf("failed to ingest %s: %w", path, err)
	}
	e.logger.Debug("registered table", "table", table, "source", path)
	return table, nil
}

// JSONOptions control how JSON documents are ingested.
type JSONOptions struct {
	Format            string // auto, array or newline_delimited
	IgnoreErrors      bool
	InferSchemaLength int
}

// DefaultJSONOptions mirrors the JSON URL parameter defaults.
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{Format: "auto", InferSchemaLength: 100}
}

// RegisterJSON ingests a JSON file and returns the final table name.
func (e *Engine) RegisterJSON(ctx context.Context, name, path string, options JSONOptions) (string, error) {
	table := e.reserveTable(name)
	format := options.Format
	if format == "" {
		format = "auto"
	}
	arguments := []string{
		driver.QuoteLiteral(path),
		"format=" + driver.QuoteLiteral(format),
	}
	if options.IgnoreErrors {
		arguments = append(arguments, "ignore_errors=true")
	}
	arguments = append(arguments, "sample_size="+sampleSize(options.InferSchemaLength))

	statement := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM read_json(%s)",
		quoteIdentifier(table), strings.Join(arguments, ", "))
	if _, err := e.db.ExecContext(ctx, statement); err != nil {
		return "", fmt.Errorf("failed to ingest %s: %w", path, err)
	}
	e.logger.Debug("registered table", "table", table, "source", path)
	return table, nil
}

// RegisterJSONBytes ingests an in-memory JSON document by spooling it to
// a temporary file; the embedded reader only consumes files.
func (e *Engine) RegisterJSONBytes(ctx context.Context, name string, data []byte, options JSONOptions) (string, error) {
	spool, err := os.CreateTemp("", "rsql-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create spool file: %w", err)
	}
	defer func() { _ = os.Remove(spool.Name()) }()
	if _, err := spool.Write(data); err != nil {
		_ = spool.Close()
		return "", fmt.Errorf("failed to write spool file: %w", err)
	}
	if err := spool.Close(); err != nil {
		return "", fmt.Errorf("failed to close spool file: %w", err)
	}
	return e.RegisterJSON(ctx, name, spool.Name(), options)
}

// RegisterParquet ingests a Parquet file and returns the final table name.
func (e *Engine) RegisterParquet(ctx context.Context, name, path string) (string, error) {
	table := e.reserveTable(name)
	statement := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM read_parquet(%s)",
		quoteIdentifier(table), driver.QuoteLiteral(path))
	if _, err := e.db.ExecContext(ctx, statement); err != nil {
		return "", fmt.Errorf("failed to ingest %s: %w", path, err)
	}
	e.logger.Debug("registered table", "table", table, "source", path)
	return table, nil
}

// RegisterFrame materializes a parsed frame as a table and returns the
// final table name.
func (e *Engine) RegisterFrame(ctx context.Context, name string, frame Frame) (string, error) {
	table := e.reserveTable(name)
	columnTypes := inferColumnTypes(frame)
	definitions := make([]string, len(frame.Columns))
	for i, column := range frame.Columns {
		definitions[i] = quoteIdentifier(column) + " " + columnTypes[i]
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdentifier(table), strings.Join(definitions, ", "))
	if _, err := e.db.ExecContext(ctx, create); err != nil {
		return "", fmt.Errorf("failed to create table %s: %w", table, err)
	}
	if len(frame.Rows) == 0 {
		return table, nil
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)",
		quoteIdentifier(table), strings.TrimSuffix(strings.Repeat("?, ", len(frame.Columns)), ", "))
	transaction, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	statement, err := transaction.PrepareContext(ctx, insert)
	if err != nil {
		_ = transaction.Rollback()
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	for _, row := range frame.Rows {
		arguments := make([]any, len(row))
		for i, value := range row {
			arguments[i] = bindArgument(value)
		}
		if _, err := statement.ExecContext(ctx, arguments...); err != nil {
			_ = statement.Close()
			_ = transaction.Rollback()
			return "", fmt.Errorf("failed to insert row: %w", err)
		}
	}
	if err := statement.Close(); err != nil {
		_ = transaction.Rollback()
		return "", fmt.Errorf("failed to close insert: %w", err)
	}
	if err := transaction.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	e.logger.Debug("registered table", "table", table, "rows", len(frame.Rows))
	return table, nil
}

func sampleSize(inferSchemaLength int) string {
	if inferSchemaLength == 0 {
		return "-1"
	}
	return strconv.Itoa(inferSchemaLength)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// inferColumnTypes picks a column type from the first non-null cell of
// each column; columns with mixed kinds degrade to text.
func inferColumnTypes(frame Frame) []string {
	types := make([]string, len(frame.Columns))
	for i := range frame.Columns {
		kind := driver.KindNull
		for _, row := range frame.Rows {
			if i >= len(row) || row[i].IsNull() {
				continue
			}
			candidate := row[i].Kind()
			if kind == driver.KindNull {
				kind = candidate
			} else if kind != candidate {
				kind = driver.KindString
				break
			}
		}
		types[i] = columnType(kind)
	}
	return types
}

func columnType(kind driver.Kind) string {
	switch kind {
	case driver.KindBool:
		return "BOOLEAN"
	case driver.KindI8:
		return "TINYINT"
	case driver.KindI16:
		return "SMALLINT"
	case driver.KindI32:
		return "INTEGER"
	case driver.KindI64:
		return "BIGINT"
	case driver.KindI128:
		return "HUGEINT"
	case driver.KindU8:
		return "UTINYINT"
	case driver.KindU16:
		return "USMALLINT"
	case driver.KindU32:
		return "UINTEGER"
	case driver.KindU64:
		return "UBIGINT"
	case driver.KindU128:
		return "UHUGEINT"
	case driver.KindF32:
		return "FLOAT"
	case driver.KindF64:
		return "DOUBLE"
	case driver.KindDate:
		return "DATE"
	case driver.KindTime:
		return "TIME"
	case driver.KindDateTime:
		return "TIMESTAMP"
	case driver.KindInterval:
		return "INTERVAL"
	case driver.KindBytes:
		return "BLOB"
	case driver.KindUUID:
		return "UUID"
	case driver.KindJSON, driver.KindArray, driver.KindMap:
		return "JSON"
	default:
		return "VARCHAR"
	}
}

// TableName derives a table name from a file path: the base name cut at
// the first dot, so "users.csv.gz" becomes "users".
func TableName(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// SheetTableName appends a sanitized worksheet name to a table name.
// Non-alphanumeric runes in the sheet name become underscores.
func SheetTableName(table, sheet string) string {
	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, sheet)
	return table + "__" + sanitized
}

// SpreadsheetColumnName generates column names the way spreadsheets do,
// A-Z, AA-AZ, BA-BZ and so on.
func SpreadsheetColumnName(column int) string {
	name := ""
	column++
	for column > 0 {
		column--
		name = string(rune('A'+column%26)) + name
		column /= 26
	}
	return name
}
