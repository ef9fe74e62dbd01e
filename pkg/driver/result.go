package driver

import "context"

// Row is a single result row, one Value per column.
type Row []Value

// QueryResult streams the rows of a query. Results are single-consumer;
// Close is idempotent and must be called when done.
type QueryResult interface {
	// Columns returns the column names in result order.
	Columns() []string
	// Next returns the next row, or nil when the result is exhausted.
	Next(ctx context.Context) (Row, error)
	Close() error
}

// MemoryQueryResult is a fully materialized QueryResult. Drivers decode
// backend rows eagerly into one of these so the cursor can outlive the
// underlying backend iterator.
type MemoryQueryResult struct {
	columns []string
	rows    []Row
	cursor  int
}

// NewMemoryQueryResult wraps pre-decoded rows. The slices are not copied.
func NewMemoryQueryResult(columns []string, rows []Row) *MemoryQueryResult {
	return &MemoryQueryResult{columns: columns, rows: rows}
}

func (r *MemoryQueryResult) Columns() []string { return r.columns }

func (r *MemoryQueryResult) Next(_ context.Context) (Row, error) {
	if r.cursor >= len(r.rows) {
		return nil, nil
	}
	row := r.rows[r.cursor]
	r.cursor++
	return row, nil
}

func (r *MemoryQueryResult) Close() error {
	r.cursor = len(r.rows)
	return nil
}

// LimitQueryResult caps the number of rows another result yields. A limit
// of zero or less passes everything through.
type LimitQueryResult struct {
	inner QueryResult
	limit int
	seen  int
}

// NewLimitQueryResult decorates inner so at most limit rows are returned.
func NewLimitQueryResult(inner QueryResult, limit int) *LimitQueryResult {
	return &LimitQueryResult{inner: inner, limit: limit}
}

func (r *LimitQueryResult) Columns() []string { return r.inner.Columns() }

func (r *LimitQueryResult) Next(ctx context.Context) (Row, error) {
	if r.limit > 0 && r.seen >= r.limit {
		return nil, nil
	}
	row, err := r.inner.Next(ctx)
	if err != nil || row == nil {
		return nil, err
	}
	r.seen++
	return row, nil
}

func (r *LimitQueryResult) Close() error { return r.inner.Close() }

// Limit returns the configured row cap.
func (r *LimitQueryResult) Limit() int { return r.limit }
